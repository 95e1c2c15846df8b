package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/httpx"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserName = "X-User-Name"
)

type actorKey struct{}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the authenticated actor set by Middleware.
func ActorFromContext(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(model.Actor)
	return actor, ok
}

// Middleware trusts the identity headers set by the upstream session layer.
// Requests without a user id are answered with 401, except for public paths.
func Middleware(log logger.ZapLogger, public ...string) httpx.Middleware {
	open := make(map[string]bool, len(public))
	for _, p := range public {
		open[p] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if open[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
			if userID == "" {
				httpx.WriteError(w, log, apperror.Unauthenticated("missing user context"))
				return
			}
			userName := strings.TrimSpace(r.Header.Get(HeaderUserName))
			if userName == "" {
				userName = userID
			}

			ctx := WithActor(r.Context(), model.Actor{UserID: userID, UserName: userName})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActor returns the request's actor or an Unauthenticated error.
func RequireActor(r *http.Request) (model.Actor, error) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		return model.Actor{}, apperror.Unauthenticated("missing user context")
	}
	return actor, nil
}
