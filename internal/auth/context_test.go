package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

func TestMiddleware(t *testing.T) {
	var got model.Actor
	var seen bool
	h := Middleware(logger.NewNop(), "/healthz")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, seen = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("missing user id", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("actor from headers", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/items", nil)
		r.Header.Set(HeaderUserID, "u1")
		r.Header.Set(HeaderUserName, "Sato")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, seen)
		assert.Equal(t, model.Actor{UserID: "u1", UserName: "Sato"}, got)
	})

	t.Run("name defaults to id", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/items", nil)
		r.Header.Set(HeaderUserID, "u2")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)

		assert.Equal(t, "u2", got.UserName)
	})

	t.Run("public path", func(t *testing.T) {
		seen = true
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.False(t, seen)
	})
}
