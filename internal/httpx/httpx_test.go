package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", apperror.Validation("bad input", apperror.FieldError{Field: "ids", Message: "required"}), http.StatusBadRequest, "bad input"},
		{"not found", apperror.NotFound("item not found"), http.StatusNotFound, "item not found"},
		{"unauthenticated", apperror.Unauthenticated("missing user"), http.StatusUnauthorized, "missing user"},
		{"business rule", apperror.BusinessRule("quantity would become negative", nil), http.StatusInternalServerError, "quantity would become negative"},
		{"unexpected hides detail", apperror.Unexpected("db down", errors.New("dial tcp")), http.StatusInternalServerError, "internal error"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, logger.NewNop(), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMsg, body["error"])
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		IDs []string `json:"ids"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"ids":["a"]}`))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Equal(t, []string{"a"}, dst.IDs)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	assert.True(t, apperror.Is(DecodeJSON(r, &dst), apperror.KindValidation))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"unknown":1}`))
	assert.True(t, apperror.Is(DecodeJSON(r, &dst), apperror.KindValidation))
}

func TestQueryHelpers(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?page=3&bad=x&sold=true&tagIds=a,b&tagIds=c", nil)

	v, err := QueryInt(r, "page", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = QueryInt(r, "limit", 20)
	require.NoError(t, err)
	assert.Equal(t, 20, v)

	_, err = QueryInt(r, "bad", 1)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	b, err := QueryBool(r, "sold", false)
	require.NoError(t, err)
	assert.True(t, b)

	assert.Equal(t, []string{"a", "b", "c"}, QueryList(r, "tagIds"))
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}), mw("outer"), mw("inner"), AccessLog(logger.NewNop()))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "inner"}, order)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
