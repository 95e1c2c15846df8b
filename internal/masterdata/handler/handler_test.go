package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/changelog"
	clrepo "github.com/fekuna/omnipos-inventory-service/internal/changelog/repository"
	"github.com/fekuna/omnipos-inventory-service/internal/clock"
	"github.com/fekuna/omnipos-inventory-service/internal/database"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/masterdata/handler"
	"github.com/fekuna/omnipos-inventory-service/internal/masterdata/repository"
	"github.com/fekuna/omnipos-inventory-service/internal/masterdata/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/testutil"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()
	db := testutil.NewDB(t)
	clk := clock.NewMockClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	uc := usecase.NewMasterUseCase(
		repository.NewPGRepository(db),
		database.NewTransactor(db),
		changelog.NewRecorder(clrepo.NewPGRepository(db), clk),
		clk,
		logger.NewNop(),
	)
	mux := http.NewServeMux()
	handler.NewMasterHandler(uc, logger.NewNop()).Register(mux)
	return auth.Middleware(logger.NewNop())(mux)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	r.Header.Set(auth.HeaderUserID, "u1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestMasterCRUD(t *testing.T) {
	h := newServer(t)

	w := do(t, h, http.MethodPost, "/manufacturers", `{"name":"Acme"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created model.MasterData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = do(t, h, http.MethodPost, "/manufacturers", `{"name":"Acme"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodPut, "/manufacturers/"+created.ID, `{"name":"Acme Corp"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodGet, "/manufacturers/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got model.MasterData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Acme Corp", got.Name)

	w = do(t, h, http.MethodGet, "/manufacturers?search=corp", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = do(t, h, http.MethodDelete, "/manufacturers/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/manufacturers/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReorderEndpoint(t *testing.T) {
	h := newServer(t)

	var ids []string
	for _, name := range []string{"wood", "glass"} {
		w := do(t, h, http.MethodPost, "/material-types", `{"name":"`+name+`"}`)
		require.Equal(t, http.StatusCreated, w.Code)
		var m model.MasterData
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
		ids = append(ids, m.ID)
	}

	w := do(t, h, http.MethodPost, "/material-types/reorder", `{"ids":["`+ids[1]+`","`+ids[0]+`"]}`)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/material-types", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Items []model.MasterData `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Items, 2)
	assert.Equal(t, "glass", body.Items[0].Name)
}

func TestRequiresActor(t *testing.T) {
	h := newServer(t)
	r := httptest.NewRequest(http.MethodGet, "/tags", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
