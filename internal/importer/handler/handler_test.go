package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/importer"
	"github.com/fekuna/omnipos-inventory-service/internal/importer/handler"
	itemhandler "github.com/fekuna/omnipos-inventory-service/internal/item/handler"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/testutil"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()
	app := testutil.NewApp(t)
	log := logger.NewNop()
	items := itemhandler.NewItemHandler(app.Items, log, 20)
	im := importer.NewImporter(app.Items, app.Masters, app.MasterRepo, log, nil)

	mux := http.NewServeMux()
	items.Register(mux)
	handler.NewImportHandler(im, items, log, 1<<20).Register(mux)
	return auth.Middleware(log)(mux)
}

func upload(t *testing.T, h http.Handler, path, field, content string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, "items.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, path, &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.Header.Set(auth.HeaderUserID, "u1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	r.Header.Set(auth.HeaderUserID, "u1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestImportEndpoint(t *testing.T) {
	h := newServer(t)

	w := upload(t, h, "/items/import", "file", "type,name,costPrice,quantity\n商品,Chair,1000,3\nbogus,Table,500,2\n")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res importer.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, 1, res.Imported)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 3, res.Errors[0].Row)

	w = upload(t, h, "/items/import", "other", "type,name\n商品,x\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = upload(t, h, "/items/import", "file", "costPrice\n1\n")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	r := httptest.NewRequest(http.MethodPost, "/items/import", strings.NewReader("{}"))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set(auth.HeaderUserID, "u1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVariantImportAndExport(t *testing.T) {
	h := newServer(t)

	w := upload(t, h, "/consignments/import", "file", "名前,数量\nVase,2\n")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = upload(t, h, "/products/import", "file", "名前,原価\nChair,100\n")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = get(h, "/consignments/export")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "consignments.csv")
	assert.Contains(t, w.Body.String(), "Vase")
	assert.NotContains(t, w.Body.String(), "Chair")

	w = get(h, "/items/export?search=chair")
	require.Equal(t, http.StatusOK, w.Code)
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "PRD-")

	w = get(h, "/items/export?includeSold=maybe")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
