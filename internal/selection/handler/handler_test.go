package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/item/dto"
	itemhandler "github.com/fekuna/omnipos-inventory-service/internal/item/handler"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/internal/selection"
	"github.com/fekuna/omnipos-inventory-service/internal/selection/handler"
	"github.com/fekuna/omnipos-inventory-service/internal/testutil"
)

type body struct {
	IDs   []string `json:"ids"`
	Count int      `json:"count"`
}

func do(t *testing.T, h http.Handler, method, path, user, payload string) (int, body) {
	t.Helper()
	r := httptest.NewRequest(method, path, strings.NewReader(payload))
	if user != "" {
		r.Header.Set(auth.HeaderUserID, user)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	var b body
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	}
	return w.Code, b
}

func TestSelectionEndpoints(t *testing.T) {
	app := testutil.NewApp(t)
	log := logger.NewNop()
	cost := decimal.NewFromInt(100)
	var productIDs []string
	for _, in := range []dto.CreateItemInput{
		{ItemType: model.ItemTypeProduct, Name: "Chair", CostPrice: &cost},
		{ItemType: model.ItemTypeProduct, Name: "Chair large", CostPrice: &cost},
		{ItemType: model.ItemTypeConsignment, Name: "Chair vintage"},
	} {
		it, err := app.Items.CreateItem(context.Background(), &in, testutil.Actor)
		require.NoError(t, err)
		if it.ItemType == model.ItemTypeProduct {
			productIDs = append(productIDs, it.ID)
		}
	}

	svc := selection.NewService(selection.NewMemoryStore(), app.Items, 0, log)
	mux := http.NewServeMux()
	handler.NewSelectionHandler(svc, itemhandler.NewItemHandler(app.Items, log, 20), log).Register(mux)
	h := auth.Middleware(log)(mux)

	code, b := do(t, h, http.MethodPost, "/selections/products/select-all?search=chair", "u1", "")
	require.Equal(t, http.StatusOK, code)
	assert.ElementsMatch(t, productIDs, b.IDs)
	assert.Equal(t, 2, b.Count)

	code, b = do(t, h, http.MethodPost, "/selections/products/toggle", "u1", `{"id":"`+productIDs[0]+`"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{productIDs[1]}, b.IDs)

	code, b = do(t, h, http.MethodPost, "/selections/products/toggle-page", "u1", `{"ids":["`+productIDs[0]+`","`+productIDs[1]+`"]}`)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, b.IDs, 2)

	code, b = do(t, h, http.MethodGet, "/selections/products", "u2", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, b.IDs)

	code, _ = do(t, h, http.MethodDelete, "/selections/products", "u1", "")
	assert.Equal(t, http.StatusNoContent, code)
	code, b = do(t, h, http.MethodGet, "/selections/products", "u1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, b.IDs)

	code, _ = do(t, h, http.MethodGet, "/selections/orders", "u1", "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, h, http.MethodPost, "/selections/orders/select-all", "u1", "")
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, h, http.MethodPost, "/selections/items/toggle", "u1", `{"id":""}`)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = do(t, h, http.MethodGet, "/selections/items", "", "")
	assert.Equal(t, http.StatusUnauthorized, code)
}
