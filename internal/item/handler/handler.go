package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/httpx"
	"github.com/fekuna/omnipos-inventory-service/internal/item"
	"github.com/fekuna/omnipos-inventory-service/internal/item/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// Resource is one item collection exposed over HTTP. The variant collections
// only see items of their own type.
type Resource struct {
	Path     string
	ItemType *model.ItemType
}

func typePtr(t model.ItemType) *model.ItemType { return &t }

var Resources = []Resource{
	{Path: "items"},
	{Path: "products", ItemType: typePtr(model.ItemTypeProduct)},
	{Path: "consignments", ItemType: typePtr(model.ItemTypeConsignment)},
}

type ItemHandler struct {
	uc           item.UseCase
	logger       logger.ZapLogger
	defaultLimit int
}

func NewItemHandler(uc item.UseCase, log logger.ZapLogger, defaultLimit int) *ItemHandler {
	if defaultLimit <= 0 {
		defaultLimit = dto.DefaultLimit
	}
	return &ItemHandler{uc: uc, logger: log, defaultLimit: defaultLimit}
}

func (h *ItemHandler) Register(mux *http.ServeMux) {
	for _, res := range Resources {
		base := "/" + res.Path
		mux.HandleFunc("GET "+base, h.list(res))
		mux.HandleFunc("GET "+base+"/ids", h.ids(res))
		mux.HandleFunc("POST "+base, h.create(res))
		mux.HandleFunc("GET "+base+"/{id}", h.get(res))
		mux.HandleFunc("PUT "+base+"/{id}", h.update(res))
		mux.HandleFunc("DELETE "+base+"/{id}", h.delete(res))
		mux.HandleFunc("POST "+base+"/bulk/edit", h.bulkEdit(res))
		mux.HandleFunc("POST "+base+"/bulk/delete", h.bulkDelete(res))
	}
}

// Filters parses the list filters of a request scoped to res.
func (h *ItemHandler) Filters(r *http.Request, res Resource) (*dto.ItemFilters, error) {
	f, err := dto.FiltersFromQuery(r.URL.Query(), h.defaultLimit)
	if err != nil {
		return nil, err
	}
	if res.ItemType != nil {
		f.ItemType = res.ItemType
	}
	return f, nil
}

type listResponse struct {
	Items      []model.InventoryItem `json:"items"`
	Pagination dto.Pagination        `json:"pagination"`
}

func (h *ItemHandler) list(res Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := h.Filters(r, res)
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		items, total, err := h.uc.ListItems(r.Context(), f)
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, listResponse{
			Items:      items,
			Pagination: dto.NewPagination(total, f.Page, f.Limit),
		})
	}
}

func (h *ItemHandler) ids(res Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := h.Filters(r, res)
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		ids, err := h.uc.ListItemIDs(r.Context(), f, 0)
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string][]string{"ids": ids})
	}
}

func (h *ItemHandler) get(res Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		it, err := h.uc.GetItem(r.Context(), r.PathValue("id"), res.ItemType)
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, it)
	}
}

func (h *ItemHandler) create(res Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := auth.RequireActor(r)
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		var input dto.CreateItemInput
		if err := httpx.DecodeJSON(r, &input); err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		if res.ItemType != nil {
			input.ItemType = *res.ItemType
		}
		it, err := h.uc.CreateItem(r.Context(), &input, actor)
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, it)
	}
}

func (h *ItemHandler) update(res Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := auth.RequireActor(r)
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		var input dto.UpdateItemInput
		if err := httpx.DecodeJSON(r, &input); err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		input.ID = r.PathValue("id")
		it, err := h.uc.UpdateItem(r.Context(), &input, res.ItemType, actor)
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, it)
	}
}

func (h *ItemHandler) delete(res Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := auth.RequireActor(r)
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		if err := h.uc.DeleteItem(r.Context(), r.PathValue("id"), res.ItemType, actor); err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *ItemHandler) bulkEdit(res Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := auth.RequireActor(r)
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		var input dto.BulkEditInput
		if err := httpx.DecodeJSON(r, &input); err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		input.ItemType = res.ItemType
		result, err := h.uc.BulkEdit(r.Context(), &input, actor)
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, result)
	}
}

func (h *ItemHandler) bulkDelete(res Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := auth.RequireActor(r)
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		var input dto.BulkDeleteInput
		if err := httpx.DecodeJSON(r, &input); err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		input.ItemType = res.ItemType
		result, err := h.uc.BulkDelete(r.Context(), &input, actor)
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, result)
	}
}
