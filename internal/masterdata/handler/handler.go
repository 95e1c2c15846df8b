package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/httpx"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/masterdata"
	"github.com/fekuna/omnipos-inventory-service/internal/masterdata/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// Resources maps URL path segments to master data kinds.
var Resources = map[string]model.MasterKind{
	"manufacturers":  model.KindManufacturer,
	"categories":     model.KindCategory,
	"locations":      model.KindLocation,
	"units":          model.KindUnit,
	"tags":           model.KindTag,
	"material-types": model.KindMaterialType,
}

type MasterHandler struct {
	uc     masterdata.UseCase
	logger logger.ZapLogger
}

func NewMasterHandler(uc masterdata.UseCase, log logger.ZapLogger) *MasterHandler {
	return &MasterHandler{uc: uc, logger: log}
}

func (h *MasterHandler) Register(mux *http.ServeMux) {
	for resource, kind := range Resources {
		base := "/" + resource
		mux.HandleFunc("GET "+base, h.list(kind))
		mux.HandleFunc("POST "+base, h.create(kind))
		mux.HandleFunc("GET "+base+"/{id}", h.get(kind))
		mux.HandleFunc("PUT "+base+"/{id}", h.update(kind))
		mux.HandleFunc("DELETE "+base+"/{id}", h.delete(kind))
	}
	mux.HandleFunc("POST /material-types/reorder", h.Reorder)
}

type listResponse struct {
	Items []model.MasterData `json:"items"`
	Total int                `json:"total"`
}

func (h *MasterHandler) list(kind model.MasterKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := httpx.QueryInt(r, "page", 1)
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		limit, err := httpx.QueryInt(r, "limit", 0)
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		if page < 1 || limit < 0 {
			httpx.WriteError(w, h.logger, apperror.Validation("invalid pagination"))
			return
		}

		rows, total, err := h.uc.ListMasters(r.Context(), kind, &dto.MasterFilters{
			Search: r.URL.Query().Get("search"),
			Page:   page,
			Limit:  limit,
		})
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, listResponse{Items: rows, Total: total})
	}
}

func (h *MasterHandler) get(kind model.MasterKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := h.uc.GetMaster(r.Context(), kind, r.PathValue("id"))
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, m)
	}
}

func (h *MasterHandler) create(kind model.MasterKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := auth.RequireActor(r)
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		var input dto.MasterInput
		if err := httpx.DecodeJSON(r, &input); err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		m, err := h.uc.CreateMaster(r.Context(), kind, &input, actor)
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, m)
	}
}

func (h *MasterHandler) update(kind model.MasterKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := auth.RequireActor(r)
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		var input dto.MasterInput
		if err := httpx.DecodeJSON(r, &input); err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		m, err := h.uc.UpdateMaster(r.Context(), kind, r.PathValue("id"), &input, actor)
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, m)
	}
}

func (h *MasterHandler) delete(kind model.MasterKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := auth.RequireActor(r)
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		if err := h.uc.DeleteMaster(r.Context(), kind, r.PathValue("id"), actor); err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *MasterHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.RequireActor(r)
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}
	var input dto.ReorderInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}
	if err := h.uc.ReorderMaterialTypes(r.Context(), input.IDs, actor); err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
