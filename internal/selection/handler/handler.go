package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/httpx"
	"github.com/fekuna/omnipos-inventory-service/internal/item/dto"
	itemhandler "github.com/fekuna/omnipos-inventory-service/internal/item/handler"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/selection"
)

// FilterParser reads list filters from a request scoped to one resource.
type FilterParser interface {
	Filters(r *http.Request, res itemhandler.Resource) (*dto.ItemFilters, error)
}

type SelectionHandler struct {
	svc     *selection.Service
	filters FilterParser
	logger  logger.ZapLogger
}

func NewSelectionHandler(svc *selection.Service, filters FilterParser, log logger.ZapLogger) *SelectionHandler {
	return &SelectionHandler{svc: svc, filters: filters, logger: log}
}

func (h *SelectionHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /selections/{view}", h.get)
	mux.HandleFunc("POST /selections/{view}/toggle", h.toggle)
	mux.HandleFunc("POST /selections/{view}/toggle-page", h.togglePage)
	mux.HandleFunc("POST /selections/{view}/select-all", h.selectAll)
	mux.HandleFunc("DELETE /selections/{view}", h.clear)
}

type selectionResponse struct {
	IDs   []string `json:"ids"`
	Count int      `json:"count"`
}

type toggleRequest struct {
	ID string `json:"id"`
}

type togglePageRequest struct {
	IDs []string `json:"ids"`
}

func (h *SelectionHandler) write(w http.ResponseWriter, ids []string, err error) {
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, selectionResponse{IDs: ids, Count: len(ids)})
}

func view(r *http.Request) selection.View {
	return selection.View(r.PathValue("view"))
}

func (h *SelectionHandler) get(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.RequireActor(r)
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}
	ids, err := h.svc.Get(r.Context(), view(r), actor.UserID)
	h.write(w, ids, err)
}

func (h *SelectionHandler) toggle(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.RequireActor(r)
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}
	var req toggleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}
	ids, err := h.svc.Toggle(r.Context(), view(r), actor.UserID, req.ID)
	h.write(w, ids, err)
}

func (h *SelectionHandler) togglePage(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.RequireActor(r)
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}
	var req togglePageRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}
	ids, err := h.svc.TogglePage(r.Context(), view(r), actor.UserID, req.IDs)
	h.write(w, ids, err)
}

func (h *SelectionHandler) selectAll(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.RequireActor(r)
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}
	res, ok := resourceOf(view(r))
	if !ok {
		httpx.WriteError(w, h.logger, apperror.NotFound("unknown selection view"))
		return
	}
	f, err := h.filters.Filters(r, res)
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}
	ids, err := h.svc.SelectAllMatching(r.Context(), view(r), actor.UserID, f)
	h.write(w, ids, err)
}

func (h *SelectionHandler) clear(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.RequireActor(r)
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}
	if err := h.svc.Clear(r.Context(), view(r), actor.UserID); err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// resourceOf finds the item collection a view lists.
func resourceOf(v selection.View) (itemhandler.Resource, bool) {
	for _, res := range itemhandler.Resources {
		if res.Path == string(v) {
			return res, true
		}
	}
	return itemhandler.Resource{}, false
}
