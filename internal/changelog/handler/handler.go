package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-inventory-service/internal/changelog"
	"github.com/fekuna/omnipos-inventory-service/internal/changelog/usecase"
	"github.com/fekuna/omnipos-inventory-service/internal/httpx"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

type ChangeLogHandler struct {
	uc     changelog.UseCase
	logger logger.ZapLogger
}

func NewChangeLogHandler(uc changelog.UseCase, log logger.ZapLogger) *ChangeLogHandler {
	return &ChangeLogHandler{uc: uc, logger: log}
}

func (h *ChangeLogHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /change-logs", h.ListChangeLogs)
}

type listResponse struct {
	ChangeLogs []model.ChangeLogEntry `json:"changeLogs"`
}

func (h *ChangeLogHandler) ListChangeLogs(w http.ResponseWriter, r *http.Request) {
	limit, err := httpx.QueryInt(r, "limit", usecase.DefaultLimit)
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}

	q := r.URL.Query()
	entries, err := h.uc.ListChangeLogs(r.Context(), &changelog.Filters{
		EntityType: q.Get("entityType"),
		EntityID:   q.Get("entityId"),
		Limit:      limit,
	})
	if err != nil {
		httpx.WriteError(w, h.logger, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, listResponse{ChangeLogs: entries})
}
