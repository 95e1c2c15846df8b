package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/httpx"
	"github.com/fekuna/omnipos-inventory-service/internal/importer"
	"github.com/fekuna/omnipos-inventory-service/internal/item/dto"
	itemhandler "github.com/fekuna/omnipos-inventory-service/internal/item/handler"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
)

// FilterParser reads list filters from a request scoped to one resource.
type FilterParser interface {
	Filters(r *http.Request, res itemhandler.Resource) (*dto.ItemFilters, error)
}

type ImportHandler struct {
	importer *importer.Importer
	filters  FilterParser
	logger   logger.ZapLogger
	maxBytes int64
}

func NewImportHandler(im *importer.Importer, filters FilterParser, log logger.ZapLogger, maxBytes int64) *ImportHandler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &ImportHandler{importer: im, filters: filters, logger: log, maxBytes: maxBytes}
}

func (h *ImportHandler) Register(mux *http.ServeMux) {
	for _, res := range itemhandler.Resources {
		base := "/" + res.Path
		mux.HandleFunc("POST "+base+"/import", h.importCSV(res))
		mux.HandleFunc("GET "+base+"/export", h.exportCSV(res))
	}
}

func (h *ImportHandler) importCSV(res itemhandler.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := auth.RequireActor(r)
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
		if err := r.ParseMultipartForm(h.maxBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				httpx.WriteError(w, h.logger, apperror.Validation("file is too large"))
				return
			}
			httpx.WriteError(w, h.logger, apperror.Validation("multipart form with a file field is required"))
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			httpx.WriteError(w, h.logger, apperror.Validation("file is required", apperror.FieldError{Field: "file", Message: "is required"}))
			return
		}
		defer file.Close()

		result, err := h.importer.Import(r.Context(), file, importer.Options{FixedType: res.ItemType}, actor)
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, result)
	}
}

func (h *ImportHandler) exportCSV(res itemhandler.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := h.filters.Filters(r, res)
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}

		var buf bytes.Buffer
		n, err := h.importer.Export(r.Context(), &buf, f)
		if err != nil {
			httpx.WriteError(w, h.logger, err)
			return
		}
		h.logger.Debug("csv export", zap.String("resource", res.Path), zap.Int("rows", n))

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, res.Path))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}
