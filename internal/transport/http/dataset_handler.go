package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"epldash/internal/config"
	apierrors "epldash/internal/errors"
	epmiddleware "epldash/internal/middleware"
	"epldash/internal/report"
	"epldash/internal/services"
	api "epldash/pkg/contracts/api/v1"
)

// multipartMemory is the part of an upload kept in memory before spilling to disk
const multipartMemory = 8 << 20

// DatasetHandler handles dataset and report HTTP requests with RFC 7807 compliance
type DatasetHandler struct {
	service      DatasetServiceInterface
	validation   *epmiddleware.ValidationMiddleware
	cfg          config.ReportConfig
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(service DatasetServiceInterface, cfg config.ReportConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	return &DatasetHandler{
		service:      service,
		validation:   epmiddleware.NewValidationMiddleware(logger, errorHandler),
		cfg:          cfg,
		logger:       logger.With(slog.String("component", "dataset_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dataset routes
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.ListDatasets)
	r.Post("/", h.UploadDataset)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.DatasetCtx)
		r.Get("/", h.GetDataset)
		r.Delete("/", h.DeleteDataset)
		r.Get("/filters", h.GetFilters)

		r.Group(func(r chi.Router) {
			r.Use(h.validation.ValidateRequest)
			r.Use(epmiddleware.ContentTypeValidator("application/json"))
			r.Post("/summary", h.GetSummary)
			r.Post("/sections/{section}", h.GetSection)
			r.Post("/report", h.GetReport)
			r.Post("/export/xlsx", h.ExportWorkbook)
			r.Post("/export/bulletins", h.ExportBulletins)
		})
	})

	return r
}

// DatasetCtx rejects empty dataset ids before they reach the service
func (h *DatasetHandler) DatasetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimSpace(chi.URLParam(r, "id")) == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("id", "Dataset id is required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleServiceError maps service sentinels to API errors and lets the
// error handler classify everything else
func (h *DatasetHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	id := chi.URLParam(r, "id")

	switch {
	case errors.Is(err, services.ErrInvalidDatasetID):
		err = apierrors.ErrValidation("id", fmt.Sprintf("Dataset id %q is not a valid UUID", id))
	case errors.Is(err, services.ErrSessionNotFound):
		err = apierrors.DatasetNotFoundError(id)
	case errors.Is(err, services.ErrSectionUnavailable):
		err = apierrors.NewWithDetails(http.StatusNotFound, apierrors.CodeSectionMissing,
			"The dataset does not provide the columns this section needs", err.Error())
	case errors.Is(err, services.ErrEmptyUpload):
		err = apierrors.NewWithDetails(http.StatusUnprocessableEntity, apierrors.CodeInvalidDataset,
			"Dataset could not be read", err.Error())
	}

	h.errorHandler.HandleError(w, r, err)
}

// ListDatasets handles GET /api/datasets
func (h *DatasetHandler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	datasets := h.service.Datasets()
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   datasets,
		"count":  len(datasets),
	})
}

// UploadDataset handles POST /api/datasets with a multipart "file" field
func (h *DatasetHandler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.errorHandler.HandleError(w, r, apierrors.PayloadTooLargeError(h.cfg.MaxUploadBytes))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrMissingFile)
		return
	}
	defer file.Close()

	h.logger.InfoContext(r.Context(), "uploading dataset",
		slog.String("request_id", reqID),
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
	)

	info, err := h.service.LoadDataset(r.Context(), header.Filename, file)
	if err != nil {
		h.logger.WarnContext(r.Context(), "dataset rejected",
			slog.String("request_id", reqID),
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()),
		)
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", config.DatasetsEndpoint+"/"+info.ID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   info,
	})
}

// GetDataset handles GET /api/datasets/{id}
func (h *DatasetHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.Dataset(chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   info,
	})
}

// DeleteDataset handles DELETE /api/datasets/{id}
func (h *DatasetHandler) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DropDataset(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetFilters handles GET /api/datasets/{id}/filters
func (h *DatasetHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	options, err := h.service.FilterOptions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   options,
	})
}

// GetSummary handles POST /api/datasets/{id}/summary
func (h *DatasetHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	var req api.FilterRequest
	if err := h.validation.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	summary, err := h.service.Summary(r.Context(), chi.URLParam(r, "id"), req.Predicates())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}

// GetSection handles POST /api/datasets/{id}/sections/{section}
func (h *DatasetHandler) GetSection(w http.ResponseWriter, r *http.Request) {
	name, err := report.ParseSection(chi.URLParam(r, "section"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var req api.FilterRequest
	if err := h.validation.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	section, err := h.service.Section(r.Context(), chi.URLParam(r, "id"), name, req.Predicates())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   section,
	})
}

// GetReport handles POST /api/datasets/{id}/report
func (h *DatasetHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	var req api.ReportRequest
	if err := h.validation.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	sections, err := report.ParseSections(req.Sections)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	artifact, err := h.service.Report(r.Context(), chi.URLParam(r, "id"), req.Filters.Predicates(), sections)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   artifact,
		"count":  len(artifact.Sections),
	})
}

// ExportWorkbook handles POST /api/datasets/{id}/export/xlsx
func (h *DatasetHandler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	var req api.ExportRequest
	if err := h.validation.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	sections, err := report.ParseSections(req.Sections)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	// buffered so a failed export still yields a problem response
	var buf bytes.Buffer
	if err := h.service.ExportWorkbook(r.Context(), chi.URLParam(r, "id"), req.Filters.Predicates(), sections, &buf); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.sendAttachment(w, r, downloadName(req.FileName, h.cfg.WorkbookName, ".xlsx"), config.ContentTypeXLSX, &buf)
}

// ExportBulletins handles POST /api/datasets/{id}/export/bulletins
func (h *DatasetHandler) ExportBulletins(w http.ResponseWriter, r *http.Request) {
	var req api.ExportRequest
	if err := h.validation.DecodeAndValidate(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.service.ExportBulletins(r.Context(), chi.URLParam(r, "id"), req.Filters.Predicates(), &buf); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.sendAttachment(w, r, downloadName(req.FileName, h.cfg.BulletinsName, ".csv"), config.ContentTypeCSV, &buf)
}

func (h *DatasetHandler) sendAttachment(w http.ResponseWriter, r *http.Request, name, contentType string, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.WriteHeader(http.StatusOK)

	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "download interrupted",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("filename", name),
			slog.String("error", err.Error()),
		)
	}
}

// downloadName picks the requested file name or the configured default,
// forcing the expected extension
func downloadName(requested, fallback, ext string) string {
	name := requested
	if name == "" {
		name = fallback
	}
	if !strings.HasSuffix(strings.ToLower(name), ext) {
		name += ext
	}
	return name
}
