package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daniel-otieno/resume-extractor/constants"
	"github.com/daniel-otieno/resume-extractor/internal/common"
	"github.com/daniel-otieno/resume-extractor/internal/export"
	"github.com/daniel-otieno/resume-extractor/internal/extract"
	"github.com/daniel-otieno/resume-extractor/internal/pipeline"
	"github.com/daniel-otieno/resume-extractor/internal/repository"
	"github.com/daniel-otieno/resume-extractor/internal/validate"
)

// Handler carries the pipeline pieces the HTTP surface needs.
type Handler struct {
	processor *pipeline.Processor
	validator *validate.Validator
	exporter  *export.Service
	jobs      repository.JobRepository
	uploadDir string
	maxUpload int64 // bytes
	logger    *slog.Logger
}

func NewHandler(
	processor *pipeline.Processor,
	validator *validate.Validator,
	exporter *export.Service,
	jobs repository.JobRepository,
	uploadDir string,
	maxUploadMB int,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if maxUploadMB <= 0 {
		maxUploadMB = 25
	}
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	return &Handler{
		processor: processor,
		validator: validator,
		exporter:  exporter,
		jobs:      jobs,
		uploadDir: uploadDir,
		maxUpload: int64(maxUploadMB) << 20,
		logger:    logger,
	}
}

type jobResponse struct {
	ID               string          `json:"id"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	SourcePath       string          `json:"source_path"`
	FieldDescription string          `json:"field_description"`
	Status           string          `json:"status"`
	ExtractedData    json.RawMessage `json:"extracted_data,omitempty"`
	Validation       json.RawMessage `json:"validation,omitempty"`
	OverallScore     *float64        `json:"overall_score,omitempty"`
	Error            string          `json:"error,omitempty"`
}

func toJobResponse(job *repository.ExtractionJob) jobResponse {
	return jobResponse{
		ID:               job.ID.String(),
		CreatedAt:        job.CreatedAt,
		UpdatedAt:        job.UpdatedAt,
		SourcePath:       job.SourcePath,
		FieldDescription: job.FieldDescription,
		Status:           string(job.Status),
		ExtractedData:    json.RawMessage(job.ExtractedJSON),
		Validation:       json.RawMessage(job.ValidationJSON),
		OverallScore:     job.OverallScore,
		Error:            job.ErrorMessage,
	}
}

// CreateExtraction accepts a multipart upload ("document" file part plus a
// "field_description" form value) and runs the pipeline synchronously.
// "validate=false" skips the scoring stage.
func (h *Handler) CreateExtraction(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	file, fileHeader, err := r.FormFile("document")
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: document file part is required", common.ErrInvalidInput))
		return
	}
	defer file.Close()

	ext := constants.NormalizeExt(filepath.Ext(fileHeader.Filename))
	if constants.MapExtToFormat(ext) == "" {
		h.writeError(w, fmt.Errorf("%w: unsupported file type %q", common.ErrInvalidInput, ext))
		return
	}

	fieldDescription := r.FormValue("field_description")
	if strings.TrimSpace(fieldDescription) == "" {
		fieldDescription = constants.DefaultFieldDescription
	}
	withValidation := true
	if v := r.FormValue("validate"); v != "" {
		withValidation, err = strconv.ParseBool(v)
		if err != nil {
			h.writeError(w, fmt.Errorf("%w: validate must be a boolean", common.ErrInvalidInput))
			return
		}
	}

	path, err := h.saveUpload(file, fileHeader.Filename)
	if err != nil {
		h.writeError(w, err)
		return
	}
	// Processing is synchronous and the document text is persisted on the
	// job, so the upload is not needed after this request.
	defer func() {
		if err := os.Remove(path); err != nil {
			h.logger.Warn("upload cleanup failed", "path", path, "error", err)
		}
	}()

	result, err := h.processor.ProcessDocument(r.Context(), path, fieldDescription, withValidation)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toJobResponse(result.Job))
}

// saveUpload copies the multipart file into the upload dir, keeping the
// extension so the loader can pick the right extraction path.
func (h *Handler) saveUpload(src io.Reader, filename string) (string, error) {
	name := fmt.Sprintf("%s%s", uuid.New().String(), strings.ToLower(filepath.Ext(filename)))
	path := filepath.Join(h.uploadDir, name)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: save upload: %v", common.ErrDocumentLoad, err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("%w: save upload: %v", common.ErrDocumentLoad, err)
	}
	return path, nil
}

// GetExtraction returns one job by id.
func (h *Handler) GetExtraction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: id must be a UUID", common.ErrInvalidInput))
		return
	}
	job, err := h.jobs.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toJobResponse(job))
}

// ListExtractions returns recent jobs, newest first. ?limit=N caps the page.
func (h *Handler) ListExtractions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, fmt.Errorf("%w: limit must be a non-negative integer", common.ErrInvalidInput))
			return
		}
		limit = n
	}
	jobs, err := h.jobs.List(r.Context(), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]jobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, toJobResponse(job))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"extractions": out})
}

type validationRequest struct {
	FieldDescription string          `json:"field_description"`
	ExtractedData    json.RawMessage `json:"extracted_data"`
}

// CreateValidation scores an already-extracted payload without touching the
// job store, for callers that ran extraction elsewhere.
func (h *Handler) CreateValidation(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req validationRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		h.writeError(w, fmt.Errorf("%w: invalid JSON body: %v", common.ErrInvalidInput, err))
		return
	}
	if len(req.ExtractedData) == 0 {
		h.writeError(w, fmt.Errorf("%w: extracted_data is required", common.ErrInvalidInput))
		return
	}
	data, err := extract.ParseExtractedData(req.ExtractedData)
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: extracted_data must be a JSON object: %v", common.ErrInvalidInput, err))
		return
	}
	if strings.TrimSpace(req.FieldDescription) == "" {
		req.FieldDescription = constants.DefaultFieldDescription
	}

	result, err := h.validator.ValidateExtractedData(r.Context(), req.FieldDescription, data)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// ExportExtractions streams recent jobs as an XLSX workbook.
func (h *Handler) ExportExtractions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, fmt.Errorf("%w: limit must be a non-negative integer", common.ErrInvalidInput))
			return
		}
		limit = n
	}
	xlsx, err := h.exporter.ExportJobsXLSX(r.Context(), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeXLSX(w, "extractions.xlsx", xlsx)
}

// ExportExtraction streams a single job as an XLSX workbook.
func (h *Handler) ExportExtraction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.writeError(w, fmt.Errorf("%w: id must be a UUID", common.ErrInvalidInput))
		return
	}
	xlsx, err := h.exporter.ExportJobXLSX(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeXLSX(w, fmt.Sprintf("extraction-%s.xlsx", id), xlsx)
}

// Healthz is a liveness probe.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("response encode failed", "error", err)
	}
}

func (h *Handler) writeXLSX(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("response write failed", "error", err)
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Upstream model or
// schema failures surface as 502 so callers can tell "your input" from
// "the model" apart.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrDocumentLoad):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrLLMRequest), errors.Is(err, common.ErrSchemaParse):
		status = http.StatusBadGateway
	}
	if status >= 500 {
		h.logger.Error("request failed", "status", status, "error", err)
	} else {
		h.logger.Warn("request rejected", "status", status, "error", err)
	}
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}
