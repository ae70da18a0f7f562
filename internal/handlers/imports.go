package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"client-feedback-admin/internal/config"
	"client-feedback-admin/internal/logger"
	"client-feedback-admin/internal/middleware"
	"client-feedback-admin/internal/services"
)

const defaultMaxUploadMB = 10

// ImportHandler handles spreadsheet client imports
type ImportHandler struct {
	logger    *logger.Logger
	config    *config.Config
	importSvc services.ImportService
}

// NewImportHandler creates a new import handler
func NewImportHandler(logger *logger.Logger, config *config.Config, importSvc services.ImportService) *ImportHandler {
	return &ImportHandler{
		logger:    logger,
		config:    config,
		importSvc: importSvc,
	}
}

// PreviewResponse is a staged import with its bucket sizes
type PreviewResponse struct {
	*services.ImportSession
	Counts services.ImportCounts `json:"counts"`
}

func newPreviewResponse(session *services.ImportSession) PreviewResponse {
	return PreviewResponse{ImportSession: session, Counts: session.Counts()}
}

// RegisterRoutes registers import routes on an authenticated router
func (h *ImportHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/imports", h.UploadImport).Methods("POST")
	// registered before /imports/{importID}
	router.HandleFunc("/imports/runs", h.ListRuns).Methods("GET")
	router.HandleFunc("/imports/{importID}", h.PreviewImport).Methods("GET")
	router.HandleFunc("/imports/{importID}/confirm", h.ConfirmImport).Methods("POST")
	router.HandleFunc("/imports/{importID}/cancel", h.CancelImport).Methods("POST")
}

// UploadImport stages an uploaded CSV or XLSX file and returns its preview
func (h *ImportHandler) UploadImport(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetAdminFromContext(r.Context())
	if admin == nil {
		writeErrorResponse(h.logger, w, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes())
	if err := r.ParseMultipartForm(h.maxUploadBytes()); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			writeErrorResponse(h.logger, w, http.StatusRequestEntityTooLarge, "Upload too large", err)
			return
		}
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "A file is required", err)
		return
	}
	defer file.Close()

	opts, err := h.importOptions(r)
	if err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid import options", err)
		return
	}

	path, err := h.saveUpload(file, header)
	if err != nil {
		writeErrorResponse(h.logger, w, http.StatusInternalServerError, "Failed to store upload", err)
		return
	}

	session, err := h.importSvc.Stage(r.Context(), admin.ID, services.Upload{
		Path:     path,
		FileName: filepath.Base(header.Filename),
	}, opts)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	writeJSONResponse(w, http.StatusCreated, newPreviewResponse(session))
}

// PreviewImport returns a staged import
func (h *ImportHandler) PreviewImport(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetAdminFromContext(r.Context())
	if admin == nil {
		writeErrorResponse(h.logger, w, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	session, err := h.importSvc.Preview(r.Context(), admin.ID, mux.Vars(r)["importID"])
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, newPreviewResponse(session))
}

// ConfirmImport applies a staged import
func (h *ImportHandler) ConfirmImport(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetAdminFromContext(r.Context())
	if admin == nil {
		writeErrorResponse(h.logger, w, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	summary, err := h.importSvc.Confirm(r.Context(), admin.ID, mux.Vars(r)["importID"])
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, summary)
}

// CancelImport discards a staged import
func (h *ImportHandler) CancelImport(w http.ResponseWriter, r *http.Request) {
	admin := middleware.GetAdminFromContext(r.Context())
	if admin == nil {
		writeErrorResponse(h.logger, w, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	if err := h.importSvc.Cancel(r.Context(), admin.ID, mux.Vars(r)["importID"]); err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListRuns returns the most recent confirmed imports
func (h *ImportHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = parsed
	}

	runs, err := h.importSvc.RecentRuns(r.Context(), limit)
	if err != nil {
		writeServiceError(h.logger, w, err)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"total": len(runs),
	})
}

func (h *ImportHandler) maxUploadBytes() int64 {
	mb := h.config.Import.MaxUploadMB
	if mb <= 0 {
		mb = defaultMaxUploadMB
	}
	return int64(mb) << 20
}

// importOptions reads the operator's choices, falling back to configured defaults
func (h *ImportHandler) importOptions(r *http.Request) (services.ImportOptions, error) {
	opts := services.ImportOptions{
		ReferenceField: strings.TrimSpace(r.FormValue("reference_field")),
	}

	var err error
	if opts.UpdateExisting, err = formBool(r, "update_existing", h.config.Import.UpdateExisting); err != nil {
		return opts, err
	}
	if opts.RemoveNotInFile, err = formBool(r, "remove_not_in_file", h.config.Import.RemoveNotInFile); err != nil {
		return opts, err
	}
	return opts, nil
}

func formBool(r *http.Request, key string, fallback bool) (bool, error) {
	raw := strings.ToLower(strings.TrimSpace(r.FormValue(key)))
	switch raw {
	case "":
		return fallback, nil
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}

	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %q is not a boolean", key, raw)
	}
	return value, nil
}

// saveUpload copies the upload to a temp file; the import service removes it
func (h *ImportHandler) saveUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	dir := h.config.Import.UploadDir
	if dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return "", fmt.Errorf("failed to create upload directory: %w", err)
		}
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	tmp, err := os.CreateTemp(dir, "import-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write upload file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close upload file: %w", err)
	}

	return tmp.Name(), nil
}
