// backend/src/handlers/upload_handler.go
package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/username/tradejournal/src/logger"
	"github.com/username/tradejournal/src/security/validation"
	"github.com/username/tradejournal/src/services"
	"github.com/username/tradejournal/src/utils"
)

const multipartOverhead = 1 << 20

type UploadHandler struct {
	uploadService services.UploadService
	maxFileSize   int64
	maxFiles      int
}

func NewUploadHandler(service services.UploadService, maxFileSize int64, maxFiles int) *UploadHandler {
	return &UploadHandler{
		uploadService: service,
		maxFileSize:   maxFileSize,
		maxFiles:      maxFiles,
	}
}

// HandleUpload parses the uploaded statements and stores their trades.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}
	log := logger.FromContext(r.Context())

	files, source, cleanup, ok := h.readUploadFiles(w, r)
	if !ok {
		return
	}
	defer cleanup()

	log.Info("Processing upload request", "files", len(files), "source", source)
	results, err := h.uploadService.ProcessUpload(r.Context(), userID, source, files)
	if err != nil {
		h.sendUploadError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"results": results})
}

// HandlePreview parses the uploaded statements without storing anything.
func (h *UploadHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	if _, ok := GetUserIDFromContext(r.Context()); !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	files, source, cleanup, ok := h.readUploadFiles(w, r)
	if !ok {
		return
	}
	defer cleanup()

	previews, err := h.uploadService.PreviewUpload(r.Context(), source, files)
	if err != nil {
		h.sendUploadError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"results": previews})
}

func (h *UploadHandler) HandleGetUploads(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}
	uploads, err := h.uploadService.GetUploads(userID)
	if err != nil {
		logger.FromContext(r.Context()).Error("Error retrieving upload history", "error", err)
		utils.SendJSONError(w, "failed to retrieve upload history", http.StatusInternalServerError)
		return
	}
	utils.WriteJSON(w, http.StatusOK, uploads)
}

// readUploadFiles validates every "file" part of a multipart request. On failure it has
// already written the error response and reports false.
func (h *UploadHandler) readUploadFiles(w http.ResponseWriter, r *http.Request) ([]services.UploadFile, string, func(), bool) {
	log := logger.FromContext(r.Context())
	noop := func() {}
	maxMB := h.maxFileSize / (1024 * 1024)

	maxFiles := int64(h.maxFiles)
	if maxFiles <= 0 {
		maxFiles = 1
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize*maxFiles+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		log.Warn("Failed to parse multipart form or request too large", "error", err, "limit", h.maxFileSize)
		utils.SendJSONError(w, fmt.Sprintf("failed to read upload or file too large (max %d MB)", maxMB), http.StatusBadRequest)
		return nil, "", noop, false
	}

	source := r.FormValue("broker")
	if source == "" {
		source = r.FormValue("source")
	}

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		utils.SendJSONError(w, "no files uploaded, use the 'file' field", http.StatusBadRequest)
		return nil, "", noop, false
	}
	if h.maxFiles > 0 && len(headers) > h.maxFiles {
		utils.SendJSONError(w, fmt.Sprintf("too many files, max %d per upload", h.maxFiles), http.StatusBadRequest)
		return nil, "", noop, false
	}

	opened := make([]multipart.File, 0, len(headers))
	cleanup := func() {
		for _, f := range opened {
			f.Close()
		}
		r.MultipartForm.RemoveAll()
	}

	files := make([]services.UploadFile, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > h.maxFileSize {
			cleanup()
			utils.SendJSONError(w, fmt.Sprintf("%s: file too large, max %d MB", fh.Filename, maxMB), http.StatusBadRequest)
			return nil, "", noop, false
		}

		clientContentType := fh.Header.Get("Content-Type")
		if err := validation.ValidateClientContentType(clientContentType, fh.Filename); err != nil {
			cleanup()
			log.Warn("Invalid client-declared file type", "filename", fh.Filename, "contentType", clientContentType, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("%s: %v", fh.Filename, err), http.StatusBadRequest)
			return nil, "", noop, false
		}

		file, err := fh.Open()
		if err != nil {
			cleanup()
			log.Error("Failed to open uploaded file", "filename", fh.Filename, "error", err)
			utils.SendJSONError(w, "failed to read uploaded file", http.StatusBadRequest)
			return nil, "", noop, false
		}
		opened = append(opened, file)

		detected, err := validation.ValidateFileContentByMagicBytes(file)
		if err != nil {
			cleanup()
			log.Warn("Server-side file content validation failed", "filename", fh.Filename, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("%s: %v", fh.Filename, err), http.StatusBadRequest)
			return nil, "", noop, false
		}
		log.Debug("File content validated", "filename", fh.Filename, "clientType", clientContentType, "detectedType", detected)

		files = append(files, services.UploadFile{
			Filename: validation.SanitizeText(fh.Filename),
			Size:     fh.Size,
			Reader:   file,
		})
	}
	return files, source, cleanup, true
}

func (h *UploadHandler) sendUploadError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNoFiles), errors.Is(err, services.ErrTooManyFiles), errors.Is(err, services.ErrParsingFailed):
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		logger.FromContext(r.Context()).Error("Upload processing failed", "error", err)
		utils.SendJSONError(w, "failed to process upload", http.StatusInternalServerError)
	}
}
