package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/msomdec/portfolio-api/internal/domain"
	"github.com/msomdec/portfolio-api/internal/service"
)

const (
	// Room for the other form fields and multipart framing on top of the image itself.
	multipartOverhead = 1 << 20
	// Parts larger than this are staged to temporary files by ParseMultipartForm.
	multipartMemory = 1 << 20
)

// UploadHandler handles image upload, listing, and deletion.
type UploadHandler struct {
	uploads *service.UploadService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// HandleCreate processes a multipart image upload.
// POST /uploads  (fields: file, category, title)
func (h *UploadHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, domain.MaxUploadSize+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, "Image exceeds 8MB limit", nil)
			return
		}
		writeError(w, http.StatusBadRequest, "Image file is required", err)
		return
	}
	// Remove anything the form parser staged to disk, whatever the outcome.
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			slog.Warn("remove staged multipart files", "error", err)
		}
	}()

	in := service.UploadInput{
		Category: r.PostFormValue("category"),
		Title:    strings.TrimSpace(r.PostFormValue("title")),
		BaseURL:  requestBaseURL(r),
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		// Left empty; the service reports the missing file.
	case err != nil:
		writeError(w, http.StatusBadRequest, "Invalid file upload", err)
		return
	default:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			slog.Error("read upload", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to read upload", err)
			return
		}
		in.Data = data
		in.OriginalName = header.Filename
		in.MimeType = header.Header.Get("Content-Type")
	}

	upload, err := h.uploads.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, err, "Failed to upload image", "Upload not found")
		return
	}

	writeJSON(w, http.StatusCreated, toUploadCreatedDTO(upload))
}

// HandleList returns uploads newest first.
// GET /uploads?category=logo
func (h *UploadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.uploads.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeServiceError(w, err, "Failed to fetch uploads", "Upload not found")
		return
	}
	writeJSON(w, http.StatusOK, toUploadDTOs(uploads))
}

// HandleDelete removes an upload record and its artifact.
// DELETE /uploads/{id}
func (h *UploadHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.uploads.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err, "Failed to delete upload", "Upload not found")
		return
	}
	writeJSON(w, http.StatusOK, SuccessDTO{Success: true, Message: "Upload deleted successfully"})
}

// requestBaseURL reconstructs the scheme and host the client used,
// honouring the usual reverse-proxy headers.
func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		switch p := strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0])); p {
		case "http", "https":
			scheme = p
		}
	}

	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		if h := strings.TrimSpace(strings.Split(fwd, ",")[0]); validHost(h) {
			host = h
		}
	}
	return scheme + "://" + host
}

// validHost accepts only a bare host or host:port.
func validHost(h string) bool {
	if h == "" {
		return false
	}
	return !strings.ContainsAny(h, "/\\@?# \t")
}
