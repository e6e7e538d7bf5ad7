package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/labelaudit/internal/extract"
)

// HandleExtract reads the text of an uploaded document.
func (h *Handler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	if h.extractor == nil {
		h.writeError(w, "Text extraction is not enabled", http.StatusNotImplemented)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBody+1024*1024)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !extract.Supported(header.Filename) {
		h.writeError(w, "Unsupported document type "+ext, http.StatusUnsupportedMediaType)
		return
	}

	fileData, err := io.ReadAll(io.LimitReader(file, maxBody))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if len(fileData) >= maxBody {
		h.writeError(w, "File too large (max 10MB)", http.StatusBadRequest)
		return
	}

	// extraction dispatches on the extension, so keep it on the temp file
	tmp, err := os.CreateTemp("", "labelaudit-*"+ext)
	if err != nil {
		h.writeError(w, "Failed to stage upload: "+err.Error(), http.StatusInternalServerError)
		return
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(fileData); err != nil {
		tmp.Close()
		h.writeError(w, "Failed to stage upload: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := tmp.Close(); err != nil {
		h.writeError(w, "Failed to stage upload: "+err.Error(), http.StatusInternalServerError)
		return
	}

	res, err := h.extractor.Extract(r.Context(), tmp.Name())
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, extract.ErrUnsupportedFormat) || errors.Is(err, extract.ErrNoText) {
			code = http.StatusUnprocessableEntity
		}
		h.writeError(w, "Extraction failed: "+err.Error(), code)
		return
	}
	res.Path = header.Filename
	slog.Info("Document extracted", "file", header.Filename, "method", res.Method, "chars", len(res.Text))

	h.writeJSON(w, http.StatusOK, res)
}
