package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/vtarasov/blog-service/internal/apperr"
)

const maxUploadSize = 10 << 20 // 10 MB

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Upload stores an image from a multipart form and returns its public URL
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, apperr.Validationf("file too large"))
			return
		}
		h.writeError(w, r, apperr.Validationf("no file uploaded"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.writeError(w, r, apperr.Validationf("no file uploaded"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExts[ext] {
		h.writeError(w, r, apperr.Validationf("unsupported file type"))
		return
	}

	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		h.writeError(w, r, fmt.Errorf("failed to create upload dir: %w", err))
		return
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(h.cfg.UploadDir, name))
	if err != nil {
		h.writeError(w, r, fmt.Errorf("failed to store file: %w", err))
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		h.writeError(w, r, fmt.Errorf("failed to store file: %w", err))
		return
	}

	h.log.Infof("Image uploaded: %s (%d bytes)", name, header.Size)
	h.writeJSON(w, http.StatusOK, map[string]string{"url": h.cfg.BaseURL + "/uploads/" + name})
}
