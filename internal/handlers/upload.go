package handlers

import (
	"net/http"
	"strings"

	"github.com/kalimapp/kalima-backend/internal/services"
)

const maxAvatarUploadSize = 5 << 20 // 5 MB

// Uploads holds the handlers backed by Cloudinary. Service is nil when the
// Cloudinary credentials are not configured.
type Uploads struct {
	Service *services.CloudinaryService
}

// UploadAvatar accepts a multipart image, stores it in Cloudinary, and
// records the delivered URL on the user row.
func (h *Uploads) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if h.Service == nil {
		writeError(w, http.StatusServiceUnavailable, "Uploads are not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarUploadSize)
	if err := r.ParseMultipartForm(maxAvatarUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "File too large or malformed upload")
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing avatar file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, http.StatusBadRequest, "Avatar must be an image")
		return
	}

	url, err := h.Service.UploadFile(r.Context(), file, "kalima/avatars")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	if err := services.SetUserAvatar(userID, url); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save avatar")
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Message: "Avatar updated",
		Data:    map[string]string{"avatar_url": url},
	})
}
