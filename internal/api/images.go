package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/store"
)

// ImagesHandler stores item photos and claim proof images.
type ImagesHandler struct {
	DB *sql.DB
}

// Upload handles POST /api/images?profile=item|proof. The multipart field
// "image" holds the file; the response carries the ref to attach to an
// item or claim.
func (h *ImagesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	profile, ok := imaging.ProfileByName(r.URL.Query().Get("profile"))
	if !ok {
		jsonError(w, http.StatusBadRequest, "unknown image profile")
		return
	}

	// Leave headroom for the multipart envelope.
	r.Body = http.MaxBytesReader(w, r.Body, profile.MaxBytes+1<<20)
	if err := r.ParseMultipartForm(profile.MaxBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	result, err := imaging.Process(file, profile)
	if err != nil {
		writeError(w, r, err, "failed to process image")
		return
	}

	claims := GetClaims(r.Context())
	ref := uuid.NewString()
	if err := store.SaveImage(r.Context(), h.DB, ref, result.Data, result.MIME, claims.UserID); err != nil {
		writeError(w, r, err, "failed to save image")
		return
	}

	slog.Info("image uploaded", "ref", ref, "profile", profile.Name, "bytes", len(result.Data), "user", claims.Username)
	jsonResponse(w, http.StatusCreated, map[string]any{
		"ref":    ref,
		"width":  result.Width,
		"height": result.Height,
	})
}

// Get handles GET /api/images/{ref}.
func (h *ImagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	data, mime, err := store.GetImage(r.Context(), h.DB, r.PathValue("ref"))
	if err != nil {
		writeError(w, r, err, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "image not found")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}
