package api

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// CategoriesHandler handles the category reference list.
type CategoriesHandler struct {
	DB *sql.DB
}

type createCategoryRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// List handles GET /api/categories.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	cats, err := store.ListCategories(r.Context(), h.DB)
	if err != nil {
		writeError(w, r, err, "failed to list categories")
		return
	}
	if cats == nil {
		cats = []model.Category{}
	}
	jsonResponse(w, http.StatusOK, cats)
}

// Create handles POST /api/categories.
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		decodeError(w, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	cat, err := store.CreateCategory(r.Context(), h.DB, name, strings.TrimSpace(req.Icon))
	if store.IsUniqueViolation(err) {
		jsonError(w, http.StatusConflict, "category already exists")
		return
	}
	if err != nil {
		writeError(w, r, err, "failed to create category")
		return
	}
	jsonResponse(w, http.StatusCreated, cat)
}
