package api

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/erazemk/najdeno/internal/lifecycle"
	"github.com/erazemk/najdeno/internal/matching"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// ItemsHandler handles lost and found reports.
type ItemsHandler struct {
	DB        *sql.DB
	Matcher   *matching.Matcher
	Lifecycle *lifecycle.Manager
}

type createItemRequest struct {
	Kind        model.ItemKind `json:"kind"`
	CategoryID  int64          `json:"category_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Location    string         `json:"location"`
	// EventAt is RFC 3339 or a plain YYYY-MM-DD date.
	EventAt  string `json:"event_at"`
	ImageRef string `json:"image_ref"`
}

func parseEventAt(s string) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, true
		}
	}
	return nil, false
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.ItemFilter{
		Kind:   model.ItemKind(q.Get("kind")),
		Status: model.ItemStatus(q.Get("status")),
		Search: q.Get("q"),
	}
	if f.Kind != "" && !f.Kind.Valid() {
		jsonError(w, http.StatusBadRequest, "invalid kind")
		return
	}
	if f.Status != "" && !f.Status.Valid() {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}
	if c := q.Get("category_id"); c != "" {
		id, err := strconv.ParseInt(c, 10, 64)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		f.CategoryID = id
	}
	if q.Get("mine") == "true" {
		f.OwnerID = GetClaims(r.Context()).UserID
	}

	items, err := store.ListItems(r.Context(), h.DB, f)
	if err != nil {
		writeError(w, r, err, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items. The caller becomes the reporter.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		decodeError(w, err)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Location = strings.TrimSpace(req.Location)
	switch {
	case !req.Kind.Valid():
		jsonError(w, http.StatusBadRequest, "kind must be lost or found")
		return
	case req.Title == "":
		jsonError(w, http.StatusBadRequest, "title required")
		return
	case utf8.RuneCountInString(req.Title) > model.MaxTitleLen:
		jsonError(w, http.StatusBadRequest, fmt.Sprintf("title must be at most %d characters", model.MaxTitleLen))
		return
	case utf8.RuneCountInString(req.Location) > model.MaxLocationLen:
		jsonError(w, http.StatusBadRequest, fmt.Sprintf("location must be at most %d characters", model.MaxLocationLen))
		return
	case utf8.RuneCountInString(req.Description) > model.MaxDescriptionLen:
		jsonError(w, http.StatusBadRequest, fmt.Sprintf("description must be at most %d characters", model.MaxDescriptionLen))
		return
	case req.CategoryID <= 0:
		jsonError(w, http.StatusBadRequest, "category_id required")
		return
	}
	eventAt, ok := parseEventAt(req.EventAt)
	if !ok {
		jsonError(w, http.StatusBadRequest, "event_at must be RFC 3339 or YYYY-MM-DD")
		return
	}

	ctx := r.Context()
	cat, err := store.GetCategory(ctx, h.DB, req.CategoryID)
	if err != nil {
		writeError(w, r, err, "failed to get category")
		return
	}
	if cat == nil {
		jsonError(w, http.StatusBadRequest, "unknown category")
		return
	}
	if req.ImageRef != "" {
		exists, err := store.ImageExists(ctx, h.DB, req.ImageRef)
		if err != nil {
			writeError(w, r, err, "failed to check image")
			return
		}
		if !exists {
			jsonError(w, http.StatusBadRequest, "unknown image_ref")
			return
		}
	}

	item, err := store.CreateItem(ctx, h.DB, &model.Item{
		Kind:        req.Kind,
		CategoryID:  req.CategoryID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		EventAt:     eventAt,
		OwnerID:     GetClaims(ctx).UserID,
		ImageRef:    req.ImageRef,
	})
	if err != nil {
		writeError(w, r, err, "failed to create item")
		return
	}

	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}. Each read counts as a view.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := store.IncrementViews(r.Context(), h.DB, id); err != nil {
		writeError(w, r, err, "failed to get item")
		return
	}
	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Matches handles GET /api/items/{id}/matches.
func (h *ItemsHandler) Matches(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	matches, err := h.Matcher.FindMatches(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "failed to find matches")
		return
	}
	jsonResponse(w, http.StatusOK, matches)
}

// History handles GET /api/items/{id}/history.
func (h *ItemsHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	history, err := store.GetItemHistory(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err, "failed to get item history")
		return
	}
	if history == nil {
		history = []model.ItemEvent{}
	}
	jsonResponse(w, http.StatusOK, history)
}

// Resolve handles PUT /api/items/{id}/resolve.
func (h *ItemsHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.Lifecycle.ResolveItem(r.Context(), GetClaims(r.Context()).Actor(), id)
	if err != nil {
		writeError(w, r, err, "failed to resolve item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Archive handles PUT /api/items/{id}/archive.
func (h *ItemsHandler) Archive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.Lifecycle.ArchiveItem(r.Context(), GetClaims(r.Context()).Actor(), id)
	if err != nil {
		writeError(w, r, err, "failed to archive item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}
