package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/erazemk/najdeno/internal/store"
)

// NotificationsHandler exposes a user's notification inbox.
type NotificationsHandler struct {
	DB *sql.DB
}

type notificationResponse struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	ReadAt    *time.Time      `json:"read_at,omitempty"`
}

// List handles GET /api/notifications[?unread=true].
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	list, err := store.ListNotifications(r.Context(), h.DB, claims.UserID, r.URL.Query().Get("unread") == "true")
	if err != nil {
		writeError(w, r, err, "failed to list notifications")
		return
	}

	out := make([]notificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, notificationResponse{
			ID:        n.ID,
			Kind:      n.Kind,
			Payload:   json.RawMessage(n.Payload),
			CreatedAt: n.CreatedAt,
			ReadAt:    n.ReadAt,
		})
	}
	jsonResponse(w, http.StatusOK, out)
}

// MarkRead handles PUT /api/notifications/{id}/read.
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	ok, err := store.MarkNotificationRead(r.Context(), h.DB, r.PathValue("id"), claims.UserID)
	if err != nil {
		writeError(w, r, err, "failed to mark notification read")
		return
	}
	if !ok {
		jsonError(w, http.StatusNotFound, "notification not found")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "marked read"})
}
