package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/najdeno/internal/lifecycle"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// ClaimsHandler handles claim submission and administrator decisions.
type ClaimsHandler struct {
	DB        *sql.DB
	Lifecycle *lifecycle.Manager
}

type submitClaimRequest struct {
	ProofDescription string `json:"proof_description"`
	ProofImageRef    string `json:"proof_image_ref"`
}

type decideClaimRequest struct {
	Decision   model.ClaimStatus `json:"decision"`
	AdminNotes string            `json:"admin_notes"`
}

// Submit handles POST /api/items/{id}/claims.
func (h *ClaimsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req submitClaimRequest
	if err := decodeJSON(w, r, &req); err != nil {
		decodeError(w, err)
		return
	}

	claim, err := h.Lifecycle.SubmitClaim(r.Context(), GetClaims(r.Context()).Actor(), itemID, req.ProofDescription, req.ProofImageRef)
	if err != nil {
		writeError(w, r, err, "failed to submit claim")
		return
	}
	jsonResponse(w, http.StatusCreated, claim)
}

// Decide handles PUT /api/claims/{id}/decision.
func (h *ClaimsHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	var req decideClaimRequest
	if err := decodeJSON(w, r, &req); err != nil {
		decodeError(w, err)
		return
	}

	claim, err := h.Lifecycle.DecideClaim(r.Context(), GetClaims(r.Context()).Actor(), id, req.Decision, req.AdminNotes)
	if err != nil {
		writeError(w, r, err, "failed to decide claim")
		return
	}
	jsonResponse(w, http.StatusOK, claim)
}

// Get handles GET /api/claims/{id}. Only the claimant and administrators
// may read a claim.
func (h *ClaimsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	claim, err := store.GetClaim(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, err, "failed to get claim")
		return
	}
	actor := GetClaims(r.Context()).Actor()
	if claim == nil || (claim.ClaimantID != actor.UserID && !actor.IsAdmin()) {
		jsonError(w, http.StatusNotFound, "claim not found")
		return
	}
	jsonResponse(w, http.StatusOK, claim)
}

// Mine handles GET /api/claims/mine.
func (h *ClaimsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, store.ClaimFilter{ClaimantID: GetClaims(r.Context()).UserID})
}

// List handles GET /api/claims?status=.
func (h *ClaimsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := model.ClaimStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}
	h.list(w, r, store.ClaimFilter{Status: status})
}

// ListForItem handles GET /api/items/{id}/claims.
func (h *ClaimsHandler) ListForItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	h.list(w, r, store.ClaimFilter{ItemID: id})
}

func (h *ClaimsHandler) list(w http.ResponseWriter, r *http.Request, f store.ClaimFilter) {
	claims, err := store.ListClaims(r.Context(), h.DB, f)
	if err != nil {
		writeError(w, r, err, "failed to list claims")
		return
	}
	if claims == nil {
		claims = []model.Claim{}
	}
	jsonResponse(w, http.StatusOK, claims)
}
