package handler

import (
	"encoding/json"
	"net/http"

	"healthrecord-api/internal/middleware"
	"healthrecord-api/internal/model"
)

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	uid := middleware.OwnerID(r.Context())
	u, err := h.store.GetUser(r.Context(), uid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid := middleware.OwnerID(r.Context())
	var upd model.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	u, err := h.store.UpdateUser(r.Context(), uid, upd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// DisableProfile soft-disables the account and revokes its sessions. The
// user row is kept: records must retain a resolvable owner reference.
func (h *Handler) DisableProfile(w http.ResponseWriter, r *http.Request) {
	uid := middleware.OwnerID(r.Context())
	if err := h.store.DisableUser(r.Context(), uid); err != nil {
		writeDomainError(w, err)
		return
	}
	_ = h.store.RevokeAllRefreshTokens(r.Context(), uid)
	w.WriteHeader(http.StatusNoContent)
}
