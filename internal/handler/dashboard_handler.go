package handler

import (
	"net/http"

	"healthrecord-api/internal/middleware"
)

// Dashboard returns the landing-view summary counts for the caller.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	uid := middleware.OwnerID(r.Context())
	sum, err := h.agg.Summary(r.Context(), uid, h.now())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
