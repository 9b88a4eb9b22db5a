package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"healthrecord-api/internal/middleware"
	"healthrecord-api/internal/model"
	"healthrecord-api/internal/query"
)

// CreateHistoryEvent records a medical event. Events have no edit path
// afterwards.
func (h *Handler) CreateHistoryEvent(w http.ResponseWriter, r *http.Request) {
	uid := middleware.OwnerID(r.Context())
	var req struct {
		Date        string `json:"date"`
		Description string `json:"description"`
		Doctor      string `json:"doctor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	ev := &model.HistoryEvent{
		OwnerID:     uid,
		Date:        req.Date,
		Description: req.Description,
		Doctor:      req.Doctor,
	}
	if err := h.store.CreateHistoryEvent(r.Context(), ev); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

func (h *Handler) ListHistoryEvents(w http.ResponseWriter, r *http.Request) {
	uid := middleware.OwnerID(r.Context())
	p, ok := searchParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "from/to must be "+model.DateLayout)
		return
	}

	events, err := h.store.ListHistoryEvents(r.Context(), uid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	events = query.HistoryEvents(events, p)
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events, "count": len(events)})
}

func (h *Handler) GetHistoryEvent(w http.ResponseWriter, r *http.Request) {
	uid := middleware.OwnerID(r.Context())
	ev, err := h.store.GetHistoryEvent(r.Context(), uid, mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (h *Handler) DeleteHistoryEvent(w http.ResponseWriter, r *http.Request) {
	uid := middleware.OwnerID(r.Context())
	if err := h.store.DeleteHistoryEvent(r.Context(), uid, mux.Vars(r)["id"]); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
