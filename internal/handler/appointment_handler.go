package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"healthrecord-api/internal/middleware"
	"healthrecord-api/internal/model"
	"healthrecord-api/internal/query"
)

func (h *Handler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	uid := middleware.OwnerID(r.Context())
	var req struct {
		Date        string `json:"date"`
		Time        string `json:"time"`
		Description string `json:"description"`
		Doctor      string `json:"doctor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	// no conflict detection: double booking is allowed
	a := &model.Appointment{
		OwnerID:     uid,
		Date:        req.Date,
		Time:        req.Time,
		Description: req.Description,
		Doctor:      req.Doctor,
	}
	if err := h.store.CreateAppointment(r.Context(), a); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// searchParams reads the shared ?q=&from=&to= filter query. Bounds must be
// well-formed dates when present.
func searchParams(r *http.Request) (query.Params, bool) {
	p := query.Params{
		Text: r.URL.Query().Get("q"),
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
	}
	if p.From != "" && !model.ValidDate(p.From) {
		return p, false
	}
	if p.To != "" && !model.ValidDate(p.To) {
		return p, false
	}
	return p, true
}

func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	uid := middleware.OwnerID(r.Context())
	p, ok := searchParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "from/to must be "+model.DateLayout)
		return
	}

	appts, err := h.store.ListAppointments(r.Context(), uid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	appts = query.Appointments(appts, p)
	writeJSON(w, http.StatusOK, map[string]interface{}{"appointments": appts, "count": len(appts)})
}

func (h *Handler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	uid := middleware.OwnerID(r.Context())
	a, err := h.store.GetAppointment(r.Context(), uid, mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	uid := middleware.OwnerID(r.Context())
	var upd model.AppointmentUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	a, err := h.store.UpdateAppointment(r.Context(), uid, mux.Vars(r)["id"], upd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *Handler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	uid := middleware.OwnerID(r.Context())
	if err := h.store.DeleteAppointment(r.Context(), uid, mux.Vars(r)["id"]); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
