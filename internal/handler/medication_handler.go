package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"healthrecord-api/internal/middleware"
	"healthrecord-api/internal/model"
)

func (h *Handler) CreateMedication(w http.ResponseWriter, r *http.Request) {
	uid := middleware.OwnerID(r.Context())
	var req struct {
		Name      string `json:"name"`
		Dosage    string `json:"dosage"`
		Frequency string `json:"frequency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	m := &model.Medication{
		OwnerID:   uid,
		Name:      req.Name,
		Dosage:    req.Dosage,
		Frequency: req.Frequency,
	}
	if err := h.store.CreateMedication(r.Context(), m); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handler) ListMedications(w http.ResponseWriter, r *http.Request) {
	uid := middleware.OwnerID(r.Context())
	meds, err := h.store.ListMedications(r.Context(), uid)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"medications": meds, "count": len(meds)})
}

func (h *Handler) GetMedication(w http.ResponseWriter, r *http.Request) {
	uid := middleware.OwnerID(r.Context())
	m, err := h.store.GetMedication(r.Context(), uid, mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) UpdateMedication(w http.ResponseWriter, r *http.Request) {
	uid := middleware.OwnerID(r.Context())
	var upd model.MedicationUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	m, err := h.store.UpdateMedication(r.Context(), uid, mux.Vars(r)["id"], upd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) DeleteMedication(w http.ResponseWriter, r *http.Request) {
	uid := middleware.OwnerID(r.Context())
	if err := h.store.DeleteMedication(r.Context(), uid, mux.Vars(r)["id"]); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
