package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"healthrecord-api/internal/aggregate"
	"healthrecord-api/internal/middleware"
	"healthrecord-api/internal/store"
)

// Handler carries the HTTP surface. The clock is a field so tests can pin
// "now" for the dashboard summary.
type Handler struct {
	store  store.Store
	agg    *aggregate.Aggregator
	secret string
	now    func() time.Time
}

func New(st store.Store, agg *aggregate.Aggregator, secret string) *Handler {
	return &Handler{store: st, agg: agg, secret: secret, now: time.Now}
}

// Router builds the full route table. Auth endpoints sit behind the rate
// limiter; everything else under /v1 (bar /v1/health) requires a bearer
// token.
func (h *Handler) Router(log zerolog.Logger, rl *middleware.RateLimiter) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Recover, middleware.RequestLogger(log))

	r.HandleFunc("/v1/health", h.Health).Methods(http.MethodGet)

	authed := middleware.Auth(h.secret)

	ar := r.PathPrefix("/v1/auth").Subrouter()
	ar.Use(middleware.RateLimit(rl))
	ar.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	ar.HandleFunc("/login", h.Login).Methods(http.MethodPost)
	ar.HandleFunc("/refresh", h.Refresh).Methods(http.MethodPost)
	ar.Handle("/logout", authed(http.HandlerFunc(h.Logout))).Methods(http.MethodPost)

	api := r.PathPrefix("/v1").Subrouter()
	api.Use(authed)

	api.HandleFunc("/profile", h.GetProfile).Methods(http.MethodGet)
	api.HandleFunc("/profile", h.UpdateProfile).Methods(http.MethodPatch)
	api.HandleFunc("/profile", h.DisableProfile).Methods(http.MethodDelete)

	api.HandleFunc("/medications", h.CreateMedication).Methods(http.MethodPost)
	api.HandleFunc("/medications", h.ListMedications).Methods(http.MethodGet)
	api.HandleFunc("/medications/{id}", h.GetMedication).Methods(http.MethodGet)
	api.HandleFunc("/medications/{id}", h.UpdateMedication).Methods(http.MethodPatch)
	api.HandleFunc("/medications/{id}", h.DeleteMedication).Methods(http.MethodDelete)

	api.HandleFunc("/appointments", h.CreateAppointment).Methods(http.MethodPost)
	api.HandleFunc("/appointments", h.ListAppointments).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{id}", h.GetAppointment).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{id}", h.UpdateAppointment).Methods(http.MethodPatch)
	api.HandleFunc("/appointments/{id}", h.DeleteAppointment).Methods(http.MethodDelete)

	// history events are immutable: no PATCH route exists
	api.HandleFunc("/history", h.CreateHistoryEvent).Methods(http.MethodPost)
	api.HandleFunc("/history", h.ListHistoryEvents).Methods(http.MethodGet)
	api.HandleFunc("/history/{id}", h.GetHistoryEvent).Methods(http.MethodGet)
	api.HandleFunc("/history/{id}", h.DeleteHistoryEvent).Methods(http.MethodDelete)

	api.HandleFunc("/dashboard", h.Dashboard).Methods(http.MethodGet)

	return r
}
