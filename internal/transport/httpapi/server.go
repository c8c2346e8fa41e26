// Package httpapi is the HTTP surface over the booking engine. Handlers
// translate the typed service results into JSON and map the error taxonomy
// onto status codes: validation 422, conflict 409, not found 404, store 500.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"slotd/backend/internal/domain"
	"slotd/backend/internal/observability/metrics"
	"slotd/backend/internal/service/booking"
	"slotd/backend/internal/store"
)

type Server struct {
	svc     *booking.Service
	log     *slog.Logger
	metrics *metrics.BookingMetrics
}

func NewServer(svc *booking.Service, log *slog.Logger, m *metrics.BookingMetrics) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		svc:     svc,
		log:     log.With(slog.String("component", "httpapi")),
		metrics: m,
	}
}

// Router assembles the route tree. metricsHandler is mounted at /metrics
// when non-nil so the prometheus dependency stays in main.
func (s *Server) Router(metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.log))

	r.Get("/health", s.handleHealth)
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/availability", s.handleCheckAvailability)
		r.Get("/slots", s.handleListSlots)
		r.Route("/appointments", func(r chi.Router) {
			r.Get("/", s.handleListByDate)
			r.Post("/", s.handleCreate)
			r.Patch("/{id}", s.handleUpdate)
			r.Delete("/{id}", s.handleCancel)
		})
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type availabilityResponse struct {
	Date         string   `json:"date"`
	Time         string   `json:"time"`
	Available    bool     `json:"available"`
	Alternatives []string `json:"alternatives,omitempty"`
}

func (s *Server) handleCheckAvailability(w http.ResponseWriter, r *http.Request) {
	defer s.timeOp("check_availability")()

	av, err := s.svc.CheckAvailability(r.Context(), r.URL.Query().Get("date"), r.URL.Query().Get("time"))
	if err != nil {
		s.writeError(w, "check availability", err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{
		Date:         av.Date.String(),
		Time:         av.Time.String(),
		Available:    av.Available,
		Alternatives: canonical(av.Alternatives),
	})
}

type slotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

func (s *Server) handleListSlots(w http.ResponseWriter, r *http.Request) {
	defer s.timeOp("list_available_slots")()

	date := r.URL.Query().Get("date")
	slots, err := s.svc.ListAvailable(r.Context(), date)
	if err != nil {
		s.writeError(w, "list available slots", err)
		return
	}
	labels := make([]string, 0, len(slots))
	for _, t := range slots {
		labels = append(labels, t.Display())
	}
	writeJSON(w, http.StatusOK, slotsResponse{Date: date, Slots: labels})
}

type createRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	AppointmentType string `json:"appointment_type"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Notes           string `json:"notes"`
}

type appointmentResponse struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	AppointmentType string `json:"appointment_type"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
	Notes           string `json:"notes,omitempty"`
}

func toAppointmentResponse(a domain.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:              a.ID,
		Name:            a.Name,
		Email:           a.Email,
		AppointmentType: string(a.AppointmentType),
		Date:            a.Date.String(),
		Time:            a.Time.String(),
		Status:          string(a.Status),
		CreatedAt:       a.CreatedAt.UTC().Format(time.RFC3339),
		Notes:           a.Notes,
	}
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	defer s.timeOp("create_appointment")()

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Request body must be valid JSON."})
		return
	}

	appt, err := s.svc.Create(r.Context(), booking.CreateInput{
		Name:            req.Name,
		Email:           req.Email,
		AppointmentType: req.AppointmentType,
		Date:            req.Date,
		Time:            req.Time,
		Notes:           req.Notes,
	})
	if err != nil {
		s.writeError(w, "create appointment", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
}

type updateRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	AppointmentType *string `json:"appointment_type"`
	Date            *string `json:"date"`
	Time            *string `json:"time"`
	Status          *string `json:"status"`
	Notes           *string `json:"notes"`
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	defer s.timeOp("update_appointment")()

	id, ok := s.appointmentID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Request body must be valid JSON."})
		return
	}

	appt, err := s.svc.Update(r.Context(), id, booking.UpdateInput{
		Name:            req.Name,
		Email:           req.Email,
		AppointmentType: req.AppointmentType,
		Date:            req.Date,
		Time:            req.Time,
		Status:          req.Status,
		Notes:           req.Notes,
	})
	if err != nil {
		s.writeError(w, "update appointment", err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	defer s.timeOp("cancel_appointment")()

	id, ok := s.appointmentID(w, r)
	if !ok {
		return
	}
	if err := s.svc.Cancel(r.Context(), id); err != nil {
		s.writeError(w, "cancel appointment", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Appointment cancelled successfully."})
}

type appointmentsResponse struct {
	Date         string                `json:"date"`
	Appointments []appointmentResponse `json:"appointments"`
}

func (s *Server) handleListByDate(w http.ResponseWriter, r *http.Request) {
	defer s.timeOp("list_appointments")()

	date := r.URL.Query().Get("date")
	appts, err := s.svc.ListByDate(r.Context(), date)
	if err != nil {
		s.writeError(w, "list appointments", err)
		return
	}
	out := make([]appointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointmentResponse(a))
	}
	writeJSON(w, http.StatusOK, appointmentsResponse{Date: date, Appointments: out})
}

type errorResponse struct {
	Error        string   `json:"error"`
	Alternatives []string `json:"alternatives,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, op string, err error) {
	var conflict *booking.ConflictError
	switch {
	case errors.Is(err, booking.ErrNoFields):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "No valid fields to update."})
	case booking.IsValidation(err):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, errorResponse{
			Error:        "The requested slot is not available.",
			Alternatives: canonical(conflict.Alternatives),
		})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Appointment not found."})
	default:
		s.log.Error(op+" failed", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal error. Please try again."})
	}
}

func (s *Server) appointmentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "Appointment id must be a positive integer."})
		return 0, false
	}
	return id, true
}

func (s *Server) timeOp(op string) func() {
	start := time.Now()
	return func() {
		s.metrics.ObserveOperation(op, time.Since(start).Seconds())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func canonical(slots []domain.TimeOfDay) []string {
	if len(slots) == 0 {
		return nil
	}
	out := make([]string, 0, len(slots))
	for _, t := range slots {
		out = append(out, t.String())
	}
	return out
}
