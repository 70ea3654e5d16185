package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/flow1h/flow1h-api/internal/appointments"
	"github.com/flow1h/flow1h-api/internal/events"
	"github.com/go-chi/chi/v5"
)

type AppointmentStore interface {
	Create(ctx context.Context, d appointments.Draft) (*appointments.Appointment, error)
	List(ctx context.Context, businessID string, f appointments.Filter) ([]appointments.Appointment, error)
	UpdateStatus(ctx context.Context, id string, s appointments.Status) (*appointments.Appointment, error)
}

type AppointmentsHandler struct {
	Repo   AppointmentStore
	Events Emitter
}

type createAppointmentReq struct {
	BusinessID    string    `json:"business_id" validate:"required"`
	CustomerName  string    `json:"customer_name" validate:"required"`
	CustomerPhone string    `json:"customer_phone" validate:"required"`
	ServiceID     string    `json:"service_id" validate:"required"`
	EmployeeID    *string   `json:"employee_id"`
	Datetime      time.Time `json:"datetime" validate:"required"`
}

func (h *AppointmentsHandler) Register(r chi.Router) {
	r.Route("/appointments", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/by-business/{business_id}", h.listByBusiness)
		r.Patch("/{appointment_id}/status", h.updateStatus)
	})
}

func (h *AppointmentsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	a, err := h.Repo.Create(r.Context(), appointments.Draft{
		BusinessID:    req.BusinessID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		ServiceID:     req.ServiceID,
		EmployeeID:    req.EmployeeID,
		Datetime:      req.Datetime,
	})
	if err != nil {
		writeError(w, upstream("error creating appointment", err))
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AppointmentsHandler) listByBusiness(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := appointments.Filter{Status: appointments.Status(q.Get("status"))}
	if f.Status != "" && !f.Status.Valid() {
		writeError(w, badRequest("invalid status"))
		return
	}
	var err error
	if f.From, err = parseDateParam("from_date", q.Get("from_date")); err != nil {
		writeError(w, err)
		return
	}
	if f.To, err = parseDateParam("to_date", q.Get("to_date")); err != nil {
		writeError(w, err)
		return
	}

	out, err := h.Repo.List(r.Context(), chi.URLParam(r, "business_id"), f)
	if err != nil {
		writeError(w, upstream("error listing appointments", err))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *AppointmentsHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	status := appointments.Status(req.Status)
	if !status.Valid() {
		writeError(w, badRequest("invalid status"))
		return
	}
	a, err := h.Repo.UpdateStatus(r.Context(), chi.URLParam(r, "appointment_id"), status)
	if err != nil {
		writeError(w, upstream("error updating appointment", err))
		return
	}
	if a == nil {
		writeError(w, notFound("appointment not found"))
		return
	}

	emit(r.Context(), h.Events, events.AppointmentStatusChanged, a.ID, events.AppointmentStatusChangedPayload{
		AppointmentID: a.ID,
		BusinessID:    a.BusinessID,
		Status:        string(a.Status),
	})
	writeJSON(w, http.StatusOK, a)
}
