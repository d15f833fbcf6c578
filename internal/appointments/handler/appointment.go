package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"dentabook/internal/appointments/service"
	httputil "dentabook/pkg/http"
	"dentabook/pkg/logger"
	"dentabook/pkg/model"
)

type AppointmentHandler struct {
	service service.AppointmentService
	log     *logger.Logger
}

func NewAppointmentHandler(service service.AppointmentService, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
		log:     log,
	}
}

func (h *AppointmentHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AvailabilityRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	availability, err := h.service.CheckAvailability(r.Context(), &req)
	if err != nil {
		h.writeError(w, "CheckAvailability", err)
		return
	}

	if err := httputil.WriteSuccess(w, availability); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) AvailableSlots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	serviceName, err := httputil.RequiredQuery(r, "service")
	if err != nil {
		h.writeError(w, "AvailableSlots", err)
		return
	}
	date, err := httputil.RequiredQuery(r, "date")
	if err != nil {
		h.writeError(w, "AvailableSlots", err)
		return
	}

	slots, err := h.service.ListAvailableSlots(r.Context(), serviceName, date)
	if err != nil {
		h.writeError(w, "AvailableSlots", err)
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "AvailableSlots", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) Services(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	services := h.service.Services()
	if err := httputil.WriteList(w, services, len(services)); err != nil {
		h.log.Error("failed to write list response", "handler", "Services", "operation", "WriteList", "error", err)
	}
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.AppointmentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	result, err := h.service.Book(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *AppointmentHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter := model.AppointmentFilter{
		Date:  httputil.OptionalQuery(r, "date"),
		Phone: httputil.OptionalQuery(r, "phone"),
	}

	appointments, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WriteList(w, appointments, len(appointments)); err != nil {
		h.log.Error("failed to write list response", "handler", "GetAll", "operation", "WriteList", "error", err)
	}
}

func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	appointment, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, appointment); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var update model.AppointmentUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	result, err := h.service.Update(r.Context(), ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

// Cancel answers with the cancelled appointment rather than 204 so clients
// can show what was released.
func (h *AppointmentHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	result, err := h.service.Cancel(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/services", h.Services)
	router.POST("/api/v1/availability", h.CheckAvailability)
	router.GET("/api/v1/availability/slots", h.AvailableSlots)
	router.POST("/api/v1/appointments", h.Create)
	router.GET("/api/v1/appointments", h.GetAll)
	router.GET("/api/v1/appointments/:id", h.GetByID)
	router.PATCH("/api/v1/appointments/:id", h.Update)
	router.DELETE("/api/v1/appointments/:id", h.Cancel)
}
