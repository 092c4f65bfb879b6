package handler

import (
	"net/http"
	"parkbook/internal/access"
	"parkbook/internal/auth"
	"parkbook/internal/events/repository"
	"parkbook/internal/events/service"
	httputil "parkbook/pkg/http"
	"parkbook/pkg/logger"
	"parkbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type EventHandler struct {
	events   service.EventService
	bookings service.EventBookingService
	log      *logger.Logger
}

func NewEventHandler(events service.EventService, bookings service.EventBookingService, log *logger.Logger) *EventHandler {
	return &EventHandler{
		events:   events,
		bookings: bookings,
		log:      log,
	}
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, _ := access.FromContext(r.Context())

	var event model.Event
	if err := httputil.DecodeJSON(r, &event); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := h.events.Create(r.Context(), caller, &event); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, event); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *EventHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	filter := repository.Filter{Title: r.URL.Query().Get("title")}
	priceFrom, err := httputil.QueryInt64(r, "price_from")
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}
	if priceFrom != nil {
		filter.PriceFrom = *priceFrom
	}
	priceTo, err := httputil.QueryInt64(r, "price_to")
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}
	if priceTo != nil {
		filter.PriceTo = *priceTo
	}

	events, total, err := h.events.GetAll(r.Context(), filter, limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, events, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *EventHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	event, err := h.events.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, event); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, _ := access.FromContext(r.Context())

	var update model.EventUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	event, err := h.events.Update(r.Context(), caller, ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, event); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, _ := access.FromContext(r.Context())

	if err := h.events.Delete(r.Context(), caller, ps.ByName("id")); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

// Book accepts an empty body; a body is only needed when staff book on
// someone's behalf.
func (h *EventHandler) Book(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, _ := access.FromContext(r.Context())

	var req model.EventBookingRequest
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(r, &req); err != nil {
			h.writeError(w, "Book", err)
			return
		}
	}

	booking, err := h.bookings.Book(r.Context(), caller, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "Book", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Book", "operation", "WriteCreated", "error", err)
	}
}

func (h *EventHandler) CancelBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, _ := access.FromContext(r.Context())

	booking, err := h.bookings.Cancel(r.Context(), caller, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "CancelBooking", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "CancelBooking", "operation", "WriteSuccess", "error", err)
	}
}

func (h *EventHandler) CompleteBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, _ := access.FromContext(r.Context())

	booking, err := h.bookings.Complete(r.Context(), caller, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "CompleteBooking", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "CompleteBooking", "operation", "WriteSuccess", "error", err)
	}
}

func (h *EventHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *EventHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/events", h.GetAll)
	router.GET("/api/v1/events/id/:id", h.GetByID)
	router.POST("/api/v1/events", auth.Required(h.Create))
	router.PUT("/api/v1/events/id/:id", auth.Required(h.Update))
	router.DELETE("/api/v1/events/id/:id", auth.Required(h.Delete))
	router.POST("/api/v1/events/id/:id/bookings", auth.Required(h.Book))
	router.POST("/api/v1/event-bookings/id/:id/cancel", auth.Required(h.CancelBooking))
	router.POST("/api/v1/event-bookings/id/:id/complete", auth.Required(h.CompleteBooking))
}
