package handler

import (
	"net/http"
	"parkbook/internal/access"
	"parkbook/internal/auth"
	"parkbook/internal/bookings/service"
	httputil "parkbook/pkg/http"
	"parkbook/pkg/logger"
	"parkbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	rooms   service.RoomBookingService
	listing service.ListingService
	log     *logger.Logger
}

func NewBookingHandler(rooms service.RoomBookingService, listing service.ListingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		rooms:   rooms,
		listing: listing,
		log:     log,
	}
}

func (h *BookingHandler) CreateRoomBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, _ := access.FromContext(r.Context())

	var req model.RoomBookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "CreateRoomBooking", err)
		return
	}

	booking, err := h.rooms.Create(r.Context(), caller, &req)
	if err != nil {
		h.writeError(w, "CreateRoomBooking", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateRoomBooking", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) UpdateRoomBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, _ := access.FromContext(r.Context())

	var update model.RoomBookingUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "UpdateRoomBooking", err)
		return
	}

	booking, err := h.rooms.Update(r.Context(), caller, ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "UpdateRoomBooking", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "UpdateRoomBooking", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) CancelRoomBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, _ := access.FromContext(r.Context())

	booking, err := h.rooms.Cancel(r.Context(), caller, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "CancelRoomBooking", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "CancelRoomBooking", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) CompleteRoomBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, _ := access.FromContext(r.Context())

	booking, err := h.rooms.Complete(r.Context(), caller, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "CompleteRoomBooking", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "CompleteRoomBooking", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, _ := access.FromContext(r.Context())

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	query := r.URL.Query()
	filter := model.BookingFilter{
		ClientName:  query.Get("client_name"),
		ClientPhone: query.Get("client_phone"),
		ObjectTitle: query.Get("object_title"),
	}

	views, total, err := h.listing.List(r.Context(), caller, query.Get("kind"), filter, limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, views, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/room-bookings", auth.Required(h.CreateRoomBooking))
	router.PATCH("/api/v1/room-bookings/id/:id", auth.Required(h.UpdateRoomBooking))
	router.POST("/api/v1/room-bookings/id/:id/cancel", auth.Required(h.CancelRoomBooking))
	router.POST("/api/v1/room-bookings/id/:id/complete", auth.Required(h.CompleteRoomBooking))
	router.GET("/api/v1/bookings", auth.Required(h.List))
}
