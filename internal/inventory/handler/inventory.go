package handler

import (
	"net/http"
	"parkbook/internal/access"
	"parkbook/internal/auth"
	"parkbook/internal/inventory/repository"
	"parkbook/internal/inventory/service"
	httputil "parkbook/pkg/http"
	"parkbook/pkg/logger"
	"parkbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type InventoryHandler struct {
	rooms       service.RoomService
	attractions service.AttractionService
	log         *logger.Logger
}

func NewInventoryHandler(rooms service.RoomService, attractions service.AttractionService, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{
		rooms:       rooms,
		attractions: attractions,
		log:         log,
	}
}

// ── Rooms ───────────────────────────────────────

func (h *InventoryHandler) CreateRoom(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, _ := access.FromContext(r.Context())

	var room model.Room
	if err := httputil.DecodeJSON(r, &room); err != nil {
		h.writeError(w, "CreateRoom", err)
		return
	}

	if err := h.rooms.Create(r.Context(), caller, &room); err != nil {
		h.writeError(w, "CreateRoom", err)
		return
	}

	h.writeCreated(w, "CreateRoom", room)
}

func (h *InventoryHandler) ListRooms(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter, limit, offset, err := parseListQuery(r)
	if err != nil {
		h.writeError(w, "ListRooms", err)
		return
	}

	rooms, total, err := h.rooms.GetAll(r.Context(), filter, limit, offset)
	if err != nil {
		h.writeError(w, "ListRooms", err)
		return
	}

	h.writePaginated(w, "ListRooms", rooms, total, limit, offset)
}

func (h *InventoryHandler) GetRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	room, err := h.rooms.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetRoom", err)
		return
	}

	h.writeSuccess(w, "GetRoom", room)
}

func (h *InventoryHandler) UpdateRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, _ := access.FromContext(r.Context())

	var update model.RoomUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "UpdateRoom", err)
		return
	}

	room, err := h.rooms.Update(r.Context(), caller, ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "UpdateRoom", err)
		return
	}

	h.writeSuccess(w, "UpdateRoom", room)
}

func (h *InventoryHandler) DeleteRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, _ := access.FromContext(r.Context())

	if err := h.rooms.Delete(r.Context(), caller, ps.ByName("id")); err != nil {
		h.writeError(w, "DeleteRoom", err)
		return
	}

	httputil.WriteNoContent(w)
}

// ── Attractions ─────────────────────────────────

func (h *InventoryHandler) CreateAttraction(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, _ := access.FromContext(r.Context())

	var a model.Attraction
	if err := httputil.DecodeJSON(r, &a); err != nil {
		h.writeError(w, "CreateAttraction", err)
		return
	}

	if err := h.attractions.Create(r.Context(), caller, &a); err != nil {
		h.writeError(w, "CreateAttraction", err)
		return
	}

	h.writeCreated(w, "CreateAttraction", a)
}

func (h *InventoryHandler) ListAttractions(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter, limit, offset, err := parseListQuery(r)
	if err != nil {
		h.writeError(w, "ListAttractions", err)
		return
	}

	attractions, total, err := h.attractions.GetAll(r.Context(), filter, limit, offset)
	if err != nil {
		h.writeError(w, "ListAttractions", err)
		return
	}

	h.writePaginated(w, "ListAttractions", attractions, total, limit, offset)
}

func (h *InventoryHandler) GetAttraction(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	a, err := h.attractions.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetAttraction", err)
		return
	}

	h.writeSuccess(w, "GetAttraction", a)
}

func (h *InventoryHandler) UpdateAttraction(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, _ := access.FromContext(r.Context())

	var update model.AttractionUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, "UpdateAttraction", err)
		return
	}

	a, err := h.attractions.Update(r.Context(), caller, ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "UpdateAttraction", err)
		return
	}

	h.writeSuccess(w, "UpdateAttraction", a)
}

func (h *InventoryHandler) DeleteAttraction(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	caller, _ := access.FromContext(r.Context())

	if err := h.attractions.Delete(r.Context(), caller, ps.ByName("id")); err != nil {
		h.writeError(w, "DeleteAttraction", err)
		return
	}

	httputil.WriteNoContent(w)
}

// ── Helpers ─────────────────────────────────────

func parseListQuery(r *http.Request) (repository.Filter, int, int64, error) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		return repository.Filter{}, 0, 0, err
	}

	query := r.URL.Query()
	filter := repository.Filter{
		Search: query.Get("search"),
		Sort:   query.Get("sort"),
	}

	priceFrom, err := httputil.QueryInt64(r, "price_from")
	if err != nil {
		return repository.Filter{}, 0, 0, err
	}
	if priceFrom != nil {
		filter.PriceFrom = *priceFrom
	}

	priceTo, err := httputil.QueryInt64(r, "price_to")
	if err != nil {
		return repository.Filter{}, 0, 0, err
	}
	if priceTo != nil {
		filter.PriceTo = *priceTo
	}

	return filter, limit, offset, nil
}

func (h *InventoryHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *InventoryHandler) writeCreated(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteCreated(w, data); err != nil {
		h.log.Error("failed to write created response", "handler", handler, "operation", "WriteCreated", "error", err)
	}
}

func (h *InventoryHandler) writePaginated(w http.ResponseWriter, handler string, data any, total int64, limit int, offset int64) {
	if err := httputil.WritePaginated(w, data, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", handler, "operation", "WritePaginated", "error", err)
	}
}

func (h *InventoryHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *InventoryHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/rooms", h.ListRooms)
	router.GET("/api/v1/rooms/id/:id", h.GetRoom)
	router.POST("/api/v1/rooms", auth.Required(h.CreateRoom))
	router.PUT("/api/v1/rooms/id/:id", auth.Required(h.UpdateRoom))
	router.DELETE("/api/v1/rooms/id/:id", auth.Required(h.DeleteRoom))

	router.GET("/api/v1/attractions", h.ListAttractions)
	router.GET("/api/v1/attractions/id/:id", h.GetAttraction)
	router.POST("/api/v1/attractions", auth.Required(h.CreateAttraction))
	router.PUT("/api/v1/attractions/id/:id", auth.Required(h.UpdateAttraction))
	router.DELETE("/api/v1/attractions/id/:id", auth.Required(h.DeleteAttraction))
}
