package api

import (
	"net/http"
	"time"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/service/fleet"
	"github.com/gin-gonic/gin"
)

type FleetHandler struct {
	service fleet.FleetUseCase
}

func NewFleetHandler(service fleet.FleetUseCase) *FleetHandler {
	return &FleetHandler{service: service}
}

func (h *FleetHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.GET("/:id/quote", h.quote)
}

func (h *FleetHandler) list(c *gin.Context) {
	vehicles, err := h.service.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	public := make([]domain.Vehicle, len(vehicles))
	for i, v := range vehicles {
		public[i] = v.Public()
	}
	respond(c, http.StatusOK, public)
}

func (h *FleetHandler) get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	vehicle, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, vehicle.Public())
}

type quoteQuery struct {
	Pickup time.Time `form:"pickup" time_format:"2006-01-02T15:04:05Z07:00" binding:"required"`
	Return time.Time `form:"return" time_format:"2006-01-02T15:04:05Z07:00" binding:"required"`
}

func (h *FleetHandler) quote(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var q quoteQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	vehicle, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	quote, err := fleet.QuoteRental(vehicle.DailyRateCents, q.Pickup, q.Return)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, quote)
}
