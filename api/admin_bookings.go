package api

import (
	"net/http"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/recent", h.recent)
	router.GET("/stats", h.stats)
	router.GET("/search", h.search)
	router.PATCH("/:id/status", h.updateStatus)
	router.DELETE("/:id", h.delete)
}

func (h *BookingHandler) list(c *gin.Context) {
	bookings, err := h.service.ListBookings(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nonNil(bookings))
}

func (h *BookingHandler) recent(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		badRequest(c, err)
		return
	}
	bookings, err := h.service.RecentBookings(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nonNil(bookings))
}

func (h *BookingHandler) stats(c *gin.Context) {
	stats, err := h.service.ComputeStats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, stats)
}

// search filters by ?q= (reference substring) and optional ?status=.
func (h *BookingHandler) search(c *gin.Context) {
	var status *domain.BookingStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := domain.ParseBookingStatus(raw)
		if err != nil {
			fail(c, err)
			return
		}
		status = &parsed
	}
	bookings, err := h.service.SearchBookings(c.Request.Context(), c.Query("q"), status)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, nonNil(bookings))
}

func (h *BookingHandler) updateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	status, err := domain.ParseBookingStatus(req.Status)
	if err != nil {
		fail(c, err)
		return
	}
	updated, err := h.service.UpdateBookingStatus(c.Request.Context(), id, status)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, updated)
}

func (h *BookingHandler) delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteBooking(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id})
}

func nonNil(bookings []domain.Booking) []domain.Booking {
	if bookings == nil {
		return []domain.Booking{}
	}
	return bookings
}
