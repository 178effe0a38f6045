package api

import (
	"errors"
	"net/http"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/service/reviews"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/storage"
	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	service reviews.ReviewUseCase
}

func NewReviewHandler(service reviews.ReviewUseCase) *ReviewHandler {
	return &ReviewHandler{service: service}
}

func (h *ReviewHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("", h.create)
}

type reviewRequest struct {
	CustomerName string `json:"customer_name" form:"customer_name"`
	Rating       int    `json:"rating" form:"rating"`
	Comment      string `json:"comment" form:"comment"`
	VehicleID    *int64 `json:"vehicle_id" form:"vehicle_id"`
}

func (h *ReviewHandler) list(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		badRequest(c, err)
		return
	}
	ranked, err := h.service.RecentRanked(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, ranked)
}

// create accepts JSON, or a multipart form with an optional photo file.
func (h *ReviewHandler) create(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	var photo *storage.File
	header, err := c.FormFile("photo")
	switch {
	case err == nil:
		f := storage.FromMultipart(header)
		photo = &f
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		badRequest(c, err)
		return
	}

	review, err := h.service.CreateReview(c.Request.Context(), reviews.CreateReviewInput{
		CustomerName: req.CustomerName,
		Rating:       req.Rating,
		Comment:      req.Comment,
		VehicleID:    req.VehicleID,
	}, photo)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, review)
}
