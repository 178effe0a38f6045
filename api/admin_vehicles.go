package api

import (
	"net/http"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/service/fleet"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/storage"
	"github.com/gin-gonic/gin"
)

type VehicleAdminHandler struct {
	service fleet.FleetUseCase
}

func NewVehicleAdminHandler(service fleet.FleetUseCase) *VehicleAdminHandler {
	return &VehicleAdminHandler{service: service}
}

func (h *VehicleAdminHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.delete)
	router.POST("/:id/images", h.uploadImages)
	router.PATCH("/:id/images/order", h.reorderImages)
	router.DELETE("/:id/images/:imageID", h.removeImage)
}

type reorderRequest struct {
	From *int `json:"from" binding:"required"`
	To   *int `json:"to" binding:"required"`
}

func (h *VehicleAdminHandler) create(c *gin.Context) {
	var input fleet.VehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	vehicle, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, vehicle)
}

func (h *VehicleAdminHandler) update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input fleet.VehicleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	vehicle, err := h.service.Update(c.Request.Context(), id, input)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, vehicle)
}

func (h *VehicleAdminHandler) delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id})
}

// uploadImages takes every "images" part of a multipart form. Files that fail
// to upload stay in the gallery as degraded-local items.
func (h *VehicleAdminHandler) uploadImages(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		badRequest(c, err)
		return
	}
	headers := form.File["images"]
	if len(headers) == 0 {
		respondError(c, http.StatusBadRequest, "no images provided")
		return
	}
	files := make([]storage.File, 0, len(headers))
	for _, header := range headers {
		files = append(files, storage.FromMultipart(header))
	}

	vehicle, err := h.service.UploadImages(c.Request.Context(), id, files)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, vehicle)
}

func (h *VehicleAdminHandler) reorderImages(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	vehicle, err := h.service.ReorderImages(c.Request.Context(), id, *req.From, *req.To)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, vehicle)
}

func (h *VehicleAdminHandler) removeImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	vehicle, err := h.service.RemoveImage(c.Request.Context(), id, c.Param("imageID"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, vehicle)
}
