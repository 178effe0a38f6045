package api

import (
	"net/http"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/service/blog"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/storage"
	"github.com/gin-gonic/gin"
)

type BlogHandler struct {
	service blog.BlogUseCase
}

func NewBlogHandler(service blog.BlogUseCase) *BlogHandler {
	return &BlogHandler{service: service}
}

// Register mounts the public, published-only routes.
func (h *BlogHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.listPublished)
	router.GET("/:slug", h.getBySlug)
}

// RegisterAdmin mounts the management routes. The caller applies auth.
func (h *BlogHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("", h.create)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.delete)
	router.POST("/:id/cover", h.uploadCover)
}

func (h *BlogHandler) listPublished(c *gin.Context) {
	blogs, err := h.service.ListPublished(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, blogs)
}

func (h *BlogHandler) getBySlug(c *gin.Context) {
	post, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, post)
}

func (h *BlogHandler) list(c *gin.Context) {
	blogs, err := h.service.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, blogs)
}

func (h *BlogHandler) create(c *gin.Context) {
	var input blog.BlogInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	b, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, b)
}

func (h *BlogHandler) update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input blog.BlogInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	b, err := h.service.Update(c.Request.Context(), id, input)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, b)
}

func (h *BlogHandler) delete(c *gin.Context) {
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

func (h *BlogHandler) uploadCover(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	header, err := c.FormFile("cover")
	if err != nil {
		badRequest(c, err)
		return
	}
	b, err := h.service.UploadCover(c.Request.Context(), id, storage.FromMultipart(header))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, b)
}
