package api

import (
	"net/http"
	"strings"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/auth"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	"github.com/gin-gonic/gin"
)

const adminClaimsKey = "admin_claims"

type AuthHandler struct {
	auth auth.Authenticator
}

func NewAuthHandler(authenticator auth.Authenticator) *AuthHandler {
	return &AuthHandler{auth: authenticator}
}

func (h *AuthHandler) Register(router *gin.RouterGroup) {
	router.POST("/login", h.login)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	token, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, token)
}

// RequireAdmin rejects requests without a valid admin bearer token.
func RequireAdmin(authenticator auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			fail(c, domain.ErrUnauthorized)
			return
		}
		claims, err := authenticator.Verify(strings.TrimSpace(token))
		if err != nil {
			fail(c, err)
			return
		}
		c.Set(adminClaimsKey, claims)
		c.Next()
	}
}
