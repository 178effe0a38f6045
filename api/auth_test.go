package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/auth"
	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func adminRouter(authenticator auth.Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	admin := r.Group("/api/admin")
	NewAuthHandler(authenticator).Register(admin)
	protected := admin.Group("", RequireAdmin(authenticator))
	protected.GET("/ping", func(c *gin.Context) { respond(c, http.StatusOK, "pong") })
	return r
}

func TestRequireAdmin(t *testing.T) {
	authenticator := &MockAuthenticator{}
	authenticator.On("Verify", "good").Return(&auth.Claims{Email: "admin@arcar.example", Role: "admin"}, nil)
	authenticator.On("Verify", "stale").Return(nil, domain.ErrUnauthorized)
	r := adminRouter(authenticator)

	cases := map[string]int{
		"":             http.StatusUnauthorized,
		"Basic abc":    http.StatusUnauthorized,
		"Bearer stale": http.StatusUnauthorized,
		"Bearer good":  http.StatusOK,
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, want, w.Code, header)
		if want == http.StatusUnauthorized {
			assert.JSONEq(t, `{"data":null,"error":"unauthorized"}`, w.Body.String())
		}
	}
}

func TestAuthHandler_login(t *testing.T) {
	authenticator := &MockAuthenticator{}
	expires := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	authenticator.On("Login", "admin@arcar.example", "pw").Return(auth.Token{AccessToken: "jwt", ExpiresAt: expires}, nil)
	authenticator.On("Login", "admin@arcar.example", "nope").Return(auth.Token{}, domain.ErrUnauthorized)
	r := adminRouter(authenticator)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/api/admin/login", loginRequest{Email: "admin@arcar.example", Password: "pw"}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"access_token":"jwt"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/api/admin/login", loginRequest{Email: "admin@arcar.example", Password: "nope"}))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest(http.MethodPost, "/api/admin/login", map[string]string{"email": "x"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
