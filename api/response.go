package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/AR-Car-Rentals-Dev/ARCarRentals-sub001/internal/domain"
	"github.com/gin-gonic/gin"
)

// envelope is the body of every JSON response: exactly one of Data and
// Error is set.
type envelope struct {
	Data  any     `json:"data"`
	Error *string `json:"error"`
}

var serverErrors = []error{
	domain.ErrFetch,
	domain.ErrWrite,
	domain.ErrUpload,
	domain.ErrConfig,
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, envelope{Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, envelope{Error: &message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrConfig):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as an envelope. Server-side errors are logged in full and
// reported to the client by their taxonomy message only.
func fail(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		message = http.StatusText(http.StatusInternalServerError)
		for _, sentinel := range serverErrors {
			if errors.Is(err, sentinel) {
				message = sentinel.Error()
				break
			}
		}
	}
	respondError(c, status, message)
}

func badRequest(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, domain.ErrValidation.Error()+": "+err.Error())
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
