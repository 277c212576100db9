// Package response maps application results and errors onto the HTTP wire.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/domain"
)

// Success writes a 200 with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created writes a 201 with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// UnprocessableEntity writes a 422 for malformed request bodies.
func UnprocessableEntity(c *gin.Context, message string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": message})
}

// Error maps a domain error onto its HTTP status. Internal failures return a
// generic message; callers are expected to log the detail server-side.
func Error(c *gin.Context, err error) {
	code := domain.CodeOf(err)
	status := statusFor(code)
	message := err.Error()
	if code == domain.CodeInternal {
		message = "internal error"
	}
	c.JSON(status, gin.H{"error": message})
}

func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeInvalidInput:
		return http.StatusUnprocessableEntity
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeConflict, domain.CodeUnavailable:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
