package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/application"
	"github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/auth"
	bookingDomain "github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/domain/booking"
	"github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/middleware"
	"github.com/Harshithaboinepally/AIRBNB-PROTOTYPE-sub000/internal/response"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service application.BookingUseCase
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service application.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	bookings := r.Group("/api/v1/bookings")
	bookings.Use(middleware.AuthMiddleware(jwtManager))
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("/traveler", h.ListTravelerBookings)
		bookings.GET("/owner", h.ListOwnerBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.PUT("/:id/accept", h.AcceptBooking)
		bookings.PUT("/:id/cancel", h.CancelBooking)
	}
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	travelerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), travelerID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListTravelerBookings handles GET /api/v1/bookings/traveler.
func (h *BookingHandler) ListTravelerBookings(c *gin.Context) {
	travelerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	status, ok := parseStatusFilter(c)
	if !ok {
		return
	}
	page, limit := parsePagination(c)

	result, err := h.service.GetTravelerBookings(c.Request.Context(), travelerID, status, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListOwnerBookings handles GET /api/v1/bookings/owner.
func (h *BookingHandler) ListOwnerBookings(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	status, ok := parseStatusFilter(c)
	if !ok {
		return
	}
	page, limit := parsePagination(c)

	result, err := h.service.GetOwnerBookings(c.Request.Context(), ownerID, status, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.UnprocessableEntity(c, "invalid booking ID")
		return
	}
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), bookingID, actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// AcceptBooking handles PUT /api/v1/bookings/:id/accept.
func (h *BookingHandler) AcceptBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.UnprocessableEntity(c, "invalid booking ID")
		return
	}
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.service.AcceptBooking(c.Request.Context(), bookingID, actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CancelBooking handles PUT /api/v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.UnprocessableEntity(c, "invalid booking ID")
		return
	}
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body application.CancelBookingRequest
	_ = c.ShouldBindJSON(&body) // reason is optional

	result, err := h.service.CancelBooking(c.Request.Context(), bookingID, actorID, body.CancellationReason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// parseStatusFilter extracts the optional status query parameter. On an
// unknown status it writes a 422 and returns ok=false.
func parseStatusFilter(c *gin.Context) (*bookingDomain.BookingStatus, bool) {
	raw := c.Query("status")
	if raw == "" {
		return nil, true
	}
	status, err := bookingDomain.ParseBookingStatus(raw)
	if err != nil {
		response.UnprocessableEntity(c, "status must be one of PENDING, ACCEPTED, CANCELLED")
		return nil, false
	}
	return &status, true
}

// parsePagination extracts page and limit query parameters with defaults.
func parsePagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
