// File: handlers/booking.go
package handlers

import (
	"errors"
	"net/http"

	"concierge/models"
	"concierge/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the slot lifecycle over HTTP.
type BookingHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
}

func NewBookingHandler(svc booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: svc, Logger: logger}
}

// respondBookingError maps the service error taxonomy onto HTTP statuses.
func respondBookingError(c *gin.Context, err error) {
	var limitErr *booking.LimitError
	switch {
	case errors.Is(err, booking.ErrSlotUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &limitErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": limitErr.Error(), "max_bookings": limitErr.Max})
	case errors.Is(err, booking.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, booking.ErrReasonRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// RequestBooking handles POST /api/bookings.
func (h *BookingHandler) RequestBooking(c *gin.Context) {
	var req booking.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.Service.RequestBooking(c.Request.Context(), req)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": b})
}

// ConfirmBooking handles POST /api/bookings/:id/confirm.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	var input struct {
		MasterID string `json:"master_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.Service.ConfirmBooking(c.Request.Context(), input.MasterID, c.Param("id"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// DeclineBooking handles POST /api/bookings/:id/decline.
func (h *BookingHandler) DeclineBooking(c *gin.Context) {
	var input struct {
		MasterID string `json:"master_id" binding:"required"`
		Reason   string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.Service.DeclineBooking(c.Request.Context(), input.MasterID, c.Param("id"), input.Reason)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// CancelSlot handles POST /api/masters/:id/slots/cancel. Cancelling a slot
// also cancels whatever active booking holds it.
func (h *BookingHandler) CancelSlot(c *gin.Context) {
	var input struct {
		Date      string `json:"date" binding:"required"`
		StartTime string `json:"start_time" binding:"required"`
		Reason    string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	ref := models.SlotRef{Date: input.Date, StartTime: input.StartTime}
	if err := h.Service.CancelSlot(c.Request.Context(), c.Param("id"), ref, input.Reason); err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// CancelDeviceBooking handles POST /api/bookings/:id/cancel.
func (h *BookingHandler) CancelDeviceBooking(c *gin.Context) {
	var input struct {
		OwnerID string `json:"owner_id" binding:"required"`
		Reason  string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	b, err := h.Service.CancelDeviceBooking(c.Request.Context(), input.OwnerID, c.Param("id"), input.Reason)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// ListAvailable handles GET /api/entities/:id/availability.
func (h *BookingHandler) ListAvailable(c *gin.Context) {
	slots, err := h.Service.ListAvailable(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots, "count": len(slots)})
}

// ListClientBookings handles GET /api/clients/:id/bookings.
func (h *BookingHandler) ListClientBookings(c *gin.Context) {
	bookings, err := h.Service.ListClientBookings(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}
