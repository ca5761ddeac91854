package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stayloop/hotel-booking-backend/internal/database"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// respondStoreError maps repository sentinel errors to HTTP responses.
// Unrecognized errors are logged and returned as 500 without leaking
// internals.
func respondStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "The requested resource was not found",
		})
	case errors.Is(err, database.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "email_exists",
			Message: "An account with this email already exists",
		})
	case errors.Is(err, database.ErrRoomUnavailable):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "room_unavailable",
			Message: "The room is not available for the selected dates",
		})
	case errors.Is(err, database.ErrInvalidBookingState):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "invalid_booking_state",
			Message: "The booking cannot be changed in its current status",
		})
	case errors.Is(err, database.ErrCapacityExceeded):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "capacity_exceeded",
			Message: "The room does not hold that many guests",
		})
	case errors.Is(err, database.ErrAmountMismatch):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "amount_mismatch",
			Message: "Payment amount does not match the booking total",
		})
	case errors.Is(err, database.ErrReviewNotAllowed):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "review_not_allowed",
			Message: "Reviews require a completed stay at this hotel",
		})
	case errors.Is(err, database.ErrAlreadyReviewed):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "already_reviewed",
			Message: "You have already reviewed this hotel",
		})
	default:
		logrus.WithError(err).Error("Unhandled store error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}

// parseIDParam reads a positive integer path parameter
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid " + name + " parameter",
		})
		return 0, false
	}
	return id, true
}
