package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stayloop/hotel-booking-backend/internal/database"
	"github.com/stayloop/hotel-booking-backend/internal/middleware"
	"github.com/stayloop/hotel-booking-backend/internal/models"
	"github.com/stayloop/hotel-booking-backend/pkg/voucher"
)

// UserHandler serves the logged-in user's booking dashboard
type UserHandler struct {
	bookingRepository *database.BookingRepository
	logger            *logrus.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(bookingRepository *database.BookingRepository, logger *logrus.Logger) *UserHandler {
	return &UserHandler{
		bookingRepository: bookingRepository,
		logger:            logger,
	}
}

// MyBookings handles GET /api/v1/users/me/bookings. The status query narrows
// the list to upcoming or past stays.
func (h *UserHandler) MyBookings(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	bookings, err := h.bookingRepository.ListByUser(userCtx.UserID, c.Query("status"))
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"total":    len(bookings),
	})
}

// BookingByID handles GET /api/v1/users/me/bookings/:id
func (h *UserHandler) BookingByID(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	bookingID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.bookingRepository.GetDetail(bookingID, userCtx.UserID)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": detail})
}

// Voucher handles GET /api/v1/users/me/bookings/:id/voucher. Only confirmed
// bookings have a voucher.
func (h *UserHandler) Voucher(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	bookingID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.bookingRepository.GetDetail(bookingID, userCtx.UserID)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	if detail.Status != models.BookingStatusConfirmed {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "invalid_booking_state",
			Message: "Vouchers are only available for confirmed bookings",
		})
		return
	}

	pdf, err := voucher.RenderPDF(detail)
	if err != nil {
		h.logger.WithError(err).Error("Failed to render voucher")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to generate voucher",
		})
		return
	}

	filename := fmt.Sprintf("voucher-%s.pdf", detail.ConfirmationCode)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
