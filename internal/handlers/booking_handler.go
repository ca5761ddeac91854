package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stayloop/hotel-booking-backend/internal/database"
	"github.com/stayloop/hotel-booking-backend/internal/middleware"
	"github.com/stayloop/hotel-booking-backend/internal/models"
	"github.com/stayloop/hotel-booking-backend/internal/queue"
	"github.com/stayloop/hotel-booking-backend/pkg/refcode"
	"github.com/stayloop/hotel-booking-backend/pkg/validator"
)

// BookingHandler handles the booking lifecycle endpoints
type BookingHandler struct {
	bookingRepository *database.BookingRepository
	codeGenerator     *refcode.Generator
	publisher         *queue.Publisher
	logger            *logrus.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(
	bookingRepository *database.BookingRepository,
	codeGenerator *refcode.Generator,
	publisher *queue.Publisher,
	logger *logrus.Logger,
) *BookingHandler {
	return &BookingHandler{
		bookingRepository: bookingRepository,
		codeGenerator:     codeGenerator,
		publisher:         publisher,
		logger:            logger,
	}
}

// CreateBooking handles POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	checkIn, checkOut, err := validator.ParseDateRange(req.CheckIn, req.CheckOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_dates",
			Message: err.Error(),
		})
		return
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if checkIn.Before(today) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_dates",
			Message: "check_in cannot be in the past",
		})
		return
	}

	code, err := h.codeGenerator.Generate()
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate confirmation code")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to create booking",
		})
		return
	}

	booking, err := h.bookingRepository.Create(userCtx.UserID, &req, checkIn, checkOut, code)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"booking_id":        booking.ID,
		"user_id":           userCtx.UserID,
		"room_id":           booking.RoomID,
		"confirmation_code": booking.ConfirmationCode,
	}).Info("Booking created")

	c.JSON(http.StatusCreated, gin.H{
		"message": "Booking created, awaiting payment",
		"booking": booking,
	})
}

// Pay handles POST /api/v1/bookings/:id/payment
func (h *BookingHandler) Pay(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	bookingID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}
	if req.BookingID != bookingID {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "booking_id does not match the requested booking",
		})
		return
	}

	booking, payment, err := h.bookingRepository.Pay(bookingID, userCtx.UserID, &req)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"booking_id":     booking.ID,
		"transaction_id": payment.TransactionID,
		"amount":         payment.Amount,
	}).Info("Booking paid and confirmed")

	h.publishConfirmed(c, booking)

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment successful, booking confirmed",
		"booking": booking,
		"payment": payment,
	})
}

// Cancel handles POST /api/v1/bookings/:id/cancel
func (h *BookingHandler) Cancel(c *gin.Context) {
	userCtx, _ := middleware.GetUserContext(c)

	bookingID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.CancelBookingRequest
	// body is optional
	_ = c.ShouldBindJSON(&req)

	booking, err := h.bookingRepository.Cancel(bookingID, userCtx.UserID)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"user_id":    userCtx.UserID,
	}).Info("Booking cancelled")

	c.JSON(http.StatusOK, gin.H{
		"message": "Booking cancelled",
		"booking": booking,
	})
}

// publishConfirmed emits the confirmation event. Failures are logged only;
// the payment already succeeded and must be reported as such.
func (h *BookingHandler) publishConfirmed(c *gin.Context, booking *models.Booking) {
	detail, err := h.bookingRepository.GetDetail(booking.ID, 0)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to load booking detail for event")
		return
	}

	event := &queue.BookingConfirmedEvent{
		BookingID:        detail.ID,
		ConfirmationCode: detail.ConfirmationCode,
		UserEmail:        detail.UserEmail.String,
		UserName:         detail.UserName.String,
		HotelName:        detail.HotelName,
		RoomType:         detail.RoomType,
		CheckIn:          detail.CheckIn.Format(validator.DateLayout),
		CheckOut:         detail.CheckOut.Format(validator.DateLayout),
		Guests:           detail.Guests,
		TotalPrice:       detail.TotalPrice,
		ConfirmedAt:      time.Now().UTC().Format(time.RFC3339),
	}

	if err := h.publisher.PublishBookingConfirmed(c.Request.Context(), event); err != nil {
		h.logger.WithError(err).Warn("Failed to publish booking confirmed event")
	}
}
