package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stayloop/hotel-booking-backend/internal/database"
	"github.com/stayloop/hotel-booking-backend/internal/models"
	"github.com/stayloop/hotel-booking-backend/internal/services"
	"github.com/stayloop/hotel-booking-backend/pkg/validator"
	"github.com/stayloop/hotel-booking-backend/pkg/voucher"
)

// AdminHandler handles back-office hotel/room management and reporting
type AdminHandler struct {
	hotelRepository   *database.HotelRepository
	roomRepository    *database.RoomRepository
	bookingRepository *database.BookingRepository
	reportService     *services.ReportService
	logger            *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	hotelRepository *database.HotelRepository,
	roomRepository *database.RoomRepository,
	bookingRepository *database.BookingRepository,
	reportService *services.ReportService,
	logger *logrus.Logger,
) *AdminHandler {
	return &AdminHandler{
		hotelRepository:   hotelRepository,
		roomRepository:    roomRepository,
		bookingRepository: bookingRepository,
		reportService:     reportService,
		logger:            logger,
	}
}

// CreateHotel handles POST /api/v1/admin/hotels
func (h *AdminHandler) CreateHotel(c *gin.Context) {
	var req models.CreateHotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	hotel, err := h.hotelRepository.Create(&req)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"hotel_id": hotel.ID,
		"name":     hotel.Name,
	}).Info("Hotel created")

	c.JSON(http.StatusCreated, gin.H{"hotel": hotel})
}

// UpdateHotel handles PUT /api/v1/admin/hotels/:id
func (h *AdminHandler) UpdateHotel(c *gin.Context) {
	hotelID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateHotelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	hotel, err := h.hotelRepository.Update(hotelID, &req)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"hotel": hotel})
}

// DeleteHotel handles DELETE /api/v1/admin/hotels/:id
func (h *AdminHandler) DeleteHotel(c *gin.Context) {
	hotelID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.hotelRepository.Delete(hotelID); err != nil {
		respondStoreError(c, err)
		return
	}

	h.logger.WithField("hotel_id", hotelID).Info("Hotel deleted")

	c.JSON(http.StatusOK, gin.H{"message": "Hotel deleted"})
}

// CreateRoom handles POST /api/v1/admin/hotels/:id/rooms
func (h *AdminHandler) CreateRoom(c *gin.Context) {
	hotelID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	room, err := h.roomRepository.Create(hotelID, &req)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"room": room})
}

// UpdateRoom handles PUT /api/v1/admin/rooms/:id
func (h *AdminHandler) UpdateRoom(c *gin.Context) {
	roomID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	room, err := h.roomRepository.Update(roomID, &req)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"room": room})
}

// DeleteRoom handles DELETE /api/v1/admin/rooms/:id
func (h *AdminHandler) DeleteRoom(c *gin.Context) {
	roomID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.roomRepository.Delete(roomID); err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Room deleted"})
}

// ListBookings handles GET /api/v1/admin/bookings
func (h *AdminHandler) ListBookings(c *gin.Context) {
	filters := &models.AdminBookingFilters{
		Status: c.Query("status"),
	}

	if v := c.Query("date_from"); v != "" {
		from, err := validator.ParseDate(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_dates",
				Message: "Invalid date_from parameter",
			})
			return
		}
		filters.DateFrom = &from
	}
	if v := c.Query("date_to"); v != "" {
		to, err := validator.ParseDate(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_dates",
				Message: "Invalid date_to parameter",
			})
			return
		}
		filters.DateTo = &to
	}
	if v := c.Query("hotel_id"); v != "" {
		var hotelID int64
		if _, err := fmt.Sscanf(v, "%d", &hotelID); err != nil || hotelID <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_id",
				Message: "Invalid hotel_id parameter",
			})
			return
		}
		filters.HotelID = &hotelID
	}

	bookings, err := h.bookingRepository.ListAdmin(filters)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"total":    len(bookings),
	})
}

// CancelBooking handles POST /api/v1/admin/bookings/:id/cancel
func (h *AdminHandler) CancelBooking(c *gin.Context) {
	bookingID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// zero user skips the ownership check
	booking, err := h.bookingRepository.Cancel(bookingID, 0)
	if err != nil {
		respondStoreError(c, err)
		return
	}

	h.logger.WithField("booking_id", bookingID).Info("Booking cancelled by admin")

	c.JSON(http.StatusOK, gin.H{
		"message": "Booking cancelled",
		"booking": booking,
	})
}

// Report handles GET /api/v1/admin/reports/bookings. The format query
// switches between JSON and CSV download.
func (h *AdminHandler) Report(c *gin.Context) {
	report, err := h.reportService.BuildReport(
		c.Query("from"),
		c.Query("to"),
		models.ReportGroupBy(c.DefaultQuery("group_by", "day")),
	)
	if err != nil {
		if errors.Is(err, services.ErrInvalidReportParams) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_report_params",
				Message: err.Error(),
			})
			return
		}
		h.logger.WithError(err).Error("Failed to build report")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to generate report",
		})
		return
	}

	if c.Query("format") == "csv" {
		var buf bytes.Buffer
		if err := voucher.WriteReportCSV(&buf, report); err != nil {
			h.logger.WithError(err).Error("Failed to render report CSV")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to generate report",
			})
			return
		}

		filename := fmt.Sprintf("bookings-%s-%s.csv", report.Period.From, report.Period.To)
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, "text/csv", buf.Bytes())
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}
