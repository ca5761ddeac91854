package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayloop/hotel-booking-backend/internal/database"
	"github.com/stayloop/hotel-booking-backend/internal/middleware"
)

func newTestBookingHandler(t *testing.T) (*BookingHandler, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := database.NewBookingRepository(sqlx.NewDb(db, "sqlmock"))
	return NewBookingHandler(repo, nil, nil, logrusTestLogger()), mock
}

func authedRouter(userID int64) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.UserContextKey, middleware.UserContext{
			UserID: userID,
			Email:  "guest@example.com",
		})
	})
	return router
}

func TestPayHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Body Booking ID Mismatch", func(t *testing.T) {
		handler, mock := newTestBookingHandler(t)
		router := authedRouter(1)
		router.POST("/bookings/:id/payment", handler.Pay)

		w := postJSON(router, "/bookings/100/payment", gin.H{
			"booking_id":      101,
			"payment_method":  "card",
			"amount":          450.00,
			"payment_details": gin.H{"card_number": "4111111111111111"},
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "booking_id")
		// no statement may reach the database
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing Body Fields", func(t *testing.T) {
		handler, mock := newTestBookingHandler(t)
		router := authedRouter(1)
		router.POST("/bookings/:id/payment", handler.Pay)

		w := postJSON(router, "/bookings/100/payment", gin.H{
			"amount": 450.00,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCreateBookingHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Check In In The Past", func(t *testing.T) {
		handler, mock := newTestBookingHandler(t)
		router := authedRouter(1)
		router.POST("/bookings", handler.CreateBooking)

		yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
		tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")

		w := postJSON(router, "/bookings", gin.H{
			"hotel_id":    5,
			"room_id":     10,
			"check_in":    yesterday,
			"check_out":   tomorrow,
			"guests":      2,
			"total_price": 450.00,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid_dates")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
