package database

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayloop/hotel-booking-backend/internal/models"
)

func bookingColumns() []string {
	return []string{
		"id", "user_id", "room_id", "check_in", "check_out", "guests",
		"total_price", "status", "payment_status", "special_requests",
		"confirmation_code", "cancelled_at", "created_at", "updated_at",
	}
}

func pendingBookingRow(id int64, checkIn, checkOut time.Time, total float64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(bookingColumns()).AddRow(
		id, int64(1), int64(10), checkIn, checkOut, 2,
		total, "pending", "unpaid", nil,
		"AB12CD34", nil, now, now,
	)
}

func TestCreateBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookingRepository(sqlx.NewDb(db, "sqlmock"))

	checkIn := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)
	req := &models.CreateBookingRequest{
		HotelID:    5,
		RoomID:     10,
		Guests:     2,
		TotalPrice: 450.00,
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT hotel_id, capacity FROM rooms WHERE id = \$1 FOR UPDATE`).
			WithArgs(int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"hotel_id", "capacity"}).AddRow(int64(5), 2))
		mock.ExpectQuery(`(?s)SELECT COUNT\(\*\)\s+FROM bookings.*room_id = \$1.*status != 'cancelled'\s+AND check_in < \$3\s+AND check_out > \$2`).
			WithArgs(int64(10), checkIn, checkOut).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`INSERT INTO bookings`).
			WithArgs(int64(1), int64(10), checkIn, checkOut, 2, 450.00,
				sqlmock.AnyArg(), "AB12CD34").
			WillReturnRows(pendingBookingRow(100, checkIn, checkOut, 450.00))
		mock.ExpectCommit()

		booking, err := repo.Create(1, req, checkIn, checkOut, "AB12CD34")
		require.NoError(t, err)
		assert.Equal(t, int64(100), booking.ID)
		assert.Equal(t, models.BookingStatusPending, booking.Status)
		assert.Equal(t, models.PaymentStatusUnpaid, booking.PaymentStatus)
		assert.Equal(t, "AB12CD34", booking.ConfirmationCode)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Dates Overlap", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT hotel_id, capacity FROM rooms WHERE id = \$1 FOR UPDATE`).
			WithArgs(int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"hotel_id", "capacity"}).AddRow(int64(5), 2))
		mock.ExpectQuery(`(?s)SELECT COUNT\(\*\)\s+FROM bookings.*room_id = \$1.*status != 'cancelled'\s+AND check_in < \$3\s+AND check_out > \$2`).
			WithArgs(int64(10), checkIn, checkOut).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		booking, err := repo.Create(1, req, checkIn, checkOut, "AB12CD34")
		assert.ErrorIs(t, err, ErrRoomUnavailable)
		assert.Nil(t, booking)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Room Not Found", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT hotel_id, capacity FROM rooms WHERE id = \$1 FOR UPDATE`).
			WithArgs(int64(10)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		booking, err := repo.Create(1, req, checkIn, checkOut, "AB12CD34")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, booking)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Room Belongs To Other Hotel", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT hotel_id, capacity FROM rooms WHERE id = \$1 FOR UPDATE`).
			WithArgs(int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"hotel_id", "capacity"}).AddRow(int64(99), 2))
		mock.ExpectRollback()

		booking, err := repo.Create(1, req, checkIn, checkOut, "AB12CD34")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, booking)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Guests Exceed Capacity", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT hotel_id, capacity FROM rooms WHERE id = \$1 FOR UPDATE`).
			WithArgs(int64(10)).
			WillReturnRows(sqlmock.NewRows([]string{"hotel_id", "capacity"}).AddRow(int64(5), 1))
		mock.ExpectRollback()

		booking, err := repo.Create(1, req, checkIn, checkOut, "AB12CD34")
		assert.ErrorIs(t, err, ErrCapacityExceeded)
		assert.Nil(t, booking)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPayBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookingRepository(sqlx.NewDb(db, "sqlmock"))

	checkIn := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)
	req := &models.PaymentRequest{
		BookingID:     100,
		PaymentMethod: "card",
		Amount:        450.00,
	}

	t.Run("Success", func(t *testing.T) {
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM bookings\s+WHERE id = \$1 AND user_id = \$2\s+FOR UPDATE`).
			WithArgs(int64(100), int64(1)).
			WillReturnRows(pendingBookingRow(100, checkIn, checkOut, 450.00))
		mock.ExpectQuery(`INSERT INTO payments`).
			WithArgs(int64(100), 450.00, "card", sqlmock.AnyArg(), "completed").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "booking_id", "amount", "payment_method",
				"transaction_id", "status", "created_at",
			}).AddRow(int64(1), int64(100), 450.00, "card", "TXN-abc", "completed", now))
		mock.ExpectQuery(`UPDATE bookings`).
			WithArgs(int64(100)).
			WillReturnRows(sqlmock.NewRows([]string{"status", "payment_status", "updated_at"}).
				AddRow("confirmed", "paid", now))
		mock.ExpectCommit()

		booking, payment, err := repo.Pay(100, 1, req)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
		assert.Equal(t, models.PaymentStatusPaid, booking.PaymentStatus)
		assert.Equal(t, "completed", payment.Status)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Amount Mismatch", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM bookings\s+WHERE id = \$1 AND user_id = \$2\s+FOR UPDATE`).
			WithArgs(int64(100), int64(1)).
			WillReturnRows(pendingBookingRow(100, checkIn, checkOut, 500.00))
		mock.ExpectRollback()

		booking, payment, err := repo.Pay(100, 1, req)
		assert.ErrorIs(t, err, ErrAmountMismatch)
		assert.Nil(t, booking)
		assert.Nil(t, payment)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already Confirmed", func(t *testing.T) {
		now := time.Now()
		confirmed := sqlmock.NewRows(bookingColumns()).AddRow(
			int64(100), int64(1), int64(10), checkIn, checkOut, 2,
			450.00, "confirmed", "paid", nil,
			"AB12CD34", nil, now, now,
		)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM bookings\s+WHERE id = \$1 AND user_id = \$2\s+FOR UPDATE`).
			WithArgs(int64(100), int64(1)).
			WillReturnRows(confirmed)
		mock.ExpectRollback()

		booking, payment, err := repo.Pay(100, 1, req)
		assert.ErrorIs(t, err, ErrInvalidBookingState)
		assert.Nil(t, booking)
		assert.Nil(t, payment)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM bookings\s+WHERE id = \$1 AND user_id = \$2\s+FOR UPDATE`).
			WithArgs(int64(999), int64(1)).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		booking, payment, err := repo.Pay(999, 1, req)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, booking)
		assert.Nil(t, payment)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCancelBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookingRepository(sqlx.NewDb(db, "sqlmock"))

	checkIn := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)

	t.Run("Cancel Pending", func(t *testing.T) {
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM bookings\s+WHERE id = \$1 AND user_id = \$2 FOR UPDATE`).
			WithArgs(int64(100), int64(1)).
			WillReturnRows(pendingBookingRow(100, checkIn, checkOut, 450.00))
		mock.ExpectQuery(`UPDATE bookings`).
			WithArgs(int64(100), models.PaymentStatusUnpaid).
			WillReturnRows(sqlmock.NewRows([]string{"status", "payment_status", "cancelled_at", "updated_at"}).
				AddRow("cancelled", "unpaid", now, now))
		mock.ExpectCommit()

		booking, err := repo.Cancel(100, 1)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusCancelled, booking.Status)
		assert.True(t, booking.CancelledAt.Valid)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Cancel Paid Marks Refunded", func(t *testing.T) {
		now := time.Now()
		confirmed := sqlmock.NewRows(bookingColumns()).AddRow(
			int64(100), int64(1), int64(10), checkIn, checkOut, 2,
			450.00, "confirmed", "paid", nil,
			"AB12CD34", nil, now, now,
		)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM bookings\s+WHERE id = \$1 AND user_id = \$2 FOR UPDATE`).
			WithArgs(int64(100), int64(1)).
			WillReturnRows(confirmed)
		mock.ExpectQuery(`UPDATE bookings`).
			WithArgs(int64(100), models.PaymentStatusRefunded).
			WillReturnRows(sqlmock.NewRows([]string{"status", "payment_status", "cancelled_at", "updated_at"}).
				AddRow("cancelled", "refunded", now, now))
		mock.ExpectCommit()

		booking, err := repo.Cancel(100, 1)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusRefunded, booking.PaymentStatus)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Already Cancelled", func(t *testing.T) {
		now := time.Now()
		cancelled := sqlmock.NewRows(bookingColumns()).AddRow(
			int64(100), int64(1), int64(10), checkIn, checkOut, 2,
			450.00, "cancelled", "refunded", nil,
			"AB12CD34", now, now, now,
		)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM bookings\s+WHERE id = \$1 AND user_id = \$2 FOR UPDATE`).
			WithArgs(int64(100), int64(1)).
			WillReturnRows(cancelled)
		mock.ExpectRollback()

		booking, err := repo.Cancel(100, 1)
		assert.ErrorIs(t, err, ErrInvalidBookingState)
		assert.Nil(t, booking)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Admin Skips Owner Check", func(t *testing.T) {
		now := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM bookings\s+WHERE id = \$1 FOR UPDATE`).
			WithArgs(int64(100)).
			WillReturnRows(pendingBookingRow(100, checkIn, checkOut, 450.00))
		mock.ExpectQuery(`UPDATE bookings`).
			WithArgs(int64(100), models.PaymentStatusUnpaid).
			WillReturnRows(sqlmock.NewRows([]string{"status", "payment_status", "cancelled_at", "updated_at"}).
				AddRow("cancelled", "unpaid", now, now))
		mock.ExpectCommit()

		booking, err := repo.Cancel(100, 0)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusCancelled, booking.Status)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestConfirmationCodeExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookingRepository(sqlx.NewDb(db, "sqlmock"))

	t.Run("Exists", func(t *testing.T) {
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("AB12CD34").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		exists, err := repo.ConfirmationCodeExists("AB12CD34")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("AB12CD34").
			WillReturnError(fmt.Errorf("database error"))

		_, err := repo.ConfirmationCodeExists("AB12CD34")
		assert.Error(t, err)
	})
}
