package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stayloop/hotel-booking-backend/internal/models"
)

// BookingRepository handles the booking lifecycle. Create, Pay and Cancel
// each run as a single transaction with the relevant row locked, so two
// concurrent requests for the same room or booking serialize instead of
// double-writing.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// ConfirmationCodeExists reports whether a confirmation code is already in
// use. Plugged into the reference code generator.
func (r *BookingRepository) ConfirmationCodeExists(code string) (bool, error) {
	var exists bool
	err := r.db.QueryRowx(
		`SELECT EXISTS(SELECT 1 FROM bookings WHERE confirmation_code = $1)`,
		code,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check confirmation code: %w", err)
	}
	return exists, nil
}

// Create reserves a room for the given dates. The room row is locked first,
// then overlapping non-cancelled bookings are counted; any overlap rejects
// the request with ErrRoomUnavailable. Check-out day is exclusive, so a stay
// ending on a date does not collide with one starting that same date.
func (r *BookingRepository) Create(userID int64, req *models.CreateBookingRequest, checkIn, checkOut time.Time, confirmationCode string) (*models.Booking, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var roomHotelID int64
	var capacity int
	err = tx.QueryRowx(
		`SELECT hotel_id, capacity FROM rooms WHERE id = $1 FOR UPDATE`,
		req.RoomID,
	).Scan(&roomHotelID, &capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock room: %w", err)
	}
	if roomHotelID != req.HotelID {
		return nil, ErrNotFound
	}
	if req.Guests > capacity {
		return nil, ErrCapacityExceeded
	}

	var overlapping int
	err = tx.QueryRowx(`
		SELECT COUNT(*)
		FROM bookings
		WHERE room_id = $1
		  AND status != 'cancelled'
		  AND check_in < $3
		  AND check_out > $2
	`, req.RoomID, checkIn, checkOut).Scan(&overlapping)
	if err != nil {
		return nil, fmt.Errorf("failed to check availability: %w", err)
	}
	if overlapping > 0 {
		return nil, ErrRoomUnavailable
	}

	booking := &models.Booking{}
	err = tx.QueryRowx(`
		INSERT INTO bookings (
			user_id, room_id, check_in, check_out, guests, total_price,
			status, payment_status, special_requests, confirmation_code
		) VALUES ($1, $2, $3, $4, $5, $6, 'pending', 'unpaid', $7, $8)
		RETURNING id, user_id, room_id, check_in, check_out, guests,
		          total_price, status, payment_status, special_requests,
		          confirmation_code, cancelled_at, created_at, updated_at
	`, userID, req.RoomID, checkIn, checkOut, req.Guests, req.TotalPrice,
		nullableString(req.SpecialRequests), confirmationCode,
	).StructScan(booking)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return booking, nil
}

// Pay records a payment for a pending booking and confirms it. The booking
// row is locked so a duplicate payment request observes the confirmed status
// and fails with ErrInvalidBookingState. The amount must equal the booking
// total exactly.
func (r *BookingRepository) Pay(bookingID, userID int64, req *models.PaymentRequest) (*models.Booking, *models.Payment, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	booking := &models.Booking{}
	err = tx.QueryRowx(`
		SELECT id, user_id, room_id, check_in, check_out, guests,
		       total_price, status, payment_status, special_requests,
		       confirmation_code, cancelled_at, created_at, updated_at
		FROM bookings
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`, bookingID, userID).StructScan(booking)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to lock booking: %w", err)
	}

	if !booking.CanBePaid() {
		return nil, nil, ErrInvalidBookingState
	}
	if !booking.AmountMatches(req.Amount) {
		return nil, nil, ErrAmountMismatch
	}

	payment := &models.Payment{}
	transactionID := "TXN-" + uuid.New().String()
	err = tx.QueryRowx(`
		INSERT INTO payments (booking_id, amount, payment_method, transaction_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, booking_id, amount, payment_method, transaction_id, status, created_at
	`, bookingID, req.Amount, req.PaymentMethod, transactionID, models.PaymentCompleted).StructScan(payment)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record payment: %w", err)
	}

	err = tx.QueryRowx(`
		UPDATE bookings
		SET status = 'confirmed', payment_status = 'paid', updated_at = NOW()
		WHERE id = $1
		RETURNING status, payment_status, updated_at
	`, bookingID).Scan(&booking.Status, &booking.PaymentStatus, &booking.UpdatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to confirm booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return booking, payment, nil
}

// Cancel marks a booking cancelled, freeing its dates. Paid bookings are
// flagged refunded. When userID is non-zero the booking must belong to that
// user; admins pass zero to cancel any booking.
func (r *BookingRepository) Cancel(bookingID, userID int64) (*models.Booking, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	booking := &models.Booking{}
	query := `
		SELECT id, user_id, room_id, check_in, check_out, guests,
		       total_price, status, payment_status, special_requests,
		       confirmation_code, cancelled_at, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`
	args := []interface{}{bookingID}
	if userID != 0 {
		query += ` AND user_id = $2`
		args = append(args, userID)
	}
	query += ` FOR UPDATE`

	if err := tx.QueryRowx(query, args...).StructScan(booking); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock booking: %w", err)
	}

	if !booking.CanBeCancelled() {
		return nil, ErrInvalidBookingState
	}

	paymentStatus := booking.PaymentStatus
	if paymentStatus == models.PaymentStatusPaid {
		paymentStatus = models.PaymentStatusRefunded
	}

	err = tx.QueryRowx(`
		UPDATE bookings
		SET status = 'cancelled', payment_status = $2,
		    cancelled_at = NOW(), updated_at = NOW()
		WHERE id = $1
		RETURNING status, payment_status, cancelled_at, updated_at
	`, bookingID, paymentStatus).Scan(
		&booking.Status, &booking.PaymentStatus,
		&booking.CancelledAt, &booking.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return booking, nil
}

const bookingDetailColumns = `
	b.id, b.user_id, b.room_id, b.check_in, b.check_out, b.guests,
	b.total_price, b.status, b.payment_status, b.special_requests,
	b.confirmation_code, b.cancelled_at, b.created_at, b.updated_at,
	h.id AS hotel_id, h.name AS hotel_name, h.location AS hotel_location,
	rm.room_type,
	u.full_name AS user_name, u.email AS user_email,
	p.payment_method, p.transaction_id
`

const bookingDetailJoins = `
	FROM bookings b
	JOIN rooms rm ON rm.id = b.room_id
	JOIN hotels h ON h.id = rm.hotel_id
	JOIN users u ON u.id = b.user_id
	LEFT JOIN payments p ON p.booking_id = b.id AND p.status = 'completed'
`

// GetDetail returns one booking joined with hotel, room, user and payment
// data. When userID is non-zero the booking must belong to that user.
func (r *BookingRepository) GetDetail(bookingID, userID int64) (*models.BookingDetail, error) {
	query := `SELECT ` + bookingDetailColumns + bookingDetailJoins + ` WHERE b.id = $1`
	args := []interface{}{bookingID}
	if userID != 0 {
		query += ` AND b.user_id = $2`
		args = append(args, userID)
	}

	detail := &models.BookingDetail{}
	if err := r.db.Get(detail, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking: %w", err)
	}

	return detail, nil
}

// ListByUser returns a user's bookings, newest first. Scope narrows the list
// to "upcoming" or "past" stays; any other value returns everything.
func (r *BookingRepository) ListByUser(userID int64, scope string) ([]models.BookingDetail, error) {
	query := `SELECT ` + bookingDetailColumns + bookingDetailJoins + `
		WHERE b.user_id = $1`

	switch scope {
	case "upcoming":
		query += ` AND b.check_in >= CURRENT_DATE`
	case "past":
		query += ` AND b.check_out < CURRENT_DATE`
	}

	query += ` ORDER BY b.created_at DESC`

	bookings := []models.BookingDetail{}
	if err := r.db.Select(&bookings, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	return bookings, nil
}

// ListAdmin returns bookings across all users, filtered for the back office
func (r *BookingRepository) ListAdmin(filters *models.AdminBookingFilters) ([]models.BookingDetail, error) {
	query := `SELECT ` + bookingDetailColumns + bookingDetailJoins + ` WHERE 1=1`
	args := []interface{}{}

	if filters.Status != "" {
		args = append(args, filters.Status)
		query += fmt.Sprintf(" AND b.status = $%d", len(args))
	}
	if filters.DateFrom != nil {
		args = append(args, *filters.DateFrom)
		query += fmt.Sprintf(" AND b.check_in >= $%d", len(args))
	}
	if filters.DateTo != nil {
		args = append(args, *filters.DateTo)
		query += fmt.Sprintf(" AND b.check_in <= $%d", len(args))
	}
	if filters.HotelID != nil {
		args = append(args, *filters.HotelID)
		query += fmt.Sprintf(" AND h.id = $%d", len(args))
	}

	query += " ORDER BY b.created_at DESC"

	bookings := []models.BookingDetail{}
	if err := r.db.Select(&bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	return bookings, nil
}
