package models

import (
	"errors"
	"math"
	"time"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// PaymentStatus represents the payment state carried on a booking
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// PaymentCompleted is the status of a successfully recorded payment row.
// Payments are immutable once completed.
const PaymentCompleted = "completed"

// Booking represents a room reservation. Check-out is exclusive: the stay
// covers the half-open interval [check_in, check_out).
type Booking struct {
	ID               int64         `json:"id" db:"id"`
	UserID           int64         `json:"user_id" db:"user_id"`
	RoomID           int64         `json:"room_id" db:"room_id"`
	CheckIn          time.Time     `json:"check_in" db:"check_in"`
	CheckOut         time.Time     `json:"check_out" db:"check_out"`
	Guests           int           `json:"guests" db:"guests"`
	TotalPrice       float64       `json:"total_price" db:"total_price"`
	Status           BookingStatus `json:"status" db:"status"`
	PaymentStatus    PaymentStatus `json:"payment_status" db:"payment_status"`
	SpecialRequests  NullString    `json:"special_requests,omitempty" db:"special_requests"`
	ConfirmationCode string        `json:"confirmation_code" db:"confirmation_code"`
	CancelledAt      NullTime      `json:"cancelled_at,omitempty" db:"cancelled_at"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at" db:"updated_at"`
}

// Payment represents a completed payment for a booking
type Payment struct {
	ID            int64     `json:"id" db:"id"`
	BookingID     int64     `json:"booking_id" db:"booking_id"`
	Amount        float64   `json:"amount" db:"amount"`
	PaymentMethod string    `json:"payment_method" db:"payment_method"`
	TransactionID string    `json:"transaction_id" db:"transaction_id"`
	Status        string    `json:"status" db:"status"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// BookingDetail is a booking joined with hotel, room and payment data, used
// by the user dashboard and the admin back office.
type BookingDetail struct {
	Booking
	HotelID       int64      `json:"hotel_id" db:"hotel_id"`
	HotelName     string     `json:"hotel_name" db:"hotel_name"`
	HotelLocation NullString `json:"hotel_location,omitempty" db:"hotel_location"`
	RoomType      string     `json:"room_type" db:"room_type"`
	UserName      NullString `json:"user_name,omitempty" db:"user_name"`
	UserEmail     NullString `json:"user_email,omitempty" db:"user_email"`
	PaymentMethod NullString `json:"payment_method,omitempty" db:"payment_method"`
	TransactionID NullString `json:"transaction_id,omitempty" db:"transaction_id"`
}

// CreateBookingRequest represents the request to reserve a room
type CreateBookingRequest struct {
	HotelID         int64   `json:"hotel_id" binding:"required"`
	RoomID          int64   `json:"room_id" binding:"required"`
	CheckIn         string  `json:"check_in" binding:"required"`
	CheckOut        string  `json:"check_out" binding:"required"`
	Guests          int     `json:"guests" binding:"required,min=1"`
	TotalPrice      float64 `json:"total_price" binding:"required,gt=0"`
	SpecialRequests *string `json:"special_requests,omitempty"`
}

// PaymentRequest represents the request to pay for a pending booking
type PaymentRequest struct {
	BookingID      int64                  `json:"booking_id" binding:"required"`
	PaymentMethod  string                 `json:"payment_method" binding:"required"`
	Amount         float64                `json:"amount" binding:"required,gt=0"`
	PaymentDetails map[string]interface{} `json:"payment_details" binding:"required"`
}

// CancelBookingRequest represents the request to cancel a booking
type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// CanBePaid reports whether a payment may be applied to the booking
func (b *Booking) CanBePaid() bool {
	return b.Status == BookingStatusPending
}

// CanBeCancelled reports whether the booking may be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// ConfirmPayment flips the booking to confirmed/paid
func (b *Booking) ConfirmPayment() error {
	if !b.CanBePaid() {
		return errors.New("booking cannot be paid in its current status")
	}

	now := time.Now()
	b.Status = BookingStatusConfirmed
	b.PaymentStatus = PaymentStatusPaid
	b.UpdatedAt = now

	return nil
}

// Cancel marks the booking as cancelled
func (b *Booking) Cancel() error {
	if !b.CanBeCancelled() {
		return errors.New("booking cannot be cancelled")
	}

	now := time.Now()
	b.Status = BookingStatusCancelled
	b.CancelledAt = NullTime{}
	b.CancelledAt.Valid = true
	b.CancelledAt.Time = now
	b.UpdatedAt = now

	return nil
}

// Nights returns the number of nights covered by the booking
func (b *Booking) Nights() int {
	return int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
}

// AmountMatches reports whether a payment amount equals the booking total,
// compared at cent precision to avoid float representation noise.
func (b *Booking) AmountMatches(amount float64) bool {
	return math.Round(amount*100) == math.Round(b.TotalPrice*100)
}
