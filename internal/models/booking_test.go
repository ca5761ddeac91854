package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingTransitions(t *testing.T) {
	t.Run("Pending Can Be Paid", func(t *testing.T) {
		b := &Booking{Status: BookingStatusPending, PaymentStatus: PaymentStatusUnpaid}

		require.True(t, b.CanBePaid())
		require.NoError(t, b.ConfirmPayment())
		assert.Equal(t, BookingStatusConfirmed, b.Status)
		assert.Equal(t, PaymentStatusPaid, b.PaymentStatus)
	})

	t.Run("Confirmed Cannot Be Paid Again", func(t *testing.T) {
		b := &Booking{Status: BookingStatusConfirmed, PaymentStatus: PaymentStatusPaid}

		assert.False(t, b.CanBePaid())
		assert.Error(t, b.ConfirmPayment())
	})

	t.Run("Cancelled Cannot Be Paid", func(t *testing.T) {
		b := &Booking{Status: BookingStatusCancelled}

		assert.False(t, b.CanBePaid())
	})

	t.Run("Pending And Confirmed Can Be Cancelled", func(t *testing.T) {
		pending := &Booking{Status: BookingStatusPending}
		confirmed := &Booking{Status: BookingStatusConfirmed}

		require.NoError(t, pending.Cancel())
		assert.Equal(t, BookingStatusCancelled, pending.Status)
		assert.True(t, pending.CancelledAt.Valid)

		require.NoError(t, confirmed.Cancel())
		assert.Equal(t, BookingStatusCancelled, confirmed.Status)
	})

	t.Run("Cancel Is Not Idempotent", func(t *testing.T) {
		b := &Booking{Status: BookingStatusPending}

		require.NoError(t, b.Cancel())
		assert.Error(t, b.Cancel())
	})
}

func TestAmountMatches(t *testing.T) {
	b := &Booking{TotalPrice: 450.00}

	assert.True(t, b.AmountMatches(450.00))
	assert.True(t, b.AmountMatches(450.004)) // below cent precision
	assert.False(t, b.AmountMatches(450.01))
	assert.False(t, b.AmountMatches(449.99))
	assert.False(t, b.AmountMatches(0))

	// float representation noise must not reject an exact total
	sum := &Booking{TotalPrice: 0.1 + 0.2}
	assert.True(t, sum.AmountMatches(0.3))
}

func TestNights(t *testing.T) {
	checkIn := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		checkOut time.Time
		want     int
	}{
		{"One Night", checkIn.AddDate(0, 0, 1), 1},
		{"Three Nights", checkIn.AddDate(0, 0, 3), 3},
		{"Two Weeks", checkIn.AddDate(0, 0, 14), 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Booking{CheckIn: checkIn, CheckOut: tt.checkOut}
			assert.Equal(t, tt.want, b.Nights())
		})
	}
}
