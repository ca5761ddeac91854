// Package queue publishes and consumes booking domain events over RabbitMQ.
package queue

// BookingConfirmedQueue is the durable queue carrying confirmation events
const BookingConfirmedQueue = "booking.confirmed"

// BookingConfirmedEvent is emitted after a booking is paid and confirmed.
// The consumer uses it to send the confirmation mail, so it carries
// everything the template needs without further lookups.
type BookingConfirmedEvent struct {
	BookingID        int64   `json:"booking_id"`
	ConfirmationCode string  `json:"confirmation_code"`
	UserEmail        string  `json:"user_email"`
	UserName         string  `json:"user_name"`
	HotelName        string  `json:"hotel_name"`
	RoomType         string  `json:"room_type"`
	CheckIn          string  `json:"check_in"`
	CheckOut         string  `json:"check_out"`
	Guests           int     `json:"guests"`
	TotalPrice       float64 `json:"total_price"`
	ConfirmedAt      string  `json:"confirmed_at"`
}
