package models

import "time"

// Hotel represents a property that owns rooms
type Hotel struct {
	ID          int64       `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Location    string      `json:"location" db:"location"`
	Description NullString  `json:"description,omitempty" db:"description"`
	Rating      NullFloat64 `json:"rating,omitempty" db:"rating"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// Room represents a bookable room type within a hotel. Quantity is the
// number of physical units; the available count for a date range is derived
// from bookings, never stored.
type Room struct {
	ID         int64      `json:"id" db:"id"`
	HotelID    int64      `json:"hotel_id" db:"hotel_id"`
	RoomType   string     `json:"room_type" db:"room_type"`
	Price      float64    `json:"price" db:"price"`
	Capacity   int        `json:"capacity" db:"capacity"`
	Quantity   int        `json:"quantity" db:"quantity"`
	Facilities []string   `json:"facilities,omitempty" db:"-"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// HotelDetail is the full hotel view returned by GET /hotels/:id
type HotelDetail struct {
	Hotel
	ReviewCount   int64       `json:"review_count" db:"review_count"`
	AverageRating NullFloat64 `json:"average_rating" db:"average_rating"`
	Images        []string    `json:"images"`
	Facilities    []string    `json:"facilities"`
	Rooms         []Room      `json:"rooms"`
	Reviews       []Review    `json:"reviews"`
}

// CreateHotelRequest represents the admin request to create a hotel
type CreateHotelRequest struct {
	Name        string   `json:"name" binding:"required"`
	Location    string   `json:"location" binding:"required"`
	Description *string  `json:"description,omitempty"`
	Facilities  []string `json:"facilities,omitempty"`
}

// UpdateHotelRequest represents the admin request to update a hotel
type UpdateHotelRequest struct {
	Name        *string  `json:"name,omitempty"`
	Location    *string  `json:"location,omitempty"`
	Description *string  `json:"description,omitempty"`
	Facilities  []string `json:"facilities,omitempty"`
}

// CreateRoomRequest represents the admin request to add a room type
type CreateRoomRequest struct {
	RoomType   string   `json:"room_type" binding:"required"`
	Price      float64  `json:"price" binding:"required,gt=0"`
	Capacity   int      `json:"capacity" binding:"required,min=1"`
	Quantity   int      `json:"quantity" binding:"required,min=1"`
	Facilities []string `json:"facilities,omitempty"`
}

// UpdateRoomRequest represents the admin request to update a room type
type UpdateRoomRequest struct {
	RoomType *string  `json:"room_type,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Capacity *int     `json:"capacity,omitempty"`
	Quantity *int     `json:"quantity,omitempty"`
}
