package models

import (
	"errors"
	"time"
)

// Review represents a guest review of a hotel
type Review struct {
	ID        int64      `json:"id" db:"id"`
	HotelID   int64      `json:"hotel_id" db:"hotel_id"`
	UserID    int64      `json:"user_id" db:"user_id"`
	UserName  NullString `json:"user_name,omitempty" db:"user_name"`
	Rating    int        `json:"rating" db:"rating"`
	Comment   NullString `json:"comment,omitempty" db:"comment"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// CreateReviewRequest represents the request to post a review
type CreateReviewRequest struct {
	Rating  int     `json:"rating" binding:"required"`
	Comment *string `json:"comment,omitempty"`
}

// Validate validates the create review request
func (r *CreateReviewRequest) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return errors.New("rating must be between 1 and 5")
	}
	return nil
}
