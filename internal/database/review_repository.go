package database

import (
	"fmt"

	"github.com/stayloop/hotel-booking-backend/internal/models"
)

// ReviewRepository handles database operations for hotel reviews
type ReviewRepository struct {
	db DB
}

// NewReviewRepository creates a new ReviewRepository
func NewReviewRepository(db DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create posts a review for a hotel. The user must have a confirmed booking
// at the hotel whose stay has already ended, and may review each hotel only
// once.
func (r *ReviewRepository) Create(hotelID, userID int64, req *models.CreateReviewRequest) (*models.Review, error) {
	var eligible bool
	err := r.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1
			FROM bookings b
			JOIN rooms rm ON rm.id = b.room_id
			WHERE rm.hotel_id = $1
			  AND b.user_id = $2
			  AND b.status = 'confirmed'
			  AND b.check_out <= CURRENT_DATE
		)
	`, hotelID, userID).Scan(&eligible)
	if err != nil {
		return nil, fmt.Errorf("failed to check review eligibility: %w", err)
	}
	if !eligible {
		return nil, ErrReviewNotAllowed
	}

	review := &models.Review{}
	err = r.db.QueryRow(`
		INSERT INTO reviews (hotel_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, hotel_id, user_id, rating, comment, created_at
	`, hotelID, userID, req.Rating, nullableString(req.Comment)).Scan(
		&review.ID, &review.HotelID, &review.UserID,
		&review.Rating, &review.Comment, &review.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	return review, nil
}

// ListByHotel returns the most recent reviews of a hotel
func (r *ReviewRepository) ListByHotel(hotelID int64, limit int) ([]models.Review, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT rv.id, rv.hotel_id, rv.user_id, u.full_name AS user_name,
		       rv.rating, rv.comment, rv.created_at
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.hotel_id = $1
		ORDER BY rv.created_at DESC
		LIMIT $2
	`

	reviews := []models.Review{}
	rows, err := r.db.Query(query, hotelID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rv models.Review
		if err := rows.Scan(
			&rv.ID, &rv.HotelID, &rv.UserID, &rv.UserName,
			&rv.Rating, &rv.Comment, &rv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reviews, nil
}
