package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/stayloop/hotel-booking-backend/internal/models"
)

// SearchRepository runs the hotel availability search. The query is built
// dynamically from the filter set; a room type counts as available when no
// non-cancelled booking overlaps the requested dates.
type SearchRepository struct {
	db *sqlx.DB
}

// NewSearchRepository creates a new SearchRepository
func NewSearchRepository(db *sqlx.DB) *SearchRepository {
	return &SearchRepository{db: db}
}

// Search returns hotels with at least MinRooms distinct room types matching
// the filters. Price bounds apply per room type; rating applies per hotel.
func (r *SearchRepository) Search(filters *models.SearchFilters) ([]models.HotelSummary, error) {
	query := `
		SELECT h.id, h.name, h.location, h.description, h.rating,
		       MIN(r.price) AS min_price, MAX(r.price) AS max_price,
		       COUNT(DISTINCT r.id) AS available_rooms
		FROM hotels h
		JOIN rooms r ON r.hotel_id = h.id
		WHERE 1=1
	`
	args := []interface{}{}

	if filters.Location != "" {
		args = append(args, "%"+filters.Location+"%")
		query += fmt.Sprintf(" AND h.location ILIKE $%d", len(args))
	}
	if filters.Rating != nil {
		args = append(args, *filters.Rating)
		query += fmt.Sprintf(" AND h.rating >= $%d", len(args))
	}
	if filters.Guests > 0 {
		args = append(args, filters.Guests)
		query += fmt.Sprintf(" AND r.capacity >= $%d", len(args))
	}
	if filters.PriceMin != nil {
		args = append(args, *filters.PriceMin)
		query += fmt.Sprintf(" AND r.price >= $%d", len(args))
	}
	if filters.PriceMax != nil {
		args = append(args, *filters.PriceMax)
		query += fmt.Sprintf(" AND r.price <= $%d", len(args))
	}
	if filters.CheckIn != nil && filters.CheckOut != nil {
		args = append(args, *filters.CheckIn, *filters.CheckOut)
		query += fmt.Sprintf(`
			AND r.id NOT IN (
				SELECT b.room_id FROM bookings b
				WHERE b.status != 'cancelled'
				  AND b.check_in < $%d
				  AND b.check_out > $%d
			)`, len(args), len(args)-1)
	}

	minRooms := filters.MinRooms
	if minRooms < 1 {
		minRooms = 1
	}
	args = append(args, minRooms)
	query += fmt.Sprintf(`
		GROUP BY h.id
		HAVING COUNT(DISTINCT r.id) >= $%d
		ORDER BY h.id
	`, len(args))

	hotels := []models.HotelSummary{}
	if err := r.db.Select(&hotels, query, args...); err != nil {
		return nil, fmt.Errorf("failed to search hotels: %w", err)
	}

	for i := range hotels {
		facilities := []string{}
		err := r.db.Select(&facilities, `
			SELECT f.name
			FROM facilities f
			JOIN hotel_facilities hf ON hf.facility_id = f.id
			WHERE hf.hotel_id = $1
			ORDER BY f.name
		`, hotels[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch hotel facilities: %w", err)
		}
		hotels[i].Facilities = facilities
	}

	return hotels, nil
}
