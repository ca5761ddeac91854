package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stayloop/hotel-booking-backend/internal/models"
)

// HotelRepository handles database operations for hotels, their images and
// facilities. It takes *sqlx.DB directly because create and update run
// multi-statement transactions over the facility mapping tables.
type HotelRepository struct {
	db *sqlx.DB
}

// NewHotelRepository creates a new HotelRepository
func NewHotelRepository(db *sqlx.DB) *HotelRepository {
	return &HotelRepository{db: db}
}

// ListAll returns every hotel, newest first
func (r *HotelRepository) ListAll() ([]models.Hotel, error) {
	query := `
		SELECT id, name, location, description, rating, created_at, updated_at
		FROM hotels
		ORDER BY created_at DESC
	`

	hotels := []models.Hotel{}
	if err := r.db.Select(&hotels, query); err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}

	return hotels, nil
}

// GetByID retrieves a single hotel row
func (r *HotelRepository) GetByID(hotelID int64) (*models.Hotel, error) {
	query := `
		SELECT id, name, location, description, rating, created_at, updated_at
		FROM hotels
		WHERE id = $1
	`

	hotel := &models.Hotel{}
	if err := r.db.Get(hotel, query, hotelID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch hotel: %w", err)
	}

	return hotel, nil
}

// GetDetail returns the full hotel view: the hotel row with review
// aggregates, plus its images, facilities, rooms and the ten most recent
// reviews.
func (r *HotelRepository) GetDetail(hotelID int64) (*models.HotelDetail, error) {
	query := `
		SELECT h.id, h.name, h.location, h.description, h.rating,
		       h.created_at, h.updated_at,
		       COUNT(rv.id) AS review_count,
		       AVG(rv.rating) AS average_rating
		FROM hotels h
		LEFT JOIN reviews rv ON rv.hotel_id = h.id
		WHERE h.id = $1
		GROUP BY h.id
	`

	detail := &models.HotelDetail{}
	err := r.db.QueryRowx(query, hotelID).Scan(
		&detail.ID, &detail.Name, &detail.Location, &detail.Description,
		&detail.Rating, &detail.CreatedAt, &detail.UpdatedAt,
		&detail.ReviewCount, &detail.AverageRating,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch hotel detail: %w", err)
	}

	images := []string{}
	err = r.db.Select(&images, `
		SELECT image_url FROM hotel_images
		WHERE hotel_id = $1
		ORDER BY sort_order, id
	`, hotelID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hotel images: %w", err)
	}
	detail.Images = images

	facilities, err := r.hotelFacilities(hotelID)
	if err != nil {
		return nil, err
	}
	detail.Facilities = facilities

	rooms, err := r.roomsWithFacilities(hotelID)
	if err != nil {
		return nil, err
	}
	detail.Rooms = rooms

	reviews := []models.Review{}
	err = r.db.Select(&reviews, `
		SELECT rv.id, rv.hotel_id, rv.user_id, u.full_name AS user_name,
		       rv.rating, rv.comment, rv.created_at
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.hotel_id = $1
		ORDER BY rv.created_at DESC
		LIMIT 10
	`, hotelID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}
	detail.Reviews = reviews

	return detail, nil
}

func (r *HotelRepository) hotelFacilities(hotelID int64) ([]string, error) {
	facilities := []string{}
	err := r.db.Select(&facilities, `
		SELECT f.name
		FROM facilities f
		JOIN hotel_facilities hf ON hf.facility_id = f.id
		WHERE hf.hotel_id = $1
		ORDER BY f.name
	`, hotelID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch hotel facilities: %w", err)
	}
	return facilities, nil
}

func (r *HotelRepository) roomsWithFacilities(hotelID int64) ([]models.Room, error) {
	rooms := []models.Room{}
	err := r.db.Select(&rooms, `
		SELECT id, hotel_id, room_type, price, capacity, quantity,
		       created_at, updated_at
		FROM rooms
		WHERE hotel_id = $1
		ORDER BY price
	`, hotelID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rooms: %w", err)
	}

	for i := range rooms {
		facilities := []string{}
		err = r.db.Select(&facilities, `
			SELECT f.name
			FROM facilities f
			JOIN room_facilities rf ON rf.facility_id = f.id
			WHERE rf.room_id = $1
			ORDER BY f.name
		`, rooms[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch room facilities: %w", err)
		}
		rooms[i].Facilities = facilities
	}

	return rooms, nil
}

// Create inserts a hotel and its facility mappings in one transaction.
// Facility names are upserted into the shared facilities table.
func (r *HotelRepository) Create(req *models.CreateHotelRequest) (*models.Hotel, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	hotel := &models.Hotel{}
	err = tx.QueryRowx(`
		INSERT INTO hotels (name, location, description)
		VALUES ($1, $2, $3)
		RETURNING id, name, location, description, rating, created_at, updated_at
	`, req.Name, req.Location, nullableString(req.Description)).StructScan(hotel)
	if err != nil {
		return nil, fmt.Errorf("failed to create hotel: %w", err)
	}

	if err := linkFacilities(tx, "hotel_facilities", "hotel_id", hotel.ID, req.Facilities); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return hotel, nil
}

// Update applies partial changes to a hotel. When Facilities is non-nil the
// whole mapping set is replaced.
func (r *HotelRepository) Update(hotelID int64, req *models.UpdateHotelRequest) (*models.Hotel, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	hotel := &models.Hotel{}
	err = tx.QueryRowx(`
		UPDATE hotels
		SET name = COALESCE($2, name),
		    location = COALESCE($3, location),
		    description = COALESCE($4, description),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, name, location, description, rating, created_at, updated_at
	`, hotelID, req.Name, req.Location, req.Description).StructScan(hotel)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update hotel: %w", err)
	}

	if req.Facilities != nil {
		if _, err := tx.Exec(`DELETE FROM hotel_facilities WHERE hotel_id = $1`, hotelID); err != nil {
			return nil, fmt.Errorf("failed to clear hotel facilities: %w", err)
		}
		if err := linkFacilities(tx, "hotel_facilities", "hotel_id", hotelID, req.Facilities); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return hotel, nil
}

// Delete removes a hotel. Rooms, images, facility mappings and reviews go
// with it via ON DELETE CASCADE; hotels with non-cancelled bookings are
// protected by the rooms FK and surface as a conflict.
func (r *HotelRepository) Delete(hotelID int64) error {
	result, err := r.db.Exec(`DELETE FROM hotels WHERE id = $1`, hotelID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrInvalidBookingState
		}
		return fmt.Errorf("failed to delete hotel: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// linkFacilities upserts facility names and inserts mapping rows for the
// given owner column. Shared by the hotel and room repositories.
func linkFacilities(tx *sqlx.Tx, table, ownerCol string, ownerID int64, names []string) error {
	for _, name := range names {
		var facilityID int64
		err := tx.QueryRowx(`
			INSERT INTO facilities (name)
			VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, name).Scan(&facilityID)
		if err != nil {
			return fmt.Errorf("failed to upsert facility: %w", err)
		}

		_, err = tx.Exec(fmt.Sprintf(`
			INSERT INTO %s (%s, facility_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, table, ownerCol), ownerID, facilityID)
		if err != nil {
			return fmt.Errorf("failed to link facility: %w", err)
		}
	}
	return nil
}

// isForeignKeyViolation reports whether err is a PostgreSQL foreign key
// violation (class 23503).
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return false
}

// nullableString converts an optional request field to a driver value
func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
