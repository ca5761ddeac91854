package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/stayloop/hotel-booking-backend/internal/models"
)

// RoomRepository handles database operations for room types and their
// facility mappings.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository creates a new RoomRepository
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// GetByID retrieves a room by ID
func (r *RoomRepository) GetByID(roomID int64) (*models.Room, error) {
	query := `
		SELECT id, hotel_id, room_type, price, capacity, quantity,
		       created_at, updated_at
		FROM rooms
		WHERE id = $1
	`

	room := &models.Room{}
	if err := r.db.Get(room, query, roomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch room: %w", err)
	}

	return room, nil
}

// ListByHotel returns all room types of a hotel, cheapest first
func (r *RoomRepository) ListByHotel(hotelID int64) ([]models.Room, error) {
	query := `
		SELECT id, hotel_id, room_type, price, capacity, quantity,
		       created_at, updated_at
		FROM rooms
		WHERE hotel_id = $1
		ORDER BY price
	`

	rooms := []models.Room{}
	if err := r.db.Select(&rooms, query, hotelID); err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	return rooms, nil
}

// Create adds a room type to a hotel together with its facility mappings
func (r *RoomRepository) Create(hotelID int64, req *models.CreateRoomRequest) (*models.Room, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowx(`SELECT EXISTS(SELECT 1 FROM hotels WHERE id = $1)`, hotelID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check hotel: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	room := &models.Room{}
	err = tx.QueryRowx(`
		INSERT INTO rooms (hotel_id, room_type, price, capacity, quantity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, hotel_id, room_type, price, capacity, quantity,
		          created_at, updated_at
	`, hotelID, req.RoomType, req.Price, req.Capacity, req.Quantity).StructScan(room)
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	if err := linkFacilities(tx, "room_facilities", "room_id", room.ID, req.Facilities); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	room.Facilities = req.Facilities
	return room, nil
}

// Update applies partial changes to a room type
func (r *RoomRepository) Update(roomID int64, req *models.UpdateRoomRequest) (*models.Room, error) {
	query := `
		UPDATE rooms
		SET room_type = COALESCE($2, room_type),
		    price = COALESCE($3, price),
		    capacity = COALESCE($4, capacity),
		    quantity = COALESCE($5, quantity),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING id, hotel_id, room_type, price, capacity, quantity,
		          created_at, updated_at
	`

	room := &models.Room{}
	err := r.db.QueryRowx(query, roomID, req.RoomType, req.Price, req.Capacity, req.Quantity).StructScan(room)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update room: %w", err)
	}

	return room, nil
}

// Delete removes a room type. Rooms referenced by non-cancelled bookings are
// protected by the bookings FK and surface as a conflict.
func (r *RoomRepository) Delete(roomID int64) error {
	result, err := r.db.Exec(`DELETE FROM rooms WHERE id = $1`, roomID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrInvalidBookingState
		}
		return fmt.Errorf("failed to delete room: %w", err)
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
