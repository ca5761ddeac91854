package database

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayloop/hotel-booking-backend/internal/models"
)

func searchResultColumns() []string {
	return []string{
		"id", "name", "location", "description", "rating",
		"min_price", "max_price", "available_rooms",
	}
}

func TestSearchHotels(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSearchRepository(sqlx.NewDb(db, "sqlmock"))

	t.Run("Location Only", func(t *testing.T) {
		mock.ExpectQuery(`SELECT h.id, h.name, h.location`).
			WithArgs("%Paris%", 1).
			WillReturnRows(sqlmock.NewRows(searchResultColumns()).
				AddRow(int64(1), "Hotel Lumiere", "Paris", "Near the river", 4.5, 120.0, 300.0, 3).
				AddRow(int64(2), "Gare du Nord Inn", "Paris", nil, nil, 80.0, 80.0, 1))
		mock.ExpectQuery(`SELECT f.name`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("parking").AddRow("wifi"))
		mock.ExpectQuery(`SELECT f.name`).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"name"}))

		hotels, err := repo.Search(&models.SearchFilters{Location: "Paris"})
		require.NoError(t, err)
		require.Len(t, hotels, 2)
		assert.Equal(t, "Hotel Lumiere", hotels[0].Name)
		assert.Equal(t, 3, hotels[0].AvailableRoomTypes)
		assert.Equal(t, []string{"parking", "wifi"}, hotels[0].Facilities)
		assert.False(t, hotels[1].Rating.Valid)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Full Filter Set", func(t *testing.T) {
		checkIn := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
		checkOut := time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)
		priceMin := 50.0
		priceMax := 200.0
		rating := 4.0

		filters := &models.SearchFilters{
			Location: "Paris",
			CheckIn:  &checkIn,
			CheckOut: &checkOut,
			Guests:   2,
			MinRooms: 2,
			PriceMin: &priceMin,
			PriceMax: &priceMax,
			Rating:   &rating,
		}

		// the overlap subquery must keep check-out exclusive so back-to-back
		// stays do not exclude a room
		mock.ExpectQuery(`(?s)SELECT h.id, h.name, h.location.*NOT IN.*b\.check_in < \$7\s+AND b\.check_out > \$6`).
			WithArgs("%Paris%", rating, 2, priceMin, priceMax, checkIn, checkOut, 2).
			WillReturnRows(sqlmock.NewRows(searchResultColumns()).
				AddRow(int64(1), "Hotel Lumiere", "Paris", nil, 4.5, 120.0, 180.0, 2))
		mock.ExpectQuery(`SELECT f.name`).
			WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("wifi"))

		hotels, err := repo.Search(filters)
		require.NoError(t, err)
		require.Len(t, hotels, 1)
		assert.Equal(t, 2, hotels[0].AvailableRoomTypes)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No Results", func(t *testing.T) {
		mock.ExpectQuery(`SELECT h.id, h.name, h.location`).
			WithArgs("%Nowhere%", 1).
			WillReturnRows(sqlmock.NewRows(searchResultColumns()))

		hotels, err := repo.Search(&models.SearchFilters{Location: "Nowhere"})
		require.NoError(t, err)
		assert.Empty(t, hotels)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
