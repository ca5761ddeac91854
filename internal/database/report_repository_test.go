package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayloop/hotel-booking-backend/internal/models"
)

func TestAggregateBookings(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mockDB := &mockDatabase{db: sqlx.NewDb(db, "sqlmock")}
	repo := NewReportRepository(mockDB)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)

	t.Run("Daily Buckets", func(t *testing.T) {
		mock.ExpectQuery(`date_trunc\('day', b.created_at\)`).
			WithArgs(from, to.AddDate(0, 0, 1)).
			WillReturnRows(sqlmock.NewRows([]string{"bucket", "total_bookings", "total_revenue"}).
				AddRow("2026-08-01", int64(3), 620.00).
				AddRow("2026-08-03", int64(1), 0.00))

		rows, err := repo.Aggregate(from, to, models.ReportGroupByDay)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "2026-08-01", rows[0].Bucket)
		assert.Equal(t, int64(3), rows[0].TotalBookings)
		assert.Equal(t, 620.00, rows[0].TotalRevenue)
		assert.Equal(t, 0.00, rows[1].TotalRevenue)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Monthly Buckets", func(t *testing.T) {
		mock.ExpectQuery(`date_trunc\('month', b.created_at\)`).
			WithArgs(from, to.AddDate(0, 0, 1)).
			WillReturnRows(sqlmock.NewRows([]string{"bucket", "total_bookings", "total_revenue"}).
				AddRow("2026-08", int64(4), 620.00))

		rows, err := repo.Aggregate(from, to, models.ReportGroupByMonth)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "2026-08", rows[0].Bucket)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Invalid GroupBy Falls Back To Day", func(t *testing.T) {
		mock.ExpectQuery(`date_trunc\('day', b.created_at\)`).
			WithArgs(from, to.AddDate(0, 0, 1)).
			WillReturnRows(sqlmock.NewRows([]string{"bucket", "total_bookings", "total_revenue"}))

		rows, err := repo.Aggregate(from, to, models.ReportGroupBy("hour"))
		require.NoError(t, err)
		assert.Empty(t, rows)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database Error", func(t *testing.T) {
		mock.ExpectQuery(`date_trunc\('day', b.created_at\)`).
			WithArgs(from, to.AddDate(0, 0, 1)).
			WillReturnError(fmt.Errorf("database error"))

		rows, err := repo.Aggregate(from, to, models.ReportGroupByDay)
		assert.Error(t, err)
		assert.Nil(t, rows)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
