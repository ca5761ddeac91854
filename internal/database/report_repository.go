package database

import (
	"fmt"
	"time"

	"github.com/stayloop/hotel-booking-backend/internal/models"
)

// ReportRepository produces the admin bookings/revenue aggregates
type ReportRepository struct {
	db DB
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// bucketFormat maps a granularity to the label printed for each bucket
func bucketFormat(groupBy models.ReportGroupBy) string {
	switch groupBy {
	case models.ReportGroupByWeek:
		return "IYYY-IW"
	case models.ReportGroupByMonth:
		return "YYYY-MM"
	default:
		return "YYYY-MM-DD"
	}
}

// Aggregate counts non-cancelled bookings and sums paid revenue per time
// bucket inside [from, to]. Bookings are bucketed by creation date; only
// paid bookings contribute revenue.
func (r *ReportRepository) Aggregate(from, to time.Time, groupBy models.ReportGroupBy) ([]models.ReportRow, error) {
	// groupBy is interpolated into the query; restrict it to the enum
	if !groupBy.Valid() {
		groupBy = models.ReportGroupByDay
	}

	query := fmt.Sprintf(`
		SELECT to_char(date_trunc('%s', b.created_at), '%s') AS bucket,
		       COUNT(*) AS total_bookings,
		       COALESCE(SUM(b.total_price) FILTER (WHERE b.payment_status = 'paid'), 0) AS total_revenue
		FROM bookings b
		WHERE b.status != 'cancelled'
		  AND b.created_at >= $1
		  AND b.created_at < $2
		GROUP BY date_trunc('%s', b.created_at)
		ORDER BY date_trunc('%s', b.created_at)
	`, groupBy, bucketFormat(groupBy), groupBy, groupBy)

	// to is inclusive at day granularity
	end := to.AddDate(0, 0, 1)

	rows, err := r.db.Query(query, from, end)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate bookings: %w", err)
	}
	defer rows.Close()

	data := []models.ReportRow{}
	for rows.Next() {
		var row models.ReportRow
		if err := rows.Scan(&row.Bucket, &row.TotalBookings, &row.TotalRevenue); err != nil {
			return nil, fmt.Errorf("failed to scan report row: %w", err)
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return data, nil
}
