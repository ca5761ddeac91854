package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/stayloop/hotel-booking-backend/internal/models"
	"github.com/stayloop/hotel-booking-backend/pkg/validator"
)

// ErrInvalidReportParams marks report errors caused by bad request input
var ErrInvalidReportParams = errors.New("invalid report parameters")

// ReportStore is the repository surface the report service needs
type ReportStore interface {
	Aggregate(from, to time.Time, groupBy models.ReportGroupBy) ([]models.ReportRow, error)
}

// ReportService builds the admin bookings/revenue report
type ReportService struct {
	store ReportStore
}

// NewReportService creates a new report service
func NewReportService(store ReportStore) *ReportService {
	return &ReportService{store: store}
}

// BuildReport aggregates bookings inside [from, to] and computes window
// totals and per-day averages. Empty bounds default to the last 30 days.
func (s *ReportService) BuildReport(fromStr, toStr string, groupBy models.ReportGroupBy) (*models.Report, error) {
	if groupBy == "" {
		groupBy = models.ReportGroupByDay
	}
	if !groupBy.Valid() {
		return nil, fmt.Errorf("%w: group_by must be day, week or month", ErrInvalidReportParams)
	}

	now := time.Now().UTC().Truncate(24 * time.Hour)
	from := now.AddDate(0, 0, -30)
	to := now

	var err error
	if fromStr != "" {
		from, err = validator.ParseDate(fromStr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidReportParams, err)
		}
	}
	if toStr != "" {
		to, err = validator.ParseDate(toStr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidReportParams, err)
		}
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: to date must not be before from date", ErrInvalidReportParams)
	}

	data, err := s.store.Aggregate(from, to, groupBy)
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		GroupBy: groupBy,
		Period: models.ReportPeriod{
			From: from.Format(validator.DateLayout),
			To:   to.Format(validator.DateLayout),
		},
		Data:    data,
		Summary: summarize(data, from, to),
	}

	return report, nil
}

// summarize totals the rows and derives averages over the elapsed days
// between the bounds. Equal bounds span zero days and report zero averages.
func summarize(data []models.ReportRow, from, to time.Time) models.ReportSummary {
	summary := models.ReportSummary{}
	for _, row := range data {
		summary.TotalBookings += row.TotalBookings
		summary.TotalRevenue += row.TotalRevenue
	}

	days := to.Sub(from).Hours() / 24
	if days > 0 {
		summary.AverageDailyBooking = round2(float64(summary.TotalBookings) / days)
		summary.AverageDailyRevenue = round2(summary.TotalRevenue / days)
	}

	return summary
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
