package models

import "time"

// ReportGroupBy is the bucketing granularity for admin reports
type ReportGroupBy string

const (
	ReportGroupByDay   ReportGroupBy = "day"
	ReportGroupByWeek  ReportGroupBy = "week"
	ReportGroupByMonth ReportGroupBy = "month"
)

// Valid reports whether the granularity is one of day/week/month
func (g ReportGroupBy) Valid() bool {
	return g == ReportGroupByDay || g == ReportGroupByWeek || g == ReportGroupByMonth
}

// ReportRow is one time bucket of the bookings/revenue report
type ReportRow struct {
	Bucket        string  `json:"date" db:"bucket"`
	TotalBookings int64   `json:"total_bookings" db:"total_bookings"`
	TotalRevenue  float64 `json:"total_revenue" db:"total_revenue"`
}

// ReportSummary aggregates the whole reporting window
type ReportSummary struct {
	TotalBookings       int64   `json:"total_bookings"`
	TotalRevenue        float64 `json:"total_revenue"`
	AverageDailyBooking float64 `json:"average_daily_bookings"`
	AverageDailyRevenue float64 `json:"average_daily_revenue"`
}

// ReportPeriod echoes the requested window
type ReportPeriod struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Report is the admin reporting payload
type Report struct {
	GroupBy ReportGroupBy `json:"group_by"`
	Period  ReportPeriod  `json:"period"`
	Data    []ReportRow   `json:"data"`
	Summary ReportSummary `json:"summary"`
}

// AdminBookingFilters narrow the admin bookings listing
type AdminBookingFilters struct {
	Status   string
	DateFrom *time.Time
	DateTo   *time.Time
	HotelID  *int64
}
