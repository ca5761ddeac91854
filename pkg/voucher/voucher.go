// Package voucher renders booking vouchers as PDF and reports as CSV.
package voucher

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/stayloop/hotel-booking-backend/internal/models"
)

// RenderPDF renders the voucher for a confirmed booking and returns the raw
// PDF bytes. Field set matches the printed voucher: confirmation code,
// hotel, guest, dates, room type and total.
func RenderPDF(b *models.BookingDetail) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Booking Voucher", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 12)
	lines := []string{
		"Confirmation Code: " + b.ConfirmationCode,
		"Hotel: " + b.HotelName,
		"Guest: " + b.UserName.String,
		"Check-in: " + b.CheckIn.Format("2006-01-02"),
		"Check-out: " + b.CheckOut.Format("2006-01-02"),
		"Room Type: " + b.RoomType,
		fmt.Sprintf("Guests: %d", b.Guests),
		fmt.Sprintf("Total: %.2f", b.TotalPrice),
	}
	for _, line := range lines {
		pdf.CellFormat(0, 10, line, "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render voucher: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteReportCSV writes the report rows as CSV: one line per bucket plus a
// trailing summary line.
func WriteReportCSV(w io.Writer, report *models.Report) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"date", "total_bookings", "total_revenue"}); err != nil {
		return err
	}

	for _, row := range report.Data {
		record := []string{
			row.Bucket,
			strconv.FormatInt(row.TotalBookings, 10),
			strconv.FormatFloat(row.TotalRevenue, 'f', 2, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	summary := []string{
		"total",
		strconv.FormatInt(report.Summary.TotalBookings, 10),
		strconv.FormatFloat(report.Summary.TotalRevenue, 'f', 2, 64),
	}
	if err := cw.Write(summary); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}
