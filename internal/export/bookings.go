package export

import (
	"bytes"
	"fmt"

	"github.com/Domenick1991/oceanview/internal/domain"
	"github.com/xuri/excelize/v2"
)

const SheetBookings = "Bookings"

var bookingHeaders = []string{
	"ID", "Reference", "Cruise", "Departure", "Return", "Guests",
	"Cabin", "Total", "Status", "Payment", "Checked in", "Booked",
}

// BookingsXLSX writes one row per booking under a styled header row.
// cruiseTitles maps cruise ids to titles; unknown ids fall back to the id.
func BookingsXLSX(bookings []domain.Booking, cruiseTitles map[int64]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetBookings)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, header := range bookingHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(SheetBookings, cell, header)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(bookingHeaders), 1)
	f.SetCellStyle(SheetBookings, "A1", lastHeader, headerStyle)

	for i, b := range bookings {
		row := i + 2
		cruise, ok := cruiseTitles[b.CruiseID]
		if !ok {
			cruise = fmt.Sprintf("#%d", b.CruiseID)
		}
		values := []interface{}{
			b.ID,
			b.BookingReference,
			cruise,
			b.DepartureDate.Format("2006-01-02"),
			b.ReturnDate.Format("2006-01-02"),
			b.NumberOfGuests,
			b.CabinType,
			b.TotalPrice,
			string(b.Status),
			string(b.PaymentStatus),
			boolToYesNo(b.CheckedIn),
			b.BookingDate.Format("2006-01-02 15:04"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(SheetBookings, cell, v)
		}
	}

	f.SetColWidth(SheetBookings, "A", "A", 8)
	f.SetColWidth(SheetBookings, "B", "C", 26)
	f.SetColWidth(SheetBookings, "D", "L", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return bytes.Clone(buf.Bytes()), nil
}

func boolToYesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
