package ticket

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/oceanview/internal/domain"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

var ErrNotCheckedIn = errors.New("boarding pass is only available after check-in")

// QRPayload is the string scanned at the gangway.
func QRPayload(b *domain.Booking) string {
	return fmt.Sprintf("%s|%d|%s", b.BookingReference, b.ID, b.DepartureDate.Format("2006-01-02"))
}

// BoardingPass renders an A4 PDF for a checked-in booking.
func BoardingPass(b *domain.Booking, cruise *domain.Cruise, passenger string) ([]byte, error) {
	if !b.CheckedIn {
		return nil, fmt.Errorf("booking %s: %w", b.BookingReference, ErrNotCheckedIn)
	}

	qr, err := qrcode.Encode(QRPayload(b), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	cruiseName := "Cruise"
	departFrom := ""
	if cruise != nil {
		cruiseName = cruise.Title
		departFrom = cruise.DepartureFrom
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetTitle("Boarding Pass "+b.BookingReference, false)
	pdf.AddPage()

	pdf.SetFillColor(12, 74, 110)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 22)
	pdf.CellFormat(0, 16, "OceanView Boarding Pass", "", 1, "C", true, 0, "")
	pdf.Ln(6)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, cruiseName, "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 12)

	rows := [][2]string{
		{"Reference", b.BookingReference},
		{"Passenger", passenger},
		{"Departure", b.DepartureDate.Format("02 Jan 2006")},
		{"Return", b.ReturnDate.Format("02 Jan 2006")},
		{"Guests", fmt.Sprintf("%d", b.NumberOfGuests)},
		{"Cabin", b.CabinType},
	}
	if departFrom != "" {
		rows = append(rows, [2]string{"Port", departFrom})
	}
	if b.CheckInDate != nil {
		rows = append(rows, [2]string{"Checked in", b.CheckInDate.Format("02 Jan 2006 15:04")})
	}
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(40, 9, row[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 12)
		pdf.CellFormat(0, 9, row[1], "", 1, "L", false, 0, "")
	}

	imgOpts := gofpdf.ImageOptions{ImageType: "png"}
	pdf.RegisterImageOptionsReader("qr", imgOpts, bytes.NewReader(qr))
	pdf.ImageOptions("qr", 140, 50, 50, 50, false, imgOpts, 0, "")

	pdf.SetY(-30)
	pdf.SetFont("Arial", "I", 10)
	pdf.CellFormat(0, 10, fmt.Sprintf("Issued %s. Present this pass with photo ID at embarkation.", time.Now().Format("02 Jan 2006 15:04")), "T", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render boarding pass: %w", err)
	}
	return buf.Bytes(), nil
}
