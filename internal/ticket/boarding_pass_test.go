package ticket

import (
	"bytes"
	"testing"
	"time"

	"github.com/Domenick1991/oceanview/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checkedInBooking() *domain.Booking {
	checkIn := time.Date(2026, 6, 14, 8, 30, 0, 0, time.UTC)
	return &domain.Booking{
		ID:               17,
		BookingReference: "BK-0042-17",
		DepartureDate:    time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC),
		ReturnDate:       time.Date(2026, 6, 21, 0, 0, 0, 0, time.UTC),
		NumberOfGuests:   2,
		CabinType:        "Balcony",
		CheckedIn:        true,
		CheckInDate:      &checkIn,
	}
}

func TestQRPayload(t *testing.T) {
	assert.Equal(t, "BK-0042-17|17|2026-06-14", QRPayload(checkedInBooking()))
}

func TestBoardingPass(t *testing.T) {
	pdf, err := BoardingPass(checkedInBooking(), &domain.Cruise{Title: "Caribbean Paradise", DepartureFrom: "Miami, FL"}, "Ann Lee")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
	assert.Greater(t, len(pdf), 1000)
}

func TestBoardingPass_WithoutCruise(t *testing.T) {
	pdf, err := BoardingPass(checkedInBooking(), nil, "Ann Lee")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestBoardingPass_NotCheckedIn(t *testing.T) {
	b := checkedInBooking()
	b.CheckedIn = false

	_, err := BoardingPass(b, nil, "Ann Lee")
	assert.ErrorIs(t, err, ErrNotCheckedIn)
}
