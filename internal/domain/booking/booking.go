package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rentals/internal/domain/properties"
	"rentals/internal/domain/shared/daterange"
)

var (
	ErrInvalidStatus = errors.New("booking: unknown status")
	ErrInvalidRange  = errors.New("booking: check_out must not precede check_in")
	ErrGuestRequired = errors.New("booking: guest name is required")
)

type ID int64

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// ParseStatus defaults an empty value to confirmed.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case "":
		return StatusConfirmed, nil
	case StatusConfirmed, StatusPending, StatusCancelled, StatusCompleted:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

type Booking struct {
	ID         ID
	PropertyID properties.ID
	CheckIn    time.Time
	CheckOut   time.Time
	GuestName  string
	GuestEmail string
	TotalPrice decimal.NullDecimal
	Status     Status
	CreatedAt  time.Time
}

type CreateParams struct {
	ID         ID
	PropertyID properties.ID
	CheckIn    time.Time
	CheckOut   time.Time
	GuestName  string
	GuestEmail string
	TotalPrice decimal.NullDecimal
	Status     string
	CreatedAt  time.Time
}

func New(params CreateParams) (Booking, error) {
	status, err := ParseStatus(params.Status)
	if err != nil {
		return Booking{}, err
	}
	checkIn := daterange.Day(params.CheckIn)
	checkOut := daterange.Day(params.CheckOut)
	if checkIn.IsZero() || checkOut.IsZero() || checkOut.Before(checkIn) {
		return Booking{}, ErrInvalidRange
	}
	if strings.TrimSpace(params.GuestName) == "" {
		return Booking{}, ErrGuestRequired
	}
	created := params.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return Booking{
		ID:         params.ID,
		PropertyID: params.PropertyID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		GuestName:  strings.TrimSpace(params.GuestName),
		GuestEmail: strings.TrimSpace(params.GuestEmail),
		TotalPrice: params.TotalPrice,
		Status:     status,
		CreatedAt:  created.UTC(),
	}, nil
}

// Blocks reports whether the booking takes the property off the market.
func (b Booking) Blocks() bool {
	return b.Status == StatusConfirmed
}

// IsActive is true for a confirmed stay covering today, both ends inclusive.
func (b Booking) IsActive(today time.Time) bool {
	today = daterange.Day(today)
	return b.Blocks() && !today.Before(b.CheckIn) && !today.After(b.CheckOut)
}

func (b Booking) Range() daterange.DateRange {
	return daterange.DateRange{CheckIn: b.CheckIn, CheckOut: b.CheckOut}
}

// Repository exposes bookings ordered by check-in date.
type Repository interface {
	ForProperty(ctx context.Context, id properties.ID) ([]Booking, error)
	Confirmed(ctx context.Context, ids []properties.ID) (map[properties.ID][]Booking, error)
}
