package daterange

import (
	"errors"
	"fmt"
	"time"
)

const (
	DayLayout = "2006-01-02"

	secondsPerDay = 24 * 60 * 60
)

var (
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
	ErrInvalidDate  = errors.New("daterange: invalid date, use YYYY-MM-DD")
)

// DateRange represents a stay [checkIn, checkOut): check-out day is not a night.
type DateRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

func New(checkIn, checkOut time.Time) (DateRange, error) {
	dr := DateRange{CheckIn: Day(checkIn), CheckOut: Day(checkOut)}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Parse builds a range from two YYYY-MM-DD strings.
func Parse(checkIn, checkOut string) (DateRange, error) {
	in, err := ParseDay(checkIn)
	if err != nil {
		return DateRange{}, err
	}
	out, err := ParseDay(checkOut)
	if err != nil {
		return DateRange{}, err
	}
	return New(in, out)
}

func (dr DateRange) Validate() error {
	if dr.CheckOut.IsZero() || dr.CheckIn.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

func (dr DateRange) Nights() int {
	if dr.CheckIn.IsZero() || dr.CheckOut.IsZero() {
		return 0
	}
	// counted from the calendar days; Sub saturates after ~292 years
	return int((Day(dr.CheckOut).Unix() - Day(dr.CheckIn).Unix()) / secondsPerDay)
}

// Dates lists every night of the stay in order.
func (dr DateRange) Dates() []time.Time {
	nights := dr.Nights()
	if nights <= 0 {
		return nil
	}
	out := make([]time.Time, 0, nights)
	start := Day(dr.CheckIn)
	for i := 0; i < nights; i++ {
		out = append(out, start.AddDate(0, 0, i))
	}
	return out
}

func (dr DateRange) ContainsDate(t time.Time) bool {
	t = Day(t)
	return (t.Equal(dr.CheckIn) || t.After(dr.CheckIn)) && t.Before(dr.CheckOut)
}

// Intersects treats both ranges as closed intervals, so ranges sharing an
// endpoint intersect.
func (dr DateRange) Intersects(other DateRange) bool {
	return !dr.CheckIn.After(other.CheckOut) && !dr.CheckOut.Before(other.CheckIn)
}

func (dr DateRange) String() string {
	return fmt.Sprintf("%s to %s", FormatDay(dr.CheckIn), FormatDay(dr.CheckOut))
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay accepts YYYY-MM-DD from 0001-01-02 on; the zero time.Time stands
// for "no date" across the catalog, so 0001-01-01 is rejected.
func ParseDay(raw string) (time.Time, error) {
	t, err := time.Parse(DayLayout, raw)
	if err != nil || !t.After(time.Time{}) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return t, nil
}

func FormatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DayLayout)
}
