package booking

import (
	"errors"
	"testing"
	"time"
)

func TestNewDefaultsToConfirmed(t *testing.T) {
	b, err := New(CreateParams{
		ID:         1,
		PropertyID: 7,
		CheckIn:    time.Date(2025, 12, 5, 15, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2025, 12, 10, 11, 0, 0, 0, time.UTC),
		GuestName:  "Ana",
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if b.Status != StatusConfirmed {
		t.Errorf("status: got %s, want %s", b.Status, StatusConfirmed)
	}
	if b.CheckIn.Hour() != 0 {
		t.Errorf("check-in should be truncated to the day, got %v", b.CheckIn)
	}
}

func TestNewValidation(t *testing.T) {
	in := time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC)
	if _, err := New(CreateParams{CheckIn: in, CheckOut: in.AddDate(0, 0, -1), GuestName: "x"}); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("reversed: got %v, want ErrInvalidRange", err)
	}
	if _, err := New(CreateParams{CheckIn: in, CheckOut: in, GuestName: "x", Status: "archived"}); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("status: got %v, want ErrInvalidStatus", err)
	}
	if _, err := New(CreateParams{CheckIn: in, CheckOut: in}); !errors.Is(err, ErrGuestRequired) {
		t.Errorf("guest: got %v, want ErrGuestRequired", err)
	}
}

func TestIsActive(t *testing.T) {
	b := Booking{
		CheckIn:  time.Date(2025, 12, 5, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC),
		Status:   StatusConfirmed,
	}
	cases := []struct {
		today time.Time
		want  bool
	}{
		{time.Date(2025, 12, 4, 23, 0, 0, 0, time.UTC), false},
		{time.Date(2025, 12, 5, 8, 0, 0, 0, time.UTC), true},
		{time.Date(2025, 12, 10, 20, 0, 0, 0, time.UTC), true},
		{time.Date(2025, 12, 11, 0, 0, 0, 0, time.UTC), false},
	}
	for _, tc := range cases {
		if got := b.IsActive(tc.today); got != tc.want {
			t.Errorf("%v: got %v, want %v", tc.today, got, tc.want)
		}
	}
	b.Status = StatusPending
	if b.IsActive(b.CheckIn) {
		t.Error("pending booking should not be active")
	}
}
