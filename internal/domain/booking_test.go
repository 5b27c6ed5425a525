package domain

import (
	"testing"
	"time"
)

func TestCanCancelBookingBoundary(t *testing.T) {
	// Event on 2026-09-15 at 18:00 local time.
	eventDate := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	start := time.Date(2026, 9, 15, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{
			name: "well before the window",
			now:  start.Add(-72 * time.Hour),
			want: true,
		},
		{
			name: "exactly 24h before start is permitted",
			now:  start.Add(-24 * time.Hour),
			want: true,
		},
		{
			name: "one second inside the window is rejected",
			now:  start.Add(-24*time.Hour + time.Second),
			want: false,
		},
		{
			name: "ten hours before start",
			now:  start.Add(-10 * time.Hour),
			want: false,
		},
		{
			name: "after the event started",
			now:  start.Add(time.Hour),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanCancelBooking(eventDate, "18:00", tt.now)
			if got != tt.want {
				t.Fatalf("CanCancelBooking at %v: expected %v, got %v", tt.now, tt.want, got)
			}
		})
	}
}

func TestCanCancelBookingInvalidStartTime(t *testing.T) {
	eventDate := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	if CanCancelBooking(eventDate, "6pm", eventDate.AddDate(0, 0, -7)) {
		t.Fatal("expected unparseable start time to be uncancellable")
	}
}

func TestEventStartAtCombinesDateAndTime(t *testing.T) {
	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	start, err := EventStartAt(date, "06:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 9, 15, 6, 30, 0, 0, time.UTC)
	if !start.Equal(want) {
		t.Fatalf("expected %v, got %v", want, start)
	}
}
