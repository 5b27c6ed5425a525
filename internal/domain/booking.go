/**
 * @description
 * This file defines the booking domain model and the cancellation-window
 * policy. A booking moves from 'active' to 'cancelled' and never transitions
 * again; cancelled rows are retained as an audit trail.
 */
package domain

import (
	"fmt"
	"time"
)

// Booking statuses. 'cancelled' is terminal.
const (
	BookingStatusActive    = "active"
	BookingStatusCancelled = "cancelled"
)

// Booking represents a member's registration for an event. At most one active
// booking may exist per (member, event) pair.
type Booking struct {
	ID        string    `json:"id"`
	MemberID  string    `json:"member_id"`
	EventID   string    `json:"event_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Event is a session on the facility calendar. Events are read-only to this
// service; the booking flow consults them for cost and the cancellation
// deadline.
type Event struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Date       time.Time `json:"date"`
	StartTime  string    `json:"start_time"` // "15:04" wall-clock
	CreditCost int       `json:"credit_cost"`
	Capacity   int       `json:"capacity"`
}

// CancellationWindow is the minimum lead time before an event's start for a
// self-service cancellation to be permitted.
const CancellationWindow = 24 * time.Hour

// EventStartAt combines an event's calendar date with its wall-clock start
// time into a single instant in the date's location.
func EventStartAt(date time.Time, startTime string) (time.Time, error) {
	t, err := time.Parse("15:04", startTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid event start time %q: %w", startTime, err)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, date.Location()), nil
}

// CanCancelBooking reports whether a booking for an event starting at the
// given date and time may still be cancelled at 'now'. Exactly 24h before the
// start is permitted; one second less is not. An unparseable start time is
// never cancellable.
func CanCancelBooking(eventDate time.Time, startTime string, now time.Time) bool {
	start, err := EventStartAt(eventDate, startTime)
	if err != nil {
		return false
	}
	return start.Sub(now) >= CancellationWindow
}
