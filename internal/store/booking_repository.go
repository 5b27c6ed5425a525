/**
 * @description
 * Booking and event-calendar queries. Bookings are never deleted: cancelling
 * flips the status, and the row stays readable as an audit trail. A partial
 * unique index on (member_id, event_id) WHERE status = 'active' backs the
 * one-active-booking invariant at the database level.
 */
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/James-Liebel/Mine-Performance-3-sub001/internal/domain"
)

// CreateBooking inserts an active booking for the pair. Fails with
// ErrDuplicateBooking when an active booking already exists.
func (r *Repository) CreateBooking(ctx context.Context, memberID, eventID string) (*domain.Booking, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM bookings
            WHERE member_id = $1 AND event_id = $2 AND status = 'active'
        )
    `, memberID, eventID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateBooking
	}

	b := domain.Booking{
		ID:       uuid.NewString(),
		MemberID: memberID,
		EventID:  eventID,
		Status:   domain.BookingStatusActive,
	}
	err = r.db.QueryRow(ctx, `
        INSERT INTO bookings (id, member_id, event_id, status)
        VALUES ($1, $2, $3, 'active')
        RETURNING created_at
    `, b.ID, b.MemberID, b.EventID).Scan(&b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// GetBooking returns the most recent booking for the pair regardless of
// status, so a cancelled booking remains visible after cancellation.
func (r *Repository) GetBooking(ctx context.Context, memberID, eventID string) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.QueryRow(ctx, `
        SELECT id, member_id, event_id, status, created_at
        FROM bookings
        WHERE member_id = $1 AND event_id = $2
        ORDER BY created_at DESC
        LIMIT 1
    `, memberID, eventID).Scan(&b.ID, &b.MemberID, &b.EventID, &b.Status, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// CancelBooking transitions the pair's active booking to cancelled. Fails
// with ErrBookingNotFound when no active booking exists, which also covers
// re-cancelling an already cancelled booking.
func (r *Repository) CancelBooking(ctx context.Context, memberID, eventID string) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.QueryRow(ctx, `
        UPDATE bookings
        SET status = 'cancelled', updated_at = NOW()
        WHERE member_id = $1 AND event_id = $2 AND status = 'active'
        RETURNING id, member_id, event_id, status, created_at
    `, memberID, eventID).Scan(&b.ID, &b.MemberID, &b.EventID, &b.Status, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// ListActiveBookings returns a member's active bookings, soonest first.
func (r *Repository) ListActiveBookings(ctx context.Context, memberID string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `
        SELECT b.id, b.member_id, b.event_id, b.status, b.created_at
        FROM bookings b
        JOIN events e ON e.id = b.event_id
        WHERE b.member_id = $1 AND b.status = 'active'
        ORDER BY e.event_date, e.start_time
    `, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.MemberID, &b.EventID, &b.Status, &b.CreatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// GetEventByID retrieves one calendar event.
func (r *Repository) GetEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	var e domain.Event
	err := r.db.QueryRow(ctx, `
        SELECT id, title, event_date, start_time, credit_cost, capacity
        FROM events
        WHERE id = $1
    `, eventID).Scan(&e.ID, &e.Title, &e.Date, &e.StartTime, &e.CreditCost, &e.Capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

// ListUpcomingEvents returns events on or after the given day, soonest first.
func (r *Repository) ListUpcomingEvents(ctx context.Context, from string) ([]domain.Event, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, title, event_date, start_time, credit_cost, capacity
        FROM events
        WHERE event_date >= $1
        ORDER BY event_date, start_time
    `, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Date, &e.StartTime, &e.CreditCost, &e.Capacity); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
