/**
 * @description
 * This file defines the domain events published to the message broker when
 * member-facing state changes. Consumers (e.g. a future notification worker)
 * bind to the portal events exchange with topic routing keys.
 */
package domain

import "time"

// PortalEventsExchange is the durable topic exchange all portal events are
// published to.
const PortalEventsExchange = "portal.events"

// Routing keys for published events.
const (
	RoutingKeyBookingCreated   = "booking.created"
	RoutingKeyBookingCancelled = "booking.cancelled"
	RoutingKeyCreditsAdjusted  = "credits.adjusted"
	RoutingKeyWaiverSigned     = "waiver.signed"
)

// BookingCreatedEvent is published after a booking is successfully created.
type BookingCreatedEvent struct {
	BookingID string    `json:"booking_id"`
	MemberID  string    `json:"member_id"`
	EventID   string    `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
}

// BookingCancelledEvent is published after a booking transitions to cancelled.
type BookingCancelledEvent struct {
	BookingID   string    `json:"booking_id"`
	MemberID    string    `json:"member_id"`
	EventID     string    `json:"event_id"`
	CancelledAt time.Time `json:"cancelled_at"`
}

// CreditsAdjustedEvent is published after a credit transaction is appended.
type CreditsAdjustedEvent struct {
	MemberID   string `json:"member_id"`
	Delta      int    `json:"delta"`
	Reason     string `json:"reason"`
	NewBalance int    `json:"new_balance"`
}

// WaiverSignedEvent is published after a member signs a waiver.
type WaiverSignedEvent struct {
	MemberID string    `json:"member_id"`
	WaiverID string    `json:"waiver_id"`
	SignedAt time.Time `json:"signed_at"`
}
