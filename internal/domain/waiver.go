/**
 * @description
 * This file defines waiver catalog entries and member signature records.
 * Signatures are an upsert: re-signing replaces the prior timestamp, unlike
 * the append-only credit ledger.
 */
package domain

import "time"

// Waiver is an admin-managed catalog document members must sign.
type Waiver struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Position int    `json:"-"`
}

// WaiverSignature records that a member signed a waiver. At most one row
// exists per (member, waiver) pair; the latest signature wins.
type WaiverSignature struct {
	MemberID string    `json:"member_id"`
	WaiverID string    `json:"waiver_id"`
	SignedAt time.Time `json:"signed_at"`
}
