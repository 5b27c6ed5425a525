/**
 * @description
 * This file defines the core member and credit-ledger domain models.
 * A member is identified by their email address and carries a cached credit
 * balance alongside an append-only transaction history.
 */
package domain

import "time"

// Member represents an authenticated end user of the facility.
// Members are created on first authenticated access and never hard-deleted.
type Member struct {
	Email            string    `json:"email"`
	DisplayName      string    `json:"display_name"`
	CreditBalance    int       `json:"credit_balance"`
	PlanID           *string   `json:"plan_id,omitempty"`
	StripeCustomerID *string   `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
}

// CreditTransaction is an immutable ledger entry. The member's cached balance
// must equal the sum of their transaction deltas at all times.
type CreditTransaction struct {
	ID        string    `json:"id"`
	MemberID  string    `json:"member_id"`
	Delta     int       `json:"delta"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// Reason tags recorded on credit transactions.
const (
	ReasonBookingDebit  = "booking_debit"
	ReasonBookingRefund = "booking_refund"
	ReasonBookingCancel = "booking_cancel"
	ReasonMonthlyGrant  = "monthly_grant"
	ReasonAdminAdjust   = "admin_adjust"
)

// DefaultHistoryLimit bounds credit history reads when the caller does not
// specify a limit.
const DefaultHistoryLimit = 30
