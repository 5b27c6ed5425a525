/**
 * @description
 * Member and credit-ledger queries. The ledger append and the cached balance
 * update happen inside one transaction so the invariant
 * "cached balance == sum of transaction deltas" cannot drift.
 */
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/James-Liebel/Mine-Performance-3-sub001/internal/domain"
)

// GetMemberByEmail retrieves a member record.
func (r *Repository) GetMemberByEmail(ctx context.Context, email string) (*domain.Member, error) {
	var m domain.Member
	query := `
        SELECT email, display_name, credit_balance, plan_id, stripe_customer_id, created_at
        FROM members
        WHERE email = $1
    `
	err := r.db.QueryRow(ctx, query, email).Scan(
		&m.Email,
		&m.DisplayName,
		&m.CreditBalance,
		&m.PlanID,
		&m.StripeCustomerID,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

// EnsureMember creates a member row on first authenticated access and returns
// the stored record either way.
func (r *Repository) EnsureMember(ctx context.Context, email, displayName string) (*domain.Member, error) {
	var m domain.Member
	query := `
        INSERT INTO members (email, display_name, credit_balance)
        VALUES ($1, $2, 0)
        ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
        RETURNING email, display_name, credit_balance, plan_id, stripe_customer_id, created_at
    `
	err := r.db.QueryRow(ctx, query, email, displayName).Scan(
		&m.Email,
		&m.DisplayName,
		&m.CreditBalance,
		&m.PlanID,
		&m.StripeCustomerID,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SetStripeCustomerID stores the Stripe customer id created for a member.
func (r *Repository) SetStripeCustomerID(ctx context.Context, email, customerID string) error {
	tag, err := r.db.Exec(ctx, `UPDATE members SET stripe_customer_id = $1 WHERE email = $2`, customerID, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// GetBalance returns the cached credit balance; 0 for an unknown member.
func (r *Repository) GetBalance(ctx context.Context, email string) (int, error) {
	var balance int
	err := r.db.QueryRow(ctx, `SELECT credit_balance FROM members WHERE email = $1`, email).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return balance, nil
}

// ApplyTransaction appends a ledger entry and updates the cached balance in a
// single transaction. A negative delta that would take the balance below zero
// fails with ErrInsufficientCredits and leaves both the ledger and the cached
// balance untouched.
func (r *Repository) ApplyTransaction(ctx context.Context, email string, delta int, reason string) (*domain.CreditTransaction, int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("begin credit transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var balance int
	err = tx.QueryRow(ctx, `SELECT credit_balance FROM members WHERE email = $1 FOR UPDATE`, email).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, ErrMemberNotFound
		}
		return nil, 0, err
	}

	newBalance := balance + delta
	if newBalance < 0 {
		return nil, balance, ErrInsufficientCredits
	}

	record := domain.CreditTransaction{
		ID:       uuid.NewString(),
		MemberID: email,
		Delta:    delta,
		Reason:   reason,
	}
	err = tx.QueryRow(ctx, `
        INSERT INTO credit_transactions (id, member_id, delta, reason)
        VALUES ($1, $2, $3, $4)
        RETURNING created_at
    `, record.ID, record.MemberID, record.Delta, record.Reason).Scan(&record.CreatedAt)
	if err != nil {
		return nil, 0, err
	}

	_, err = tx.Exec(ctx, `UPDATE members SET credit_balance = $1 WHERE email = $2`, newBalance, email)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, fmt.Errorf("commit credit transaction: %w", err)
	}
	return &record, newBalance, nil
}

// History returns a member's credit transactions, most recent first, bounded
// to limit entries.
func (r *Repository) History(ctx context.Context, email string, limit int) ([]domain.CreditTransaction, error) {
	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}
	rows, err := r.db.Query(ctx, `
        SELECT id, member_id, delta, reason, created_at
        FROM credit_transactions
        WHERE member_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2
    `, email, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []domain.CreditTransaction
	for rows.Next() {
		var t domain.CreditTransaction
		if err := rows.Scan(&t.ID, &t.MemberID, &t.Delta, &t.Reason, &t.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, t)
	}
	return history, rows.Err()
}

// ListPlanMembers returns every member on a plan together with the plan's
// monthly credit allotment, for the monthly grant job.
func (r *Repository) ListPlanMembers(ctx context.Context) ([]PlanMember, error) {
	rows, err := r.db.Query(ctx, `
        SELECT m.email, p.credits
        FROM members m
        JOIN membership_plans p ON p.id = m.plan_id
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []PlanMember
	for rows.Next() {
		var pm PlanMember
		if err := rows.Scan(&pm.Email, &pm.PlanCredits); err != nil {
			return nil, err
		}
		members = append(members, pm)
	}
	return members, rows.Err()
}

// PlanMember pairs a member with their plan's credit allotment.
type PlanMember struct {
	Email       string
	PlanCredits int
}
