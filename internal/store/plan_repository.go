/**
 * @description
 * Membership plan queries. The plan list has replace-on-write semantics: the
 * whole table is swapped inside one transaction, so readers only ever see a
 * fully validated prior payload.
 */
package store

import (
	"context"
	"fmt"

	"github.com/James-Liebel/Mine-Performance-3-sub001/internal/domain"
)

// ListPlans returns the plan list in stored order.
func (r *Repository) ListPlans(ctx context.Context) ([]domain.MembershipPlan, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, name, credits, price_cents
        FROM membership_plans
        ORDER BY position
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []domain.MembershipPlan
	for rows.Next() {
		var p domain.MembershipPlan
		if err := rows.Scan(&p.ID, &p.Name, &p.Credits, &p.PriceCents); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// ReplacePlans swaps the stored list for the given payload atomically.
// Validation happens in the service layer before this is called; a failure
// mid-swap rolls back to the previous list.
func (r *Repository) ReplacePlans(ctx context.Context, plans []domain.MembershipPlan) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin plan replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM membership_plans`); err != nil {
		return err
	}
	for i, p := range plans {
		_, err := tx.Exec(ctx, `
            INSERT INTO membership_plans (id, name, credits, price_cents, position)
            VALUES ($1, $2, $3, $4, $5)
        `, p.ID, p.Name, p.Credits, p.PriceCents, i)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit plan replace: %w", err)
	}
	return nil
}
