/**
 * @description
 * Coach roster queries. Like membership plans, the roster has
 * replace-on-write semantics: the whole table is swapped inside one
 * transaction.
 */
package store

import (
	"context"
	"fmt"

	"github.com/James-Liebel/Mine-Performance-3-sub001/internal/domain"
)

// ListCoaches returns the roster in stored order.
func (r *Repository) ListCoaches(ctx context.Context) ([]domain.Coach, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, name, bio, photo_url
        FROM coaches
        ORDER BY position
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coaches []domain.Coach
	for rows.Next() {
		var c domain.Coach
		if err := rows.Scan(&c.ID, &c.Name, &c.Bio, &c.PhotoURL); err != nil {
			return nil, err
		}
		coaches = append(coaches, c)
	}
	return coaches, rows.Err()
}

// ReplaceCoaches swaps the stored roster for the given payload atomically.
func (r *Repository) ReplaceCoaches(ctx context.Context, coaches []domain.Coach) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin coach replace: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM coaches`); err != nil {
		return err
	}
	for i, c := range coaches {
		_, err := tx.Exec(ctx, `
            INSERT INTO coaches (id, name, bio, photo_url, position)
            VALUES ($1, $2, $3, $4, $5)
        `, c.ID, c.Name, c.Bio, c.PhotoURL, i)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit coach replace: %w", err)
	}
	return nil
}
