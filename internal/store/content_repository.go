/**
 * @description
 * Site-content queries backing the editable marketing copy. Public pages
 * read the full key/value map; admin edits upsert keys in one transaction.
 */
package store

import (
	"context"
	"fmt"
)

// GetContent returns the full site-content map.
func (r *Repository) GetContent(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.Query(ctx, `SELECT key, value FROM site_content`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	content := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		content[key] = value
	}
	return content, rows.Err()
}

// UpsertContent writes the given keys in one transaction.
func (r *Repository) UpsertContent(ctx context.Context, entries map[string]string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin content upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	for key, value := range entries {
		_, err := tx.Exec(ctx, `
            INSERT INTO site_content (key, value, updated_at)
            VALUES ($1, $2, NOW())
            ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
        `, key, value)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit content upsert: %w", err)
	}
	return nil
}
