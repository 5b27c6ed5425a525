/**
 * @description
 * Waiver catalog and signature queries. Signatures upsert on conflict so the
 * latest signing timestamp always wins; no signature history is kept.
 */
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/James-Liebel/Mine-Performance-3-sub001/internal/domain"
)

// ListWaivers returns the waiver catalog in admin-managed order.
func (r *Repository) ListWaivers(ctx context.Context) ([]domain.Waiver, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, title, content, position
        FROM waivers
        ORDER BY position, id
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var waivers []domain.Waiver
	for rows.Next() {
		var w domain.Waiver
		if err := rows.Scan(&w.ID, &w.Title, &w.Content, &w.Position); err != nil {
			return nil, err
		}
		waivers = append(waivers, w)
	}
	return waivers, rows.Err()
}

// GetWaiverByID retrieves one catalog entry.
func (r *Repository) GetWaiverByID(ctx context.Context, waiverID string) (*domain.Waiver, error) {
	var w domain.Waiver
	err := r.db.QueryRow(ctx, `
        SELECT id, title, content, position
        FROM waivers
        WHERE id = $1
    `, waiverID).Scan(&w.ID, &w.Title, &w.Content, &w.Position)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWaiverNotFound
		}
		return nil, err
	}
	return &w, nil
}

// SignaturesForMember returns a map of waiver id to signed timestamp.
func (r *Repository) SignaturesForMember(ctx context.Context, memberID string) (map[string]time.Time, error) {
	rows, err := r.db.Query(ctx, `
        SELECT waiver_id, signed_at
        FROM waiver_signatures
        WHERE member_id = $1
    `, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	signatures := make(map[string]time.Time)
	for rows.Next() {
		var waiverID string
		var signedAt time.Time
		if err := rows.Scan(&waiverID, &signedAt); err != nil {
			return nil, err
		}
		signatures[waiverID] = signedAt
	}
	return signatures, rows.Err()
}

// UpsertSignature records a signature, overwriting any prior timestamp for
// the pair. The store defends the catalog invariant itself: an unknown
// waiver id fails with ErrWaiverNotFound even if the caller skipped its own
// check.
func (r *Repository) UpsertSignature(ctx context.Context, memberID, waiverID string, signedAt time.Time) (*domain.WaiverSignature, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM waivers WHERE id = $1)`, waiverID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrWaiverNotFound
	}

	sig := domain.WaiverSignature{MemberID: memberID, WaiverID: waiverID}
	err = r.db.QueryRow(ctx, `
        INSERT INTO waiver_signatures (member_id, waiver_id, signed_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (member_id, waiver_id) DO UPDATE SET signed_at = EXCLUDED.signed_at
        RETURNING signed_at
    `, memberID, waiverID, signedAt).Scan(&sig.SignedAt)
	if err != nil {
		return nil, err
	}
	return &sig, nil
}
