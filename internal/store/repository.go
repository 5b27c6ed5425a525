/**
 * @description
 * This file declares the shared repository type for the portal's data access
 * layer. Entity-specific queries live in the sibling *_repository.go files.
 */
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors returned by the store. Handlers map these to HTTP statuses.
var (
	ErrMemberNotFound      = errors.New("member not found")
	ErrEventNotFound       = errors.New("event not found")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrDuplicateBooking    = errors.New("an active booking already exists for this event")
	ErrWaiverNotFound      = errors.New("waiver not found")
	ErrInsufficientCredits = errors.New("insufficient credits")
)

// Repository handles all database operations for the portal.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new repository backed by the given pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}
