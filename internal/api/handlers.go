/**
 * @description
 * This file contains the HTTP handler functions for the portal. Handlers are
 * responsible for parsing incoming requests, calling the appropriate business
 * logic in the service layer, and mapping service errors to HTTP statuses.
 */
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/James-Liebel/Mine-Performance-3-sub001/internal/app"
	"github.com/James-Liebel/Mine-Performance-3-sub001/internal/domain"
	"github.com/James-Liebel/Mine-Performance-3-sub001/internal/store"
)

// PortalService defines the business operations the handlers need.
type PortalService interface {
	Me(ctx context.Context, email string) (*app.Profile, error)
	BookEvent(ctx context.Context, email, eventID string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, email, eventID string) (*domain.Booking, error)
	UpcomingEvents(ctx context.Context) ([]domain.Event, error)
	Waivers(ctx context.Context) ([]domain.Waiver, error)
	Signatures(ctx context.Context, email string) (map[string]time.Time, error)
	SignWaiver(ctx context.Context, email, waiverID string) (*domain.WaiverSignature, error)
	Plans(ctx context.Context) ([]domain.MembershipPlan, error)
	ReplacePlans(ctx context.Context, plans []domain.MembershipPlan) error
	Coaches(ctx context.Context) ([]domain.Coach, error)
	ReplaceCoaches(ctx context.Context, coaches []domain.Coach) error
	Content(ctx context.Context) (map[string]string, error)
	UpdateContent(ctx context.Context, entries map[string]string) error
	BillingPortalURL(ctx context.Context, email string) (string, error)
}

// Handler holds the application service and auth settings the handlers use.
type Handler struct {
	service           PortalService
	jwtSecret         string
	adminEmail        string
	adminPasswordHash string
}

// NewHandler creates a new Handler.
func NewHandler(service PortalService, jwtSecret, adminEmail, adminPasswordHash string) *Handler {
	return &Handler{
		service:           service,
		jwtSecret:         jwtSecret,
		adminEmail:        adminEmail,
		adminPasswordHash: adminPasswordHash,
	}
}

// handleLogin issues a session token. A request carrying the admin email and
// the matching password receives an admin token; any other email receives a
// member token (member identity itself is established upstream).
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		respondWithError(w, http.StatusBadRequest, "email is required")
		return
	}

	role := RoleMember
	if req.Email == h.adminEmail {
		if h.adminPasswordHash == "" || !domain.VerifyAdminPassword(h.adminPasswordHash, req.Password) {
			respondWithError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		role = RoleAdmin
	}

	token, err := h.issueToken(req.Email, role)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"token": token, "role": role})
}

func (h *Handler) issueToken(email, role string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  email,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(24 * time.Hour).Unix(),
	})
	return token.SignedString([]byte(h.jwtSecret))
}

// handleGetContent returns the public site-content map.
func (h *Handler) handleGetContent(w http.ResponseWriter, r *http.Request) {
	content, err := h.service.Content(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, content)
}

// handleUpdateContent upserts site-content keys (admin).
func (h *Handler) handleUpdateContent(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.service.UpdateContent(r.Context(), req); err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleGetMemberships returns the membership plan list.
func (h *Handler) handleGetMemberships(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.Plans(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"memberships": plans})
}

// handleReplaceMemberships validates and swaps the plan list (admin).
func (h *Handler) handleReplaceMemberships(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Memberships []domain.MembershipPlan `json:"memberships"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.service.ReplacePlans(r.Context(), req.Memberships); err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleListCoaches returns the public coach roster.
func (h *Handler) handleListCoaches(w http.ResponseWriter, r *http.Request) {
	coaches, err := h.service.Coaches(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"coaches": coaches})
}

// handleReplaceCoaches validates and swaps the coach roster (admin).
func (h *Handler) handleReplaceCoaches(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Coaches []domain.Coach `json:"coaches"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.service.ReplaceCoaches(r.Context(), req.Coaches); err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleListEvents returns upcoming calendar events.
func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.UpcomingEvents(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// handleMe returns the member's profile, credit history, and active bookings.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	profile, err := h.service.Me(r.Context(), identity.Email)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, profile)
}

// handleCreateBooking books the member into an event.
func (h *Handler) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req struct {
		EventID string `json:"eventId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EventID == "" {
		respondWithError(w, http.StatusBadRequest, "eventId is required")
		return
	}
	booking, err := h.service.BookEvent(r.Context(), identity.Email, req.EventID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, booking)
}

// handleCancelBooking cancels the member's booking, subject to the 24-hour
// cancellation window.
func (h *Handler) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req struct {
		EventID string `json:"eventId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EventID == "" {
		respondWithError(w, http.StatusBadRequest, "eventId is required")
		return
	}
	if _, err := h.service.CancelBooking(r.Context(), identity.Email, req.EventID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}

// handleListWaivers returns the waiver catalog.
func (h *Handler) handleListWaivers(w http.ResponseWriter, r *http.Request) {
	waivers, err := h.service.Waivers(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"waivers": waivers})
}

// handleGetSignatures returns the member's waiver signature map.
func (h *Handler) handleGetSignatures(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	signatures, err := h.service.Signatures(r.Context(), identity.Email)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"signatures": signatures})
}

// handleSignWaiver records the member's signature for a waiver.
func (h *Handler) handleSignWaiver(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req struct {
		WaiverID string `json:"waiverId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.WaiverID == "" {
		respondWithError(w, http.StatusBadRequest, "waiverId is required")
		return
	}
	sig, err := h.service.SignWaiver(r.Context(), identity.Email, req.WaiverID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sig)
}

// handleBillingPortal opens a Stripe billing-portal session for the member.
func (h *Handler) handleBillingPortal(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	url, err := h.service.BillingPortalURL(r.Context(), identity.Email)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"url": url})
}

// writeServiceError maps service and store errors to HTTP responses. All
// recoverable errors surface as a status plus a human-readable message; none
// crash the process.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError

	switch {
	case errors.As(err, &ve):
		respondWithError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, store.ErrInsufficientCredits),
		errors.Is(err, app.ErrCancellationWindow):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrDuplicateBooking):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrBookingNotFound),
		errors.Is(err, store.ErrEventNotFound),
		errors.Is(err, store.ErrWaiverNotFound),
		errors.Is(err, store.ErrMemberNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrBillingUnavailable):
		respondWithError(w, http.StatusServiceUnavailable, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// respondWithJSON is a helper function to write JSON responses.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithError writes a JSON error body with the given status.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
