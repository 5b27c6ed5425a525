/**
 * @description
 * This file contains the core business logic for the member portal: the
 * booking lifecycle with credit accounting, waiver signing, membership plan
 * management, site content edits, and the Stripe billing portal flow.
 *
 * There is no cross-store transactionality, so the booking flow orders its
 * steps to keep partial failure safe: eligibility is verified before the
 * debit, the debit happens before the booking insert, and a failed insert
 * after a successful debit triggers an automatic compensating refund.
 */
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/James-Liebel/Mine-Performance-3-sub001/internal/domain"
	"github.com/James-Liebel/Mine-Performance-3-sub001/internal/store"
	"github.com/James-Liebel/Mine-Performance-3-sub001/pkg/rabbitmq"
	"github.com/James-Liebel/Mine-Performance-3-sub001/pkg/stripeclient"
)

// Policy errors surfaced by the service layer.
var (
	ErrCancellationWindow = errors.New("bookings can only be cancelled at least 24 hours before the event starts")
	ErrBillingUnavailable = errors.New("billing portal is unavailable")
)

// Repository defines the data-access operations the service needs.
type Repository interface {
	EnsureMember(ctx context.Context, email, displayName string) (*domain.Member, error)
	GetMemberByEmail(ctx context.Context, email string) (*domain.Member, error)
	SetStripeCustomerID(ctx context.Context, email, customerID string) error
	GetBalance(ctx context.Context, email string) (int, error)
	ApplyTransaction(ctx context.Context, email string, delta int, reason string) (*domain.CreditTransaction, int, error)
	History(ctx context.Context, email string, limit int) ([]domain.CreditTransaction, error)
	ListPlanMembers(ctx context.Context) ([]store.PlanMember, error)

	CreateBooking(ctx context.Context, memberID, eventID string) (*domain.Booking, error)
	GetBooking(ctx context.Context, memberID, eventID string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, memberID, eventID string) (*domain.Booking, error)
	ListActiveBookings(ctx context.Context, memberID string) ([]domain.Booking, error)
	GetEventByID(ctx context.Context, eventID string) (*domain.Event, error)
	ListUpcomingEvents(ctx context.Context, from string) ([]domain.Event, error)

	ListWaivers(ctx context.Context) ([]domain.Waiver, error)
	GetWaiverByID(ctx context.Context, waiverID string) (*domain.Waiver, error)
	SignaturesForMember(ctx context.Context, memberID string) (map[string]time.Time, error)
	UpsertSignature(ctx context.Context, memberID, waiverID string, signedAt time.Time) (*domain.WaiverSignature, error)

	ListPlans(ctx context.Context) ([]domain.MembershipPlan, error)
	ReplacePlans(ctx context.Context, plans []domain.MembershipPlan) error

	ListCoaches(ctx context.Context) ([]domain.Coach, error)
	ReplaceCoaches(ctx context.Context, coaches []domain.Coach) error

	GetContent(ctx context.Context) (map[string]string, error)
	UpsertContent(ctx context.Context, entries map[string]string) error
}

// StripeClient defines the billing operations the service needs.
type StripeClient interface {
	Configured() bool
	CreateCustomer(ctx context.Context, email, name string) (*stripeclient.Customer, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*stripeclient.PortalSession, error)
}

// Service provides the business logic for the member portal.
type Service struct {
	repo            Repository
	stripe          StripeClient
	publisher       rabbitmq.Publisher
	logger          *slog.Logger
	stripeReturnURL string
	now             func() time.Time
}

// NewService creates a new portal service.
func NewService(repo Repository, stripe StripeClient, publisher rabbitmq.Publisher, logger *slog.Logger, stripeReturnURL string) *Service {
	return &Service{
		repo:            repo,
		stripe:          stripe,
		publisher:       publisher,
		logger:          logger,
		stripeReturnURL: stripeReturnURL,
		now:             time.Now,
	}
}

// SetClock overrides the service's time source for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Profile is the aggregate returned for GET /member/me.
type Profile struct {
	Member   *domain.Member             `json:"member"`
	History  []domain.CreditTransaction `json:"history"`
	Bookings []domain.Booking           `json:"bookings"`
}

// Me returns the member's profile, credit history, and active bookings,
// creating the member record on first authenticated access.
func (s *Service) Me(ctx context.Context, email string) (*Profile, error) {
	member, err := s.repo.EnsureMember(ctx, email, "")
	if err != nil {
		return nil, err
	}
	history, err := s.repo.History(ctx, email, domain.DefaultHistoryLimit)
	if err != nil {
		return nil, err
	}
	bookings, err := s.repo.ListActiveBookings(ctx, email)
	if err != nil {
		return nil, err
	}
	return &Profile{Member: member, History: history, Bookings: bookings}, nil
}

// BookEvent registers the member for an event, debiting the event's credit
// cost first. If the booking insert fails after the debit succeeded, the
// debit is compensated with an automatic refund transaction.
func (s *Service) BookEvent(ctx context.Context, email, eventID string) (*domain.Booking, error) {
	if _, err := s.repo.EnsureMember(ctx, email, ""); err != nil {
		return nil, err
	}

	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	// Verify eligibility before deducting.
	existing, err := s.repo.GetBooking(ctx, email, eventID)
	if err != nil && !errors.Is(err, store.ErrBookingNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status == domain.BookingStatusActive {
		return nil, store.ErrDuplicateBooking
	}

	if event.CreditCost > 0 {
		_, newBalance, err := s.repo.ApplyTransaction(ctx, email, -event.CreditCost, domain.ReasonBookingDebit)
		if err != nil {
			return nil, err
		}
		s.publishCreditsAdjusted(ctx, email, -event.CreditCost, domain.ReasonBookingDebit, newBalance)
	}

	booking, err := s.repo.CreateBooking(ctx, email, eventID)
	if err != nil {
		if event.CreditCost > 0 {
			_, refundBalance, refundErr := s.repo.ApplyTransaction(ctx, email, event.CreditCost, domain.ReasonBookingRefund)
			if refundErr != nil {
				s.logger.Error("compensating refund failed after booking create failure",
					"member", email, "event", eventID, "credits", event.CreditCost, "error", refundErr)
			} else {
				s.logger.Warn("booking create failed after debit, credits refunded",
					"member", email, "event", eventID, "credits", event.CreditCost)
				s.publishCreditsAdjusted(ctx, email, event.CreditCost, domain.ReasonBookingRefund, refundBalance)
			}
		}
		return nil, err
	}

	s.publish(ctx, domain.RoutingKeyBookingCreated, domain.BookingCreatedEvent{
		BookingID: booking.ID,
		MemberID:  booking.MemberID,
		EventID:   booking.EventID,
		CreatedAt: booking.CreatedAt,
	})
	return booking, nil
}

// CancelBooking cancels the member's active booking for the event, provided
// the event starts at least 24 hours from now, and refunds the event's
// credit cost.
func (s *Service) CancelBooking(ctx context.Context, email, eventID string) (*domain.Booking, error) {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if !domain.CanCancelBooking(event.Date, event.StartTime, s.now()) {
		return nil, ErrCancellationWindow
	}

	booking, err := s.repo.CancelBooking(ctx, email, eventID)
	if err != nil {
		return nil, err
	}

	if event.CreditCost > 0 {
		_, newBalance, refundErr := s.repo.ApplyTransaction(ctx, email, event.CreditCost, domain.ReasonBookingCancel)
		if refundErr != nil {
			s.logger.Error("refund failed after cancellation", "member", email, "event", eventID, "error", refundErr)
		} else {
			s.publishCreditsAdjusted(ctx, email, event.CreditCost, domain.ReasonBookingCancel, newBalance)
		}
	}

	s.publish(ctx, domain.RoutingKeyBookingCancelled, domain.BookingCancelledEvent{
		BookingID:   booking.ID,
		MemberID:    booking.MemberID,
		EventID:     booking.EventID,
		CancelledAt: s.now(),
	})
	return booking, nil
}

// UpcomingEvents lists events from today onward.
func (s *Service) UpcomingEvents(ctx context.Context) ([]domain.Event, error) {
	return s.repo.ListUpcomingEvents(ctx, s.now().Format("2006-01-02"))
}

// Waivers returns the waiver catalog.
func (s *Service) Waivers(ctx context.Context) ([]domain.Waiver, error) {
	return s.repo.ListWaivers(ctx)
}

// Signatures returns the member's signature map (waiver id -> signed at).
func (s *Service) Signatures(ctx context.Context, email string) (map[string]time.Time, error) {
	if _, err := s.repo.EnsureMember(ctx, email, ""); err != nil {
		return nil, err
	}
	return s.repo.SignaturesForMember(ctx, email)
}

// SignWaiver records the member's signature, replacing any prior timestamp
// for the same waiver.
func (s *Service) SignWaiver(ctx context.Context, email, waiverID string) (*domain.WaiverSignature, error) {
	if _, err := s.repo.EnsureMember(ctx, email, ""); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetWaiverByID(ctx, waiverID); err != nil {
		return nil, err
	}

	sig, err := s.repo.UpsertSignature(ctx, email, waiverID, s.now())
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.RoutingKeyWaiverSigned, domain.WaiverSignedEvent{
		MemberID: sig.MemberID,
		WaiverID: sig.WaiverID,
		SignedAt: sig.SignedAt,
	})
	return sig, nil
}

// Plans returns the membership plan list.
func (s *Service) Plans(ctx context.Context) ([]domain.MembershipPlan, error) {
	return s.repo.ListPlans(ctx)
}

// ReplacePlans validates the full payload and swaps the stored plan list.
// On validation failure the stored list is left unchanged and the error
// enumerates every failing field.
func (s *Service) ReplacePlans(ctx context.Context, plans []domain.MembershipPlan) error {
	if err := domain.ValidatePlans(plans); err != nil {
		return err
	}
	return s.repo.ReplacePlans(ctx, plans)
}

// Coaches returns the public coach roster.
func (s *Service) Coaches(ctx context.Context) ([]domain.Coach, error) {
	return s.repo.ListCoaches(ctx)
}

// ReplaceCoaches validates the full payload and swaps the stored roster.
func (s *Service) ReplaceCoaches(ctx context.Context, coaches []domain.Coach) error {
	if err := domain.ValidateCoaches(coaches); err != nil {
		return err
	}
	return s.repo.ReplaceCoaches(ctx, coaches)
}

// Content returns the public site-content map.
func (s *Service) Content(ctx context.Context) (map[string]string, error) {
	return s.repo.GetContent(ctx)
}

// UpdateContent upserts the given site-content keys.
func (s *Service) UpdateContent(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return &domain.ValidationError{Fields: []string{"content: must contain at least one key"}}
	}
	return s.repo.UpsertContent(ctx, entries)
}

// BillingPortalURL creates a Stripe billing-portal session for the member,
// creating the Stripe customer first if needed.
func (s *Service) BillingPortalURL(ctx context.Context, email string) (string, error) {
	if s.stripe == nil || !s.stripe.Configured() {
		return "", ErrBillingUnavailable
	}

	member, err := s.repo.EnsureMember(ctx, email, "")
	if err != nil {
		return "", err
	}

	customerID := ""
	if member.StripeCustomerID != nil {
		customerID = *member.StripeCustomerID
	}
	if customerID == "" {
		customer, err := s.stripe.CreateCustomer(ctx, member.Email, member.DisplayName)
		if err != nil {
			s.logger.Error("stripe customer creation failed", "member", email, "error", err)
			return "", ErrBillingUnavailable
		}
		customerID = customer.ID
		if err := s.repo.SetStripeCustomerID(ctx, email, customerID); err != nil {
			return "", err
		}
	}

	session, err := s.stripe.CreatePortalSession(ctx, customerID, s.stripeReturnURL)
	if err != nil {
		s.logger.Error("stripe portal session failed", "member", email, "error", err)
		return "", ErrBillingUnavailable
	}
	return session.URL, nil
}

// GrantMonthlyCredits applies each plan member's monthly credit allotment.
// Failures are logged per member and do not stop the sweep.
func (s *Service) GrantMonthlyCredits(ctx context.Context) error {
	members, err := s.repo.ListPlanMembers(ctx)
	if err != nil {
		return err
	}
	for _, pm := range members {
		if pm.PlanCredits <= 0 {
			continue
		}
		_, newBalance, err := s.repo.ApplyTransaction(ctx, pm.Email, pm.PlanCredits, domain.ReasonMonthlyGrant)
		if err != nil {
			s.logger.Error("monthly grant failed", "member", pm.Email, "error", err)
			continue
		}
		s.publishCreditsAdjusted(ctx, pm.Email, pm.PlanCredits, domain.ReasonMonthlyGrant, newBalance)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, routingKey string, body interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, domain.PortalEventsExchange, routingKey, body); err != nil {
		s.logger.Error("event publish failed", "routing_key", routingKey, "error", err)
	}
}

func (s *Service) publishCreditsAdjusted(ctx context.Context, email string, delta int, reason string, newBalance int) {
	s.publish(ctx, domain.RoutingKeyCreditsAdjusted, domain.CreditsAdjustedEvent{
		MemberID:   email,
		Delta:      delta,
		Reason:     reason,
		NewBalance: newBalance,
	})
}
