package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/James-Liebel/Mine-Performance-3-sub001/internal/app"
	"github.com/James-Liebel/Mine-Performance-3-sub001/internal/domain"
	"github.com/James-Liebel/Mine-Performance-3-sub001/internal/store"
	"github.com/James-Liebel/Mine-Performance-3-sub001/pkg/middleware"
)

// stubService implements PortalService with canned results per test.
type stubService struct {
	bookErr      error
	cancelErr    error
	signErr      error
	replaceErr   error
	billingURL   string
	billingErr   error
	lastEmail    string
	lastEventID  string
	replaceCalls int
}

func (s *stubService) Me(ctx context.Context, email string) (*app.Profile, error) {
	s.lastEmail = email
	return &app.Profile{Member: &domain.Member{Email: email, CreditBalance: 7}}, nil
}

func (s *stubService) BookEvent(ctx context.Context, email, eventID string) (*domain.Booking, error) {
	s.lastEmail, s.lastEventID = email, eventID
	if s.bookErr != nil {
		return nil, s.bookErr
	}
	return &domain.Booking{ID: "b-1", MemberID: email, EventID: eventID, Status: domain.BookingStatusActive}, nil
}

func (s *stubService) CancelBooking(ctx context.Context, email, eventID string) (*domain.Booking, error) {
	s.lastEmail, s.lastEventID = email, eventID
	if s.cancelErr != nil {
		return nil, s.cancelErr
	}
	return &domain.Booking{ID: "b-1", MemberID: email, EventID: eventID, Status: domain.BookingStatusCancelled}, nil
}

func (s *stubService) UpcomingEvents(ctx context.Context) ([]domain.Event, error) { return nil, nil }
func (s *stubService) Waivers(ctx context.Context) ([]domain.Waiver, error)       { return nil, nil }

func (s *stubService) Signatures(ctx context.Context, email string) (map[string]time.Time, error) {
	return map[string]time.Time{}, nil
}

func (s *stubService) SignWaiver(ctx context.Context, email, waiverID string) (*domain.WaiverSignature, error) {
	if s.signErr != nil {
		return nil, s.signErr
	}
	return &domain.WaiverSignature{MemberID: email, WaiverID: waiverID, SignedAt: time.Now()}, nil
}

func (s *stubService) Plans(ctx context.Context) ([]domain.MembershipPlan, error) { return nil, nil }

func (s *stubService) ReplacePlans(ctx context.Context, plans []domain.MembershipPlan) error {
	s.replaceCalls++
	if s.replaceErr != nil {
		return s.replaceErr
	}
	return domain.ValidatePlans(plans)
}

func (s *stubService) Coaches(ctx context.Context) ([]domain.Coach, error) { return nil, nil }

func (s *stubService) ReplaceCoaches(ctx context.Context, coaches []domain.Coach) error {
	return domain.ValidateCoaches(coaches)
}

func (s *stubService) Content(ctx context.Context) (map[string]string, error) {
	return map[string]string{"hero.title": "Train With Us"}, nil
}

func (s *stubService) UpdateContent(ctx context.Context, entries map[string]string) error { return nil }

func (s *stubService) BillingPortalURL(ctx context.Context, email string) (string, error) {
	if s.billingErr != nil {
		return "", s.billingErr
	}
	return s.billingURL, nil
}

const testSecret = "test-secret"

func newTestRouter(t *testing.T, svc *stubService) http.Handler {
	t.Helper()
	hash, err := domain.HashAdminPassword("letmein")
	if err != nil {
		t.Fatalf("hash admin password: %v", err)
	}
	h := NewHandler(svc, testSecret, "admin@mineperformance.example", hash)
	return NewRouter(h,
		testSecret,
		middleware.NewRateLimiter(100, time.Minute),
		middleware.NewRateLimiter(100, time.Minute),
	)
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func loginToken(t *testing.T, router http.Handler, email, password string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    email,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed with %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.Token
}

func TestLoginAdminWrongPassword(t *testing.T) {
	router := newTestRouter(t, &stubService{})
	rec := doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "admin@mineperformance.example",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestMemberRoutesRequireAuth(t *testing.T) {
	router := newTestRouter(t, &stubService{})
	rec := doJSON(t, router, http.MethodGet, "/member/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestMemberMe(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(t, svc)
	token := loginToken(t, router, "lifter@example.com", "")

	rec := doJSON(t, router, http.MethodGet, "/member/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastEmail != "lifter@example.com" {
		t.Fatalf("expected identity from token, got %q", svc.lastEmail)
	}
}

func TestAdminRouteRejectsMemberToken(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(t, svc)
	token := loginToken(t, router, "lifter@example.com", "")

	rec := doJSON(t, router, http.MethodPut, "/admin/pricing", token, map[string]interface{}{
		"memberships": []domain.MembershipPlan{{ID: "p", Name: "P", Credits: 1, PriceCents: 100}},
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for member token on admin route, got %d", rec.Code)
	}
	if svc.replaceCalls != 0 {
		t.Fatal("service must not be reached without the admin role")
	}
}

func TestReplaceMembershipsValidationError(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(t, svc)
	token := loginToken(t, router, "admin@mineperformance.example", "letmein")

	rec := doJSON(t, router, http.MethodPut, "/admin/pricing", token, map[string]interface{}{
		"memberships": []domain.MembershipPlan{
			{ID: "", Name: "Broken", Credits: -1, PriceCents: 100},
		},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "memberships[0].id") || !strings.Contains(body, "memberships[0].credits") {
		t.Fatalf("error should enumerate every failing field, got %s", body)
	}
}

func TestCancelBookingErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "policy violation", err: app.ErrCancellationWindow, wantStatus: http.StatusBadRequest},
		{name: "not found", err: store.ErrBookingNotFound, wantStatus: http.StatusNotFound},
		{name: "event not found", err: store.ErrEventNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{cancelErr: tt.err}
			router := newTestRouter(t, svc)
			token := loginToken(t, router, "lifter@example.com", "")

			rec := doJSON(t, router, http.MethodPost, "/member/bookings/cancel", token, map[string]string{"eventId": "ev-1"})
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCancelBookingSuccess(t *testing.T) {
	svc := &stubService{}
	router := newTestRouter(t, svc)
	token := loginToken(t, router, "lifter@example.com", "")

	rec := doJSON(t, router, http.MethodPost, "/member/bookings/cancel", token, map[string]string{"eventId": "ev-1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"cancelled":true`) {
		t.Fatalf("expected cancelled:true body, got %s", rec.Body.String())
	}
}

func TestCreateBookingErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "duplicate", err: store.ErrDuplicateBooking, wantStatus: http.StatusConflict},
		{name: "insufficient credits", err: store.ErrInsufficientCredits, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{bookErr: tt.err}
			router := newTestRouter(t, svc)
			token := loginToken(t, router, "lifter@example.com", "")

			rec := doJSON(t, router, http.MethodPost, "/member/bookings", token, map[string]string{"eventId": "ev-1"})
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestBillingPortalUnavailable(t *testing.T) {
	svc := &stubService{billingErr: app.ErrBillingUnavailable}
	router := newTestRouter(t, svc)
	token := loginToken(t, router, "lifter@example.com", "")

	rec := doJSON(t, router, http.MethodPost, "/member/billing-portal", token, nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestMutationRateLimitReturns429(t *testing.T) {
	svc := &stubService{}
	hash, err := domain.HashAdminPassword("letmein")
	if err != nil {
		t.Fatalf("hash admin password: %v", err)
	}
	h := NewHandler(svc, testSecret, "admin@mineperformance.example", hash)

	// Mutation budget of 2: one consumed by login, one by the first booking.
	router := NewRouter(h,
		testSecret,
		middleware.NewRateLimiter(2, time.Minute),
		middleware.NewRateLimiter(100, time.Minute),
	)
	token := loginToken(t, router, "lifter@example.com", "")

	rec := doJSON(t, router, http.MethodPost, "/member/bookings", token, map[string]string{"eventId": "ev-1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 within budget, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/member/bookings", token, map[string]string{"eventId": "ev-2"})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 over budget, got %d", rec.Code)
	}

	// Reads are keyed separately and unaffected.
	rec = doJSON(t, router, http.MethodGet, "/member/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("read should not be starved by mutation limit, got %d", rec.Code)
	}
}
