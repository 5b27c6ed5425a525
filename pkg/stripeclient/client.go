/**
 * @description
 * This package provides a minimal client for the Stripe API surface the
 * portal needs: creating customers and opening billing-portal sessions. It
 * encapsulates authentication and form encoding for those two endpoints.
 *
 * Key features:
 * - Manages the API base URL and secret key.
 * - Reports whether billing is configured so handlers can answer 503 cleanly.
 * - Handles form serialization and error decoding for API calls.
 *
 * @dependencies
 * - context, fmt, io, net/http, net/url, strings, time, encoding/json: Standard Go libraries.
 */
package stripeclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrNotConfigured is returned when no secret key was provided at startup.
var ErrNotConfigured = errors.New("stripe is not configured")

// Client is a client for the Stripe API.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// NewClient creates a new Stripe API client. An empty secret key yields a
// client whose calls fail with ErrNotConfigured.
func NewClient(secretKey string) *Client {
	return &Client{
		baseURL:   "https://api.stripe.com",
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether the client holds a secret key.
func (c *Client) Configured() bool {
	return c != nil && c.secretKey != ""
}

// Customer is the subset of Stripe's customer object the portal uses.
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// PortalSession is the subset of Stripe's billing-portal session object the
// portal uses.
type PortalSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CreateCustomer creates a Stripe customer for the given email.
func (c *Client) CreateCustomer(ctx context.Context, email, name string) (*Customer, error) {
	form := url.Values{}
	form.Set("email", email)
	if name != "" {
		form.Set("name", name)
	}

	var customer Customer
	if err := c.do(ctx, "/v1/customers", form, &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

// CreatePortalSession opens a billing-portal session for the customer and
// returns the hosted portal URL the member is redirected to.
func (c *Client) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSession, error) {
	form := url.Values{}
	form.Set("customer", customerID)
	if returnURL != "" {
		form.Set("return_url", returnURL)
	}

	var session PortalSession
	if err := c.do(ctx, "/v1/billing_portal/sessions", form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// do performs an authenticated form-encoded POST and decodes the response
// into out.
func (c *Client) do(ctx context.Context, path string, form url.Values, out interface{}) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create stripe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("stripe request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read stripe response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
				Type    string `json:"type"`
			} `json:"error"`
		}
		if jsonErr := json.Unmarshal(body, &apiErr); jsonErr == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("stripe API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("stripe API error (%d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode stripe response: %w", err)
	}
	return nil
}
