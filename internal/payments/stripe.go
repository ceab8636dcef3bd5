package payments

import (
	"fmt"
	"strings"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

// CheckoutCreator starts a hosted checkout for a subscription price.
type CheckoutCreator interface {
	CreateCheckoutSession(priceID, email string) (string, error)
}

// StripeClient creates Stripe checkout sessions. The API key is held by the
// client instance, not by package-level state.
type StripeClient struct {
	api        *client.API
	successURL string
	cancelURL  string
}

// NewStripeClient builds a client for the given secret key and redirect URLs.
func NewStripeClient(secretKey, successURL, cancelURL string) (*StripeClient, error) {
	secretKey = strings.TrimSpace(secretKey)
	if secretKey == "" {
		return nil, fmt.Errorf("stripe secret key is required")
	}
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeClient{api: api, successURL: successURL, cancelURL: cancelURL}, nil
}

// CreateCheckoutSession opens a subscription checkout for priceID and returns
// the session id the browser uses to redirect.
func (c *StripeClient) CreateCheckoutSession(priceID, email string) (string, error) {
	priceID = strings.TrimSpace(priceID)
	if priceID == "" {
		return "", fmt.Errorf("price id is required")
	}
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(priceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL: stripe.String(c.successURL),
		CancelURL:  stripe.String(c.cancelURL),
	}
	if email = strings.TrimSpace(email); email != "" {
		params.CustomerEmail = stripe.String(email)
	}
	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.ID, nil
}
