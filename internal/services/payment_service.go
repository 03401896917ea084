package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// ChargeStatus is the gateway's view of a charge. Only "succeeded" lets the
// provisioning saga proceed.
type ChargeStatus string

const ChargeSucceeded ChargeStatus = "succeeded"

type Charge struct {
	Ref    string
	Status ChargeStatus
}

// PaymentGateway authorizes a charge up front. A zero amount never reaches
// the gateway; callers skip the call entirely.
type PaymentGateway interface {
	AuthorizeCharge(ctx context.Context, amountCents int64, currency string) (*Charge, error)
}

type stripeGateway struct {
	secretKey string
	baseURL   string
	http      *http.Client
}

// NewStripeGateway creates a PaymentGateway backed by Stripe's PaymentIntents
// API.
func NewStripeGateway(secretKey string) PaymentGateway {
	return &stripeGateway{
		secretKey: secretKey,
		baseURL:   "https://api.stripe.com/v1",
		http:      &http.Client{},
	}
}

type paymentIntentResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (s *stripeGateway) AuthorizeCharge(ctx context.Context, amountCents int64, currency string) (*Charge, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountCents, 10))
	form.Set("currency", currency)
	form.Set("confirm", "true")
	form.Set("automatic_payment_methods[enabled]", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(s.secretKey, "")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var intent paymentIntentResponse
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, fmt.Errorf("failed to parse stripe response: %w", err)
	}
	if intent.Error != nil {
		return nil, fmt.Errorf("stripe error: %s", intent.Error.Message)
	}

	return &Charge{Ref: intent.ID, Status: ChargeStatus(intent.Status)}, nil
}
