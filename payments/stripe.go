package payments

import (
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// Application fee charged per loan application.
const (
	ApplicationFeeCents  int64   = 1000 // $10 in cents
	ApplicationFeeAmount float64 = 10
	FeeCurrency                  = "usd"
)

// IntentStatusSucceeded is the provider status that settles a fee.
const IntentStatusSucceeded = "succeeded"

// Intent is the provider-agnostic view of a payment intent.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
}

type ClientInterface interface {
	CreateIntent(amountCents int64, currency string, metadata map[string]string) (*Intent, error)
	RetrieveIntent(id string) (*Intent, error)
}

type StripeClient struct {
	api *client.API
}

func NewStripeClient(secretKey string) ClientInterface {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeClient{api: api}
}

func (s *StripeClient) CreateIntent(amountCents int64, currency string, metadata map[string]string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}

func (s *StripeClient) RetrieveIntent(id string) (*Intent, error) {
	pi, err := s.api.PaymentIntents.Get(id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment intent: %w", err)
	}

	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}
