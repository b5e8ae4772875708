package payments

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"evcharge/internal/domain"
)

// Intent is the provider-neutral view of a payment intent.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
}

// StatusSucceeded is the provider status accepted by payment confirmation.
const StatusSucceeded = "succeeded"

// StripeClient wraps the Stripe payment-intent API.
type StripeClient struct {
	api      *client.API
	currency string
}

func NewStripeClient(secretKey, currency string) *StripeClient {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeClient{api: api, currency: currency}
}

func (c *StripeClient) CreateIntent(ctx context.Context, booking *domain.Booking) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(booking.AmountCents),
		Currency: stripe.String(c.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	// Retried requests must not create duplicate intents.
	params.SetIdempotencyKey(uuid.NewString())
	params.AddMetadata("booking_id", strconv.FormatInt(booking.ID, 10))
	params.AddMetadata("user_id", strconv.FormatInt(booking.UserID, 10))
	params.AddMetadata("station_id", strconv.FormatInt(booking.StationID, 10))

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, err
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}

func (c *StripeClient) GetIntent(ctx context.Context, intentID string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := c.api.PaymentIntents.Get(intentID, params)
	if err != nil {
		return nil, err
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}
