package lib

import (
	"context"
	"math"
	"os"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	sc := stripe.NewClient(apiKey)
	stripeClient = sc

	return sc
}

// NewStripeClient replaces the ambient client; used by tests.
func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

// CreatePaymentIntent requests a provider-side intent for amount in major
// units. The linked ledger entry id travels as opaque metadata so the
// webhook can route the result; card data never touches this service.
func CreatePaymentIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*stripe.PaymentIntent, error) {
	sc := GetStripeClient()
	params := stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(int64(math.Round(amount * 100))),
		Currency: stripe.String(currency),
		Metadata: metadata,
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	return sc.V1PaymentIntents.Create(ctx, &params)
}
