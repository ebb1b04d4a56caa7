package lib

import (
	"context"
	"fmt"
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

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}

// VerifyPaymentReference checks that a PaymentIntent exists and has
// succeeded before the matching payment is recorded locally.
func VerifyPaymentReference(reference string) error {
	sc := GetStripeClient()
	pi, err := sc.V1PaymentIntents.Retrieve(context.Background(), reference, nil)
	if err != nil {
		return err
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return fmt.Errorf("payment [%s] has status %s", reference, pi.Status)
	}
	return nil
}
