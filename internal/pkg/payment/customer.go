package payment

import (
	"context"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/customer"
)

// CustomerInfo is what the engine needs to know about a gateway customer.
type CustomerInfo struct {
	ID      string
	Email   string
	Deleted bool
}

// CustomerResolver resolves a gateway customer reference to an email address.
// The invoice reconciler never trusts an email carried on the payload itself.
// Returns (nil, nil) when the customer does not exist at the gateway.
type CustomerResolver interface {
	Resolve(ctx context.Context, customerID string) (*CustomerInfo, error)
}

type stripeCustomerResolver struct{}

// NewStripeCustomerResolver returns a resolver backed by the gateway API.
// The API key is taken from the package-global stripe.Key set at startup.
func NewStripeCustomerResolver() CustomerResolver {
	return stripeCustomerResolver{}
}

func (stripeCustomerResolver) Resolve(ctx context.Context, customerID string) (*CustomerInfo, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	cus, err := customer.Get(customerID, params)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok && stripeErr.Code == stripe.ErrorCodeResourceMissing {
			// Customer not found is a data-consistency gap, not a transient
			// failure; callers acknowledge instead of retrying.
			return nil, nil
		}
		return nil, err
	}

	return &CustomerInfo{
		ID:      cus.ID,
		Email:   cus.Email,
		Deleted: cus.Deleted,
	}, nil
}
