// Package commerce talks to the storefront backend for product and order
// lookups. Only the Account Manager agent consumes it; qualification logic
// never depends on commerce data.
package commerce

import "context"

// Product is one purchasable item returned from the storefront.
type Product struct {
	ID    int64
	Title string
	Type  string
	Price float64
}

// Order is a past order belonging to a customer.
type Order struct {
	ID              int64
	Name            string
	FinancialStatus string
	Fulfillment     string
	TotalPrice      string
}

// Filter narrows a product query. Zero values mean no constraint.
type Filter struct {
	Category string
	MinPrice *int
	MaxPrice *int
	Limit    int
}

// Client is the storefront surface the agents use. Implementations must be
// safe for concurrent use.
type Client interface {
	QueryProducts(ctx context.Context, f Filter) ([]Product, error)
	CustomerOrders(ctx context.Context, customerID string) ([]Order, error)
}
