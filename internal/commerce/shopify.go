package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/zulandar/switchboard/internal/config"
)

const shopifyAPIVersion = "2024-01"

// Shopify is a Client backed by the Shopify Admin REST API.
type Shopify struct {
	domain  string
	token   string
	httpc   *http.Client
	baseURL string // overridden in tests
}

// NewShopify builds a Shopify client from configuration.
func NewShopify(cfg config.ShopifyConfig) *Shopify {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Shopify{
		domain:  cfg.Domain,
		token:   cfg.AccessToken,
		httpc:   &http.Client{Timeout: timeout},
		baseURL: fmt.Sprintf("https://%s/admin/api/%s", cfg.Domain, shopifyAPIVersion),
	}
}

type shopifyProduct struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	ProductType string `json:"product_type"`
	Variants    []struct {
		Price string `json:"price"`
	} `json:"variants"`
}

type shopifyOrder struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	FinancialStatus   string `json:"financial_status"`
	FulfillmentStatus string `json:"fulfillment_status"`
	TotalPrice        string `json:"total_price"`
}

// QueryProducts fetches products matching the filter. The Admin API has no
// price parameters, so the price bounds are applied after the fetch.
func (s *Shopify) QueryProducts(ctx context.Context, f Filter) ([]Product, error) {
	q := url.Values{}
	if f.Category != "" {
		q.Set("product_type", f.Category)
	}
	limit := f.Limit
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	q.Set("limit", strconv.Itoa(limit))

	var body struct {
		Products []shopifyProduct `json:"products"`
	}
	if err := s.get(ctx, "/products.json?"+q.Encode(), &body); err != nil {
		return nil, err
	}

	out := make([]Product, 0, len(body.Products))
	for _, p := range body.Products {
		price := 0.0
		if len(p.Variants) > 0 {
			price, _ = strconv.ParseFloat(p.Variants[0].Price, 64)
		}
		if f.MinPrice != nil && price < float64(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && price > float64(*f.MaxPrice) {
			continue
		}
		out = append(out, Product{ID: p.ID, Title: p.Title, Type: p.ProductType, Price: price})
	}
	return out, nil
}

// CustomerOrders fetches recent orders for one customer, newest first.
func (s *Shopify) CustomerOrders(ctx context.Context, customerID string) ([]Order, error) {
	q := url.Values{}
	q.Set("customer_id", customerID)
	q.Set("status", "any")
	q.Set("order", "created_at desc")

	var body struct {
		Orders []shopifyOrder `json:"orders"`
	}
	if err := s.get(ctx, "/orders.json?"+q.Encode(), &body); err != nil {
		return nil, err
	}

	out := make([]Order, 0, len(body.Orders))
	for _, o := range body.Orders {
		out = append(out, Order{
			ID:              o.ID,
			Name:            o.Name,
			FinancialStatus: o.FinancialStatus,
			Fulfillment:     o.FulfillmentStatus,
			TotalPrice:      o.TotalPrice,
		})
	}
	return out, nil
}

func (s *Shopify) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("commerce: build request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", s.token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("commerce: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("commerce: %s returned %d: %s", path, resp.StatusCode, snippet)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("commerce: decode %s: %w", path, err)
	}
	return nil
}
