package agents

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/zulandar/switchboard/internal/commerce"
	"github.com/zulandar/switchboard/internal/intent"
	"github.com/zulandar/switchboard/internal/knowledge"
	"github.com/zulandar/switchboard/internal/models"
)

// fakeCommerce is a canned commerce.Client for agent tests.
type fakeCommerce struct {
	products      []commerce.Product
	orders        []commerce.Order
	err           error
	gotFilter     commerce.Filter
	gotCustomerID string
}

func (f *fakeCommerce) QueryProducts(_ context.Context, filter commerce.Filter) ([]commerce.Product, error) {
	f.gotFilter = filter
	return f.products, f.err
}

func (f *fakeCommerce) CustomerOrders(_ context.Context, customerID string) ([]commerce.Order, error) {
	f.gotCustomerID = customerID
	return f.orders, f.err
}

func TestSBDR_DraftAsksMissingQuestions(t *testing.T) {
	a := NewSBDR(knowledge.Default())
	sess := &models.Session{ID: "s1", CustomerName: "Guest"}

	got := a.Draft(context.Background(), sess, intent.ProductInquiry, "I'm looking for a laptop")

	// Nothing is filled yet, so the first two question kinds appear.
	if !strings.Contains(got, "budget") {
		t.Errorf("draft missing budget question: %q", got)
	}
	if !strings.Contains(got, "product") {
		t.Errorf("draft missing product question: %q", got)
	}
	// Capped at two questions per reply.
	if strings.Contains(got, "primarily use it for") {
		t.Errorf("draft carries a third question: %q", got)
	}
}

func TestSBDR_DraftSkipsFilledFields(t *testing.T) {
	a := NewSBDR(knowledge.Default())
	min := 1000
	sess := &models.Session{
		ID:              "s1",
		BudgetMin:       &min,
		BudgetMax:       &min,
		ProductInterest: "laptops",
	}

	got := a.Draft(context.Background(), sess, intent.Pricing, "what about $1000 options")

	if strings.Contains(got, "approximate budget") {
		t.Errorf("draft re-asks a filled budget: %q", got)
	}
	if !strings.Contains(got, "primarily use it for") {
		t.Errorf("draft missing use-case question: %q", got)
	}
	if !strings.Contains(got, "looking to make this purchase") {
		t.Errorf("draft missing timeline question: %q", got)
	}
}

func TestSBDR_DraftIncludesPolicyText(t *testing.T) {
	a := NewSBDR(knowledge.Default())
	sess := &models.Session{ID: "s1"}

	got := a.Draft(context.Background(), sess, intent.General, "how long does delivery take")

	if !strings.Contains(got, "3-5 business days") {
		t.Errorf("draft missing shipping policy: %q", got)
	}
}

func TestSBDR_CanHandle(t *testing.T) {
	a := NewSBDR(knowledge.Default())
	sess := &models.Session{}

	if !a.CanHandle(intent.General, sess) {
		t.Error("CanHandle(general) = false, want true")
	}
	if a.CanHandle(intent.HandoffRequest, sess) {
		t.Error("CanHandle(handoff_request) = true, want false")
	}
}

func TestAccountManager_DraftVIPPhrasing(t *testing.T) {
	a := NewAccountManager(knowledge.Default(), nil)
	sess := &models.Session{ID: "s1", CustomerName: "Dana", CustomerTier: models.TierVIP}

	got := a.Draft(context.Background(), sess, intent.Pricing, "what do you have")

	if !strings.Contains(got, "VIP") || !strings.Contains(got, "Dana") {
		t.Errorf("draft missing vip phrasing: %q", got)
	}
}

func TestAccountManager_DraftRecommendations(t *testing.T) {
	fake := &fakeCommerce{products: []commerce.Product{
		{ID: 1, Title: "ThinkPad X1", Price: 1499},
		{ID: 2, Title: "XPS 13", Price: 1299},
	}}
	a := NewAccountManager(knowledge.Default(), fake)

	min, max := 1000, 2000
	sess := &models.Session{
		ID:              "s1",
		CustomerName:    "Lee",
		CustomerTier:    models.TierProspect,
		Status:          models.StatusQualified,
		ProductInterest: "laptops",
		BudgetMin:       &min,
		BudgetMax:       &max,
	}

	got := a.Draft(context.Background(), sess, intent.ProductInquiry, "what would you suggest")

	if !strings.Contains(got, "ThinkPad X1 ($1499.00)") || !strings.Contains(got, "XPS 13 ($1299.00)") {
		t.Errorf("draft missing recommendations: %q", got)
	}
	if fake.gotFilter.Category != "laptops" {
		t.Errorf("filter category = %q, want laptops", fake.gotFilter.Category)
	}
	if fake.gotFilter.MinPrice == nil || *fake.gotFilter.MinPrice != 1000 {
		t.Errorf("filter min = %v, want 1000", fake.gotFilter.MinPrice)
	}
	if fake.gotFilter.MaxPrice == nil || *fake.gotFilter.MaxPrice != 2000 {
		t.Errorf("filter max = %v, want 2000", fake.gotFilter.MaxPrice)
	}
}

func TestAccountManager_DraftDegradesOnCommerceError(t *testing.T) {
	fake := &fakeCommerce{err: errors.New("storefront down")}
	a := NewAccountManager(knowledge.Default(), fake)
	sess := &models.Session{
		ID:              "s1",
		CustomerName:    "Lee",
		Status:          models.StatusQualified,
		ProductInterest: "laptops",
	}

	got := a.Draft(context.Background(), sess, intent.ProductInquiry, "any suggestions")

	if got == "" {
		t.Fatal("draft empty on commerce failure, want knowledge-store fallback text")
	}
	if strings.Contains(got, "you might like") {
		t.Errorf("draft carries recommendations despite the error: %q", got)
	}
}

func TestAccountManager_DraftOrderStatus(t *testing.T) {
	fake := &fakeCommerce{orders: []commerce.Order{
		{ID: 9001, Name: "#1042", FinancialStatus: "paid", Fulfillment: "fulfilled", TotalPrice: "1499.00"},
		{ID: 8000, Name: "#0991", FinancialStatus: "paid", Fulfillment: "fulfilled", TotalPrice: "249.00"},
	}}
	a := NewAccountManager(knowledge.Default(), fake)

	sess := &models.Session{
		ID:           "s1",
		CustomerName: "Dana",
		CustomerTier: models.TierVIP,
		CustomerID:   "cust-42",
	}
	got := a.Draft(context.Background(), sess, intent.OrderStatus, "where is my order")

	if !strings.Contains(got, "#1042") || !strings.Contains(got, "fulfilled") {
		t.Errorf("draft missing latest order status: %q", got)
	}
	if fake.gotCustomerID != "cust-42" {
		t.Errorf("order lookup customer = %q, want cust-42", fake.gotCustomerID)
	}
	if strings.Contains(got, "you might like") {
		t.Errorf("draft carries recommendations on an order question: %q", got)
	}
}

func TestAccountManager_DraftOrderStatusUnfulfilled(t *testing.T) {
	fake := &fakeCommerce{orders: []commerce.Order{
		{ID: 9001, Name: "#1042", FinancialStatus: "paid", TotalPrice: "1499.00"},
	}}
	a := NewAccountManager(knowledge.Default(), fake)

	sess := &models.Session{ID: "s1", Status: models.StatusQualified, CustomerID: "cust-42"}
	got := a.Draft(context.Background(), sess, intent.OrderStatus, "order update please")

	if !strings.Contains(got, "being prepared for shipment") {
		t.Errorf("draft missing unfulfilled phrasing: %q", got)
	}
}

func TestAccountManager_DraftOrderStatusDegradesOnError(t *testing.T) {
	fake := &fakeCommerce{err: errors.New("storefront down")}
	a := NewAccountManager(knowledge.Default(), fake)

	sess := &models.Session{ID: "s1", Status: models.StatusQualified, CustomerID: "cust-42"}
	got := a.Draft(context.Background(), sess, intent.OrderStatus, "where is my order")

	if got == "" {
		t.Fatal("draft empty on commerce failure, want knowledge-store fallback text")
	}
	if strings.Contains(got, "most recent order") {
		t.Errorf("draft carries order details despite the error: %q", got)
	}
}

func TestAccountManager_DraftOrderStatusSkipsAnonymous(t *testing.T) {
	fake := &fakeCommerce{orders: []commerce.Order{{ID: 1, Name: "#1", TotalPrice: "10.00"}}}
	a := NewAccountManager(knowledge.Default(), fake)

	sess := &models.Session{ID: "s1", CustomerTier: models.TierVIP}
	got := a.Draft(context.Background(), sess, intent.OrderStatus, "where is my order")

	if fake.gotCustomerID != "" {
		t.Errorf("order lookup made for anonymous session, customer = %q", fake.gotCustomerID)
	}
	if strings.Contains(got, "most recent order") {
		t.Errorf("draft carries order details without a customer id: %q", got)
	}
}

func TestAccountManager_CanHandle(t *testing.T) {
	a := NewAccountManager(knowledge.Default(), nil)

	qualified := &models.Session{Status: models.StatusQualified}
	vip := &models.Session{CustomerTier: models.TierVIP}
	prospect := &models.Session{CustomerTier: models.TierProspect}

	if !a.CanHandle(intent.Pricing, qualified) {
		t.Error("CanHandle(qualified) = false, want true")
	}
	if !a.CanHandle(intent.Greeting, vip) {
		t.Error("CanHandle(vip) = false, want true")
	}
	if a.CanHandle(intent.Pricing, prospect) {
		t.Error("CanHandle(unqualified prospect) = true, want false")
	}
}

func TestCustomerSuccess_HealthScore(t *testing.T) {
	a := NewCustomerSuccess(knowledge.Default(), 20)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	cases := []struct {
		name string
		sess models.Session
		min  float64
		max  float64
	}{
		{"active and engaged", models.Session{LastActivityAt: now, EngagementScore: 20}, 0.99, 1.0},
		{"active, no engagement", models.Session{LastActivityAt: now}, 0.49, 0.51},
		{"stale and silent", models.Session{LastActivityAt: now.Add(-60 * 24 * time.Hour)}, 0, 0.01},
		{"half stale, half engaged", models.Session{LastActivityAt: now.Add(-15 * 24 * time.Hour), EngagementScore: 10}, 0.49, 0.51},
	}
	for _, tc := range cases {
		got := a.HealthScore(&tc.sess)
		if got < tc.min || got > tc.max {
			t.Errorf("%s: HealthScore = %v, want in [%v, %v]", tc.name, got, tc.min, tc.max)
		}
	}
}

func TestCustomerSuccess_DraftChecksInOnLowHealth(t *testing.T) {
	a := NewCustomerSuccess(knowledge.Default(), 20)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }

	stale := &models.Session{
		ID:             "s1",
		CustomerTier:   models.TierCustomer,
		LastActivityAt: now.Add(-45 * 24 * time.Hour),
	}
	got := a.Draft(context.Background(), stale, intent.SupportRequest, "my headset stopped working")
	if !strings.Contains(got, "been a while") {
		t.Errorf("draft missing check-in for low health: %q", got)
	}

	fresh := &models.Session{
		ID:              "s2",
		CustomerTier:    models.TierCustomer,
		LastActivityAt:  now,
		EngagementScore: 20,
	}
	got = a.Draft(context.Background(), fresh, intent.SupportRequest, "quick question about my order")
	if strings.Contains(got, "been a while") {
		t.Errorf("draft carries check-in for healthy customer: %q", got)
	}
}

func TestCustomerSuccess_CanHandle(t *testing.T) {
	a := NewCustomerSuccess(knowledge.Default(), 20)

	customer := &models.Session{CustomerTier: models.TierCustomer}
	prospect := &models.Session{CustomerTier: models.TierProspect}

	if !a.CanHandle(intent.SupportRequest, customer) {
		t.Error("CanHandle(customer, support) = false, want true")
	}
	if !a.CanHandle(intent.OrderStatus, customer) {
		t.Error("CanHandle(customer, order) = false, want true")
	}
	if a.CanHandle(intent.Greeting, customer) {
		t.Error("CanHandle(customer, greeting) = true, want false")
	}
	if a.CanHandle(intent.SupportRequest, prospect) {
		t.Error("CanHandle(prospect, support) = true, want false")
	}
}

func TestRegistry_ForType(t *testing.T) {
	store := knowledge.Default()
	r := NewRegistry(store, NewSBDR(store), NewAccountManager(store, nil), NewCustomerSuccess(store, 20))

	cases := []struct {
		in   models.AgentType
		want models.AgentType
	}{
		{models.AgentSBDR, models.AgentSBDR},
		{models.AgentAccountManager, models.AgentAccountManager},
		{models.AgentCustomerSuccess, models.AgentCustomerSuccess},
		{"", models.AgentSBDR},
		{"unknown", models.AgentSBDR},
	}
	for _, tc := range cases {
		if got := r.ForType(tc.in).Type(); got != tc.want {
			t.Errorf("ForType(%q).Type() = %q, want %q", tc.in, got, tc.want)
		}
	}
}
