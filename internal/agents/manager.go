package agents

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/zulandar/switchboard/internal/commerce"
	"github.com/zulandar/switchboard/internal/intent"
	"github.com/zulandar/switchboard/internal/knowledge"
	"github.com/zulandar/switchboard/internal/models"
)

// maxRecommendations bounds how many products one reply lists.
const maxRecommendations = 3

// AccountManager serves qualified leads and vip customers. It is the only
// agent that consults the commerce collaborator; lookups that fail degrade
// to a knowledge-store reply.
type AccountManager struct {
	store    *knowledge.Store
	commerce commerce.Client
}

// NewAccountManager creates the agent. A nil commerce client disables
// product recommendations.
func NewAccountManager(store *knowledge.Store, c commerce.Client) *AccountManager {
	return &AccountManager{store: store, commerce: c}
}

func (a *AccountManager) Type() models.AgentType { return models.AgentAccountManager }

// CanHandle is true for qualified or vip sessions on any non-escalation
// intent.
func (a *AccountManager) CanHandle(in intent.Intent, sess *models.Session) bool {
	if in == intent.HandoffRequest {
		return false
	}
	return sess.CustomerTier == models.TierVIP || sess.Status == models.StatusQualified
}

// Draft greets by tier and answers the intent. Order-status questions get
// the customer's latest order; anything else gets recommendations matching
// the stored product interest and budget.
func (a *AccountManager) Draft(ctx context.Context, sess *models.Session, in intent.Intent, message string) string {
	var parts []string

	if sess.CustomerTier == models.TierVIP {
		parts = append(parts, fmt.Sprintf("Welcome back, %s! As one of our VIP customers you have my full attention.", sess.CustomerName))
	} else {
		parts = append(parts, fmt.Sprintf("Thanks for sharing those details, %s. Let me put together some options for you.", sess.CustomerName))
	}

	parts = append(parts, baseResponse(a.store, in))

	if policy, ok := a.store.PolicyFor(message); ok {
		parts = append(parts, policy)
	}

	if in == intent.OrderStatus {
		if status := a.orderStatus(ctx, sess); status != "" {
			parts = append(parts, status)
		}
	} else if recs := a.recommend(ctx, sess); recs != "" {
		parts = append(parts, recs)
	}
	return strings.Join(parts, " ")
}

// orderStatus reports the customer's most recent order. Anonymous sessions
// and lookup failures degrade to the knowledge-store reply alone.
func (a *AccountManager) orderStatus(ctx context.Context, sess *models.Session) string {
	if a.commerce == nil || sess.CustomerID == "" {
		return ""
	}

	orders, err := a.commerce.CustomerOrders(ctx, sess.CustomerID)
	if err != nil {
		log.Printf("agents: session %s order lookup failed: %v", sess.ID, err)
		return ""
	}
	if len(orders) == 0 {
		return ""
	}

	latest := orders[0]
	fulfillment := latest.Fulfillment
	if fulfillment == "" {
		fulfillment = "being prepared for shipment"
	}
	return fmt.Sprintf("Your most recent order %s ($%s) is %s.", latest.Name, latest.TotalPrice, fulfillment)
}

// recommend queries the commerce collaborator with the session's interest
// and budget. Errors are logged and swallowed.
func (a *AccountManager) recommend(ctx context.Context, sess *models.Session) string {
	if a.commerce == nil || sess.ProductInterest == "" {
		return ""
	}

	products, err := a.commerce.QueryProducts(ctx, commerce.Filter{
		Category: sess.ProductInterest,
		MinPrice: sess.BudgetMin,
		MaxPrice: sess.BudgetMax,
		Limit:    maxRecommendations,
	})
	if err != nil {
		log.Printf("agents: session %s product lookup failed: %v", sess.ID, err)
		return ""
	}
	if len(products) == 0 {
		return ""
	}
	if len(products) > maxRecommendations {
		products = products[:maxRecommendations]
	}

	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, fmt.Sprintf("%s ($%.2f)", p.Title, p.Price))
	}
	return "Based on what you've told me, you might like: " + strings.Join(names, ", ") + "."
}
