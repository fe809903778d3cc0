package agents

import (
	"context"
	"strings"
	"time"

	"github.com/zulandar/switchboard/internal/intent"
	"github.com/zulandar/switchboard/internal/knowledge"
	"github.com/zulandar/switchboard/internal/models"
)

// healthStaleAfter is the inactivity span at which the recency component of
// the health score reaches zero.
const healthStaleAfter = 30 * 24 * time.Hour

// CustomerSuccess serves existing customers with support and order traffic.
// Its replies are tuned by a customer health score blended from recency and
// engagement.
type CustomerSuccess struct {
	store             *knowledge.Store
	engagementCeiling int
	now               func() time.Time
}

// NewCustomerSuccess creates the agent. The engagement ceiling normalizes
// the score's engagement component; non-positive values fall back to 20.
func NewCustomerSuccess(store *knowledge.Store, engagementCeiling int) *CustomerSuccess {
	if engagementCeiling <= 0 {
		engagementCeiling = 20
	}
	return &CustomerSuccess{store: store, engagementCeiling: engagementCeiling, now: time.Now}
}

func (a *CustomerSuccess) Type() models.AgentType { return models.AgentCustomerSuccess }

// CanHandle is true for existing customers with support or order intents.
func (a *CustomerSuccess) CanHandle(in intent.Intent, sess *models.Session) bool {
	if sess.CustomerTier != models.TierCustomer && sess.CustomerTier != models.TierVIP {
		return false
	}
	return in == intent.SupportRequest || in == intent.OrderStatus
}

// Draft answers the support or order question and adds a check-in line for
// customers whose health score has dropped.
func (a *CustomerSuccess) Draft(_ context.Context, sess *models.Session, in intent.Intent, message string) string {
	parts := []string{baseResponse(a.store, in)}

	if policy, ok := a.store.PolicyFor(message); ok {
		parts = append(parts, policy)
	}

	if a.HealthScore(sess) < 0.5 {
		parts = append(parts, "It's been a while since we last talked. Is everything working out with your purchase?")
	}
	return strings.Join(parts, " ")
}

// HealthScore blends activity recency and engagement into a 0..1 score.
// A customer active today with a full engagement bar scores 1.0.
func (a *CustomerSuccess) HealthScore(sess *models.Session) float64 {
	recency := 1.0
	if !sess.LastActivityAt.IsZero() {
		idle := a.now().Sub(sess.LastActivityAt)
		if idle > 0 {
			recency = 1 - float64(idle)/float64(healthStaleAfter)
			if recency < 0 {
				recency = 0
			}
		}
	}

	engagement := float64(sess.EngagementScore) / float64(a.engagementCeiling)
	if engagement > 1 {
		engagement = 1
	}

	return 0.5*recency + 0.5*engagement
}
