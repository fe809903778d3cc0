// Package policy decides which specialized agent should respond next. The
// decision function is pure: it reads the session profile and the intent,
// mutates nothing, and leaves persistence to the caller.
package policy

import (
	"github.com/zulandar/switchboard/internal/intent"
	"github.com/zulandar/switchboard/internal/models"
)

// Decision reasons, recorded on handoff records and surfaced in responses.
const (
	ReasonEscalation   = "customer requested a human agent"
	ReasonVIP          = "vip customer routed to account management"
	ReasonQualified    = "lead qualified for account management"
	ReasonCustomerCare = "existing customer needs support"
	ReasonProspect     = "prospect in qualification"
	ReasonAntiThrash   = "handoff suppressed inside the anti-thrash window"
	ReasonFrozen       = "session escalated, routing frozen"
)

// Input carries the per-message context the decision needs beyond the
// session itself.
type Input struct {
	Intent intent.Intent

	// StatusChanged reports whether this message moved the qualification
	// status. A status change overrides the anti-thrash suppression.
	StatusChanged bool

	// MessagesSinceHandoff is the number of log entries appended since the
	// session's last handoff, or -1 when it has never handed off.
	MessagesSinceHandoff int
}

// Decision is the policy outcome for one message.
type Decision struct {
	Agent    models.AgentType
	Handoff  bool // the assigned agent changed
	Escalate bool // route to the human-handoff path
	Reason   string
}

// Policy selects agents with a fixed priority order and suppresses handoff
// thrash inside a bounded window.
type Policy struct {
	lookback int
}

// New creates a Policy with the given anti-thrash window size in log
// entries. Non-positive values fall back to 10.
func New(lookback int) *Policy {
	if lookback <= 0 {
		lookback = 10
	}
	return &Policy{lookback: lookback}
}

// Decide returns the routing decision for one inbound message.
//
// Priority order: an explicit handoff request escalates regardless of tier;
// vip customers and qualified leads go to the Account Manager; existing
// customers with support or order traffic go to Customer Success; everyone
// else stays with the SBDR. An escalated session is frozen on its current
// agent no matter what arrives afterwards.
func (p *Policy) Decide(sess *models.Session, in Input) Decision {
	if sess.Escalated {
		return Decision{Agent: currentOr(sess, models.AgentSBDR), Reason: ReasonFrozen}
	}

	if in.Intent == intent.HandoffRequest {
		return Decision{
			Agent:    currentOr(sess, models.AgentSBDR),
			Escalate: true,
			Reason:   ReasonEscalation,
		}
	}

	agent, reason := p.desired(sess, in.Intent)

	if sess.CurrentAgent == "" {
		// First assignment on a fresh session is not a handoff.
		return Decision{Agent: agent, Reason: reason}
	}
	if agent == sess.CurrentAgent {
		return Decision{Agent: agent, Reason: reason}
	}

	if p.suppressed(in) {
		return Decision{Agent: sess.CurrentAgent, Reason: ReasonAntiThrash}
	}

	return Decision{Agent: agent, Handoff: true, Reason: reason}
}

// desired applies the tier and status rules without regard to the current
// assignment.
func (p *Policy) desired(sess *models.Session, in intent.Intent) (models.AgentType, string) {
	switch {
	case sess.CustomerTier == models.TierVIP:
		return models.AgentAccountManager, ReasonVIP
	case sess.Status == models.StatusQualified:
		return models.AgentAccountManager, ReasonQualified
	case sess.CustomerTier == models.TierCustomer &&
		(in == intent.SupportRequest || in == intent.OrderStatus):
		return models.AgentCustomerSuccess, ReasonCustomerCare
	default:
		return models.AgentSBDR, ReasonProspect
	}
}

// suppressed reports whether a handoff falls inside the anti-thrash window.
// At most one handoff per window, unless the qualification status changed
// since the last one.
func (p *Policy) suppressed(in Input) bool {
	if in.MessagesSinceHandoff < 0 {
		return false
	}
	if in.StatusChanged {
		return false
	}
	return in.MessagesSinceHandoff < p.lookback
}

func currentOr(sess *models.Session, fallback models.AgentType) models.AgentType {
	if sess.CurrentAgent != "" {
		return sess.CurrentAgent
	}
	return fallback
}
