// Package agents holds the specialized response strategies. Each agent
// turns session state plus a classified message into a response draft; the
// draft is plain knowledge-store text that a language-model collaborator
// may later rewrite.
package agents

import (
	"context"

	"github.com/zulandar/switchboard/internal/intent"
	"github.com/zulandar/switchboard/internal/knowledge"
	"github.com/zulandar/switchboard/internal/models"
)

// Agent is one response strategy. Draft never fails: collaborator errors
// degrade to knowledge-store text so the customer always gets a reply.
type Agent interface {
	Type() models.AgentType
	CanHandle(in intent.Intent, sess *models.Session) bool
	Draft(ctx context.Context, sess *models.Session, in intent.Intent, message string) string
}

// Registry maps agent types to their implementations. The set is closed;
// ForType falls back to the SBDR for unknown values rather than failing.
type Registry struct {
	sbdr    *SBDR
	manager *AccountManager
	success *CustomerSuccess
}

// NewRegistry wires the three agents to their shared knowledge store and
// the Account Manager's commerce collaborator.
func NewRegistry(store *knowledge.Store, sbdr *SBDR, manager *AccountManager, success *CustomerSuccess) *Registry {
	return &Registry{sbdr: sbdr, manager: manager, success: success}
}

// ForType returns the agent for t.
func (r *Registry) ForType(t models.AgentType) Agent {
	switch t {
	case models.AgentAccountManager:
		return r.manager
	case models.AgentCustomerSuccess:
		return r.success
	default:
		return r.sbdr
	}
}

// baseResponse picks the canned text for an intent, falling back to the
// store's fallback line.
func baseResponse(store *knowledge.Store, in intent.Intent) string {
	if text, ok := store.Response(string(in)); ok {
		return text
	}
	return store.Fallback()
}
