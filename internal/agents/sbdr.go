package agents

import (
	"context"
	"strings"

	"github.com/zulandar/switchboard/internal/intent"
	"github.com/zulandar/switchboard/internal/knowledge"
	"github.com/zulandar/switchboard/internal/models"
)

// maxQuestionsPerReply caps how many qualification questions one SBDR reply
// may carry. More than two reads like an interrogation.
const maxQuestionsPerReply = 2

// SBDR is the sales business development agent: it answers prospect
// questions from the knowledge store and steers the conversation toward a
// complete qualification profile.
type SBDR struct {
	store *knowledge.Store
}

// NewSBDR creates the SBDR agent.
func NewSBDR(store *knowledge.Store) *SBDR {
	return &SBDR{store: store}
}

func (a *SBDR) Type() models.AgentType { return models.AgentSBDR }

// CanHandle is true for everything except escalations; the SBDR is the
// default strategy.
func (a *SBDR) CanHandle(in intent.Intent, _ *models.Session) bool {
	return in != intent.HandoffRequest
}

// Draft answers from the knowledge store, appends any matching store policy
// text, then asks for the profile fields still missing.
func (a *SBDR) Draft(_ context.Context, sess *models.Session, in intent.Intent, message string) string {
	parts := []string{baseResponse(a.store, in)}

	if policy, ok := a.store.PolicyFor(message); ok {
		parts = append(parts, policy)
	}

	parts = append(parts, a.nextQuestions(sess)...)
	return strings.Join(parts, " ")
}

// nextQuestions returns up to maxQuestionsPerReply questions for profile
// fields not yet filled, in the fixed budget, product, use-case, timeline
// order.
func (a *SBDR) nextQuestions(sess *models.Session) []string {
	var out []string
	ask := func(kind string, missing bool) {
		if !missing || len(out) >= maxQuestionsPerReply {
			return
		}
		if qs := a.store.Questions(kind); len(qs) > 0 {
			out = append(out, qs[0])
		}
	}

	ask(knowledge.QuestionBudget, !sess.HasBudget())
	ask(knowledge.QuestionProduct, sess.ProductInterest == "")
	ask(knowledge.QuestionUseCase, sess.UseCase == "")
	ask(knowledge.QuestionTimeline, sess.Timeline == "")
	return out
}
