// Package qualify maintains the lead-qualification profile of a session:
// signal extraction from free text, the engagement accumulator, and the
// qualification status state machine.
package qualify

import (
	"log"
	"strconv"
	"strings"

	"github.com/zulandar/switchboard/internal/config"
	"github.com/zulandar/switchboard/internal/intent"
	"github.com/zulandar/switchboard/internal/knowledge"
	"github.com/zulandar/switchboard/internal/models"
)

// Outcome reports what a single UpdateProfile call changed.
type Outcome struct {
	Signals        []string // signal names extracted from this message
	BudgetRevised  bool     // an existing budget was overwritten
	Restarted      bool     // explicit restart signal handled
	StatusChanged  bool
	PreviousStatus models.QualificationStatus
}

// Scorer updates session profiles message by message. It never fails: a
// message that yields nothing parseable simply contributes no signal.
type Scorer struct {
	cats []knowledge.Category
	cfg  config.QualificationConfig
}

// NewScorer creates a Scorer bound to the knowledge store's category list
// and the configured thresholds.
func NewScorer(store *knowledge.Store, cfg config.QualificationConfig) *Scorer {
	return &Scorer{cats: store.Categories(), cfg: cfg}
}

// UpdateProfile applies one inbound message to the session profile:
// extraction, engagement accumulation, and at most one status transition.
// Status only moves forward (not_started -> in_progress -> qualified or
// unqualified) except for the explicit restart signal, which clears the
// extracted fields and returns the status to not_started while preserving
// the engagement score.
func (s *Scorer) UpdateProfile(sess *models.Session, message string, in intent.Intent) Outcome {
	out := Outcome{PreviousStatus: sess.Status}
	sess.MessageCount++

	if isRestart(message) {
		sess.BudgetMin = nil
		sess.BudgetMax = nil
		sess.ProductInterest = ""
		sess.UseCase = ""
		sess.Timeline = ""
		if sess.Status != models.StatusNotStarted {
			sess.Status = models.StatusNotStarted
			out.StatusChanged = true
		}
		out.Restarted = true
		s.addEngagement(sess, 1)
		return out
	}

	out.Signals = s.extract(sess, message, in, &out)

	points := 1
	if len(out.Signals) > 0 {
		points = 2
	}
	if strings.TrimSpace(message) == "" {
		points = 0
	}
	s.addEngagement(sess, points)

	s.transition(sess, len(out.Signals) > 0, &out)
	return out
}

// extract pulls budget, product-interest, use-case, and timeline signals
// out of the message and applies them to the profile.
func (s *Scorer) extract(sess *models.Session, message string, in intent.Intent, out *Outcome) []string {
	var signals []string

	rng, ok := extractBudget(message)
	if !ok && in == intent.Pricing {
		// A bare numeric reply that the classifier resolved to pricing from
		// context ("what's your budget?" / "1500") is an exact budget.
		rng, ok = bareAmount(message)
	}
	if ok {
		if sess.HasBudget() && !sameBudget(sess, rng) {
			// Last-write-wins, but never silently: the overwrite is surfaced
			// both in the log and on the outcome.
			log.Printf("qualify: session %s budget revised: %s -> %s",
				sess.ID, formatBudget(sess.BudgetMin, sess.BudgetMax), formatBudget(rng.Min, rng.Max))
			out.BudgetRevised = true
		}
		sess.BudgetMin = rng.Min
		sess.BudgetMax = rng.Max
		signals = append(signals, "budget")
	}

	if cat, explicit, ok := extractInterest(message, s.cats); ok {
		switch {
		case sess.ProductInterest == "":
			sess.ProductInterest = cat
			signals = append(signals, "product_interest")
		case sess.ProductInterest != cat && explicit:
			// A different category stated by keyword replaces the old one;
			// a mere brand mention does not.
			sess.ProductInterest = cat
			signals = append(signals, "product_interest")
		case sess.ProductInterest == cat:
			signals = append(signals, "product_interest")
		}
	}

	if uc, ok := extractUseCase(message); ok {
		sess.UseCase = uc
		signals = append(signals, "use_case")
	}
	if tl, ok := extractTimeline(message); ok {
		sess.Timeline = tl
		signals = append(signals, "timeline")
	}

	return signals
}

// addEngagement bumps the engagement score, clamped to the configured
// ceiling. The score never decreases.
func (s *Scorer) addEngagement(sess *models.Session, points int) {
	if points <= 0 {
		return
	}
	next := sess.EngagementScore + points
	if next > s.cfg.EngagementCeiling {
		next = s.cfg.EngagementCeiling
	}
	if next > sess.EngagementScore {
		sess.EngagementScore = next
	}
}

// transition applies the deterministic status rules. Qualified and
// unqualified are terminal for the scorer.
func (s *Scorer) transition(sess *models.Session, gotSignal bool, out *Outcome) {
	switch sess.Status {
	case models.StatusNotStarted:
		if gotSignal {
			sess.Status = models.StatusInProgress
			out.StatusChanged = true
		}
	case models.StatusInProgress, models.StatusQualified, models.StatusUnqualified:
	}

	if sess.Status == models.StatusInProgress &&
		sess.SignalCount() >= s.cfg.MinSignals &&
		sess.EngagementScore > s.cfg.EngagementThreshold {
		sess.Status = models.StatusQualified
		out.StatusChanged = true
		return
	}

	if (sess.Status == models.StatusNotStarted || sess.Status == models.StatusInProgress) &&
		sess.MessageCount >= s.cfg.MaxMessages {
		sess.Status = models.StatusUnqualified
		out.StatusChanged = true
	}
}

func sameBudget(sess *models.Session, rng BudgetRange) bool {
	return eqIntPtr(sess.BudgetMin, rng.Min) && eqIntPtr(sess.BudgetMax, rng.Max)
}

func eqIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func formatBudget(min, max *int) string {
	switch {
	case min == nil && max == nil:
		return "none"
	case min != nil && max == nil:
		return "$" + strconv.Itoa(*min) + "+"
	case min == nil:
		return "up to $" + strconv.Itoa(*max)
	case *min == *max:
		return "$" + strconv.Itoa(*min)
	default:
		return "$" + strconv.Itoa(*min) + "-$" + strconv.Itoa(*max)
	}
}

