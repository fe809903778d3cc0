package intent

import (
	"regexp"
	"strings"

	"github.com/zulandar/switchboard/internal/knowledge"
	"github.com/zulandar/switchboard/internal/models"
)

// rule is one entry in the ordered classification table.
type rule struct {
	name       string
	pattern    *regexp.Regexp
	intent     Intent
	confidence float64
}

// Fixed-priority patterns. Handoff requests and order-status/pricing
// keywords outrank the generic greeting patterns; product rules are built
// per classifier from the knowledge store's category list.
var (
	reHandoff = regexp.MustCompile(`(?i)\b(human|agent|representative|real person|speak to someone|talk to (a |)(human|person|someone)|manager)\b`)
	reOrder   = regexp.MustCompile(`(?i)\b(order|tracking|shipped|delivery|where\s+is\s+my)\b`)
	rePricing = regexp.MustCompile(`(?i)\b(price|pricing|cost|budget|how\s+much|expensive|cheap|affordable)\b`)
	reAmount  = regexp.MustCompile(`\$\s*\d`)
	reSupport = regexp.MustCompile(`(?i)\b(help|support|problem|issue|broken|not\s+working|trouble)\b`)
	reGreet   = regexp.MustCompile(`(?i)\b(hello|hi|hey|good\s+(morning|afternoon|evening)|greetings)\b`)

	// reBareNumber matches a message that is nothing but a number, as a
	// customer answering "what's your budget?" would type.
	reBareNumber = regexp.MustCompile(`^\s*\$?\s*\d[\d,]*(\.\d+)?\s*$`)
)

// Classifier maps a message plus bounded conversation history to an intent
// and a fixed confidence tier. It is pure: no state is mutated by Classify.
type Classifier struct {
	rules    []rule
	lookback int
}

// NewClassifier builds the ordered rule table. Product-inquiry rules take
// their keyword and brand lists from the knowledge store so the classifier
// and scorer agree on what counts as a product mention.
func NewClassifier(store *knowledge.Store, lookback int) *Classifier {
	if lookback <= 0 {
		lookback = 10
	}

	var kw, brands []string
	for _, cat := range store.Categories() {
		kw = append(kw, cat.Keywords...)
		brands = append(brands, cat.Brands...)
	}

	rules := []rule{
		{"handoff-request", reHandoff, HandoffRequest, ConfidenceHigh},
		{"order-status", reOrder, OrderStatus, ConfidenceHigh},
		{"pricing-keyword", rePricing, Pricing, ConfidenceHigh},
		{"currency-amount", reAmount, Pricing, ConfidenceMedium},
		{"support-keyword", reSupport, SupportRequest, ConfidenceMedium},
	}
	if len(kw) > 0 {
		rules = append(rules, rule{"product-keyword", wordListPattern(kw), ProductInquiry, ConfidenceHigh})
	}
	if len(brands) > 0 {
		rules = append(rules, rule{"product-brand", wordListPattern(brands), ProductInquiry, ConfidenceMedium})
	}
	rules = append(rules, rule{"greeting", reGreet, Greeting, ConfidenceHigh})

	return &Classifier{rules: rules, lookback: lookback}
}

// wordListPattern compiles a case-insensitive whole-word alternation.
func wordListPattern(words []string) *regexp.Regexp {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(strings.ToLower(w))
		if w != "" {
			quoted = append(quoted, regexp.QuoteMeta(w))
		}
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
}

// Classify returns the intent and confidence for a message. The recent
// history (newest last) disambiguates bare numeric replies: a number on its
// own following an agent budget question is a pricing answer, not noise.
func (c *Classifier) Classify(message string, history []models.MessageLog) (Intent, float64) {
	text := strings.TrimSpace(message)
	if text == "" {
		return General, ConfidenceLow
	}

	for _, r := range c.rules {
		if r.pattern.MatchString(text) {
			return r.intent, r.confidence
		}
	}

	if reBareNumber.MatchString(text) && c.agentAskedAboutBudget(history) {
		return Pricing, ConfidenceMedium
	}

	return General, ConfidenceLow
}

// agentAskedAboutBudget reports whether the most recent agent entry within
// the lookback window asked a budget question.
func (c *Classifier) agentAskedAboutBudget(history []models.MessageLog) bool {
	start := len(history) - c.lookback
	if start < 0 {
		start = 0
	}
	for i := len(history) - 1; i >= start; i-- {
		entry := history[i]
		if entry.Sender == models.SenderUser {
			continue
		}
		lower := strings.ToLower(entry.Content)
		return strings.Contains(lower, "budget") || strings.Contains(lower, "price range")
	}
	return false
}
