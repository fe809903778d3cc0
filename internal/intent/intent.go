// Package intent classifies inbound chat messages into a fixed closed set
// of intents using an ordered rule table. Classification is deterministic:
// rules are evaluated in priority order and the first match wins.
package intent

// Intent is the discrete classification label for a message's purpose.
type Intent string

const (
	Greeting       Intent = "greeting"
	ProductInquiry Intent = "product_inquiry"
	Pricing        Intent = "pricing"
	OrderStatus    Intent = "order_status"
	SupportRequest Intent = "support_request"
	HandoffRequest Intent = "handoff_request"
	General        Intent = "general"
)

// Confidence tiers. Each rule carries a fixed tier; these are not learned
// probabilities.
const (
	ConfidenceHigh   = 0.9
	ConfidenceMedium = 0.7
	ConfidenceLow    = 0.3
)
