package knowledge

// policyScanOrder fixes the precedence of policy trigger scanning.
var policyScanOrder = []string{"shipping", "returns", "warranty"}

// policyTriggers maps policy topics to the words that select them in
// free-text lookups.
var policyTriggers = map[string][]string{
	"shipping": {"ship", "delivery", "arrive"},
	"returns":  {"return", "refund", "exchange"},
	"warranty": {"warranty", "guarantee", "protection"},
}

// defaultFile is the built-in knowledge content, used when no file is
// configured or a file omits a section.
func defaultFile() storeFile {
	return storeFile{
		Policies: map[string]string{
			"shipping": "Standard shipping takes 3-5 business days. Express options are available at checkout.",
			"returns":  "Items can be returned within 30 days of delivery for a full refund.",
			"warranty": "All products include a one-year manufacturer warranty. Extended protection plans are available.",
		},
		Categories: []Category{
			{
				Name:     "laptops",
				Keywords: []string{"laptop", "notebook", "computer", "pc", "macbook"},
				Brands:   []string{"dell", "lenovo", "hp", "asus", "apple"},
			},
			{
				Name:     "phones",
				Keywords: []string{"phone", "smartphone", "mobile"},
				Brands:   []string{"iphone", "samsung", "pixel"},
			},
			{
				Name:     "tablets",
				Keywords: []string{"tablet", "ipad"},
				Brands:   []string{"surface", "kindle"},
			},
			{
				Name:     "audio",
				Keywords: []string{"headphones", "earbuds", "speaker", "headset"},
				Brands:   []string{"bose", "sony", "airpods", "jbl"},
			},
		},
		Questions: map[string][]string{
			QuestionBudget: {
				"What's your approximate budget for this purchase?",
				"Do you have a price range in mind?",
			},
			QuestionProduct: {
				"What type of product are you most interested in?",
				"Is there a particular product line you'd like to explore?",
			},
			QuestionUseCase: {
				"What will you primarily use it for?",
				"Is this for work, gaming, school, or something else?",
			},
			QuestionTimeline: {
				"When are you looking to make this purchase?",
				"Is this something you need right away?",
			},
		},
		Responses: map[string]string{
			"greeting":        "Hello! Welcome to our store. How can I help you today?",
			"product_inquiry": "I'd be happy to help you find the right product! Let me ask a few questions to understand your needs.",
			"pricing":         "I can help you find options within your budget. What type of product are you looking for?",
			"order_status":    "I can help you check on your order. Let me pull up the details.",
			"support_request": "I'm sorry you're running into trouble. Can you tell me more about what you're experiencing?",
			"handoff_request": "Of course. I'm connecting you with a team member who can help directly.",
			"general":         "Thanks for your message. I'm here to help you find the right product for your needs.",
		},
		Fallback: "I don't have that information on hand. Would you like to speak with a human agent?",
	}
}
