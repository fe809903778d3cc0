package qualify

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/zulandar/switchboard/internal/knowledge"
)

// BudgetRange is a normalized budget in whole dollars. A nil Max means an
// open-ended "at least" range; a zero Min with a set Max means "up to".
type BudgetRange struct {
	Min *int
	Max *int
}

// Budget patterns, evaluated in order. Comparative phrases come before the
// bare-amount patterns so "under $500" is not read as exactly $500.
var (
	reBetween = regexp.MustCompile(`(?i)\bbetween\s+\$?(\d[\d,]*)\s+and\s+\$?(\d[\d,]*)`)
	reDashed  = regexp.MustCompile(`\$(\d[\d,]*)\s*-\s*\$?(\d[\d,]*)`)
	reUpper   = regexp.MustCompile(`(?i)\b(?:under|up\s+to|at\s+most|below|less\s+than|no\s+more\s+than)\s+\$?(\d[\d,]*)`)
	reLower   = regexp.MustCompile(`(?i)\b(?:over|at\s+least|more\s+than|minimum(?:\s+of)?)\s+\$?(\d[\d,]*)`)
	reAround  = regexp.MustCompile(`(?i)\b(?:around|about|approximately|roughly)\s+\$?(\d[\d,]*)`)
	reDollar  = regexp.MustCompile(`\$(\d[\d,]*)`)
	reSpelled = regexp.MustCompile(`(?i)\b(\d[\d,]*)\s*(?:dollars?|bucks?)\b`)
	reBudget  = regexp.MustCompile(`(?i)\bbudget\b\D{0,20}?(\d[\d,]*)`)
)

// Use-case and timeline tables, in precedence order; first match wins.
var useCaseTable = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"business", regexp.MustCompile(`(?i)\b(business|work|office|professional|corporate)\b`)},
	{"gaming", regexp.MustCompile(`(?i)\b(gaming|game|gamer|esports|streaming)\b`)},
	{"education", regexp.MustCompile(`(?i)\b(school|student|education|study|learning|college)\b`)},
	{"creative", regexp.MustCompile(`(?i)\b(design|photo|video|creative|art|editing)\b`)},
	{"fitness", regexp.MustCompile(`(?i)\b(fitness|workout|exercise|running)\b`)},
	{"personal", regexp.MustCompile(`(?i)\b(personal|home|family|casual|everyday)\b`)},
}

var timelineTable = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"immediate", regexp.MustCompile(`(?i)\b(now|today|asap|immediately|urgent)\b`)},
	{"this_week", regexp.MustCompile(`(?i)\b(this\s+week|within\s+a\s+week|soon)\b`)},
	{"this_month", regexp.MustCompile(`(?i)\b(this\s+month|within\s+a\s+month)\b`)},
	{"researching", regexp.MustCompile(`(?i)\b(research|researching|browsing|comparing|just\s+checking)\b`)},
}

var reRestart = regexp.MustCompile(`(?i)\b(start\s+over|restart|reset|begin\s+again)\b`)

// reBare matches a message that is only a number, optionally with a dollar
// sign. Used for budget answers whose meaning comes from context.
var reBare = regexp.MustCompile(`^\s*\$?\s*(\d[\d,]*)(?:\.\d+)?\s*$`)

// bareAmount parses a number-only message as an exact budget.
func bareAmount(message string) (BudgetRange, bool) {
	m := reBare.FindStringSubmatch(message)
	if m == nil {
		return BudgetRange{}, false
	}
	v, ok := parseAmount(m[1])
	if !ok {
		return BudgetRange{}, false
	}
	exact := v
	return BudgetRange{Min: &exact, Max: &exact}, true
}

// extractBudget parses the first budget signal in the message. The boolean
// is false when no parseable budget is present; malformed numerics are
// treated as no signal, never as an error.
func extractBudget(message string) (BudgetRange, bool) {
	if m := reBetween.FindStringSubmatch(message); m != nil {
		return rangeFrom(m[1], m[2])
	}
	if m := reDashed.FindStringSubmatch(message); m != nil {
		return rangeFrom(m[1], m[2])
	}
	if m := reUpper.FindStringSubmatch(message); m != nil {
		if v, ok := parseAmount(m[1]); ok {
			zero := 0
			return BudgetRange{Min: &zero, Max: &v}, true
		}
		return BudgetRange{}, false
	}
	if m := reLower.FindStringSubmatch(message); m != nil {
		if v, ok := parseAmount(m[1]); ok {
			return BudgetRange{Min: &v}, true
		}
		return BudgetRange{}, false
	}
	for _, re := range []*regexp.Regexp{reAround, reDollar, reSpelled, reBudget} {
		if m := re.FindStringSubmatch(message); m != nil {
			if v, ok := parseAmount(m[1]); ok {
				exact := v
				return BudgetRange{Min: &exact, Max: &exact}, true
			}
			return BudgetRange{}, false
		}
	}
	return BudgetRange{}, false
}

func rangeFrom(lo, hi string) (BudgetRange, bool) {
	a, okA := parseAmount(lo)
	b, okB := parseAmount(hi)
	if !okA || !okB {
		return BudgetRange{}, false
	}
	if b < a {
		a, b = b, a
	}
	return BudgetRange{Min: &a, Max: &b}, true
}

func parseAmount(s string) (int, bool) {
	v, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// extractUseCase returns the first matching use-case category.
func extractUseCase(message string) (string, bool) {
	for _, uc := range useCaseTable {
		if uc.pattern.MatchString(message) {
			return uc.name, true
		}
	}
	return "", false
}

// extractTimeline returns the first matching urgency marker.
func extractTimeline(message string) (string, bool) {
	for _, tl := range timelineTable {
		if tl.pattern.MatchString(message) {
			return tl.name, true
		}
	}
	return "", false
}

// extractInterest matches the message against the knowledge store's product
// categories. A category keyword is an explicit statement of interest; a
// brand mention alone is tangential and reported as such so the scorer can
// avoid overwriting an earlier explicit interest with it.
func extractInterest(message string, cats []knowledge.Category) (category string, explicit bool, ok bool) {
	lower := strings.ToLower(message)
	for _, cat := range cats {
		for _, kw := range cat.Keywords {
			if containsWord(lower, kw) {
				return cat.Name, true, true
			}
		}
	}
	for _, cat := range cats {
		for _, brand := range cat.Brands {
			if containsWord(lower, brand) {
				return cat.Name, false, true
			}
		}
	}
	return "", false, false
}

// containsWord reports whether lower contains w on word boundaries.
func containsWord(lower, w string) bool {
	w = strings.ToLower(w)
	idx := 0
	for {
		i := strings.Index(lower[idx:], w)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(w)
		beforeOK := start == 0 || !isWordByte(lower[start-1])
		afterOK := end == len(lower) || !isWordByte(lower[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// isRestart reports whether the message is an explicit request to start the
// qualification over.
func isRestart(message string) bool {
	return reRestart.MatchString(message)
}
