package enhancer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// EnhancedSuffix decorates fallback-enhanced titles so they are visually
// distinct from the raw input.
const EnhancedSuffix = " ✨"

// stepCategory adds one domain step before and one after the generic steps
// when any of its keywords appears in the title. Categories are checked in
// order and only the first match applies.
type stepCategory struct {
	keywords []string
	first    string
	last     string
}

var stepCategories = []stepCategory{
	{
		keywords: []string{"buy", "purchase", "get", "order"},
		first:    "Research options and compare prices",
		last:     "Complete the purchase",
	},
	{
		keywords: []string{"clean", "organize", "tidy"},
		first:    "Gather the supplies you need",
		last:     "Do a final walkthrough",
	},
	{
		keywords: []string{"write", "create", "draft", "compose"},
		first:    "Outline the key points",
		last:     "Proofread and revise",
	},
	{
		keywords: []string{"call", "contact", "phone"},
		first:    "Find the contact details",
		last:     "Note down any follow-up actions",
	},
	{
		keywords: []string{"exercise", "workout", "gym"},
		first:    "Warm up for a few minutes",
		last:     "Cool down and stretch",
	},
}

// EnhanceTitleFallback capitalizes the first character of title and makes it
// end in the decorative suffix, replacing any trailing '.', '!' or '?'.
// Deterministic and I/O free.
func EnhanceTitleFallback(title string) string {
	enhanced := title
	if r, size := utf8.DecodeRuneInString(enhanced); size > 0 {
		enhanced = string(unicode.ToUpper(r)) + enhanced[size:]
	}
	if last, size := lastRune(enhanced); size > 0 && (last == '.' || last == '!' || last == '?') {
		enhanced = enhanced[:len(enhanced)-size]
	}
	return enhanced + EnhancedSuffix
}

func lastRune(s string) (rune, int) {
	if s == "" {
		return 0, 0
	}
	return utf8.DecodeLastRuneInString(s)
}

// GenerateStepsFallback derives 3 to 5 actionable steps from a title without
// calling the provider. The three generic steps are always present; a single
// keyword category may contribute one leading and one trailing step.
func GenerateStepsFallback(title string) []string {
	steps := []string{
		"Plan and prepare for: " + title,
		"Execute the main task: " + title,
		"Review and finalize: " + title,
	}

	tokens := titleTokens(title)
	for _, cat := range stepCategories {
		if cat.matches(tokens) {
			withExtra := make([]string, 0, len(steps)+2)
			withExtra = append(withExtra, cat.first)
			withExtra = append(withExtra, steps...)
			withExtra = append(withExtra, cat.last)
			return withExtra
		}
	}
	return steps
}

func (c stepCategory) matches(tokens map[string]bool) bool {
	for _, kw := range c.keywords {
		if tokens[kw] {
			return true
		}
	}
	return false
}

// titleTokens lowercases and splits the title, trimming surrounding
// punctuation so "Buy milk!" matches the "buy" keyword.
func titleTokens(title string) map[string]bool {
	tokens := make(map[string]bool)
	for _, field := range strings.Fields(strings.ToLower(title)) {
		token := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if token != "" {
			tokens[token] = true
		}
	}
	return tokens
}
