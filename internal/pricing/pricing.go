package pricing

import "math"

// Entry describes the billing parameters for one model: the hard context
// ceiling and the credit cost per prompt/response token.
type Entry struct {
	MaxTokens    int
	PromptRate   float64
	ResponseRate float64
}

var table = map[string]Entry{
	"gpt-4": {
		MaxTokens:    7500,
		PromptRate:   0.03,
		ResponseRate: 0.06,
	},
	"gpt-3.5-turbo": {
		MaxTokens:    3500,
		PromptRate:   0.002,
		ResponseRate: 0.002,
	},
}

// PremiumModel is the tier that unlocks the ask-back directives.
const PremiumModel = "gpt-4"

// Lookup returns the pricing entry for a model.
func Lookup(model string) (Entry, bool) {
	e, ok := table[model]
	return e, ok
}

// Supported reports whether a model has a pricing entry.
func Supported(model string) bool {
	_, ok := table[model]
	return ok
}

// Models returns the supported model identifiers.
func Models() []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	return names
}

// Price converts token counts into a credit cost. Both sides round half
// away from zero (math.Round), and every call carries a fixed surcharge
// of 1 credit, so the result is always at least 1.
func (e Entry) Price(promptTokens, responseTokens int) int64 {
	prompt := int64(math.Round(float64(promptTokens) * e.PromptRate))
	response := int64(math.Round(float64(responseTokens) * e.ResponseRate))
	return prompt + response + 1
}

// ResponseTokenBudget returns how many response tokens the given credits
// can pay for, clamped to zero. A zero budget means the caller cannot
// afford any generation at all.
func (e Entry) ResponseTokenBudget(credits int64) int {
	tokens := int(math.Round(float64(credits) / e.ResponseRate))
	if tokens < 0 {
		return 0
	}
	return tokens
}
