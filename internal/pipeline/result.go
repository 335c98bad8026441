package pipeline

// Kind classifies the outcome of one pipeline run. Charging logic
// branches on the kind, never on the reply text.
type Kind int

const (
	KindOK Kind = iota
	KindInsufficientCredit
	KindRateLimited
	KindProviderFailure
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindInsufficientCredit:
		return "insufficient_credit"
	case KindRateLimited:
		return "rate_limited"
	case KindProviderFailure:
		return "provider_failure"
	}
	return "unknown"
}

// Result is what one triggered conversation produces: the text to deliver
// and the credits actually charged. Only KindOK carries a charge.
type Result struct {
	Kind    Kind
	Text    string
	Charged int64
}

// User-facing replies for the non-OK outcomes. These are presentation
// only; callers must branch on Result.Kind.
const (
	ReplyInsufficientCredit = "I'm sorry, but you don't have enough credits to answer this question."

	ReplyRateLimited = "I'm sorry, but I'm currently rate limited (maybe consider using another model?)." +
		" Please try again later."

	ReplyTechnicalDifficulties = "I'm sorry, but I'm currently experiencing technical difficulties." +
		" Please try again later."

	ReplyAskBackLimit = "I'm sorry, but I got lost asking back for more information. Please try again."

	ReplyEmpty = "I don't know what to say."
)

func replyFor(k Kind) string {
	switch k {
	case KindInsufficientCredit:
		return ReplyInsufficientCredit
	case KindRateLimited:
		return ReplyRateLimited
	default:
		return ReplyTechnicalDifficulties
	}
}
