package pipeline

import "strings"

// The model can answer with an ask-back directive instead of a final
// answer: "(ui) <id>" to request user info, "(gi)" to request guild info.
// Matching is a case-sensitive prefix check on the raw response text.

type DirectiveKind int

const (
	DirectiveNone DirectiveKind = iota
	DirectiveUserInfo
	DirectiveGuildInfo
	DirectiveMalformed
)

type Directive struct {
	Kind     DirectiveKind
	TargetID string
}

const (
	userInfoPrefix  = "(ui)"
	guildInfoPrefix = "(gi)"
)

// ParseDirective classifies a completed response. A "(ui)" prefix with
// nothing after it is Malformed rather than silently becoming a final
// answer; anything that matches neither prefix is None.
func ParseDirective(text string) Directive {
	switch {
	case strings.HasPrefix(text, userInfoPrefix):
		id := strings.TrimSpace(text[len(userInfoPrefix):])
		if id == "" {
			return Directive{Kind: DirectiveMalformed}
		}
		return Directive{Kind: DirectiveUserInfo, TargetID: id}
	case strings.HasPrefix(text, guildInfoPrefix):
		return Directive{Kind: DirectiveGuildInfo}
	default:
		return Directive{Kind: DirectiveNone}
	}
}
