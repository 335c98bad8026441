package pipeline

import "testing"

func TestParseDirective(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Directive
	}{
		{"user info", "(ui) 42", Directive{Kind: DirectiveUserInfo, TargetID: "42"}},
		{"user info long id", "(ui) 123456789012345678", Directive{Kind: DirectiveUserInfo, TargetID: "123456789012345678"}},
		{"user info extra spaces", "(ui)   42  ", Directive{Kind: DirectiveUserInfo, TargetID: "42"}},
		{"guild info", "(gi)", Directive{Kind: DirectiveGuildInfo}},
		{"guild info with trailer", "(gi) please", Directive{Kind: DirectiveGuildInfo}},
		{"plain answer", "hello there", Directive{Kind: DirectiveNone}},
		{"empty", "", Directive{Kind: DirectiveNone}},
		{"ui missing id", "(ui)", Directive{Kind: DirectiveMalformed}},
		{"ui only whitespace", "(ui)   ", Directive{Kind: DirectiveMalformed}},
		{"prefix must lead", "sure! (ui) 42", Directive{Kind: DirectiveNone}},
		{"case sensitive", "(UI) 42", Directive{Kind: DirectiveNone}},
		{"ui prefix of word", "(uinteresting)", Directive{Kind: DirectiveNone}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDirective(tt.in)
			if got != tt.want {
				t.Errorf("ParseDirective(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}
