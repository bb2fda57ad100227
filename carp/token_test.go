package carp

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		token string
		want  TokenType
	}{
		{"", TokenArgument},
		{"file", TokenArgument},
		{"a-b", TokenArgument},
		{"=x", TokenArgument},
		{"-", TokenShortOption},
		{"-a", TokenShortOption},
		{"-abc", TokenShortOption},
		{"-=", TokenShortOption},
		{"-1", TokenShortOption},
		{"--", TokenSeparator},
		{"--a", TokenLongOption},
		{"--name=value", TokenLongOption},
		{"---", TokenLongOption},
		{"--=", TokenLongOption},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			if got := Classify(tt.token); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestTokenType_String(t *testing.T) {
	for typ, want := range map[TokenType]string{
		TokenArgument:    "argument",
		TokenShortOption: "short option",
		TokenLongOption:  "long option",
		TokenSeparator:   "separator",
		TokenType(99):    "unknown",
	} {
		if got := typ.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", typ, got, want)
		}
	}
}

func TestArity(t *testing.T) {
	if Fixed(0) != None {
		t.Error("Fixed(0) should equal None")
	}
	if !Variadic.IsVariadic() || Fixed(3).IsVariadic() {
		t.Error("IsVariadic mismatch")
	}
	if !Fixed(2).Valid() || !Variadic.Valid() || Arity(-2).Valid() {
		t.Error("Valid mismatch")
	}

	for a, want := range map[Arity]string{
		Variadic:  "variadic",
		None:      "none",
		Fixed(3):  "fixed(3)",
		Arity(-4): "invalid(-4)",
	} {
		if got := a.String(); got != want {
			t.Errorf("Arity(%d).String() = %q, want %q", int(a), got, want)
		}
	}

	defer func() {
		if recover() == nil {
			t.Error("Fixed(-1) should panic")
		}
	}()
	_ = Fixed(-1)
}
