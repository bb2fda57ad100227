package carp

// TokenType is the classification of a single command-line token.
type TokenType int

const (
	TokenArgument    TokenType = iota // plain argument, including ""
	TokenShortOption                  // -a, -abc, -ovalue, and the lone "-"
	TokenLongOption                   // --name, --name=value
	TokenSeparator                    // exactly "--"
)

func (t TokenType) String() string {
	switch t {
	case TokenArgument:
		return "argument"
	case TokenShortOption:
		return "short option"
	case TokenLongOption:
		return "long option"
	case TokenSeparator:
		return "separator"
	default:
		return "unknown"
	}
}

// Classify maps a raw token to its TokenType. It is total: every string has
// exactly one classification.
func Classify(token string) TokenType {
	if len(token) == 0 || token[0] != '-' {
		return TokenArgument
	}
	if len(token) == 1 || token[1] != '-' {
		return TokenShortOption
	}
	if len(token) == 2 {
		return TokenSeparator
	}
	return TokenLongOption
}
