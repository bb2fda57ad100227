package carp

import (
	"errors"
	"strings"

	"github.com/dzonerzy/go-carp/internal/fuzzy"
)

// ErrorType represents the category of a parse failure.
// Categories drive suggestion logic and exit-code mapping (via ExitCodeManager).
type ErrorType string

const (
	ErrorTypeNotEnoughArguments      ErrorType = "not_enough_arguments"
	ErrorTypeUnknownOption           ErrorType = "unknown_option"
	ErrorTypeLongOptionArgumentCount ErrorType = "long_option_argument_count"
	ErrorTypeHandler                 ErrorType = "handler"
)

// Sentinels matched by errors.Is against a *ParseError of the same type.
var (
	ErrNotEnoughArguments      = errors.New("not enough arguments supplied to option")
	ErrUnknownOption           = errors.New("unknown option")
	ErrLongOptionArgumentCount = errors.New("option requires multiple arguments but use of '=' implies single argument")
	ErrHandler                 = errors.New("option handler failed")
)

// ParseError is returned by Parser.Parse for every fatal condition.
type ParseError struct {
	Type ErrorType
	// Token is the command-line token being processed, e.g. "-xvf" or "--out=".
	Token string
	// Option is the option name involved, when known.
	Option string
	// Suggestion is a close registered option name, set by ErrorHandler.
	Suggestion string
	// Cause is the error reported by a handler middleware.
	Cause error
}

func newParseError(typ ErrorType, token string) *ParseError {
	return &ParseError{Type: typ, Token: token}
}

func (e *ParseError) sentinel() error {
	switch e.Type {
	case ErrorTypeNotEnoughArguments:
		return ErrNotEnoughArguments
	case ErrorTypeUnknownOption:
		return ErrUnknownOption
	case ErrorTypeLongOptionArgumentCount:
		return ErrLongOptionArgumentCount
	case ErrorTypeHandler:
		return ErrHandler
	default:
		return nil
	}
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("Token '")
	b.WriteString(e.Token)
	b.WriteString("': ")
	if s := e.sentinel(); s != nil {
		b.WriteString(s.Error())
	} else {
		b.WriteString(string(e.Type))
	}
	if e.Type == ErrorTypeHandler && e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	if e.Suggestion != "" {
		b.WriteString(" (did you mean '")
		b.WriteString(e.Suggestion)
		b.WriteString("'?)")
	}
	return b.String()
}

// Is matches the sentinel for e's type.
func (e *ParseError) Is(target error) bool {
	return target != nil && target == e.sentinel()
}

func (e *ParseError) Unwrap() error { return e.Cause }

// ErrorHandler decorates parse errors with "did you mean" suggestions for
// unknown options. Suggestions are off until enabled.
type ErrorHandler struct {
	suggestOptions bool
	maxDistance    int
	customHandlers map[ErrorType]func(*ParseError) *ParseError
}

// NewErrorHandler creates a new error handler with defaults
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{
		maxDistance:    2,
		customHandlers: make(map[ErrorType]func(*ParseError) *ParseError),
	}
}

// SuggestOptions enables/disables option suggestions
func (eh *ErrorHandler) SuggestOptions(enabled bool) *ErrorHandler {
	eh.suggestOptions = enabled
	return eh
}

// MaxDistance sets the maximum edit distance for suggestions
func (eh *ErrorHandler) MaxDistance(distance int) *ErrorHandler {
	eh.maxDistance = distance
	return eh
}

// Handle registers a custom handler for a specific error type
func (eh *ErrorHandler) Handle(typ ErrorType, handler func(*ParseError) *ParseError) *ErrorHandler {
	eh.customHandlers[typ] = handler
	return eh
}

// ProcessError applies custom handlers and suggestions to err. The lookup is
// consulted for candidate names when it implements Namer.
func (eh *ErrorHandler) ProcessError(err *ParseError, lookup Lookup) *ParseError {
	if handler, exists := eh.customHandlers[err.Type]; exists {
		if handled := handler(err); handled != nil {
			err = handled
		}
	}

	switch err.Type {
	case ErrorTypeUnknownOption:
		if eh.suggestOptions {
			eh.addOptionSuggestion(err, lookup)
		}
	case ErrorTypeNotEnoughArguments, ErrorTypeLongOptionArgumentCount, ErrorTypeHandler:
	}
	return err
}

// Only long options get suggestions; a mistyped single character has too
// many equally close neighbours to be useful.
func (eh *ErrorHandler) addOptionSuggestion(err *ParseError, lookup Lookup) {
	namer, ok := lookup.(Namer)
	if !ok || Classify(err.Token) != TokenLongOption {
		return
	}
	names := namer.Names()
	longs := make([]string, 0, len(names))
	for _, n := range names {
		if len(n) > 1 {
			longs = append(longs, n)
		}
	}
	if best := fuzzy.FindBestOption(err.Option, longs, eh.maxDistance); best != "" {
		err.Suggestion = "--" + best
	}
}
