// Package middleware wraps option handlers with cross-cutting behaviour such
// as panic recovery and dispatch logging.
package middleware

import (
	"fmt"
	"io"
	"os"
	"time"
)

// The carp package imports this one; its dispatch record satisfies Dispatch
// so handlers can be wrapped without an import cycle.

// Dispatch describes one handler invocation produced by the parser.
type Dispatch interface {
	// Option returns the canonical option name: the single character for a
	// short option, the long name without dashes otherwise.
	Option() string

	// Token returns the command-line token that triggered the dispatch, e.g.
	// "-xvf" or "--output=file".
	Token() string

	// Args returns the arguments bound to the option. The slice is only valid
	// for the duration of the call and must not be retained.
	Args() []string

	// Param returns the caller-supplied value passed to every handler.
	Param() any
}

// HandlerFunc is an option handler as seen by middleware.
type HandlerFunc func(d Dispatch) error

// Middleware defines the middleware function signature
type Middleware func(next HandlerFunc) HandlerFunc

// MiddlewareChain represents a chain of middleware functions
type MiddlewareChain []Middleware

// Apply applies the middleware chain to a HandlerFunc. Middleware are wrapped
// in the order they appear in the chain.
func (chain MiddlewareChain) Apply(handler HandlerFunc) HandlerFunc {
	for i := len(chain) - 1; i >= 0; i-- {
		handler = chain[i](handler)
	}
	return handler
}

// Use returns a new chain with the provided middleware appended.
func (chain MiddlewareChain) Use(middleware ...Middleware) MiddlewareChain {
	return append(chain, middleware...)
}

// Chain creates a new middleware chain from the provided middleware, preserving
// order.
func Chain(middleware ...Middleware) MiddlewareChain {
	return MiddlewareChain(middleware)
}

// RecoveryError represents a panic recovered from an option handler
type RecoveryError struct {
	Panic  any
	Option string
	Token  string
	Stack  []byte
}

func (e *RecoveryError) Error() string {
	return "handler for '" + e.Option + "' panicked: " + toString(e.Panic)
}

// Unwrap exposes a panic value that was itself an error.
func (e *RecoveryError) Unwrap() error {
	if err, ok := e.Panic.(error); ok {
		return err
	}
	return nil
}

// MiddlewareConfig contains configuration for middleware behavior
type MiddlewareConfig struct {
	LogLevel    LogLevel
	LogOutput   LogOutput
	LogFormat   LogFormat
	Writer      io.Writer
	IncludeArgs bool
	PrintStack  bool
	StackSize   int
}

// LogLevel represents logging levels
type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// LogOutput represents log output destinations
type LogOutput int

const (
	LogOutputStderr LogOutput = iota
	LogOutputStdout
	LogOutputNone
)

// LogFormat represents log formats
type LogFormat int

const (
	LogFormatText LogFormat = iota
	LogFormatJSON
)

// DispatchInfo contains information about one handler invocation
type DispatchInfo struct {
	Option    string
	Token     string
	Args      []string
	StartTime time.Time
	Duration  time.Duration
	Error     error
}

type MiddlewareOption func(config *MiddlewareConfig)

func DefaultConfig() *MiddlewareConfig {
	return &MiddlewareConfig{
		LogLevel:    LogLevelInfo,
		LogOutput:   LogOutputStderr,
		LogFormat:   LogFormatText,
		IncludeArgs: true,
		PrintStack:  true,
		StackSize:   4096,
	}
}

func WithLogLevel(level LogLevel) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.LogLevel = level
	}
}

func WithLogFormat(format LogFormat) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.LogFormat = format
	}
}

// WithWriter sends output to w instead of the LogOutput destination.
func WithWriter(w io.Writer) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.Writer = w
	}
}

func WithArgs(enabled bool) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.IncludeArgs = enabled
	}
}

func WithStackTrace(enabled bool) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.PrintStack = enabled
	}
}

func newConfig(options []MiddlewareOption) *MiddlewareConfig {
	config := DefaultConfig()
	for _, option := range options {
		option(config)
	}
	return config
}

// output returns the configured writer, or nil when output is disabled.
func (c *MiddlewareConfig) output() io.Writer {
	if c.Writer != nil {
		return c.Writer
	}
	switch c.LogOutput {
	case LogOutputStdout:
		return os.Stdout
	case LogOutputNone:
		return nil
	default:
		return os.Stderr
	}
}

func toString(v any) string {
	switch v := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return v
	case error:
		return v.Error()
	default:
		return fmt.Sprint(v)
	}
}
