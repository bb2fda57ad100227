package middleware

import (
	"fmt"
	"runtime"
)

// Recovery creates a middleware that turns a panicking handler into a
// *RecoveryError, which aborts the parse like any other handler error.
func Recovery(options ...MiddlewareOption) Middleware {
	config := newConfig(options)
	return RecoveryWithHandler(func(panicVal any, d Dispatch, stack []byte) error {
		err := &RecoveryError{
			Panic:  panicVal,
			Option: d.Option(),
			Token:  d.Token(),
			Stack:  stack,
		}
		if w := config.output(); w != nil && config.PrintStack && len(stack) > 0 {
			fmt.Fprintf(w, "PANIC in handler for '%s': %v\n", err.Option, panicVal)
			fmt.Fprintf(w, "Stack trace:\n%s\n", stack)
		}
		return err
	}, options...)
}

// RecoveryWithHandler creates a recovery middleware with a custom panic handler
func RecoveryWithHandler(
	handler func(panicVal any, d Dispatch, stack []byte) error,
	options ...MiddlewareOption,
) Middleware {
	config := newConfig(options)

	return func(next HandlerFunc) HandlerFunc {
		return func(d Dispatch) (err error) {
			defer func() {
				if r := recover(); r != nil {
					var stack []byte
					if config.PrintStack {
						stack = captureStack(config.StackSize)
					}
					err = handler(r, d, stack)
				}
			}()

			return next(d)
		}
	}
}

// RecoveryToError creates a recovery middleware that converts panics to regular errors
// without printing stack traces
func RecoveryToError() Middleware {
	return Recovery(WithStackTrace(false))
}

// RecoveryStats tracks recovery statistics
type RecoveryStats struct {
	TotalPanics  int
	OptionPanics map[string]int
	LastPanic    *RecoveryError
}

// NewRecoveryStats creates a new recovery statistics tracker
func NewRecoveryStats() *RecoveryStats {
	return &RecoveryStats{
		OptionPanics: make(map[string]int),
	}
}

// RecoveryWithStats creates a recovery middleware that tracks statistics
func RecoveryWithStats(stats *RecoveryStats, options ...MiddlewareOption) Middleware {
	inner := Recovery(options...)
	return func(next HandlerFunc) HandlerFunc {
		wrapped := inner(next)
		return func(d Dispatch) error {
			err := wrapped(d)
			if rerr, ok := err.(*RecoveryError); ok {
				stats.TotalPanics++
				stats.OptionPanics[rerr.Option]++
				stats.LastPanic = rerr
			}
			return err
		}
	}
}

func captureStack(size int) []byte {
	if size <= 0 {
		size = 4096
	}
	stack := make([]byte, size)
	return stack[:runtime.Stack(stack, false)]
}
