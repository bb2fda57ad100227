package carp

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/dzonerzy/go-carp/middleware"
)

// stubExit replaces osExit for the duration of a test and returns the
// recorded code (-1 when exit was not called).
func stubExit(t *testing.T) *int {
	t.Helper()
	code := -1
	prev := osExit
	osExit = func(c int) { code = c }
	t.Cleanup(func() { osExit = prev })
	return &code
}

type customErr struct{}

func (customErr) Error() string { return "custom" }

func TestExitCodeManager_Resolve(t *testing.T) {
	m := newExitCodeManager()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"parse error", &ParseError{Type: ErrorTypeUnknownOption, Token: "-z"}, 1},
		{"plain error", errors.New("x"), 1},
		{"exit error", &ExitError{Code: 7}, 7},
		{"wrapped exit error", fmt.Errorf("wrap: %w", &ExitError{Code: 9}), 9},
		{"recovery", &middleware.RecoveryError{Panic: "p"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Resolve(tt.err); got != tt.want {
				t.Errorf("Resolve() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestExitCodeManager_Precedence(t *testing.T) {
	m := newExitCodeManager().
		DefineParse(ErrorTypeUnknownOption, 64).
		DefineParse(ErrorTypeHandler, 70).
		DefineError(customErr{}, 65).
		DefineError(nil, 99).
		DefineError(&middleware.RecoveryError{}, 71)

	if got := m.Resolve(&ParseError{Type: ErrorTypeUnknownOption}); got != 64 {
		t.Errorf("parse mapping: got %d", got)
	}
	if got := m.Resolve(&ParseError{Type: ErrorTypeNotEnoughArguments}); got != 1 {
		t.Errorf("unmapped parse type should use default, got %d", got)
	}
	if got := m.Resolve(fmt.Errorf("x: %w", customErr{})); got != 65 {
		t.Errorf("type mapping: got %d", got)
	}

	// handler errors: the category mapping wins over the cause's type
	herr := &ParseError{Type: ErrorTypeHandler, Cause: &middleware.RecoveryError{Panic: "p"}}
	if got := m.Resolve(herr); got != 70 {
		t.Errorf("expected category mapping 70, got %d", got)
	}
	// an ExitError cause wins over everything
	herr.Cause = &ExitError{Code: 3}
	if got := m.Resolve(herr); got != 3 {
		t.Errorf("expected requested code 3, got %d", got)
	}

	m.Default(ExitCodeDefaults{Success: 0, GeneralError: 5, MisusageError: 6})
	if got := m.Resolve(errors.New("x")); got != 5 {
		t.Errorf("expected new default 5, got %d", got)
	}
}

func TestExitCodeManager_DefineValue(t *testing.T) {
	errNoInput := errors.New("no input")
	m := newExitCodeManager().
		DefineValue(errNoInput, 66).
		DefineValue(nil, 99).
		DefineError(customErr{}, 65)

	if got := m.Resolve(fmt.Errorf("run: %w", errNoInput)); got != 66 {
		t.Errorf("value mapping: got %d", got)
	}
	// another value of the same type is not matched
	if got := m.Resolve(errors.New("no input")); got != 1 {
		t.Errorf("expected default for a different value, got %d", got)
	}
	if got := m.Resolve(customErr{}); got != 65 {
		t.Errorf("type mapping: got %d", got)
	}
}

func TestExitError(t *testing.T) {
	inner := errors.New("inner")
	if got := (&ExitError{Code: 2, Err: inner}).Error(); got != "inner" {
		t.Errorf("unexpected %q", got)
	}
	if got := (&ExitError{Code: 2}).Error(); got != "exit" {
		t.Errorf("unexpected %q", got)
	}
	if !errors.Is(&ExitError{Err: inner}, inner) {
		t.Error("ExitError should unwrap")
	}
}

func TestApp_FailWritesPrefixedLine(t *testing.T) {
	code := stubExit(t)
	var errb bytes.Buffer
	app := New("test")
	app.IO().WithErr(&errb).NoColor()

	app.Fail(&ParseError{Type: ErrorTypeUnknownOption, Token: "-z"})

	if got := errb.String(); got != "[carp] Token '-z': unknown option\n" {
		t.Errorf("unexpected output %q", got)
	}
	if *code != 1 {
		t.Errorf("expected exit status 1, got %d", *code)
	}
}

func TestApp_FailLineIsPlainOnColourTerminal(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	code := stubExit(t)
	var errb bytes.Buffer
	app := New("test")
	app.IO().WithErr(&errb).ForceColor()

	app.Fail(&ParseError{Type: ErrorTypeUnknownOption, Token: "--50%"})

	if got := errb.String(); got != "[carp] Token '--50%': unknown option\n" {
		t.Errorf("unexpected output %q", got)
	}
	if *code != 1 {
		t.Errorf("expected exit status 1, got %d", *code)
	}
}

func TestApp_FailCleanExit(t *testing.T) {
	code := stubExit(t)
	var errb bytes.Buffer
	app := New("test")
	app.IO().WithErr(&errb).NoColor()

	app.Fail(&ParseError{Type: ErrorTypeHandler, Token: "--version", Cause: &ExitError{Code: 0}})

	if errb.Len() != 0 {
		t.Errorf("clean exit should be silent, got %q", errb.String())
	}
	if *code != 0 {
		t.Errorf("expected exit status 0, got %d", *code)
	}
}

func TestApp_FailNeverExitsZeroOnError(t *testing.T) {
	code := stubExit(t)
	app := New("test")
	app.IO().WithErr(&bytes.Buffer{}).NoColor()
	app.ExitCodes().DefineParse(ErrorTypeUnknownOption, 0)

	app.Fail(&ParseError{Type: ErrorTypeUnknownOption, Token: "-z"})
	if *code == 0 {
		t.Error("a failure must exit non-zero")
	}
}

func TestExit(t *testing.T) {
	code := stubExit(t)
	t.Setenv("NO_COLOR", "1")
	Exit(errors.New("boom"))
	if *code != 1 {
		t.Errorf("expected exit status 1, got %d", *code)
	}
}
