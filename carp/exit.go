package carp

import (
	"errors"
	"os"
	"reflect"

	carpio "github.com/dzonerzy/go-carp/io"
	"github.com/dzonerzy/go-carp/middleware"
)

// FailurePrefix tags the single line written before a parse failure exits.
const FailurePrefix = "[carp]"

// osExit is swapped by tests.
var osExit = os.Exit

// ExitError requests a specific exit code from inside a handler or middleware.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "exit"
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCodeDefaults holds common default codes.
type ExitCodeDefaults struct {
	Success       int // default: 0
	GeneralError  int // default: 1
	MisusageError int // default: 2
}

func defaultExitDefaults() ExitCodeDefaults {
	return ExitCodeDefaults{Success: 0, GeneralError: 1, MisusageError: 2}
}

// ExitCodeManager maps errors and categories to process exit codes.
// Every parse failure maps to GeneralError unless overridden.
type ExitCodeManager struct {
	codesByType  map[reflect.Type]int
	codesByParse map[ErrorType]int
	codesByValue []valueCode
	defaults     ExitCodeDefaults
}

func newExitCodeManager() *ExitCodeManager {
	m := &ExitCodeManager{
		codesByType:  make(map[reflect.Type]int),
		codesByParse: make(map[ErrorType]int),
		defaults:     defaultExitDefaults(),
	}
	m.codesByType[reflect.TypeOf(&middleware.RecoveryError{})] = m.defaults.GeneralError
	return m
}

// DefineError maps a concrete error value (by its dynamic type) to an exit
// code.
func (e *ExitCodeManager) DefineError(err error, code int) *ExitCodeManager {
	if err == nil {
		return e
	}
	e.codesByType[reflect.TypeOf(err)] = code
	return e
}

type valueCode struct {
	err  error
	code int
}

// DefineValue maps a sentinel error, matched with errors.Is, to an exit code.
// Value mappings are checked before type mappings.
func (e *ExitCodeManager) DefineValue(err error, code int) *ExitCodeManager {
	if err == nil {
		return e
	}
	e.codesByValue = append(e.codesByValue, valueCode{err: err, code: code})
	return e
}

// DefineParse overrides the exit code used for a parse error category.
func (e *ExitCodeManager) DefineParse(typ ErrorType, code int) *ExitCodeManager {
	e.codesByParse[typ] = code
	return e
}

// Default replaces the manager's default codes.
func (e *ExitCodeManager) Default(d ExitCodeDefaults) *ExitCodeManager { e.defaults = d; return e }

// Resolve converts an error to an exit code according to registered mappings.
// Precedence:
//  1. ExitError (requested code)
//  2. ParseError category mapping (DefineParse)
//  3. Sentinel value mapping (DefineValue)
//  4. Concrete error type mapping (DefineError)
//  5. Default codes
func (e *ExitCodeManager) Resolve(err error) int {
	if err == nil {
		return e.defaults.Success
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	var perr *ParseError
	if errors.As(err, &perr) {
		if code, ok := e.codesByParse[perr.Type]; ok {
			return code
		}
	}

	for _, vc := range e.codesByValue {
		if errors.Is(err, vc.err) {
			return vc.code
		}
	}

	for t, code := range e.codesByType {
		if errors.As(err, reflect.New(t).Interface()) {
			return code
		}
	}

	return e.defaults.GeneralError
}

// Exit writes "[carp] <message>" to stderr and terminates the process with a
// non-zero status. It is the top-level failure point for programs that do not
// use App.
func Exit(err error) {
	fail(carpio.New(), newExitCodeManager(), err)
}

func fail(io *carpio.IOManager, codes *ExitCodeManager, err error) {
	// a requested clean exit is not a failure
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code == 0 {
		osExit(0)
		return
	}

	// the failure line is matched by scripts, keep it free of SGR codes
	logger := carpio.NewLogger(io).WithColor(false).SetPrefix(carpio.LevelError, FailurePrefix)
	logger.Error("%s", err)
	code := codes.Resolve(err)
	if code == 0 {
		code = codes.defaults.GeneralError
	}
	osExit(code)
}
