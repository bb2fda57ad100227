// Package carp parses command-line arguments against a table of options.
//
// Each option has a short (single character) and/or long name, an arity
// (None, Fixed(n) or Variadic) and a handler. Short options may be clustered
// ("-abc"); the last option of a cluster that takes arguments absorbs the
// rest of the cluster ("-ofile"). Long options take "--name value" or, for
// exactly one argument, "--name=value". Everything that is not an option, and
// everything after "--", is returned as residual arguments.
//
//	app := carp.New("tool")
//	app.Option("verbose").Short('v').Handler(onVerbose).Back()
//	app.Option("output").Short('o').Args(1).Handler(onOutput).Back()
//	res := app.MustRun(cfg)
//	defer res.Release()
package carp

import (
	"os"
	"strconv"
	"strings"

	carpio "github.com/dzonerzy/go-carp/io"
	"github.com/dzonerzy/go-carp/middleware"
)

// DebugEnv enables debug tracing when set to a non-empty value.
const DebugEnv = "CARP_DEBUG"

// Backend selects the lookup built from an App's options.
type Backend int

const (
	BackendHash   Backend = iota // map lookup
	BackendSorted                // sorted slice with binary search
)

// App is the fluent front-end: it collects options, builds a Parser and is
// the single place where a parse failure becomes a message and an exit.
type App struct {
	name    string
	options []Option
	backend Backend
	lookup  Lookup
	debug   bool

	middleware   []middleware.Middleware
	errorHandler *ErrorHandler
	ioManager    *carpio.IOManager
	exitCodes    *ExitCodeManager

	parser     *Parser
	builderErr *TableError
}

// New creates an application. Debug tracing starts enabled when CARP_DEBUG is set.
func New(name string) *App {
	return &App{
		name:         name,
		debug:        os.Getenv(DebugEnv) != "",
		errorHandler: NewErrorHandler(),
		ioManager:    carpio.New(),
	}
}

// Name returns the application name.
func (a *App) Name() string { return a.name }

// Option starts declaring an option with the given long name, which may be
// empty for short-only options.
func (a *App) Option(long string) *OptionBuilder {
	return &OptionBuilder{app: a, opt: Option{Long: long}}
}

// Add registers fully described options.
func (a *App) Add(options ...Option) *App {
	a.options = append(a.options, options...)
	a.parser = nil
	return a
}

// Lookup replaces the declared options with a prebuilt lookup, such as one
// produced by carpgen.
func (a *App) Lookup(lookup Lookup) *App {
	a.lookup = lookup
	a.parser = nil
	return a
}

// Backend selects how declared options are looked up.
func (a *App) Backend(b Backend) *App {
	a.backend = b
	a.parser = nil
	return a
}

// Use adds handler middleware.
func (a *App) Use(mw ...middleware.Middleware) *App {
	a.middleware = append(a.middleware, mw...)
	a.parser = nil
	return a
}

// Debug toggles debug tracing of dispatches to the error stream.
func (a *App) Debug(enabled bool) *App {
	a.debug = enabled
	a.parser = nil
	return a
}

// SuggestOptions toggles "did you mean" hints for unknown long options.
func (a *App) SuggestOptions(enabled bool) *App {
	a.errorHandler.SuggestOptions(enabled)
	return a
}

// ErrorHandler returns the app's error handler for configuration.
func (a *App) ErrorHandler() *ErrorHandler { return a.errorHandler }

// IO returns the application's IOManager for fluent configuration.
func (a *App) IO() *carpio.IOManager {
	if a.ioManager == nil {
		a.ioManager = carpio.New()
	}
	return a.ioManager
}

// ExitCodes returns the exit-code manager for this app.
func (a *App) ExitCodes() *ExitCodeManager {
	if a.exitCodes == nil {
		a.exitCodes = newExitCodeManager()
	}
	return a.exitCodes
}

// Parser builds (once) and returns the parser for the current configuration.
func (a *App) Parser() (*Parser, error) {
	if a.parser != nil {
		return a.parser, nil
	}

	lookup := a.lookup
	if lookup == nil {
		if a.builderErr != nil {
			return nil, a.builderErr
		}
		var err error
		switch a.backend {
		case BackendSorted:
			lookup, err = NewSortedTable(a.options...)
		default:
			lookup, err = NewTable(a.options...)
		}
		if err != nil {
			return nil, err
		}
	}

	p := NewParser(lookup).Use(a.middleware...).WithErrorHandler(a.errorHandler)
	if a.debug {
		p.WithLogger(carpio.NewLogger(a.IO()).WithLevel(carpio.LevelDebug))
	}
	a.parser = p
	return p, nil
}

// RunWithArgs parses argv (argv[0] is the program name) and returns the
// residual arguments. Errors are returned, not reported.
func (a *App) RunWithArgs(argv []string, param any) (*Result, error) {
	p, err := a.Parser()
	if err != nil {
		return nil, err
	}
	return p.Parse(argv, param)
}

// Run parses os.Args.
func (a *App) Run(param any) (*Result, error) {
	return a.RunWithArgs(os.Args, param)
}

// MustRun parses os.Args and, on failure, writes "[carp] <message>" to the
// error stream and exits with the mapped non-zero status.
func (a *App) MustRun(param any) *Result {
	return a.MustRunWithArgs(os.Args, param)
}

// MustRunWithArgs is MustRun over an explicit argument vector.
func (a *App) MustRunWithArgs(argv []string, param any) *Result {
	res, err := a.RunWithArgs(argv, param)
	if err != nil {
		a.Fail(err)
		return nil
	}
	return res
}

// Fail reports err on the app's error stream and exits.
func (a *App) Fail(err error) {
	fail(a.IO(), a.ExitCodes(), err)
}

// OptionBuilder configures one option; Back registers it with the app.
type OptionBuilder struct {
	app *App
	opt Option

	badArity string
}

// Short sets the single-character name.
func (b *OptionBuilder) Short(c byte) *OptionBuilder {
	b.opt.Short = c
	return b
}

// Arity sets the number of arguments.
func (b *OptionBuilder) Arity(a Arity) *OptionBuilder {
	b.opt.Arity = a
	b.badArity = ""
	return b
}

// Args sets a fixed number of arguments. A negative n is reported by Parser
// as a *TableError.
func (b *OptionBuilder) Args(n int) *OptionBuilder {
	if n < 0 {
		b.Arity(None)
		b.badArity = "invalid arity fixed(" + strconv.Itoa(n) + ")"
		return b
	}
	return b.Arity(Fixed(n))
}

// Variadic makes the option take every following plain argument.
func (b *OptionBuilder) Variadic() *OptionBuilder {
	return b.Arity(Variadic)
}

// Handler sets the function invoked for each occurrence.
func (b *OptionBuilder) Handler(h HandlerFunc) *OptionBuilder {
	b.opt.Handler = h
	return b
}

// Back registers the option and returns the app for chaining.
func (b *OptionBuilder) Back() *App {
	if b.badArity != "" && b.app.builderErr == nil {
		b.app.builderErr = &TableError{
			Index:  len(b.app.options),
			Name:   displayName(b.opt.Short, strings.TrimLeft(b.opt.Long, "-")),
			Reason: b.badArity,
		}
	}
	return b.app.Add(b.opt)
}
