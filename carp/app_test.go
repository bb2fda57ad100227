package carp

import (
	"bytes"
	"errors"
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/dzonerzy/go-carp/middleware"
)

type settings struct {
	verbose  int
	output   string
	includes []string
}

func newTestApp() *App {
	return New("tool").
		Option("verbose").Short('v').Handler(func(p any, _ []string) {
		p.(*settings).verbose++
	}).Back().
		Option("output").Short('o').Args(1).Handler(func(p any, args []string) {
		p.(*settings).output = args[0]
	}).Back().
		Option("include").Variadic().Handler(func(p any, args []string) {
		s := p.(*settings)
		s.includes = append(s.includes, args...)
	}).Back()
}

func TestApp_RunWithArgs(t *testing.T) {
	for _, backend := range []Backend{BackendHash, BackendSorted} {
		s := &settings{}
		res, err := newTestApp().Backend(backend).RunWithArgs(
			argv("-vv", "in.txt", "--output=out.txt", "--include", "a", "b", "-v", "--", "-x"), s)
		if err != nil {
			t.Fatalf("backend %d: unexpected error: %v", backend, err)
		}
		if s.verbose != 3 || s.output != "out.txt" || !slices.Equal(s.includes, []string{"a", "b"}) {
			t.Errorf("backend %d: unexpected settings %+v", backend, s)
		}
		assertResidual(t, res, "in.txt", "-x")
		res.Release()
	}
}

func TestApp_ParserIsCached(t *testing.T) {
	app := newTestApp()
	p1, err := app.Parser()
	if err != nil {
		t.Fatal(err)
	}
	p2, _ := app.Parser()
	if p1 != p2 {
		t.Error("parser should be built once")
	}

	app.Option("quiet").Short('q').Handler(noopHandler).Back()
	p3, _ := app.Parser()
	if p3 == p1 {
		t.Error("adding an option should rebuild the parser")
	}
	if _, ok := p3.Lookup().Search("quiet"); !ok {
		t.Error("rebuilt parser is missing the new option")
	}
}

func TestApp_InvalidTable(t *testing.T) {
	app := New("tool").Add(Option{Short: 'v'})
	_, err := app.RunWithArgs(argv("-v"), nil)
	if !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected table error, got %v", err)
	}
}

func TestApp_NegativeArgsIsTableError(t *testing.T) {
	app := New("tool").
		Option("verbose").Short('v').Handler(noopHandler).Back().
		Option("output").Short('o').Args(-1).Handler(noopHandler).Back()

	_, err := app.Parser()
	var tableErr *TableError
	if !errors.As(err, &tableErr) {
		t.Fatalf("expected *TableError, got %v", err)
	}
	if !errors.Is(err, ErrInvalidOption) {
		t.Error("expected the error to match ErrInvalidOption")
	}
	if got := err.Error(); got != "option #1 (-o/--output): invalid arity fixed(-1)" {
		t.Errorf("unexpected message %q", got)
	}

	// a later Arity call replaces the rejected count
	app = New("tool").Option("output").Args(-2).Variadic().Handler(noopHandler).Back()
	if _, err := app.Parser(); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func TestApp_Lookup(t *testing.T) {
	called := false
	table := MustSortedTable(Option{Long: "go", Handler: func(any, []string) { called = true }})

	res, err := New("tool").Lookup(table).RunWithArgs(argv("--go", "x"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("handler from the supplied lookup was not called")
	}
	assertResidual(t, res, "x")
}

func TestApp_Use(t *testing.T) {
	var buf bytes.Buffer
	app := newTestApp().Use(middleware.LoggerWithWriter(&buf, middleware.WithLogFormat(middleware.LogFormatJSON)))

	if _, err := app.RunWithArgs(argv("--output", "f"), &settings{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"option":"output"`) {
		t.Errorf("expected dispatch log, got %q", buf.String())
	}
}

func TestApp_DebugEnv(t *testing.T) {
	t.Setenv(DebugEnv, "1")
	var errb bytes.Buffer
	app := newTestApp()
	app.IO().WithErr(&errb).NoColor()

	if _, err := app.RunWithArgs(argv("-v"), &settings{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(errb.String(), "[DEBUG] dispatch v from '-v'") {
		t.Errorf("expected debug trace, got %q", errb.String())
	}

	errb.Reset()
	app.Debug(false)
	_, _ = app.RunWithArgs(argv("-v"), &settings{})
	if errb.Len() != 0 {
		t.Errorf("expected no trace with debug off, got %q", errb.String())
	}
}

func TestApp_SuggestOptions(t *testing.T) {
	app := newTestApp().SuggestOptions(true)
	_, err := app.RunWithArgs(argv("--ouput", "x"), &settings{})
	if err == nil || !strings.HasSuffix(err.Error(), "(did you mean '--output'?)") {
		t.Errorf("expected suggestion, got %v", err)
	}
	if app.ErrorHandler() == nil {
		t.Error("ErrorHandler() should not be nil")
	}
}

func TestApp_MustRunWithArgs(t *testing.T) {
	code := stubExit(t)
	var errb bytes.Buffer
	app := newTestApp()
	app.IO().WithErr(&errb).NoColor()

	res := app.MustRunWithArgs(argv("-o"), &settings{})
	if res != nil {
		t.Error("no result expected on failure")
	}
	if got := errb.String(); got != "[carp] Token '-o': not enough arguments supplied to option\n" {
		t.Errorf("unexpected failure line %q", got)
	}
	if *code != 1 {
		t.Errorf("expected exit status 1, got %d", *code)
	}

	*code = -1
	res = app.MustRunWithArgs(argv("x"), &settings{})
	if *code != -1 {
		t.Error("successful parse must not exit")
	}
	assertResidual(t, res, "x")
}

func TestApp_Run(t *testing.T) {
	prev := os.Args
	os.Args = []string{"tool", "-v", "file"}
	t.Cleanup(func() { os.Args = prev })

	s := &settings{}
	res, err := newTestApp().Run(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertResidual(t, res, "file")
	if s.verbose != 1 {
		t.Errorf("expected verbose 1, got %d", s.verbose)
	}

	if res := newTestApp().MustRun(&settings{}); res == nil || res.Count != 1 {
		t.Errorf("MustRun returned %+v", res)
	}
	if newTestApp().Name() != "tool" {
		t.Error("unexpected name")
	}
}
