// Package schema loads option-table files: JSON or TOML documents listing the
// options a generated carp table registers.
//
//	{"options": [{"short": "a", "long": "all", "arguments": 0, "callback": "onAll"}]}
//
//	[[options]]
//	short = "a"
//	long = "all"
//	arguments = 0
//	callback = "onAll"
package schema

import (
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dzonerzy/go-carp/carp"
)

// Format is an option-table file encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatTOML
)

func (f Format) String() string {
	if f == FormatTOML {
		return "toml"
	}
	return "json"
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return 0, fmt.Errorf("%s: unsupported table file extension %q", path, filepath.Ext(path))
	}
}

// ErrSchema is matched by every *Error.
var ErrSchema = errors.New("invalid option table")

// Error reports a malformed table file or option.
type Error struct {
	Source string
	Index  int // -1 for document-level problems
	Name   string
	Reason string
}

func (e *Error) Error() string {
	switch {
	case e.Index < 0:
		return fmt.Sprintf("%s: %s", e.Source, e.Reason)
	case e.Name != "":
		return fmt.Sprintf("%s: option '%s': %s", e.Source, e.Name, e.Reason)
	default:
		return fmt.Sprintf("%s: option #%d: %s", e.Source, e.Index, e.Reason)
	}
}

func (e *Error) Unwrap() error { return ErrSchema }

// Option is one validated table entry. Names carry no leading dashes.
type Option struct {
	Short     string
	Long      string
	Arguments int
	Callback  string
}

// Arity converts the argument count.
func (o Option) Arity() carp.Arity {
	if o.Arguments < 0 {
		return carp.Variadic
	}
	return carp.Fixed(o.Arguments)
}

// Name is the option's first name in "short/long" order, for messages.
func (o Option) Name() string {
	if o.Short != "" {
		return o.Short
	}
	return o.Long
}

// Table is a loaded option-table file.
type Table struct {
	Source  string
	Options []Option
}

// Callbacks returns the distinct callback names in first-use order.
func (t *Table) Callbacks() []string {
	seen := make(map[string]struct{}, len(t.Options))
	out := make([]string, 0, len(t.Options))
	for _, o := range t.Options {
		if _, ok := seen[o.Callback]; ok {
			continue
		}
		seen[o.Callback] = struct{}{}
		out = append(out, o.Callback)
	}
	return out
}

// Load reads and validates the table file at path.
func Load(path string) (*Table, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading table file %s: %w", path, err)
	}
	return Parse(path, data, format)
}

// Parse decodes and validates a table document. source names it in errors.
func Parse(source string, data []byte, format Format) (*Table, error) {
	var (
		raw []map[string]any
		err error
	)
	switch format {
	case FormatTOML:
		raw, err = decodeTOML(source, data)
	default:
		raw, err = decodeJSON(source, data)
	}
	if err != nil {
		return nil, err
	}

	t := &Table{Source: source, Options: make([]Option, 0, len(raw))}
	for i, fields := range raw {
		opt, err := decodeOption(source, i, fields)
		if err != nil {
			return nil, err
		}
		t.Options = append(t.Options, opt)
	}
	if err := t.check(); err != nil {
		return nil, err
	}
	return t, nil
}

var knownFields = map[string]bool{
	"short":     true,
	"long":      true,
	"arguments": true,
	"callback":  true,
}

func decodeOption(source string, index int, fields map[string]any) (Option, error) {
	var opt Option
	fail := func(name, format string, args ...any) (Option, error) {
		return Option{}, &Error{Source: source, Index: index, Name: name, Reason: fmt.Sprintf(format, args...)}
	}

	for _, k := range []string{"short", "long"} {
		v, ok := fields[k]
		if !ok {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return fail("", "field '%s' must be a string (%v)", k, v)
		}
		s = strings.TrimLeft(s, "-")
		if s == "" {
			return fail("", "field '%s' is empty", k)
		}
		if k == "short" {
			opt.Short = s
		} else {
			opt.Long = s
		}
	}
	name := opt.Name()
	if name == "" {
		return fail("", "missing field 'short' or 'long'")
	}

	var unknown []string
	for k := range fields {
		if !knownFields[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return fail(name, "unrecognized fields: %s", strings.Join(unknown, ", "))
	}

	switch {
	case len(opt.Short) > 1:
		return fail(name, "short option must be a single character")
	case opt.Short != "" && opt.Short == opt.Long:
		return fail(name, "'short' and 'long' have the same value")
	}

	args, ok := fields["arguments"]
	if !ok {
		return fail(name, "missing required field 'arguments'")
	}
	n, ok := integer(args)
	if !ok {
		return fail(name, "field 'arguments' must be an integer (%v)", args)
	}
	if n < -1 {
		return fail(name, "field 'arguments' must be -1 (variadic) or more, got %d", n)
	}
	opt.Arguments = n

	cb, ok := fields["callback"]
	if !ok {
		return fail(name, "missing required field 'callback'")
	}
	opt.Callback, ok = cb.(string)
	if !ok {
		return fail(name, "field 'callback' must be a string (%v)", cb)
	}
	if !token.IsIdentifier(opt.Callback) {
		return fail(name, "callback %q is not a valid Go identifier", opt.Callback)
	}
	return opt, nil
}

// check runs the option set through carp's own table validation, which
// catches duplicate names across options.
func (t *Table) check() error {
	if len(t.Options) == 0 {
		return &Error{Source: t.Source, Index: -1, Reason: "no options defined"}
	}
	opts := make([]carp.Option, len(t.Options))
	for i, o := range t.Options {
		opts[i] = o.carpOption(placeholder)
	}
	if _, err := carp.NewTable(opts...); err != nil {
		var te *carp.TableError
		if errors.As(err, &te) {
			return &Error{Source: t.Source, Index: te.Index, Name: t.Options[te.Index].Name(), Reason: te.Reason}
		}
		return err
	}
	return nil
}

func placeholder(any, []string) {}

func (o Option) carpOption(h carp.HandlerFunc) carp.Option {
	opt := carp.Option{Long: o.Long, Arity: o.Arity(), Handler: h}
	if o.Short != "" {
		opt.Short = o.Short[0]
	}
	return opt
}

// Bind builds carp options from the table, resolving callbacks by name.
func (t *Table) Bind(callbacks map[string]carp.HandlerFunc) ([]carp.Option, error) {
	opts := make([]carp.Option, len(t.Options))
	for i, o := range t.Options {
		h, ok := callbacks[o.Callback]
		if !ok || h == nil {
			return nil, &Error{Source: t.Source, Index: i, Name: o.Name(), Reason: fmt.Sprintf("callback %q is not bound", o.Callback)}
		}
		opts[i] = o.carpOption(h)
	}
	return opts, nil
}

// integer accepts the numeric kinds produced by both decoders as long as the
// value is whole.
func integer(v any) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case int:
		return n, true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
