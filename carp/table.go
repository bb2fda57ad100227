package carp

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dzonerzy/go-carp/internal/intern"
)

// HandlerFunc is invoked once per option occurrence. args is only valid for
// the duration of the call: the backing array is reused by the next dispatch.
type HandlerFunc func(param any, args []string)

// Spec is what a Lookup returns for a registered name.
type Spec struct {
	Arity   Arity
	Handler HandlerFunc
}

// Lookup resolves option names to specs. Short options are looked up by their
// single character, long options by the text between "--" and "=" (or the end
// of the token). Search must be a pure function for the duration of a parse.
type Lookup interface {
	Search(name string) (*Spec, bool)
}

// Namer is implemented by lookups that can list their names, which enables
// suggestions for unknown options.
type Namer interface {
	Names() []string
}

// Option declares one entry of an option table. Either Short or Long may be
// empty (zero), not both; when both are set they refer to the same Spec.
type Option struct {
	Short   byte
	Long    string
	Arity   Arity
	Handler HandlerFunc
}

// ErrInvalidOption is matched by every *TableError.
var ErrInvalidOption = errors.New("invalid option")

// TableError reports an option that cannot be registered.
type TableError struct {
	Index  int
	Name   string
	Reason string
}

func (e *TableError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("option #%d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("option #%d (%s): %s", e.Index, e.Name, e.Reason)
}

func (e *TableError) Unwrap() error { return ErrInvalidOption }

// entry is one registered name.
type entry struct {
	name string
	spec *Spec
}

// buildEntries validates options and returns one entry per name, with names
// interned so that repeated tables share storage.
func buildEntries(options []Option) ([]entry, error) {
	entries := make([]entry, 0, len(options)*2)
	seen := make(map[string]int, len(options)*2)

	for i, opt := range options {
		long := strings.TrimLeft(opt.Long, "-")
		label := displayName(opt.Short, long)

		switch {
		case opt.Short == 0 && opt.Long == "":
			return nil, &TableError{Index: i, Reason: "needs a short or a long name"}
		case opt.Long != "" && long == "":
			return nil, &TableError{Index: i, Name: opt.Long, Reason: "long name is empty"}
		case opt.Short == '-' || opt.Short == '=':
			return nil, &TableError{Index: i, Name: label, Reason: fmt.Sprintf("'%c' is not a valid short name", opt.Short)}
		case strings.ContainsRune(long, '='):
			return nil, &TableError{Index: i, Name: label, Reason: "long name must not contain '='"}
		case opt.Short != 0 && len(long) == 1 && long[0] == opt.Short:
			return nil, &TableError{Index: i, Name: label, Reason: "short and long names must differ"}
		case !opt.Arity.Valid():
			return nil, &TableError{Index: i, Name: label, Reason: "invalid arity " + opt.Arity.String()}
		case opt.Handler == nil:
			return nil, &TableError{Index: i, Name: label, Reason: "missing handler"}
		}

		spec := &Spec{Arity: opt.Arity, Handler: opt.Handler}
		for _, name := range []string{shortName(opt.Short), long} {
			if name == "" {
				continue
			}
			if prev, dup := seen[name]; dup {
				return nil, &TableError{Index: i, Name: label, Reason: fmt.Sprintf("name %q already registered by option #%d", name, prev)}
			}
			seen[name] = i
			entries = append(entries, entry{name: name, spec: spec})
		}
	}
	return entries, nil
}

func shortName(b byte) string {
	if b == 0 {
		return ""
	}
	return intern.Byte(b)
}

func displayName(short byte, long string) string {
	switch {
	case short != 0 && long != "":
		return "-" + string(short) + "/--" + long
	case short != 0:
		return "-" + string(short)
	default:
		return "--" + long
	}
}

// Table is a hash-backed Lookup.
type Table struct {
	specs map[string]*Spec
	names []string
}

// NewTable validates options and builds a hash lookup.
func NewTable(options ...Option) (*Table, error) {
	entries, err := buildEntries(options)
	if err != nil {
		return nil, err
	}
	t := &Table{
		specs: make(map[string]*Spec, len(entries)),
		names: make([]string, 0, len(entries)),
	}
	for _, e := range entries {
		name := intern.Intern(e.name)
		t.specs[name] = e.spec
		t.names = append(t.names, name)
	}
	return t, nil
}

// MustTable is NewTable for tables known to be valid, such as generated ones.
func MustTable(options ...Option) *Table {
	t, err := NewTable(options...)
	if err != nil {
		panic("carp: " + err.Error())
	}
	return t
}

func (t *Table) Search(name string) (*Spec, bool) {
	spec, ok := t.specs[name]
	return spec, ok
}

// Names returns registered names in registration order.
func (t *Table) Names() []string { return t.names }

// Len returns the number of registered names.
func (t *Table) Len() int { return len(t.specs) }

// SortedTable is a Lookup backed by a sorted slice and binary search.
type SortedTable struct {
	entries []entry
	names   []string
}

// NewSortedTable validates options and builds a binary-search lookup.
func NewSortedTable(options ...Option) (*SortedTable, error) {
	entries, err := buildEntries(options)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].name = intern.Intern(entries[i].name)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return &SortedTable{entries: entries, names: names}, nil
}

// MustSortedTable is NewSortedTable for tables known to be valid.
func MustSortedTable(options ...Option) *SortedTable {
	t, err := NewSortedTable(options...)
	if err != nil {
		panic("carp: " + err.Error())
	}
	return t
}

func (t *SortedTable) Search(name string) (*Spec, bool) {
	i := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].name >= name })
	if i < len(t.entries) && t.entries[i].name == name {
		return t.entries[i].spec, true
	}
	return nil, false
}

// Names returns registered names in sorted order.
func (t *SortedTable) Names() []string { return t.names }

// Len returns the number of registered names.
func (t *SortedTable) Len() int { return len(t.entries) }
