// Package gen renders an option table as Go source that builds a carp.Lookup.
package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"text/template"

	"github.com/dzonerzy/go-carp/internal/schema"
)

// Backend selects the generated lookup.
type Backend int

const (
	Hash   Backend = iota // carp.MustTable
	Search                // carp.MustSortedTable
)

// ParseBackend accepts "hash" or "search", case-insensitively.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(s) {
	case "hash":
		return Hash, nil
	case "search":
		return Search, nil
	default:
		return 0, fmt.Errorf("unknown backend %q (want hash or search)", s)
	}
}

func (b Backend) String() string {
	if b == Search {
		return "search"
	}
	return "hash"
}

// FileName is the output file for the backend.
func (b Backend) FileName() string { return "carp_" + b.String() + ".go" }

func (b Backend) constructor() string {
	if b == Search {
		return "MustSortedTable"
	}
	return "MustTable"
}

// Config controls the generated file.
type Config struct {
	Backend Backend
	Package string
	Func    string
}

// DefaultConfig generates package main with func carpTable.
func DefaultConfig() Config {
	return Config{Backend: Hash, Package: "main", Func: "carpTable"}
}

func (c Config) validate() error {
	if !token.IsIdentifier(c.Package) {
		return fmt.Errorf("invalid package name %q", c.Package)
	}
	if !token.IsIdentifier(c.Func) {
		return fmt.Errorf("invalid function name %q", c.Func)
	}
	return nil
}

var fileTemplate = template.Must(template.New("carp").Parse(`// Code generated by carpgen from {{.Source}}. DO NOT EDIT.

package {{.Package}}

import "github.com/dzonerzy/go-carp/carp"

// {{.Func}} returns the {{.Backend}} lookup for the options in {{.Source}}.
func {{.Func}}() carp.Lookup {
	return carp.{{.Constructor}}(
{{- range .Options}}
		{{printf "carp.Option{%s}," .}}
{{- end}}
	)
}
`))

type fileData struct {
	Source      string
	Package     string
	Func        string
	Backend     Backend
	Constructor string
	Options     []string
}

// Generate renders table as gofmt'ed Go source.
func Generate(table *schema.Table, cfg Config) ([]byte, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	options := slices.Clone(table.Options)
	if cfg.Backend == Search {
		slices.SortStableFunc(options, func(a, b schema.Option) int {
			return strings.Compare(a.Name(), b.Name())
		})
	}

	data := fileData{
		Source:      filepath.Base(table.Source),
		Package:     cfg.Package,
		Func:        cfg.Func,
		Backend:     cfg.Backend,
		Constructor: cfg.Backend.constructor(),
		Options:     make([]string, len(options)),
	}
	for i, o := range options {
		data.Options[i] = optionLiteral(o)
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", cfg.Backend.FileName(), err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting %s: %w", cfg.Backend.FileName(), err)
	}
	return src, nil
}

func optionLiteral(o schema.Option) string {
	fields := make([]string, 0, 4)
	if o.Short != "" {
		fields = append(fields, "Short: "+strconv.QuoteRuneToASCII(rune(o.Short[0])))
	}
	if o.Long != "" {
		fields = append(fields, "Long: "+strconv.Quote(o.Long))
	}
	fields = append(fields, "Arity: "+arityLiteral(o.Arguments), "Handler: "+o.Callback)
	return strings.Join(fields, ", ")
}

func arityLiteral(n int) string {
	switch {
	case n < 0:
		return "carp.Variadic"
	case n == 0:
		return "carp.None"
	default:
		return "carp.Fixed(" + strconv.Itoa(n) + ")"
	}
}

// WriteFile generates into dir, which must exist, and returns the written path.
func WriteFile(table *schema.Table, dir string, cfg Config) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("cannot find output directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("output path %s is not a directory", dir)
	}

	src, err := Generate(table, cfg)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, cfg.Backend.FileName())
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
