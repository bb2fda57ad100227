package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const table = `{"options": [
	{"short": "v", "long": "verbose", "arguments": 0, "callback": "onVerbose"},
	{"short": "o", "arguments": 1, "callback": "onOutput"}
]}`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func writeTable(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCarpgen_Hash(t *testing.T) {
	dir := t.TempDir()
	src := writeTable(t, dir, "carp.json", table)

	out, err := execute(t, "hash", dir, src)
	require.NoError(t, err)
	assert.Contains(t, out, "carp_hash.go (2 options, hash backend)")

	data, err := os.ReadFile(filepath.Join(dir, "carp_hash.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "package main\n")
	assert.Contains(t, string(data), "func carpTable() carp.Lookup {")
	assert.Contains(t, string(data), `carp.Option{Short: 'v', Long: "verbose", Arity: carp.None, Handler: onVerbose},`)
}

func TestCarpgen_SearchWithFlags(t *testing.T) {
	dir := t.TempDir()
	src := writeTable(t, dir, "carp.toml", "[[options]]\nlong = \"name\"\narguments = 1\ncallback = \"onName\"\n")

	out, err := execute(t, "search", dir, src, "--package", "cli", "-f", "lookup", "--quiet")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(filepath.Join(dir, "carp_search.go"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "package cli\n")
	assert.Contains(t, string(data), "func lookup() carp.Lookup {")
	assert.Contains(t, string(data), "carp.MustSortedTable(")
}

func TestCarpgen_Errors(t *testing.T) {
	dir := t.TempDir()
	src := writeTable(t, dir, "carp.json", table)
	bad := writeTable(t, dir, "bad.json", `{"options": [{"short": "v"}]}`)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"arg count", []string{"hash", dir}, "accepts 3 arg(s), received 2"},
		{"backend", []string{"gperf", dir, src}, `unknown backend "gperf" (want hash or search)`},
		{"missing dir", []string{"hash", filepath.Join(dir, "nope"), src}, "cannot find output directory"},
		{"invalid table", []string{"search", dir, bad}, "option 'v': missing required field 'arguments'"},
		{"bad package", []string{"hash", dir, src, "--package", "a-b"}, `invalid package name "a-b"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
