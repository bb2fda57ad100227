// Command carpgen turns an option-table file into Go source declaring a
// carp.Lookup.
//
//	carpgen <hash|search> <output_dir> <table-file>
//
// The table file is JSON or TOML (see internal/schema). The output is
// carp_hash.go or carp_search.go in output_dir.
package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dzonerzy/go-carp/carp"
	carpio "github.com/dzonerzy/go-carp/io"
	"github.com/dzonerzy/go-carp/internal/gen"
	"github.com/dzonerzy/go-carp/internal/schema"
)

type options struct {
	pkg   string
	fn    string
	quiet bool
}

func bindFlags(fs *pflag.FlagSet, o *options) {
	def := gen.DefaultConfig()
	fs.StringVarP(&o.pkg, "package", "p", def.Package, "package name of the generated file")
	fs.StringVarP(&o.fn, "func", "f", def.Func, "name of the generated lookup function")
	fs.BoolVarP(&o.quiet, "quiet", "q", false, "do not report the written file")
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "carpgen <hash|search> <output_dir> <table-file>",
		Short: "Generate a carp option lookup from a table file",
		Long: `carpgen reads a JSON or TOML option table and writes Go source that
builds the matching carp.Lookup.

  hash    writes carp_hash.go backed by carp.MustTable
  search  writes carp_search.go backed by carp.MustSortedTable

Each option names a callback; the generated file refers to it by that name,
so the callbacks must be declared in the same package.`,
		Args:          cobra.ExactArgs(3),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o, args)
		},
	}
	bindFlags(cmd.Flags(), o)
	return cmd
}

func run(cmd *cobra.Command, o *options, args []string) error {
	backend, err := gen.ParseBackend(args[0])
	if err != nil {
		return err
	}
	table, err := schema.Load(args[2])
	if err != nil {
		return err
	}

	path, err := gen.WriteFile(table, args[1], gen.Config{Backend: backend, Package: o.pkg, Func: o.fn})
	if err != nil {
		return err
	}

	if !o.quiet {
		io := carpio.New().WithOut(cmd.OutOrStdout()).WithErr(cmd.ErrOrStderr())
		carpio.NewLogger(io).Success("wrote %s (%d options, %s backend)", path, len(table.Options), backend)
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		carp.Exit(err)
	}
}
