package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/circuitglobe/internal/names"
)

// AliasesResult lists the alias table in declaration order.
type AliasesResult struct {
	Source  string       `json:"source"`
	Aliases []names.Pair `json:"aliases"`
}

func (r AliasesResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✓ %d aliases (%s)", len(r.Aliases), r.Source)
	for _, p := range r.Aliases {
		fmt.Fprintf(&b, "\n  %-28s -> %s", p.Alias, p.Canonical)
	}
	return b.String()
}

// NewAliasesCommand creates the aliases command.
func NewAliasesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aliases [name...]",
		Short: "Print or check the country alias table",
		Long: `Print the table that maps circuit-table country names to world-atlas
names. With --aliases the given file is validated instead of the built-in
table; an alias listed twice is an error. Names given as arguments are
resolved through the table.

Example:
  circuitglobe aliases
  circuitglobe aliases --aliases ./aliases.yaml
  circuitglobe aliases UK USA Italy`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAliases(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runAliases(opts *RootOptions, args []string, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}
	m, err := opts.mapper(cmd, cfg)
	if err != nil {
		return err
	}

	formatter := opts.formatter(cmd)
	if len(args) > 0 {
		resolved := make([]names.Pair, len(args))
		for i, name := range args {
			resolved[i] = names.Pair{Alias: name, Canonical: m.Map(name)}
		}
		return formatter.Success(AliasesResult{Source: "resolved", Aliases: resolved})
	}

	source := cfg.Aliases
	if source == "" {
		source = "built-in"
	}
	return formatter.Success(AliasesResult{Source: source, Aliases: m.Pairs()})
}
