package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/circuitglobe/internal/config"
	"github.com/roach88/circuitglobe/internal/dataset"
	"github.com/roach88/circuitglobe/internal/logging"
	"github.com/roach88/circuitglobe/internal/names"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string

	viper *viper.Viper
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the circuitglobe CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{viper: viper.New()}

	cmd := &cobra.Command{
		Use:   "circuitglobe",
		Short: "circuitglobe - a spinning globe touring F1 circuits",
		Long: `Render an orthographic globe that turns from circuit to circuit,
highlighting the host country, the circuit location and the great-circle
arc from the previous circuit.

Settings come from flags, CGLOBE_* environment variables and a
.circuitglobe.yaml file in the home or working directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default is $HOME/.circuitglobe.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().String("world", dataset.DefaultWorld, "world topology (TopoJSON file or URL)")
	cmd.PersistentFlags().String("circuits", dataset.DefaultCircuits, "circuits table (CSV file or URL)")
	cmd.PersistentFlags().String("aliases", "", "alias table replacing the built-in one (YAML)")

	// Add subcommands
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewPlanCommand(opts))
	cmd.AddCommand(NewAliasesCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setup validates the global flags, reads the config file and installs
// the logger. It runs before every subcommand.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	if !isValidFormat(o.Format) {
		err := NewExitError(ExitCommandError,
			fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
		o.formatter(cmd).Error(CodeConfig, err.Message, nil)
		return err
	}

	logging.Setup(cmd.ErrOrStderr(), logging.Options{
		Verbose: o.Verbose,
		JSON:    o.Format == "json",
	})

	if err := config.Init(o.viper, o.ConfigFile); err != nil {
		return o.fail(cmd, CodeConfig, ExitCommandError, "failed to read config", err)
	}
	if err := config.BindFlags(o.viper, cmd.Flags()); err != nil {
		return o.fail(cmd, CodeConfig, ExitCommandError, "failed to bind flags", err)
	}
	if used := o.viper.ConfigFileUsed(); used != "" {
		slog.Debug("using config file", "path", used)
	}
	return nil
}

// loadConfig decodes the merged settings.
func (o *RootOptions) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.viper)
	if err != nil {
		return config.Config{}, o.fail(cmd, CodeConfig, ExitCommandError, "invalid configuration", err)
	}
	return cfg, nil
}

// mapper loads the alias table named by cfg, or the built-in one.
func (o *RootOptions) mapper(cmd *cobra.Command, cfg config.Config) (*names.Mapper, error) {
	m, err := names.Load(cfg.Aliases)
	if err != nil {
		return nil, o.fail(cmd, CodeConfig, ExitCommandError, "invalid alias table", err)
	}
	return m, nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// fail reports err in the configured format and returns it with an exit
// code.
func (o *RootOptions) fail(cmd *cobra.Command, code string, exit int, message string, err error) error {
	o.formatter(cmd).Error(code, fmt.Sprintf("%s: %v", message, err), nil)
	return WrapExitError(exit, message, err)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
