package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/eav/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	cfg    *config.Config
	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the eav CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "eav",
		Short: "eav - eager-load EAV attributes",
		Long: `Load entities together with their entity-attribute-value attributes.

Entity kinds are declared in CUE files; attribute values live in one
connector table per attribute type. Loading a batch costs one query per
declared attribute type, whatever the batch size.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (default ./"+config.DefaultConfigFile+" if present)")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewAttrCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// Execute runs the CLI and returns the process exit code.
// Errors not already reported by a command are printed to stderr.
func Execute(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	// Usage errors: bad flags, wrong argument count.
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitCommandError
}

// environment loads the config and builds the logger once per process.
// The logger writes text to stderr; --verbose forces debug level.
func (o *RootOptions) environment(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	if o.cfg != nil {
		return o.cfg, o.logger, nil
	}

	path := o.ConfigPath
	if path == "" {
		if _, err := os.Stat(config.DefaultConfigFile); err == nil {
			path = config.DefaultConfigFile
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	level, err := cfg.Level()
	if err != nil {
		return nil, nil, err
	}
	if o.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})

	o.cfg = cfg
	o.logger = slog.New(handler)
	return o.cfg, o.logger, nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
