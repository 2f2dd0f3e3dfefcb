package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/eav/internal/compiler"
	"github.com/roach88/eav/internal/entity"
	"github.com/roach88/eav/internal/relation"
)

// KindSummary describes one compiled entity definition.
type KindSummary struct {
	Name           string   `json:"name"`
	Table          string   `json:"table"`
	PrimaryKey     string   `json:"primary_key"`
	EntityType     string   `json:"entity_type"`
	AttributeTypes []string `json:"attribute_types"`
	AttributeIDs   []int64  `json:"attribute_ids,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Entities []KindSummary              `json:"entities"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []compiler.ValidationError `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <defs-dir>",
		Short: "Validate entity definitions",
		Long: `Compile the CUE entity definitions in a directory and check them.

Reports unknown fields, invalid table and column names, duplicate entity
types, unregistered attribute types and invalid attribute ids. Kinds that
declare no attribute types are reported as warnings.

Exit codes:
  0 - Definitions are valid
  1 - Validation errors found
  2 - Command error (directory missing, CUE does not compile, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, defsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, _, err := opts.environment(cmd)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	registry, err := cfg.Registry()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "invalid connector layout", err)
	}

	catalog, err := compiler.LoadDir(defsDir, registry)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeCompile, "failed to compile definitions", err)
	}
	formatter.VerboseLog("Compiled %d entity definition(s) from %s", catalog.Len(), defsDir)

	result := ValidationResult{Entities: summarize(catalog)}
	for _, e := range compiler.Validate(catalog) {
		if e.IsWarning() {
			result.Warnings = append(result.Warnings, e)
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	result.Valid = len(result.Errors) == 0

	if opts.Format == "json" {
		if !result.Valid {
			if err := formatter.Error(ErrCodeInvalid, fmt.Sprintf("%d validation error(s)", len(result.Errors)), result); err != nil {
				return err
			}
			return NewExitError(ExitFailure, "validation failed")
		}
		return formatter.Success(result)
	}

	outputValidateText(formatter, result)
	if !result.Valid {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}

func summarize(catalog *compiler.Catalog) []KindSummary {
	kinds := catalog.Kinds()
	out := make([]KindSummary, 0, len(kinds))
	for _, k := range kinds {
		s := KindSummary{
			Name:           k.Name(),
			Table:          k.Table(),
			PrimaryKey:     k.PrimaryKey(),
			EntityType:     k.EntityType(),
			AttributeTypes: typeNames(k.AttributeTypes()),
		}
		if ai, ok := k.(entity.AttributeIdentifier); ok {
			s.AttributeIDs = ai.AttributeIDs()
		}
		out = append(out, s)
	}
	return out
}

func typeNames(types []relation.AttributeType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func outputValidateText(f *OutputFormatter, result ValidationResult) {
	w := f.Writer
	for _, s := range result.Entities {
		mark := "✓"
		if hasFinding(result.Errors, s.Name) {
			mark = "✗"
		}
		attrs := strings.Join(s.AttributeTypes, ", ")
		if attrs == "" {
			attrs = "none"
		}
		fmt.Fprintf(w, "%s %s (table %s, entity type %s): %s\n", mark, s.Name, s.Table, s.EntityType, attrs)
	}

	for _, e := range result.Errors {
		fmt.Fprintf(w, "  error %s\n", e.Error())
	}
	for _, e := range result.Warnings {
		fmt.Fprintf(w, "  warning %s\n", e.Error())
	}

	if result.Valid {
		fmt.Fprintf(w, "✓ %d entity definition(s) valid\n", len(result.Entities))
		return
	}
	fmt.Fprintf(w, "✗ %d validation error(s)\n", len(result.Errors))
}

func hasFinding(errs []compiler.ValidationError, name string) bool {
	for _, e := range errs {
		if e.Entity == name {
			return true
		}
	}
	return false
}
