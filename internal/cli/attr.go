package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/eav/internal/ir"
)

// AttrResult is the JSON payload of the attr command.
type AttrResult struct {
	Entity string          `json:"entity"`
	Key    json.RawMessage `json:"key"`
	Name   string          `json:"name"`
	Value  json.RawMessage `json:"value"`
}

// NewAttrCommand creates the attr command.
func NewAttrCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "attr <defs-dir> <entity> <key> <name>",
		Short: "Look up one attribute of one entity",
		Long: `Load one entity and print the value of one attribute.

A non-NULL own column of that name wins. Otherwise the attribute sets are
searched in declaration order and the first match is printed.

Exit codes:
  0 - Attribute found
  1 - Unknown entity, no entity with that key, or no such attribute
  2 - Command error (definitions or database missing, etc.)`,
		Args:          cobra.ExactArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAttr(opts, args, cmd)
		},
	}

	opts.bind(cmd)

	return cmd
}

func runAttr(opts *LoadOptions, args []string, cmd *cobra.Command) error {
	defsDir, entityName, rawKey, name := args[0], args[1], args[2], args[3]
	formatter := newFormatter(opts.RootOptions, cmd)

	sess, err := openSession(opts.RootOptions, &opts.DBOptions, defsDir, cmd, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	kind, err := sess.kind(entityName, formatter)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	key := parseKey(rawKey)
	model, ok, err := sess.loader.Query(kind).Find(ctx, key)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLoadFailed, fmt.Sprintf("failed to load %s %s", entityName, rawKey), err)
	}
	if !ok {
		return formatter.Fail(ExitFailure, ErrCodeNoEntity, fmt.Sprintf("no %s with key %s", entityName, rawKey), nil)
	}

	value, found := model.Attribute(name)
	if !found {
		return formatter.Fail(ExitFailure, ErrCodeNoAttribute, fmt.Sprintf("%s %s has no attribute %q", entityName, rawKey, name), nil)
	}

	data, err := ir.MarshalCanonical(value)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to render value", err)
	}

	if opts.Format == "json" {
		keyData, err := ir.MarshalCanonical(key)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to render key", err)
		}
		return formatter.Success(AttrResult{Entity: entityName, Key: keyData, Name: name, Value: data})
	}
	fmt.Fprintln(formatter.Writer, string(data))
	return nil
}
