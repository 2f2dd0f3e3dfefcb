package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/eav/internal/ir"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	DBOptions
	Keys []string // primary keys to load; empty loads every row
}

// LoadResult is the JSON payload of the load command.
type LoadResult struct {
	Entity   string            `json:"entity"`
	Count    int               `json:"count"`
	Entities []json.RawMessage `json:"entities"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <defs-dir> <entity>",
		Short: "Load entities with their attributes",
		Long: `Load a batch of entities and their attribute sets.

Prints one canonical JSON object per entity, in primary key order. Own
columns win over attributes of the same name unless they are NULL.

Examples:
  eav load ./entities Product --db shop.db
  eav load ./entities Product --key 42 --key 43
  eav load ./entities Product --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, args[0], args[1], cmd)
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringSliceVar(&opts.Keys, "key", nil, "primary key to load (repeatable)")

	return cmd
}

func runLoad(opts *LoadOptions, defsDir, entityName string, cmd *cobra.Command) error {
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

	q := sess.loader.Query(kind).OrderBy(kind.PrimaryKey(), false)
	if len(opts.Keys) > 0 {
		keys := make([]ir.IRValue, len(opts.Keys))
		for i, k := range opts.Keys {
			keys[i] = parseKey(k)
		}
		q.WhereIn(kind.PrimaryKey(), keys)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	models, err := q.Get(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLoadFailed, fmt.Sprintf("failed to load %s", entityName), err)
	}
	formatter.VerboseLog("Loaded %d %s entit(ies)", len(models), entityName)

	result := LoadResult{
		Entity:   entityName,
		Count:    len(models),
		Entities: make([]json.RawMessage, 0, len(models)),
	}
	for _, m := range models {
		data, err := m.MarshalJSON()
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeLoadFailed, fmt.Sprintf("failed to render %s", entityName), err)
		}
		result.Entities = append(result.Entities, data)
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	for _, data := range result.Entities {
		fmt.Fprintln(formatter.Writer, string(data))
	}
	return nil
}
