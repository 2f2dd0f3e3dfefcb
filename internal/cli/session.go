package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/eav/internal/compiler"
	"github.com/roach88/eav/internal/config"
	"github.com/roach88/eav/internal/entity"
	"github.com/roach88/eav/internal/ir"
	"github.com/roach88/eav/internal/loader"
	"github.com/roach88/eav/internal/store"
)

// DBOptions holds the database flag shared by commands that read entities.
type DBOptions struct {
	DBPath string // overrides database.path from the config
}

func (o *DBOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.DBPath, "db", "", "path to SQLite database (default from config)")
}

// session is an open database plus compiled definitions.
type session struct {
	cfg     *config.Config
	catalog *compiler.Catalog
	store   *store.Store
	loader  *loader.Loader
	logger  *slog.Logger
}

func (s *session) Close() error {
	return s.store.Close()
}

// openSession compiles the definitions in defsDir and opens the database.
// Failures are reported through formatter and returned as ExitErrors.
func openSession(opts *RootOptions, db *DBOptions, defsDir string, cmd *cobra.Command, formatter *OutputFormatter) (*session, error) {
	cfg, logger, err := opts.environment(cmd)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}

	registry, err := cfg.Registry()
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeConfig, "invalid connector layout", err)
	}

	catalog, err := compiler.LoadDir(defsDir, registry)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeCompile, "failed to compile definitions", err)
	}
	formatter.VerboseLog("Compiled %d entity definition(s) from %s", catalog.Len(), defsDir)

	dbPath := cfg.Database.Path
	if db != nil && db.DBPath != "" {
		dbPath = db.DBPath
	}
	// store.Open creates missing files.
	if _, err := os.Stat(dbPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", dbPath), nil)
		}
		return nil, formatter.Fail(ExitCommandError, ErrCodeNotFound, "cannot access database", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to open database", err)
	}

	l := loader.New(st,
		loader.WithRegistry(registry),
		loader.WithCatalog(cfg.Catalog()),
		loader.WithObjectConnector(cfg.ObjectConnector()),
		loader.WithLogger(logger),
	)

	return &session{
		cfg:     cfg,
		catalog: catalog,
		store:   st,
		loader:  l,
		logger:  logger,
	}, nil
}

// kind looks up an entity definition by name.
func (s *session) kind(name string, formatter *OutputFormatter) (entity.Kind, error) {
	k, ok := s.catalog.Lookup(name)
	if !ok {
		return nil, formatter.Fail(ExitFailure, ErrCodeUnknownEntity,
			fmt.Sprintf("unknown entity %q (defined: %v)", name, s.catalog.Names()), nil)
	}
	return k, nil
}

// parseKey reads a primary key argument. Integers bind as integers,
// anything else as text.
func parseKey(s string) ir.IRValue {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ir.IRInt(n)
	}
	return ir.IRString(s)
}
