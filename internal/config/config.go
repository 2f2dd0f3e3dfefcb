// Package config loads eav.yaml: database location, connector table
// layout, definitions directory and log level.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/eav/internal/relation"
)

const (
	// DefaultConfigFile is the file looked up when --config is not given.
	DefaultConfigFile = "eav.yaml"

	EnvDBPath   = "EAV_DB_PATH"
	EnvLogLevel = "EAV_LOG_LEVEL"
)

// Config is the static configuration (read-only after Load).
type Config struct {
	Database    DatabaseConfig `yaml:"database"`
	Schema      SchemaConfig   `yaml:"schema"`
	Definitions string         `yaml:"definitions"`
	LogLevel    string         `yaml:"log_level"`
}

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SchemaConfig names the catalog and connector tables.
type SchemaConfig struct {
	CatalogTable string     `yaml:"catalog_table"`
	ObjectTable  string     `yaml:"object_table"`
	Connectors   Connectors `yaml:"connectors"`
}

// Connector binds one attribute type to its connector table.
type Connector struct {
	Type  string
	Table string
}

// Connectors is the attribute type → table mapping in file order. File
// order is the registry's declaration order.
type Connectors []Connector

// UnmarshalYAML decodes a mapping node, keeping key order.
func (c *Connectors) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: connectors must be a mapping of type to table", node.Line)
	}
	out := make(Connectors, 0, len(node.Content)/2)
	seen := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: connector table for %q must be a string", val.Line, key.Value)
		}
		if seen[key.Value] {
			return fmt.Errorf("line %d: duplicate connector type %q", key.Line, key.Value)
		}
		seen[key.Value] = true
		out = append(out, Connector{Type: key.Value, Table: val.Value})
	}
	*c = out
	return nil
}

// MarshalYAML encodes the connectors as an ordered mapping.
func (c Connectors) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, conn := range c {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: conn.Type},
			&yaml.Node{Kind: yaml.ScalarNode, Value: conn.Table})
	}
	return node, nil
}

// Default returns a Config matching the bootstrap schema.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "./eav.db"},
		Schema: SchemaConfig{
			CatalogTable: relation.DefaultCatalogTable,
			ObjectTable:  relation.DefaultObjectTable,
			Connectors: Connectors{
				{Type: string(relation.StringType), Table: "string_attributes"},
				{Type: string(relation.IntegerType), Table: "integer_attributes"},
				{Type: string(relation.FloatType), Table: "float_attributes"},
			},
		},
		Definitions: "./entities",
		LogLevel:    "info",
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path loads the defaults alone. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv(EnvDBPath); path != "" {
		c.Database.Path = path
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.LogLevel = level
	}
}

// Validate reports every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is empty"))
	}
	if c.Schema.CatalogTable == "" {
		errs = append(errs, errors.New("schema.catalog_table is empty"))
	}
	if c.Schema.ObjectTable == "" {
		errs = append(errs, errors.New("schema.object_table is empty"))
	}
	if len(c.Schema.Connectors) == 0 {
		errs = append(errs, errors.New("schema.connectors is empty"))
	}
	for _, conn := range c.Schema.Connectors {
		if conn.Table == "" {
			errs = append(errs, fmt.Errorf("schema.connectors.%s has no table", conn.Type))
		}
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Level parses LogLevel (debug, info, warn, error; case-insensitive).
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// Registry builds the attribute type registry in connector order.
// Relation names follow "<type>Attributes".
func (c *Config) Registry() (*relation.Registry, error) {
	specs := make([]relation.TypeSpec, len(c.Schema.Connectors))
	for i, conn := range c.Schema.Connectors {
		specs[i] = relation.TypeSpec{
			Type:           relation.AttributeType(conn.Type),
			ConnectorTable: conn.Table,
			RelationName:   conn.Type + "Attributes",
		}
	}
	reg, err := relation.NewRegistry(specs...)
	if err != nil {
		return nil, fmt.Errorf("schema.connectors: %w", err)
	}
	return reg, nil
}

// Catalog returns the attribute catalog description.
func (c *Config) Catalog() relation.AttributeCatalog {
	catalog := relation.DefaultCatalog()
	catalog.Table = c.Schema.CatalogTable
	return catalog
}

// ObjectConnector returns the connector used for entity-to-entity links.
func (c *Config) ObjectConnector() relation.Connector {
	return relation.NewConnector(c.Schema.ObjectTable)
}

// Marshal renders the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
