package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/eav/internal/entity"
	"github.com/roach88/eav/internal/relation"
)

// Catalog holds compiled entity kinds by definition name, in declaration
// order.
type Catalog struct {
	names []string
	kinds map[string]entity.Kind
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{kinds: make(map[string]entity.Kind)}
}

// Add registers k under its name. Names must be unique.
func (c *Catalog) Add(k entity.Kind) error {
	if _, exists := c.kinds[k.Name()]; exists {
		return fmt.Errorf("duplicate entity %q", k.Name())
	}
	c.names = append(c.names, k.Name())
	c.kinds[k.Name()] = k
	return nil
}

// Lookup returns the kind named name.
func (c *Catalog) Lookup(name string) (entity.Kind, bool) {
	k, ok := c.kinds[name]
	return k, ok
}

// Names returns definition names in declaration order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.names...)
}

// Kinds returns the kinds in declaration order.
func (c *Catalog) Kinds() []entity.Kind {
	out := make([]entity.Kind, len(c.names))
	for i, name := range c.names {
		out[i] = c.kinds[name]
	}
	return out
}

// Len returns the number of kinds.
func (c *Catalog) Len() int {
	return len(c.names)
}

// CompileValue compiles every field under entity in v.
// A value without entity yields an empty catalog.
func CompileValue(v cue.Value, reg *relation.Registry) (*Catalog, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	catalog := NewCatalog()
	entities := v.LookupPath(cue.ParsePath("entity"))
	if !entities.Exists() {
		return catalog, nil
	}

	iter, err := entities.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		kind, err := CompileEntity(iter.Value(), reg)
		if err != nil {
			return nil, fmt.Errorf("entity.%s: %w", iter.Label(), err)
		}
		if err := catalog.Add(kind); err != nil {
			return nil, err
		}
	}
	return catalog, nil
}

// LoadDir loads the CUE package in dir and compiles its entity definitions.
func LoadDir(dir string, reg *relation.Registry) (*Catalog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("definitions directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	files, err := FindCUEFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no CUE files found in %s", dir)
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, fmt.Errorf("loading CUE files: %w", inst.Err)
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileValue(value, reg)
}

// LoadFiles compiles the given CUE files as one value. Files are unified,
// so each may declare a different entity.
func LoadFiles(files []string, reg *relation.Registry) (*Catalog, error) {
	ctx := cuecontext.New()
	value := ctx.CompileString("{}")
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read definitions: %w", err)
		}
		v := ctx.CompileBytes(data, cue.Filename(path))
		if err := v.Err(); err != nil {
			return nil, formatCUEError(err)
		}
		value = value.Unify(v)
	}
	return CompileValue(value, reg)
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
