package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/croft-build/croft/internal/msg"
	"github.com/croft-build/croft/internal/project"
)

// DefaultDirName is the per-project modules directory
const DefaultDirName = "croft_modules"

// Catalog is the set of installable modules found under one directory
type Catalog struct {
	dir     string
	modules map[string]*Module
}

// Dir returns the modules directory for a project: $CROFT_MODULES if set,
// otherwise croft_modules next to the project file
func Dir(p *project.Project) string {
	if env := os.Getenv("CROFT_MODULES"); env != "" {
		return env
	}
	return filepath.Join(p.Dir(), DefaultDirName)
}

// Open scans a modules directory. A missing directory is an empty catalog,
// not an error; modules get fetched into it on demand.
func Open(dir string) (*Catalog, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	c := &Catalog{dir: dir, modules: make(map[string]*Module)}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		modDir := filepath.Join(dir, entry.Name())
		if _, err := os.Stat(filepath.Join(modDir, ManifestFilename)); err != nil {
			continue
		}
		mod, err := LoadModule(modDir)
		if err != nil {
			msg.Warn("skipping module in %s: %v", modDir, err)
			continue
		}
		if mod.ID() != entry.Name() {
			msg.Warn("module in %s has a mismatched id: %q", modDir, mod.ID())
		}
		c.modules[mod.ID()] = mod
	}

	return c, nil
}

func (c *Catalog) Module(id string) (*Module, bool) {
	m, ok := c.modules[id]
	return m, ok
}

// IDs returns the ids of all installed modules
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.modules))
	for id := range c.modules {
		ids = append(ids, id)
	}
	return ids
}

// Install fetches a module into the catalog directory and loads it
func (c *Catalog) Install(id, source string) (*Module, error) {
	dest := filepath.Join(c.dir, id)
	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, err
	}
	if err := fetchModule(source, dest); err != nil {
		return nil, fmt.Errorf("failed to fetch module %q: %w", id, err)
	}
	mod, err := LoadModule(dest)
	if err != nil {
		return nil, err
	}
	c.modules[mod.ID()] = mod
	return mod, nil
}

// Resolve produces the project's required modules in declaration order.
// Modules missing from the catalog are fetched first; fetches of independent
// modules run concurrently, so all of this happens before the save pipeline
// proper, which stays single-threaded.
func (c *Catalog) Resolve(p *project.Project) ([]*Module, error) {
	var missing []string
	for _, id := range p.Modules() {
		if _, ok := c.modules[id]; !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		var g errgroup.Group
		for _, id := range missing {
			g.Go(func() error {
				source, ok := p.ModuleSource(id)
				if !ok {
					return fmt.Errorf("module %q is not installed and the project pins no source for it", id)
				}
				dest := filepath.Join(c.dir, id)
				if err := os.MkdirAll(dest, 0755); err != nil {
					return err
				}
				msg.Info("fetching module %s", id)
				if err := fetchModule(source, dest); err != nil {
					return fmt.Errorf("failed to fetch module %q: %w", id, err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for _, id := range missing {
			mod, err := LoadModule(filepath.Join(c.dir, id))
			if err != nil {
				return nil, err
			}
			c.modules[id] = mod
		}
	}

	modules := make([]*Module, 0, len(p.Modules()))
	for _, id := range p.Modules() {
		modules = append(modules, c.modules[id])
	}
	return modules, nil
}
