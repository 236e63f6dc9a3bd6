package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/expr-lang/expr"
	"github.com/pelletier/go-toml/v2"

	"github.com/croft-build/croft/internal/project"
)

// ManifestFilename sits at the root of every module directory
const ManifestFilename = "croft_module.toml"

// ModuleSection defines the [module] section of croft_module.toml
type ModuleSection struct {
	ID          string   `toml:"id"`
	Description string   `toml:"description,omitempty"`
	Header      string   `toml:"header"`
	Sources     []string `toml:"sources,omitempty"`
	Setup       string   `toml:"setup,omitempty"`
}

// FlagDecl is one [[flags]] entry: a config symbol the module contributes.
// Declaration order is display order; flags are never reordered.
type FlagDecl struct {
	Symbol      string `toml:"symbol"`
	Description string `toml:"description,omitempty"`
}

type moduleManifest struct {
	Module ModuleSection `toml:"module"`
	Flags  []FlagDecl    `toml:"flags,omitempty"`
}

// Module is a framework module loaded from its manifest
type Module struct {
	manifest moduleManifest
	path     string
}

// ConfigFlag is a declared flag with its value resolved against a project
type ConfigFlag struct {
	Symbol      string
	Description string
	State       project.FlagState
}

// ExporterPrep is the surface a module mutates while preparing a toolchain
// exporter for its code.
type ExporterPrep interface {
	AddSearchPath(dir string)
	AddCompileUnit(path string)
	AddDefine(name, value string)
}

var errNoModuleID = errors.New("module manifest has no id")

func parseModuleManifest(rdr io.Reader, env project.ConfigEnv) (*moduleManifest, error) {
	var rawCfg map[string]any
	dec := toml.NewDecoder(rdr)
	if err := dec.Decode(&rawCfg); err != nil {
		if derr, ok := err.(*toml.DecodeError); ok {
			return nil, errors.New(derr.String())
		}
		return nil, err
	}

	processed, err := project.ProcessExpressions(rawCfg, env)
	if err != nil {
		return nil, fmt.Errorf("error processing expressions in module manifest: %w", err)
	}

	var m moduleManifest
	if err := toml.Unmarshal([]byte(mustMarshal(processed)), &m); err != nil {
		return nil, err
	}
	if m.Module.ID == "" {
		return nil, errNoModuleID
	}
	return &m, nil
}

// LoadModule reads a module from its directory
func LoadModule(dir string) (*Module, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(dir, ManifestFilename))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := parseModuleManifest(bufio.NewReader(f), project.NewConfigEnv(dir))
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest for module in %s: %w", dir, err)
	}

	return &Module{manifest: *m, path: dir}, nil
}

func (m *Module) ID() string          { return m.manifest.Module.ID }
func (m *Module) Path() string        { return m.path }
func (m *Module) Description() string { return m.manifest.Module.Description }

// ConfigFlags returns the module's declared flags with values resolved
// against the project, in declaration order
func (m *Module) ConfigFlags(p *project.Project) []*ConfigFlag {
	flags := make([]*ConfigFlag, 0, len(m.manifest.Flags))
	for _, decl := range m.manifest.Flags {
		flags = append(flags, &ConfigFlag{
			Symbol:      decl.Symbol,
			Description: decl.Description,
			State:       p.FlagState(decl.Symbol),
		})
	}
	return flags
}

// WriteIncludes emits the include directive(s) that pull this module into
// the umbrella header. The text is inserted into the header verbatim.
func (m *Module) WriteIncludes(sb *strings.Builder) {
	header := m.manifest.Module.Header
	if header == "" {
		header = m.ID() + ".h"
	}
	sb.WriteString("#include <")
	sb.WriteString(m.ID())
	sb.WriteString("/")
	sb.WriteString(header)
	sb.WriteString(">\n")
}

// PrepareExporter contributes the module's search path and compile units to
// a toolchain exporter, and runs the manifest's setup script if it has one
func (m *Module) PrepareExporter(e ExporterPrep) error {
	e.AddSearchPath(filepath.Dir(m.path))

	fsys := os.DirFS(m.path)
	for _, pat := range m.manifest.Module.Sources {
		matches, err := doublestar.Glob(fsys, pat, doublestar.WithFilesOnly())
		if err != nil {
			return fmt.Errorf("bad source pattern %q in module %s: %w", pat, m.ID(), err)
		}
		for _, match := range matches {
			e.AddCompileUnit(filepath.Join(m.path, match))
		}
	}

	return m.runSetup()
}

func (m *Module) runSetup() error {
	script := m.manifest.Module.Setup
	if script == "" {
		return nil
	}

	env := project.NewConfigEnv(m.path)
	program, err := expr.Compile(script, expr.Env(env))
	if err != nil {
		return fmt.Errorf("failed to compile setup script for module %q: %w", m.ID(), err)
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return fmt.Errorf("failed to run setup script for module %q: %w", m.ID(), err)
	}

	if result, ok := result.(bool); !ok || !result {
		return fmt.Errorf("setup script for module %q returned false\n%s", m.ID(), script)
	}

	return nil
}

func mustMarshal(v any) string {
	b, err := toml.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
