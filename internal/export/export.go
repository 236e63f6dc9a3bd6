// Package export holds the per-toolchain project exporters. Each exporter
// owns its target directory under Builds/ and turns the prepared project
// state plus the generated-files manifest into native build files.
package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/croft-build/croft/internal/manifest"
	"github.com/croft-build/croft/internal/project"
)

const (
	TargetVS2022   = "vs2022"
	TargetNinja    = "ninja"
	TargetMakefile = "make"
)

// SaveError is a failure inside an exporter's Create. The saver records its
// message and carries on with the remaining exporters.
type SaveError struct {
	Message string
}

func (e *SaveError) Error() string { return e.Message }

func saveErrorf(format string, a ...any) *SaveError {
	return &SaveError{Message: fmt.Sprintf(format, a...)}
}

// Exporter is one toolchain target. The saver prepares it (search paths,
// defines, compile units, a working copy of the generated-files manifest)
// and then calls Create exactly once.
type Exporter interface {
	Name() string
	TargetDir() string
	AddSearchPath(dir string)
	AddDefine(name, value string)
	AddCompileUnit(path string)
	SetLibrary(lib bool)
	SetConsole(console bool)
	SetGeneratedGroup(g *manifest.Node)
	Create() error
}

// New constructs the exporter for a requested toolchain target
func New(p *project.Project, target string) (Exporter, error) {
	switch target {
	case TargetVS2022:
		return newVS2022(p), nil
	case TargetNinja:
		return newNinja(p), nil
	case TargetMakefile:
		return newMakefile(p), nil
	default:
		return nil, fmt.Errorf("unknown exporter target %q (known: %s, %s, %s)",
			target, TargetVS2022, TargetNinja, TargetMakefile)
	}
}

// Targets lists the known toolchain targets
func Targets() []string {
	return []string{TargetVS2022, TargetNinja, TargetMakefile}
}

type define struct {
	name, value string
}

// base carries the state every exporter mutates during preparation
type base struct {
	proj         *project.Project
	name         string
	targetDir    string
	searchPaths  []string
	defines      []define
	compileUnits []string
	library      bool
	console      bool
	group        *manifest.Node
}

func newBase(p *project.Project, name, dirName string) base {
	return base{
		proj:      p,
		name:      name,
		targetDir: filepath.Join(p.Dir(), "Builds", dirName),
	}
}

func (b *base) Name() string      { return b.name }
func (b *base) TargetDir() string { return b.targetDir }

func (b *base) AddSearchPath(dir string) {
	for _, p := range b.searchPaths {
		if p == dir {
			return
		}
	}
	b.searchPaths = append(b.searchPaths, dir)
}

func (b *base) AddDefine(name, value string) {
	for i, d := range b.defines {
		if d.name == name {
			b.defines[i].value = value
			return
		}
	}
	b.defines = append(b.defines, define{name, value})
}

func (b *base) AddCompileUnit(path string) {
	path = filepath.Clean(path)
	for _, u := range b.compileUnits {
		if u == path {
			return
		}
	}
	b.compileUnits = append(b.compileUnits, path)
}

func (b *base) SetLibrary(lib bool)     { b.library = lib }
func (b *base) SetConsole(console bool) { b.console = console }

func (b *base) SetGeneratedGroup(g *manifest.Node) { b.group = g }

// sources returns everything that needs compiling: prepared compile units
// plus compilable files out of the generated manifest
func (b *base) sources() []string {
	units := make([]string, len(b.compileUnits))
	copy(units, b.compileUnits)

	if b.group != nil {
		for _, f := range b.group.Files() {
			if isCompileUnit(f) {
				found := false
				for _, u := range units {
					if u == f {
						found = true
						break
					}
				}
				if !found {
					units = append(units, f)
				}
			}
		}
	}
	return units
}

func isCompileUnit(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cpp", ".cc", ".cxx", ".c", ".mm", ".m":
		return true
	}
	return false
}

func isCxx(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cpp", ".cc", ".cxx", ".mm":
		return true
	}
	return false
}

// writeTargetFile writes a build file if its content changed, translating
// failures into SaveErrors
func (b *base) writeTargetFile(name string, content []byte) error {
	path := filepath.Join(b.targetDir, name)

	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, content) {
		return nil
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return saveErrorf("can't write to file: %s", path)
	}
	return nil
}
