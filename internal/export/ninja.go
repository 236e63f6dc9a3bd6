package export

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/croft-build/croft/internal/project"
)

type ninjaExporter struct {
	base
}

func newNinja(p *project.Project) *ninjaExporter {
	return &ninjaExporter{base: newBase(p, "Ninja", "Ninja")}
}

var ninjaPathEscaper = strings.NewReplacer(":", "$:", " ", "$ ")

func ninjaQuote(s string) string { return ninjaPathEscaper.Replace(s) }

// outputName is the artifact the generated build produces
func (g *ninjaExporter) outputName() string {
	name := g.proj.Name()
	if g.library {
		if runtime.GOOS == "windows" {
			return name + ".lib"
		}
		return "lib" + name + ".a"
	}
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

func (g *ninjaExporter) cflags() string {
	var flags []string
	for _, d := range g.defines {
		if d.value != "" {
			flags = append(flags, "-D"+d.name+"="+d.value)
		} else {
			flags = append(flags, "-D"+d.name)
		}
	}
	for _, p := range g.searchPaths {
		flags = append(flags, "-I"+p)
	}
	return strings.Join(flags, " ")
}

func (g *ninjaExporter) Create() error {
	var sb strings.Builder

	writeln(&sb, "ninja_required_version = 1.1")
	writeln(&sb, "cflags = ", g.cflags())
	writeln(&sb, "cc = ", FindCompiler(false))
	writeln(&sb, "cxx = ", FindCompiler(true))
	writeln(&sb)

	write(&sb,
		`rule cc
  command = $cc $cflags -c $in -o $out
  description = CC $out
`)
	write(&sb,
		`rule cxx
  command = $cxx $cflags -c $in -o $out
  description = CXX $out
`)
	write(&sb,
		`rule link
  command = $cxx -o $out $in
  description = LINK $out
`)
	write(&sb,
		`rule ar
  command = ar rcs $out $in
  description = AR $out
`)
	writeln(&sb)

	// build object files
	var objs []string
	for _, src := range g.sources() {
		rel, err := filepath.Rel(g.proj.Dir(), src)
		if err != nil {
			rel = filepath.Base(src)
		}
		obj := ninjaQuote(filepath.ToSlash(filepath.Join("CroftFiles", rel))) + ".o"
		objs = append(objs, obj)

		rule := "cc"
		if isCxx(src) {
			rule = "cxx"
		}
		writeln(&sb, "build ", obj, ": ", rule, " ", ninjaQuote(src))
	}
	writeln(&sb)

	write(&sb, "build ", ninjaQuote(g.outputName()), ": ")
	if g.library {
		write(&sb, "ar")
	} else {
		write(&sb, "link")
	}
	for _, obj := range objs {
		write(&sb, " ", obj)
	}
	writeln(&sb)

	return g.writeTargetFile("build.ninja", []byte(sb.String()))
}
