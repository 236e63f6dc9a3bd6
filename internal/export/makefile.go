package export

import (
	"path/filepath"
	"strings"

	"github.com/croft-build/croft/internal/project"
)

type makefileExporter struct {
	base
}

func newMakefile(p *project.Project) *makefileExporter {
	return &makefileExporter{base: newBase(p, "Makefile", "Makefile")}
}

func (g *makefileExporter) outputName() string {
	if g.library {
		return "lib" + g.proj.Name() + ".a"
	}
	return g.proj.Name()
}

func (g *makefileExporter) Create() error {
	var sb strings.Builder

	writeln(&sb, "# Makefile generated by croft, do not edit by hand")
	writeln(&sb)
	writeln(&sb, "CXX ?= ", FindCompiler(true))
	writeln(&sb, "CC ?= ", FindCompiler(false))

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
	writeln(&sb, "CPPFLAGS += ", strings.Join(flags, " "))
	writeln(&sb)

	var objs []string
	srcs := g.sources()
	for _, src := range srcs {
		rel, err := filepath.Rel(g.proj.Dir(), src)
		if err != nil {
			rel = filepath.Base(src)
		}
		objs = append(objs, filepath.ToSlash(filepath.Join("CroftFiles", rel))+".o")
	}

	out := g.outputName()
	writeln(&sb, "OBJECTS := \\")
	for i, obj := range objs {
		if i < len(objs)-1 {
			writeln(&sb, "  ", obj, " \\")
		} else {
			writeln(&sb, "  ", obj)
		}
	}
	writeln(&sb)

	writeln(&sb, "all: ", out)
	writeln(&sb)
	write(&sb, out, ": $(OBJECTS)\n")
	if g.library {
		writeln(&sb, "\tar rcs $@ $(OBJECTS)")
	} else {
		writeln(&sb, "\t$(CXX) -o $@ $(OBJECTS) $(LDFLAGS)")
	}
	writeln(&sb)

	for i, src := range srcs {
		write(&sb, objs[i], ": ", src, "\n")
		writeln(&sb, "\t@mkdir -p $(dir $@)")
		if isCxx(src) {
			writeln(&sb, "\t$(CXX) $(CPPFLAGS) $(CXXFLAGS) -c $< -o $@")
		} else {
			writeln(&sb, "\t$(CC) $(CPPFLAGS) $(CFLAGS) -c $< -o $@")
		}
		writeln(&sb)
	}

	writeln(&sb, "clean:")
	writeln(&sb, "\trm -rf CroftFiles ", out)
	writeln(&sb)
	writeln(&sb, ".PHONY: all clean")

	return g.writeTargetFile("Makefile", []byte(sb.String()))
}
