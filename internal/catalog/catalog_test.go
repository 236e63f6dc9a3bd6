package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/croft-build/croft/internal/project"
)

const coreManifest = `
[module]
id = "croft_core"
description = "Core framework classes"
sources = ["*.cpp"]

[[flags]]
symbol = "CROFT_ASSERTIONS"
description = "Enable runtime assertions"

[[flags]]
symbol = "CROFT_LOGGING"
description = "Enable the logging subsystem"
`

const dspManifest = `
[module]
id = "croft_dsp"
header = "croft_dsp_main.h"
`

func writeModule(t *testing.T, catalogDir, id, manifest string, extraFiles ...string) string {
	t.Helper()
	dir := filepath.Join(catalogDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestFilename), []byte(manifest), 0644); err != nil {
		t.Fatal(err)
	}
	for _, f := range extraFiles {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("// stub\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func writeProject(t *testing.T, contents string) *project.Project {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, project.Filename)
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	p, err := project.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return p
}

func TestLoadModule(t *testing.T) {
	catalogDir := t.TempDir()
	dir := writeModule(t, catalogDir, "croft_core", coreManifest, "core.cpp")

	m, err := LoadModule(dir)
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	if m.ID() != "croft_core" {
		t.Errorf("ID = %q", m.ID())
	}
	if m.Description() != "Core framework classes" {
		t.Errorf("Description = %q", m.Description())
	}
}

func TestLoadModuleRejectsMissingID(t *testing.T) {
	catalogDir := t.TempDir()
	dir := writeModule(t, catalogDir, "broken", "[module]\ndescription = \"no id\"\n")

	if _, err := LoadModule(dir); err == nil {
		t.Error("expected an error for a manifest without an id")
	}
}

func TestConfigFlagsDeclarationOrder(t *testing.T) {
	catalogDir := t.TempDir()
	dir := writeModule(t, catalogDir, "croft_core", coreManifest)
	m, err := LoadModule(dir)
	if err != nil {
		t.Fatal(err)
	}

	p := writeProject(t, `
modules = ["croft_core"]
exporters = ["ninja"]

[project]
name = "Demo"
version = "1.0.0"
uid = "a1b2c3d4e5f60718"
kind = "gui-app"

[flags]
CROFT_LOGGING = "disabled"
`)

	flags := m.ConfigFlags(p)
	if len(flags) != 2 {
		t.Fatalf("got %d flags, want 2", len(flags))
	}
	if flags[0].Symbol != "CROFT_ASSERTIONS" || flags[1].Symbol != "CROFT_LOGGING" {
		t.Errorf("flags out of declaration order: %s, %s", flags[0].Symbol, flags[1].Symbol)
	}
	if flags[0].State != project.FlagDefault {
		t.Errorf("CROFT_ASSERTIONS state = %v, want default", flags[0].State)
	}
	if flags[1].State != project.FlagDisabled {
		t.Errorf("CROFT_LOGGING state = %v, want disabled", flags[1].State)
	}
}

func TestWriteIncludes(t *testing.T) {
	catalogDir := t.TempDir()

	core, err := LoadModule(writeModule(t, catalogDir, "croft_core", coreManifest))
	if err != nil {
		t.Fatal(err)
	}
	dsp, err := LoadModule(writeModule(t, catalogDir, "croft_dsp", dspManifest))
	if err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	core.WriteIncludes(&sb)
	dsp.WriteIncludes(&sb)

	want := "#include <croft_core/croft_core.h>\n#include <croft_dsp/croft_dsp_main.h>\n"
	if sb.String() != want {
		t.Errorf("includes =\n%s\nwant\n%s", sb.String(), want)
	}
}

func TestOpenMissingDirIsEmpty(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(c.IDs()) != 0 {
		t.Errorf("expected an empty catalog, got %v", c.IDs())
	}
}

func TestResolveDeclarationOrder(t *testing.T) {
	p := writeProject(t, `
modules = ["croft_dsp", "croft_core"]
exporters = ["ninja"]

[project]
name = "Demo"
version = "1.0.0"
uid = "a1b2c3d4e5f60718"
kind = "gui-app"
`)

	catalogDir := filepath.Join(p.Dir(), DefaultDirName)
	writeModule(t, catalogDir, "croft_core", coreManifest)
	writeModule(t, catalogDir, "croft_dsp", dspManifest)

	c, err := Open(catalogDir)
	if err != nil {
		t.Fatal(err)
	}

	modules, err := c.Resolve(p)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(modules) != 2 {
		t.Fatalf("got %d modules, want 2", len(modules))
	}
	if modules[0].ID() != "croft_dsp" || modules[1].ID() != "croft_core" {
		t.Errorf("modules out of project order: %s, %s", modules[0].ID(), modules[1].ID())
	}
}

func TestResolveMissingUnpinnedModule(t *testing.T) {
	p := writeProject(t, `
modules = ["croft_gui"]
exporters = ["ninja"]

[project]
name = "Demo"
version = "1.0.0"
uid = "a1b2c3d4e5f60718"
kind = "gui-app"
`)

	c, err := Open(filepath.Join(p.Dir(), DefaultDirName))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Resolve(p); err == nil {
		t.Error("expected an error for a missing module with no pinned source")
	}
}

func TestResolveFetchesFromLocalSource(t *testing.T) {
	srcDir := writeModule(t, t.TempDir(), "croft_dsp", dspManifest, "dsp.cpp")

	p := writeProject(t, `
modules = ["croft_dsp"]
exporters = ["ninja"]

[project]
name = "Demo"
version = "1.0.0"
uid = "a1b2c3d4e5f60718"
kind = "gui-app"

[module-sources]
croft_dsp = "`+filepath.ToSlash(srcDir)+`"
`)

	catalogDir := filepath.Join(p.Dir(), DefaultDirName)
	c, err := Open(catalogDir)
	if err != nil {
		t.Fatal(err)
	}

	modules, err := c.Resolve(p)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(modules) != 1 || modules[0].ID() != "croft_dsp" {
		t.Fatalf("unexpected resolve result: %v", modules)
	}
	if _, err := os.Stat(filepath.Join(catalogDir, "croft_dsp", ManifestFilename)); err != nil {
		t.Errorf("module was not copied into the catalog: %v", err)
	}
}

func TestFetchModuleRejectsArchiveURLs(t *testing.T) {
	err := fetchModule("https://example.com/croft_dsp.zip", t.TempDir())
	if err != errArchiveSource {
		t.Errorf("err = %v, want errArchiveSource", err)
	}
}

func TestFetchModuleRejectsEmptySource(t *testing.T) {
	if err := fetchModule("", t.TempDir()); err != errIllegalSource {
		t.Errorf("err = %v, want errIllegalSource", err)
	}
}

func TestParseGitURL(t *testing.T) {
	cases := []struct {
		raw         string
		cleanURL    string
		branch      string
		commitOrTag string
	}{
		{"https://github.com/someone/croft_dsp", "https://github.com/someone/croft_dsp.git", "", ""},
		{"https://github.com/someone/croft_dsp.git", "https://github.com/someone/croft_dsp.git", "", ""},
		{"https://github.com/someone/croft_dsp@main", "https://github.com/someone/croft_dsp.git", "main", ""},
		{"https://github.com/someone/croft_dsp#1.2.0", "https://github.com/someone/croft_dsp.git", "", "1.2.0"},
		{"https://github.com/someone/croft_dsp@dev#12345abc", "https://github.com/someone/croft_dsp.git", "dev", "12345abc"},
	}

	for _, c := range cases {
		got := parseGitURL(c.raw)
		if got.cleanURL != c.cleanURL || got.branch != c.branch || got.commitOrTag != c.commitOrTag {
			t.Errorf("parseGitURL(%q) = %+v", c.raw, got)
		}
	}
}
