package saver

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/croft-build/croft/internal/catalog"
	"github.com/croft-build/croft/internal/project"
)

func loadTestModule(t *testing.T, id, manifest string) *catalog.Module {
	t.Helper()
	dir := filepath.Join(t.TempDir(), id)
	writeTestFile(t, filepath.Join(dir, catalog.ManifestFilename), manifest)
	m, err := catalog.LoadModule(dir)
	if err != nil {
		t.Fatalf("LoadModule: %v", err)
	}
	return m
}

const coreModuleToml = `
[module]
id = "croft_core"

[[flags]]
symbol = "CROFT_ASSERTIONS"

[[flags]]
symbol = "CROFT_LOGGING"
`

const dspModuleToml = `
[module]
id = "croft_dsp"

[[flags]]
symbol = "CROFT_DSP_USE_SIMD"
`

const guiModuleToml = `
[module]
id = "croft_gui"
`

func TestGenerateAppConfig(t *testing.T) {
	p := testProject(t, defaultProjectToml)
	p.SetFlagState("CROFT_ASSERTIONS", project.FlagEnabled)
	p.SetFlagState("CROFT_LOGGING", project.FlagDisabled)

	modules := []*catalog.Module{
		loadTestModule(t, "croft_core", coreModuleToml),
		loadTestModule(t, "croft_gui", guiModuleToml),
		loadTestModule(t, "croft_dsp", dspModuleToml),
	}

	content := GenerateAppConfig(p, modules, "")

	guard := "__CROFT_APPCONFIG_" + strings.ToUpper(p.UID()) + "__"
	if !strings.Contains(content, "#ifndef "+guard+"\n#define "+guard+"\n") {
		t.Error("missing or malformed header guard")
	}
	if !strings.HasSuffix(content, "#endif  // "+guard+"\n") {
		t.Error("missing closing guard comment")
	}

	// availability macros line up on the longest id plus five spaces
	for _, want := range []string{
		"#define CROFT_MODULE_AVAILABLE_croft_core      1\n",
		"#define CROFT_MODULE_AVAILABLE_croft_gui       1\n",
		"#define CROFT_MODULE_AVAILABLE_croft_dsp       1\n",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("missing availability macro line %q in:\n%s", want, content)
		}
	}

	for _, want := range []string{
		"// croft_core flags:",
		"#define    CROFT_ASSERTIONS 1\n",
		"#define    CROFT_LOGGING 0\n",
		"// croft_dsp flags:",
		"//#define  CROFT_DSP_USE_SIMD\n",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("missing %q in:\n%s", want, content)
		}
	}

	if strings.Contains(content, "// croft_gui flags:") {
		t.Error("a module without flags must not get a flag block")
	}
}

func TestGenerateAppConfigIsDeterministic(t *testing.T) {
	p := testProject(t, defaultProjectToml)
	modules := []*catalog.Module{
		loadTestModule(t, "croft_core", coreModuleToml),
		loadTestModule(t, "croft_dsp", dspModuleToml),
	}

	if GenerateAppConfig(p, modules, "") != GenerateAppConfig(p, modules, "") {
		t.Error("two runs over the same inputs differ")
	}
}

func TestGenerateAppConfigFlagToggleChangesOneLine(t *testing.T) {
	p := testProject(t, defaultProjectToml)
	modules := []*catalog.Module{loadTestModule(t, "croft_core", coreModuleToml)}

	before := GenerateAppConfig(p, modules, "")
	p.SetFlagState("CROFT_LOGGING", project.FlagEnabled)
	after := GenerateAppConfig(p, modules, "")

	beforeLines := strings.Split(before, "\n")
	afterLines := strings.Split(after, "\n")
	if len(beforeLines) != len(afterLines) {
		t.Fatalf("line count changed: %d vs %d", len(beforeLines), len(afterLines))
	}

	changed := 0
	for i := range beforeLines {
		if beforeLines[i] != afterLines[i] {
			changed++
		}
	}
	if changed != 1 {
		t.Errorf("enabling one flag changed %d lines, want 1", changed)
	}
}

func TestGenerateAppConfigExtraContent(t *testing.T) {
	p := testProject(t, defaultProjectToml)

	content := GenerateAppConfig(p, nil, "#define CUSTOM_SETTING 42\n\n")
	if !strings.Contains(content, "\n#define CUSTOM_SETTING 42\n") {
		t.Errorf("extra content missing or not trimmed:\n%s", content)
	}
}

func TestGenerateAppHeader(t *testing.T) {
	p := testProject(t, defaultProjectToml)
	modules := []*catalog.Module{
		loadTestModule(t, "croft_core", coreModuleToml),
		loadTestModule(t, "croft_dsp", dspModuleToml),
	}

	content := GenerateAppHeader(p, modules, true, true)

	guard := "__APPHEADERFILE_" + strings.ToUpper(p.UID()) + "__"
	if !strings.Contains(content, "#ifndef "+guard+"\n#define "+guard+"\n") {
		t.Error("missing or malformed header guard")
	}

	for _, want := range []string{
		`#include "AppConfig.h"` + "\n",
		"#include <croft_core/croft_core.h>\n",
		"#include <croft_dsp/croft_dsp.h>\n",
		`#include "BinaryData.h"` + "\n",
		"#if ! DONT_SET_USING_CROFT_NAMESPACE\n",
		" using namespace croft;\n",
		`const char* const  projectName    = "Demo";`,
		`const char* const  versionString  = "1.2.3";`,
		"const int          versionNumber  = 0x10203;",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("missing %q in:\n%s", want, content)
		}
	}

	coreIdx := strings.Index(content, "croft_core/")
	dspIdx := strings.Index(content, "croft_dsp/")
	if coreIdx < 0 || dspIdx < 0 || coreIdx > dspIdx {
		t.Error("module includes are not in resolution order")
	}
}

func TestGenerateAppHeaderWithoutConfigOrData(t *testing.T) {
	p := testProject(t, defaultProjectToml)

	content := GenerateAppHeader(p, nil, false, false)
	if strings.Contains(content, `#include "AppConfig.h"`) {
		t.Error("config include emitted without a config header")
	}
	if strings.Contains(content, `#include "BinaryData.h"`) {
		t.Error("binary data include emitted without binary data")
	}
}
