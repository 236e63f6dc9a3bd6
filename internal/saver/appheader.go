package saver

import (
	"strings"

	"github.com/croft-build/croft/internal/catalog"
	"github.com/croft-build/croft/internal/project"
	"github.com/croft-build/croft/internal/resources"
)

// includeStatement renders `#include "file"` for a generated header sibling
func includeStatement(file string) string {
	return `#include "` + file + `"`
}

// cppEscape makes a string safe inside a C++ double-quoted literal
func cppEscape(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// GenerateAppHeader renders the umbrella header that application code
// includes to pull in every module, the config header and the embedded
// binary data, plus a ProjectInfo metadata block. Deterministic for a fixed
// input, like the config header.
func GenerateAppHeader(p *project.Project, modules []*catalog.Module, hasConfigHeader, hasBinaryData bool) string {
	var sb strings.Builder

	autoGenWarningComment(&sb)
	sb.WriteString("    This is the header file that your files should include in order to get all the\n")
	sb.WriteString("    Croft module headers. You should avoid including the module headers directly in\n")
	sb.WriteString("    your own source files, because that wouldn't pick up the correct configuration\n")
	sb.WriteString("    options for your app.\n\n")
	sb.WriteString("*/\n\n")

	headerGuard := "__APPHEADERFILE_" + strings.ToUpper(p.UID()) + "__"
	sb.WriteString("#ifndef " + headerGuard + "\n")
	sb.WriteString("#define " + headerGuard + "\n\n")

	if hasConfigHeader {
		sb.WriteString(includeStatement(p.ConfigHeaderName()) + "\n")
	}

	for _, m := range modules {
		m.WriteIncludes(&sb)
	}

	if hasBinaryData {
		sb.WriteString(includeStatement(resources.HeaderFilename) + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString("#if ! DONT_SET_USING_CROFT_NAMESPACE\n")
	sb.WriteString(" // If your code uses a lot of Croft classes, then this will obviously save you\n")
	sb.WriteString(" // a lot of typing, but can be disabled by setting DONT_SET_USING_CROFT_NAMESPACE.\n")
	sb.WriteString(" using namespace croft;\n")
	sb.WriteString("#endif\n\n")

	sb.WriteString("namespace ProjectInfo\n{\n")
	sb.WriteString(`    const char* const  projectName    = "` + cppEscape(p.Name()) + `";` + "\n")
	sb.WriteString(`    const char* const  versionString  = "` + cppEscape(p.Version()) + `";` + "\n")
	sb.WriteString("    const int          versionNumber  = " + p.VersionAsHex() + ";\n")
	sb.WriteString("}\n\n")

	sb.WriteString("#endif   // " + headerGuard + "\n")

	return sb.String()
}
