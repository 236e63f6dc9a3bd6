package saver

import (
	"strings"

	"github.com/croft-build/croft/internal/catalog"
	"github.com/croft-build/croft/internal/project"
)

const sectionBreak = "//=============================================================================="

// autoGenWarningComment opens the banner every generated header starts with.
// The warning sentence is fixed; code elsewhere greps for it.
func autoGenWarningComment(sb *strings.Builder) {
	sb.WriteString("/*\n\n")
	sb.WriteString("    IMPORTANT! This file is auto-generated each time you save your\n")
	sb.WriteString("    project - if you alter its contents, your changes may be overwritten!\n\n")
}

func findLongestModuleID(modules []*catalog.Module) int {
	longest := 0
	for _, m := range modules {
		if len(m.ID()) > longest {
			longest = len(m.ID())
		}
	}
	return longest
}

// GenerateAppConfig renders the project's configuration header: one
// availability macro per module, then each module's config flags resolved
// against the project (unset flags stay visible but commented out). The
// output is deterministic for a given project and module list, which is
// what makes the diffing write primitive worthwhile.
func GenerateAppConfig(p *project.Project, modules []*catalog.Module, extraContent string) string {
	var sb strings.Builder

	autoGenWarningComment(&sb)
	sb.WriteString("    If you want to change any of these values, re-save your project with\n")
	sb.WriteString("    croft rather than editing this file directly!\n\n")
	sb.WriteString("    Any commented-out settings will assume their default values.\n\n")
	sb.WriteString("*/\n\n")

	headerGuard := "__CROFT_APPCONFIG_" + strings.ToUpper(p.UID()) + "__"
	sb.WriteString("#ifndef " + headerGuard + "\n")
	sb.WriteString("#define " + headerGuard + "\n\n")
	sb.WriteString(sectionBreak + "\n")

	longestID := findLongestModuleID(modules)

	for _, m := range modules {
		sb.WriteString("#define CROFT_MODULE_AVAILABLE_" + m.ID())
		sb.WriteString(strings.Repeat(" ", longestID+5-len(m.ID())))
		sb.WriteString(" 1\n")
	}

	sb.WriteString("\n")

	lastFlagged := -1
	for j, m := range modules {
		if len(m.ConfigFlags(p)) > 0 {
			lastFlagged = j
		}
	}

	for j, m := range modules {
		flags := m.ConfigFlags(p)
		if len(flags) == 0 {
			continue
		}

		sb.WriteString(sectionBreak + "\n")
		sb.WriteString("// " + m.ID() + " flags:\n\n")

		for _, f := range flags {
			switch f.State {
			case project.FlagEnabled:
				sb.WriteString("#define    " + f.Symbol + " 1")
			case project.FlagDisabled:
				sb.WriteString("#define    " + f.Symbol + " 0")
			default:
				sb.WriteString("//#define  " + f.Symbol)
			}
			sb.WriteString("\n")
		}

		if j < lastFlagged {
			sb.WriteString("\n")
		}
	}

	if extraContent != "" {
		sb.WriteString("\n" + strings.TrimRight(extraContent, " \t\r\n") + "\n")
	}

	sb.WriteString("\n#endif  // " + headerGuard + "\n")

	return sb.String()
}
