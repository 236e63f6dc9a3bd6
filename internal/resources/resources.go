// Package resources turns a project's binary resource files into an
// embeddable C++ source/header pair. It only produces content; writing it
// out (and registering it) is the saver's job.
package resources

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/croft-build/croft/internal/project"
)

const (
	CppFilename    = "BinaryData.cpp"
	HeaderFilename = "BinaryData.h"

	className = "BinaryData"
)

// Result is the generated pair. Count is zero when the project lists no
// resources (or its patterns match nothing), in which case Cpp and Header
// are empty and nothing should be written.
type Result struct {
	Cpp    []byte
	Header []byte
	Count  int
}

// Generate globs the project's resource patterns (relative to the project
// directory) and renders the embedded data pair
func Generate(p *project.Project) (*Result, error) {
	files, err := collect(p)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return &Result{}, nil
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = identifierFor(filepath.Base(f), names[:i])
	}

	var cpp, header strings.Builder
	writeHeader(&header, files, names)
	if err := writeCpp(&cpp, files, names); err != nil {
		return nil, err
	}

	return &Result{
		Cpp:    []byte(cpp.String()),
		Header: []byte(header.String()),
		Count:  len(files),
	}, nil
}

func collect(p *project.Project) ([]string, error) {
	fsys := os.DirFS(p.Dir())

	var files []string
	seen := make(map[string]bool)
	for _, pat := range p.Resources() {
		matches, err := doublestar.Glob(fsys, filepath.ToSlash(pat), doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("bad resource pattern %q: %w", pat, err)
		}
		for _, match := range matches {
			abs := filepath.Join(p.Dir(), match)
			if !seen[abs] {
				seen[abs] = true
				files = append(files, abs)
			}
		}
	}

	// pattern order isn't stable across filesystems, the output must be
	sort.Strings(files)
	return files, nil
}

// identifierFor converts a filename into a unique C identifier, e.g.
// "icon-small.png" becomes "iconsmall_png"
func identifierFor(filename string, taken []string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	keep := func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}
	name := strings.Map(keep, base)
	if ext != "" {
		name += "_" + strings.Map(keep, ext)
	}
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "resource_" + name
	}

	candidate := name
	for n := 2; contains(taken, candidate); n++ {
		candidate = fmt.Sprintf("%s%d", name, n)
	}
	return candidate
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func writeHeader(sb *strings.Builder, files, names []string) {
	sb.WriteString("/* (Auto-generated binary data file). */\n\n")
	sb.WriteString("#ifndef BINARYDATA_H_INCLUDED\n#define BINARYDATA_H_INCLUDED\n\n")
	sb.WriteString("namespace " + className + "\n{\n")
	for i, f := range files {
		fmt.Fprintf(sb, "    extern const char*  %s;\n", names[i])
		fmt.Fprintf(sb, "    const int           %sSize = %d;\n", names[i], fileSizeOrZero(f))
	}
	sb.WriteString("}\n\n#endif\n")
}

func writeCpp(sb *strings.Builder, files, names []string) error {
	sb.WriteString("/* (Auto-generated binary data file). */\n\n")
	sb.WriteString("#include \"" + HeaderFilename + "\"\n\n")

	for i, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return fmt.Errorf("can't read resource file %s: %w", f, err)
		}

		fmt.Fprintf(sb, "//================== %s ==================\n", filepath.Base(f))
		fmt.Fprintf(sb, "static const unsigned char temp_binary_data_%d[] =\n{", i)
		for j, b := range data {
			if j%32 == 0 {
				sb.WriteString("\n")
			}
			fmt.Fprintf(sb, "%d,", b)
		}
		sb.WriteString("0,0};\n\n")
		fmt.Fprintf(sb, "const char* %s::%s = (const char*) temp_binary_data_%d;\n\n",
			className, names[i], i)
	}
	return nil
}

func fileSizeOrZero(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
