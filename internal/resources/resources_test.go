package resources

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/croft-build/croft/internal/project"
)

func TestIdentifierFor(t *testing.T) {
	cases := []struct {
		filename string
		taken    []string
		want     string
	}{
		{"icon.png", nil, "icon_png"},
		{"icon-small.png", nil, "iconsmall_png"},
		{"some file.txt", nil, "somefile_txt"},
		{"noext", nil, "noext"},
		{"1stImage.png", nil, "resource_1stImage_png"},
		{"icon.png", []string{"icon_png"}, "icon_png2"},
		{"icon.png", []string{"icon_png", "icon_png2"}, "icon_png3"},
	}

	for _, c := range cases {
		if got := identifierFor(c.filename, c.taken); got != c.want {
			t.Errorf("identifierFor(%q, %v) = %q, want %q", c.filename, c.taken, got, c.want)
		}
	}
}

func testProject(t *testing.T, resourcePatterns string) *project.Project {
	t.Helper()
	dir := t.TempDir()
	contents := `
exporters = ["ninja"]
resources = [` + resourcePatterns + `]

[project]
name = "Demo"
version = "1.0.0"
uid = "a1b2c3d4e5f60718"
kind = "gui-app"
`
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

func TestGenerateEmpty(t *testing.T) {
	p := testProject(t, "")

	res, err := Generate(p)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Count != 0 || len(res.Cpp) != 0 || len(res.Header) != 0 {
		t.Errorf("expected an empty result, got count=%d", res.Count)
	}
}

func TestGenerate(t *testing.T) {
	p := testProject(t, `"Assets/**/*.bin"`)

	assets := filepath.Join(p.Dir(), "Assets")
	if err := os.MkdirAll(filepath.Join(assets, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(assets, "one.bin"), []byte{1, 2, 3}, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(assets, "sub", "two.bin"), []byte{4, 5}, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(assets, "skipped.txt"), []byte("no"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := Generate(p)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Count != 2 {
		t.Fatalf("Count = %d, want 2", res.Count)
	}

	header := string(res.Header)
	for _, want := range []string{
		"namespace BinaryData",
		"extern const char*  one_bin;",
		"const int           one_binSize = 3;",
		"extern const char*  two_bin;",
		"const int           two_binSize = 2;",
	} {
		if !strings.Contains(header, want) {
			t.Errorf("header is missing %q:\n%s", want, header)
		}
	}

	cpp := string(res.Cpp)
	for _, want := range []string{
		`#include "BinaryData.h"`,
		"1,2,3,0,0};",
		"4,5,0,0};",
		"const char* BinaryData::one_bin",
		"const char* BinaryData::two_bin",
	} {
		if !strings.Contains(cpp, want) {
			t.Errorf("cpp is missing %q:\n%s", want, cpp)
		}
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	p := testProject(t, `"*.bin"`)
	for _, name := range []string{"b.bin", "a.bin", "c.bin"} {
		if err := os.WriteFile(filepath.Join(p.Dir(), name), []byte{9}, 0644); err != nil {
			t.Fatal(err)
		}
	}

	first, err := Generate(p)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Generate(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(first.Cpp) != string(second.Cpp) || string(first.Header) != string(second.Header) {
		t.Error("two runs over the same inputs produced different output")
	}

	// alphabetical regardless of pattern match order
	aIdx := strings.Index(string(first.Header), "a_bin")
	bIdx := strings.Index(string(first.Header), "b_bin")
	if aIdx < 0 || bIdx < 0 || aIdx > bIdx {
		t.Error("resources are not emitted in sorted order")
	}
}
