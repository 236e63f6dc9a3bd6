package manifest_test

import (
	"testing"

	"github.com/croft-build/croft/internal/manifest"
)

func TestAddFileIsIdempotent(t *testing.T) {
	root := manifest.NewGroup("Generated")

	first := root.AddFile("/tmp/proj/AppConfig.h")
	second := root.AddFile("/tmp/proj/AppConfig.h")

	if first != second {
		t.Error("adding the same path twice should return the existing entry")
	}
	if root.NumChildren() != 1 {
		t.Errorf("expected 1 child, got %d", root.NumChildren())
	}
}

func TestAddFileDeduplicatesAcrossGroups(t *testing.T) {
	root := manifest.NewGroup("Generated")
	sub := root.AddGroup("Resources")

	first := sub.AddFile("/tmp/proj/BinaryData.cpp")
	second := root.AddFile("/tmp/proj/BinaryData.cpp")

	if first != second {
		t.Error("a path already present in a subgroup should not be added again")
	}
	if root.NumChildren() != 1 {
		t.Errorf("expected only the subgroup under the root, got %d children", root.NumChildren())
	}
}

func TestAddGroupReturnsExisting(t *testing.T) {
	root := manifest.NewGroup("Generated")
	a := root.AddGroup("Resources")
	b := root.AddGroup("Resources")
	if a != b {
		t.Error("AddGroup should return the existing group for a known name")
	}
}

func TestAddFileOnFileNodePanics(t *testing.T) {
	root := manifest.NewGroup("Generated")
	file := root.AddFile("/tmp/proj/AppConfig.h")

	defer func() {
		if recover() == nil {
			t.Error("AddFile on a file node should panic")
		}
	}()
	file.AddFile("/tmp/proj/other.h")
}

func TestSortRecursively(t *testing.T) {
	root := manifest.NewGroup("Generated")
	root.AddFile("/tmp/proj/zeta.h")
	sub := root.AddGroup("Resources")
	root.AddFile("/tmp/proj/Alpha.h")
	sub.AddFile("/tmp/proj/res/b.bin")
	sub.AddFile("/tmp/proj/res/A.bin")

	root.SortRecursively()

	want := []string{"Alpha.h", "Resources", "zeta.h"}
	for i, name := range want {
		if got := root.Child(i).Name(); got != name {
			t.Errorf("child %d = %q, want %q", i, got, name)
		}
	}
	if got := sub.Child(0).Name(); got != "A.bin" {
		t.Errorf("subgroup child 0 = %q, want A.bin", got)
	}
}

func TestCloneIsIsolated(t *testing.T) {
	root := manifest.NewGroup("Generated")
	root.AddFile("/tmp/proj/AppConfig.h")
	sub := root.AddGroup("Resources")
	sub.AddFile("/tmp/proj/BinaryData.cpp")

	clone := root.Clone()
	clone.AddFile("/tmp/proj/extra.cpp")
	clone.Child(1).AddFile("/tmp/proj/res/new.bin")

	if got := len(root.Files()); got != 2 {
		t.Errorf("original tree has %d files after mutating the clone, want 2", got)
	}
	if got := len(clone.Files()); got != 4 {
		t.Errorf("clone has %d files, want 4", got)
	}
}

func TestFiles(t *testing.T) {
	root := manifest.NewGroup("Generated")
	root.AddFile("/tmp/proj/AppConfig.h")
	root.AddGroup("Resources").AddFile("/tmp/proj/BinaryData.cpp")

	files := root.Files()
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
}
