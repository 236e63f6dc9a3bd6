package saver

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/croft-build/croft/internal/manifest"
	"github.com/croft-build/croft/internal/msg"
)

// SaveGeneratedFile writes content to a path relative to the generated-code
// directory and registers the file in the generated-files group. This is the
// single choke-point through which every generation stage touches the
// filesystem. Returns nil (and records an error) on failure.
func (s *Saver) SaveGeneratedFile(relPath string, content []byte) *manifest.Node {
	file := filepath.Join(s.generatedDir, relPath)

	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		s.errors = append(s.errors, "couldn't create folder: "+filepath.Dir(file))
		return nil
	}

	if !s.replaceFileIfDifferent(file, content) {
		return nil
	}

	return s.addFileToGeneratedGroup(file)
}

// replaceFileIfDifferent writes content only when it differs byte-for-byte
// from what's on disk; matching content means no mutation and no timestamp
// change. Returns false (and records an error) when a needed write fails.
func (s *Saver) replaceFileIfDifferent(file string, content []byte) bool {
	existing, err := os.ReadFile(file)
	if err == nil && bytes.Equal(existing, content) {
		return true
	}

	if err == nil && msg.Verbose {
		dmp := diffmatchpatch.New()
		diffs := dmp.DiffMain(string(existing), string(content), false)
		msg.Detail("rewriting %s:\n%s", file, dmp.DiffPrettyText(diffs))
	}

	if werr := os.WriteFile(file, content, 0644); werr != nil {
		s.errors = append(s.errors, "can't write to file: "+file)
		return false
	}
	return true
}

// addFileToGeneratedGroup registers a written file; registering the same
// path twice returns the existing entry
func (s *Saver) addFileToGeneratedGroup(file string) *manifest.Node {
	if item := s.generated.FindFile(file); item != nil {
		return item
	}
	return s.generated.AddFile(file)
}

// Errors returns the failures recorded so far during this save
func (s *Saver) Errors() []string { return s.errors }

func (s *Saver) firstError() error {
	if len(s.errors) == 0 {
		return nil
	}
	return errors.New(s.errors[0])
}
