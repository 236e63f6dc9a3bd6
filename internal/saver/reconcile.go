package saver

import (
	"os"
	"path/filepath"
)

// filesToKeep survive pruning of the generated-code directory: version
// control metadata and build-system marker files users add deliberately
var filesToKeep = []string{".svn", ".cvs", ".git", "CMakeLists.txt"}

func shouldFileBeKept(filename string) bool {
	for _, keep := range filesToKeep {
		if filename == keep {
			return true
		}
	}
	return false
}

// pruneDirectory recursively clears out a directory's contents, but leaves
// behind anything on the keep-list (and the directories containing it).
// Returns whether the directory is now empty. Deletions are deferred until
// a directory's scan finishes and run in reverse-scan order, so iteration
// never races its own removals.
func pruneDirectory(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}

	folderIsNowEmpty := true
	var toDelete []string

	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())

		if shouldFileBeKept(entry.Name()) {
			folderIsNowEmpty = false
		} else if entry.IsDir() {
			if pruneDirectory(full) {
				toDelete = append(toDelete, full)
			} else {
				folderIsNowEmpty = false
			}
		} else {
			toDelete = append(toDelete, full)
		}
	}

	for i := len(toDelete) - 1; i >= 0; i-- {
		os.RemoveAll(toDelete[i])
	}

	return folderIsNowEmpty
}
