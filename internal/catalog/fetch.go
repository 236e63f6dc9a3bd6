package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"

	"github.com/croft-build/croft/internal/msg"
)

var moduleShortcuts = map[string]string{
	"gh:": "https://github.com/",
	"gl:": "https://gitlab.com/",
	"bb:": "https://bitbucket.org/",
	"sr:": "https://sr.ht/",
	"cb:": "https://codeberg.org/",
}

const gitPrefix = "git:"

var (
	errIllegalSource  = errors.New("empty or illegal module source string")
	errArchiveSource  = errors.New("archive module sources are not supported")
	errNotAModuleRepo = errors.New("fetched repository has no " + ManifestFilename)
)

// fetchModule materializes a module source string into a directory. Sources
// are git URLs (`git:` prefix), host shortcuts (`gh:someones/croft_dsp`), or
// local paths.
func fetchModule(source, dest string) error {
	if source == "" {
		return errIllegalSource
	}

	// check for `git:` prefix, e.g. git:https://example.com/croft_dsp.git
	if rest, ok := strings.CutPrefix(source, gitPrefix); ok {
		return cloneModuleRepo(rest, dest)
	}

	// check for shortcut prefix, e.g. gh:someone/croft_dsp
	for shortcut, base := range moduleShortcuts {
		if rest, ok := strings.CutPrefix(source, shortcut); ok {
			return cloneModuleRepo(base+rest, dest)
		}
	}

	if isURL(source) {
		return errArchiveSource
	}

	// otherwise it's a local path
	return os.CopyFS(dest, os.DirFS(source))
}

func isURL(maybeURL string) bool {
	u, err := url.Parse(maybeURL)
	return err == nil && u.Scheme != "" && u.Host != ""
}

type gitURL struct {
	cleanURL    string
	branch      string
	commitOrTag string
}

// someone/croft_dsp@main#1.2.0
// someone/croft_dsp@feature-branch#12345abc
// someone/croft_dsp#12345abc
func parseGitURL(rawURL string) (res gitURL) {
	parts := strings.SplitN(rawURL, "#", 2)
	baseURL := parts[0]
	if len(parts) == 2 {
		res.commitOrTag = parts[1]
	}

	parts = strings.SplitN(baseURL, "@", 2)
	res.cleanURL = parts[0]
	if len(parts) == 2 {
		res.branch = parts[1]
	}

	if !strings.HasSuffix(res.cleanURL, ".git") {
		res.cleanURL += ".git"
	}

	return
}

// cloneModuleRepo clones a git remote into the module directory
func cloneModuleRepo(url, dest string) error {
	parsedURL := parseGitURL(url)

	cloneOptions := &git.CloneOptions{
		URL:               parsedURL.cleanURL,
		Progress:          &msg.IndentWriter{Indent: "    ", W: os.Stdout},
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	}

	if parsedURL.commitOrTag == "" {
		cloneOptions.Depth = 1 // we can do a shallow clone of the latest commit
	}

	if parsedURL.branch != "" {
		cloneOptions.ReferenceName = plumbing.NewBranchReferenceName(parsedURL.branch)
		cloneOptions.SingleBranch = true
	}

	repo, err := git.PlainClone(dest, cloneOptions)
	if err != nil {
		return err
	}

	if parsedURL.commitOrTag != "" {
		w, err := repo.Worktree()
		if err != nil {
			return fmt.Errorf("could not get worktree: %w", err)
		}

		revision := parsedURL.commitOrTag
		hash, err := repo.ResolveRevision(plumbing.Revision(revision))
		if err != nil {
			return fmt.Errorf("could not resolve revision `%s`: %w", revision, err)
		}

		err = w.Checkout(&git.CheckoutOptions{
			Hash:  *hash,
			Force: true,
		})
		if err != nil {
			return fmt.Errorf("failed to checkout `%s`: %w", revision, err)
		}
	}

	if _, err := os.Stat(filepath.Join(dest, ManifestFilename)); err != nil {
		return errNotAModuleRepo
	}

	return nil
}
