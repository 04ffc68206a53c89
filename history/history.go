// Package history keeps per-package git snapshots of accepted source trees
package history

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/saracen/walker"

	"github.com/mentors-dev/importer/deb"
	"github.com/mentors-dev/importer/utils"
)

// Store archives the extracted source tree of an accepted upload
type Store interface {
	// Commit snapshots the source tree, returning an opaque reference
	Commit(ctx context.Context, changes *deb.Changes, source *deb.Source) (ref string, err error)
}

// NullStore is used when history storage is not configured
type NullStore struct{}

// Commit does nothing
func (NullStore) Commit(context.Context, *deb.Changes, *deb.Source) (string, error) {
	return "", nil
}

// GitStore keeps one git repository per source package, each accepted
// upload becomes a commit
type GitStore struct {
	baseDir string
	runner  *utils.Runner
}

// NewGitStore creates a git-backed history store rooted at baseDir
func NewGitStore(baseDir string, runner *utils.Runner) *GitStore {
	return &GitStore{baseDir: baseDir, runner: runner}
}

// Commit replaces the package repository's working tree with the extracted
// source and commits it
func (s *GitStore) Commit(ctx context.Context, changes *deb.Changes, source *deb.Source) (string, error) {
	repoDir := filepath.Join(s.baseDir, changes.Source)

	if _, err := os.Stat(filepath.Join(repoDir, ".git")); os.IsNotExist(err) {
		if err = os.MkdirAll(repoDir, 0755); err != nil {
			return "", err
		}
		if _, err = s.runner.Run(ctx, "git", repoDir, "init", "--quiet"); err != nil {
			return "", errors.Wrap(err, "unable to initialize history repository")
		}
	}

	if err := s.clearWorkingTree(repoDir); err != nil {
		return "", err
	}
	if err := copyTree(source.ExtractDir, repoDir); err != nil {
		return "", err
	}

	if _, err := s.runner.Run(ctx, "git", repoDir, "add", "--all"); err != nil {
		return "", errors.Wrap(err, "unable to stage source snapshot")
	}

	message := fmt.Sprintf("%s %s", changes.Source, changes.Version)
	_, err := s.runner.Run(ctx, "git", repoDir,
		"-c", "user.name=importer", "-c", "user.email=importer@localhost",
		"commit", "--quiet", "-m", message)
	if err != nil {
		exitErr, ok := err.(*utils.ExitError)
		if !ok || !bytes.Contains(exitErr.Output, []byte("nothing to commit")) {
			return "", errors.Wrap(err, "unable to commit source snapshot")
		}
		log.Debug().Str("package", changes.Source).Msg("snapshot identical to previous upload")
	}

	head, err := s.runner.Run(ctx, "git", repoDir, "rev-parse", "HEAD")
	if err != nil {
		return "", errors.Wrap(err, "unable to resolve snapshot reference")
	}

	return strings.TrimSpace(string(head)), nil
}

// clearWorkingTree removes everything except .git so deleted files disappear
// from the next snapshot
func (s *GitStore) clearWorkingTree(repoDir string) error {
	entries, err := os.ReadDir(repoDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.Name() == ".git" {
			continue
		}
		if err = os.RemoveAll(filepath.Join(repoDir, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}

// copyTree copies the extracted source into the repository working tree
func copyTree(srcDir, dstDir string) error {
	return walker.Walk(srcDir, func(path string, info os.FileInfo) error {
		relative, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if relative == "." {
			return nil
		}

		target := filepath.Join(dstDir, relative)

		if info.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !info.Mode().IsRegular() {
			// symlinks and specials are not part of the snapshot
			return nil
		}

		if err = os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		if err = utils.CopyFile(path, target); err != nil {
			return err
		}

		return os.Chmod(target, info.Mode().Perm())
	})
}
