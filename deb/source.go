package deb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pborman/uuid"

	"github.com/mentors-dev/importer/utils"
)

// Source is an extracted source package tree together with its parsed
// control metadata. It owns a scratch directory and must be released
// with Remove after use.
type Source struct {
	DscPath    string
	WorkDir    string
	ExtractDir string

	Changelog *ChangelogEntry
	Copyright *Copyright
	Control   *Control

	runner  *utils.Runner
	command string
}

// NewSource prepares extraction of the package described by the .dsc
func NewSource(dscPath string, runner *utils.Runner, command string) (*Source, error) {
	workDir := filepath.Join(os.TempDir(), "importer-source-"+uuid.NewRandom().String())
	err := os.MkdirAll(workDir, 0755)
	if err != nil {
		return nil, err
	}

	return &Source{
		DscPath: dscPath,
		WorkDir: workDir,
		runner:  runner,
		command: command,
	}, nil
}

// Extract unpacks the source package into the scratch directory
func (s *Source) Extract(ctx context.Context) error {
	target := filepath.Join(s.WorkDir, "extracted")

	output, err := s.runner.Run(ctx, s.command, s.WorkDir, "-x", "--no-check", s.DscPath, target)
	if err == utils.ErrToolNotFound {
		return &SourceError{Reason: "source extraction tool is not installed"}
	}
	if err == utils.ErrToolTimedOut {
		return &SourceError{Reason: "source extraction timed out", Output: string(output)}
	}
	if err != nil {
		return &SourceError{Reason: fmt.Sprintf("unable to extract %s", filepath.Base(s.DscPath)),
			Output: string(output)}
	}

	s.ExtractDir = target
	return nil
}

// ParseControlFiles parses changelog, copyright & control from the extracted tree
func (s *Source) ParseControlFiles() error {
	if s.ExtractDir == "" {
		return &SourceError{Reason: "source package has not been extracted"}
	}

	var err error

	s.Changelog, err = NewChangelogFromFile(filepath.Join(s.ExtractDir, "debian", "changelog"))
	if err != nil {
		return err
	}

	s.Copyright, err = NewCopyrightFromFile(filepath.Join(s.ExtractDir, "debian", "copyright"))
	if err != nil {
		return err
	}

	s.Control, err = NewControlFromFile(filepath.Join(s.ExtractDir, "debian", "control"))
	if err != nil {
		return err
	}

	return nil
}

// HasFile checks for a path relative to the extracted tree
func (s *Source) HasFile(relative string) bool {
	if s.ExtractDir == "" {
		return false
	}
	_, err := os.Stat(filepath.Join(s.ExtractDir, relative))
	return err == nil
}

// Format returns the declared source format (debian/source/format), if present
func (s *Source) Format() string {
	if s.ExtractDir == "" {
		return ""
	}
	data, err := os.ReadFile(filepath.Join(s.ExtractDir, "debian", "source", "format"))
	if err != nil {
		return "1.0"
	}
	return strings.TrimSpace(string(data))
}

// Remove releases the scratch directory; safe to call even if extraction
// never completed
func (s *Source) Remove() error {
	if s.WorkDir == "" {
		return nil
	}
	err := os.RemoveAll(s.WorkDir)
	s.WorkDir = ""
	s.ExtractDir = ""
	return err
}
