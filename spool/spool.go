// Package spool manages the incoming and processing upload queues
package spool

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"github.com/h2non/filetype/types"
	"github.com/rs/zerolog/log"

	"github.com/mentors-dev/importer/deb"
	"github.com/mentors-dev/importer/pgp"
)

// allowedExtensions is the filename allowlist for uploads
var allowedExtensions = []string{
	".asc", ".buildinfo", ".changes", ".deb", ".diff.gz", ".dsc", ".udeb",
	".tar.bz2", ".tar.gz", ".tar.xz",
}

// UploadError rejects an individual upload attempt
type UploadError struct {
	Name   string
	Reason string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Reason)
}

// Spool is a pair of queue directories: incoming receives concurrent
// uploads, processing holds the batch committed for import
type Spool struct {
	IncomingDir   string
	ProcessingDir string

	verifier      pgp.Verifier
	skipSignature bool
}

// New creates the spool, making both queue directories
func New(baseDir string, verifier pgp.Verifier, skipSignature bool) (*Spool, error) {
	s := &Spool{
		IncomingDir:   filepath.Join(baseDir, "incoming"),
		ProcessingDir: filepath.Join(baseDir, "processing"),
		verifier:      verifier,
		skipSignature: skipSignature,
	}

	for _, dir := range []string{s.IncomingDir, s.ProcessingDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Upload opens a writable handle for a new file in incoming. The name must
// pass the extension allowlist and must not collide with a file owned by a
// .changes already queued, an uploader must not be able to overwrite parts
// of somebody else's in-flight upload.
func (s *Spool) Upload(name string) (io.WriteCloser, error) {
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, &UploadError{Name: name, Reason: "invalid file name"}
	}

	if !extensionAllowed(name) {
		return nil, &UploadError{Name: name, Reason: "file extension not allowed"}
	}

	if owner := s.findOwner(name); owner != "" {
		return nil, &UploadError{Name: name,
			Reason: fmt.Sprintf("file is part of queued upload %s", owner)}
	}

	f, err := os.OpenFile(filepath.Join(s.IncomingDir, name),
		os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}

	return &uploadWriter{name: name, path: f.Name(), f: f}, nil
}

// ChangesToProcess promotes every valid queued upload from incoming to
// processing and returns the parsed batch. Malformed .changes files found
// while scanning are deleted outright.
func (s *Spool) ChangesToProcess() ([]*deb.Changes, error) {
	queued, err := s.scanIncoming()
	if err != nil {
		return nil, err
	}

	for _, changes := range queued {
		if err = s.promote(changes); err != nil {
			return nil, err
		}
	}

	return s.scanProcessing()
}

// Queued returns the parsed .changes currently waiting in incoming
func (s *Spool) Queued() ([]*deb.Changes, error) {
	return s.scanIncoming()
}

// scanIncoming parses every .changes in incoming, deleting ones that fail
// to parse or authenticate
func (s *Spool) scanIncoming() ([]*deb.Changes, error) {
	names, err := listChanges(s.IncomingDir)
	if err != nil {
		return nil, err
	}

	var result []*deb.Changes
	for _, name := range names {
		changes, err := s.parse(s.IncomingDir, name)
		if err != nil {
			log.Warn().Err(err).Str("changes", name).
				Msg("removing malformed .changes from incoming")
			_ = os.Remove(filepath.Join(s.IncomingDir, name))
			continue
		}
		result = append(result, changes)
	}

	return result, nil
}

func (s *Spool) scanProcessing() ([]*deb.Changes, error) {
	names, err := listChanges(s.ProcessingDir)
	if err != nil {
		return nil, err
	}

	var result []*deb.Changes
	for _, name := range names {
		changes, err := s.parse(s.ProcessingDir, name)
		if err != nil {
			log.Warn().Err(err).Str("changes", name).
				Msg("removing malformed .changes from processing")
			_ = os.Remove(filepath.Join(s.ProcessingDir, name))
			continue
		}
		result = append(result, changes)
	}

	return result, nil
}

// promote moves a .changes and every file it owns into processing
func (s *Spool) promote(changes *deb.Changes) error {
	for _, file := range changes.Files {
		err := os.Rename(filepath.Join(s.IncomingDir, file.Filename),
			filepath.Join(s.ProcessingDir, file.Filename))
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return os.Rename(filepath.Join(s.IncomingDir, changes.ChangesName),
		filepath.Join(s.ProcessingDir, changes.ChangesName))
}

func (s *Spool) parse(dir, name string) (*deb.Changes, error) {
	changes, err := deb.NewChanges(filepath.Join(dir, name))
	if err != nil {
		return nil, err
	}

	if err = changes.VerifyAndParse(s.skipSignature, s.verifier); err != nil {
		return nil, err
	}

	return changes, nil
}

// findOwner returns the name of a queued .changes owning the given file
func (s *Spool) findOwner(name string) string {
	queued, err := s.scanIncoming()
	if err != nil {
		return ""
	}

	for _, changes := range queued {
		if changes.Owns(name) {
			return changes.ChangesName
		}
	}

	return ""
}

func listChanges(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".changes") {
			names = append(names, entry.Name())
		}
	}

	return names, nil
}

func extensionAllowed(name string) bool {
	for _, ext := range allowedExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// uploadWriter checks the magic of binary uploads when the stream closes,
// a file claiming to be a tarball or .deb with a mismatched signature is
// dropped on the spot
type uploadWriter struct {
	name string
	path string
	f    *os.File
}

func (w *uploadWriter) Write(p []byte) (int, error) {
	return w.f.Write(p)
}

func (w *uploadWriter) Close() error {
	if err := w.f.Close(); err != nil {
		return err
	}

	if err := verifyMagic(w.name, w.path); err != nil {
		_ = os.Remove(w.path)
		return err
	}

	return nil
}

// expectedMagic maps binary upload extensions to their expected file types
var expectedMagic = map[string]types.Type{
	".deb":     matchers.TypeDeb,
	".udeb":    matchers.TypeDeb,
	".tar.gz":  matchers.TypeGz,
	".diff.gz": matchers.TypeGz,
	".tar.bz2": matchers.TypeBz2,
	".tar.xz":  matchers.TypeXz,
}

func verifyMagic(name, path string) error {
	for ext, kind := range expectedMagic {
		if !strings.HasSuffix(name, ext) {
			continue
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		header := make([]byte, 262)
		n, _ := io.ReadFull(f, header)
		_ = f.Close()

		if !filetype.IsType(header[:n], kind) {
			return &UploadError{Name: name,
				Reason: fmt.Sprintf("content does not look like %s", ext)}
		}
		break
	}

	return nil
}
