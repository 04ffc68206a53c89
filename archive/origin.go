package archive

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/mentors-dev/importer/deb"
	"github.com/mentors-dev/importer/utils"
)

// Origin reconciles origin tarballs of an upload against the official archive.
//
// It implements deb.OriginValidator for Dsc validation and locates missing
// origin files for source extraction.
type Origin struct {
	Package   string
	Version   string
	Component string
	// IsNew is set by Validate when the archive has no record of the package
	IsNew bool

	client *Client
	// targetDir holds the upload being processed, poolDir is the local
	// repository pool used as a download cache
	targetDir string
	poolDir   string
}

// NewOrigin creates an origin resolver for one upload
func NewOrigin(client *Client, pkg, version, component, targetDir, poolDir string) *Origin {
	return &Origin{
		Package:   pkg,
		Version:   version,
		Component: component,
		client:    client,
		targetDir: targetDir,
		poolDir:   poolDir,
	}
}

// Validate checks declared origin files against the archive's record.
//
// A package unknown to the archive is new: nothing to reconcile. A known
// package whose origin checksums differ from the archive's is rejected,
// a repacked orig tarball would silently fork upstream sources.
func (o *Origin) Validate(origFiles deb.FileEntries) error {
	ctx, cancel := context.WithTimeout(context.Background(), clientTimeout)
	defer cancel()

	archiveFiles, known, err := o.client.SourceFiles(ctx, o.Package, o.Version)
	if err != nil {
		return err
	}

	if !known {
		o.IsNew = true
		log.Debug().Str("package", o.Package).Str("version", o.Version).
			Msg("package not found in archive, treating as new")
		return nil
	}

	byName := make(map[string]FileInfo, len(archiveFiles))
	for _, file := range archiveFiles {
		byName[file.Name] = file
	}

	for _, entry := range origFiles {
		archived, ok := byName[entry.Filename]
		if !ok {
			// origin file the archive never shipped for this version
			return &deb.OriginError{
				File:   entry.Filename,
				Reason: "not part of the archive source package",
			}
		}

		if archived.SHA256 != "" && archived.SHA256 != entry.Checksums.SHA256 {
			// no Reason, the error message carries both digests
			return &deb.OriginError{
				File:     entry.Filename,
				Expected: archived.SHA256,
				Actual:   entry.Checksums.SHA256,
			}
		}

		if archived.Size > 0 && archived.Size != entry.Checksums.Size {
			return &deb.OriginError{
				File:   entry.Filename,
				Reason: "size differs from archive",
			}
		}
	}

	return nil
}

// Fetch makes sure every origin file is present in the upload directory,
// trying the upload itself, then the local pool, then the archive.
func (o *Origin) Fetch(ctx context.Context, origFiles deb.FileEntries) error {
	for _, entry := range origFiles {
		destination := filepath.Join(o.targetDir, entry.Filename)

		if _, err := os.Stat(destination); err == nil {
			continue
		}

		if o.fetchFromPool(entry, destination) {
			continue
		}

		log.Debug().Str("file", entry.Filename).Msg("downloading origin file from archive")

		err := o.client.FetchPoolFile(ctx, o.Component, o.Package, entry.Filename, destination)
		if err != nil {
			return err
		}

		if err = entry.Validate(o.targetDir); err != nil {
			_ = os.Remove(destination)
			return err
		}
	}

	return nil
}

// fetchFromPool copies an origin file out of the local repository pool when a
// previous upload already brought it in, avoiding a round-trip to the archive
func (o *Origin) fetchFromPool(entry deb.FileEntry, destination string) bool {
	if o.poolDir == "" {
		return false
	}

	source := filepath.Join(o.poolDir, o.Component, deb.PoolBucket(o.Package), o.Package, entry.Filename)
	if _, err := os.Stat(source); err != nil {
		return false
	}

	if err := utils.CopyFile(source, destination); err != nil {
		log.Warn().Err(err).Str("file", entry.Filename).Msg("unable to copy origin file from pool")
		return false
	}

	if err := entry.Validate(o.targetDir); err != nil {
		// stale pool copy, fall through to the archive
		log.Warn().Err(err).Str("file", entry.Filename).Msg("pool copy of origin file does not match upload")
		_ = os.Remove(destination)
		return false
	}

	return true
}
