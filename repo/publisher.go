// Package repo maintains the package pool and the Sources indices over it
package repo

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/mentors-dev/importer/database"
	"github.com/mentors-dev/importer/deb"
	"github.com/mentors-dev/importer/dlock"
	"github.com/mentors-dev/importer/pgp"
	"github.com/mentors-dev/importer/store"
	"github.com/mentors-dev/importer/utils"
)

// UpdateLockName serializes index regeneration across importer processes
const UpdateLockName = "repository-update"

type distComponent struct {
	distribution string
	component    string
}

// Publisher installs upload files into the pool tree and regenerates the
// Sources index for every touched (distribution, component) pair
type Publisher struct {
	rootDir     string
	collections *store.Collections
	locker      dlock.Locker
	verifier    pgp.Verifier

	pending map[distComponent]struct{}
}

// NewPublisher creates a publisher over the repository root directory
func NewPublisher(rootDir string, collections *store.Collections, locker dlock.Locker, verifier pgp.Verifier) *Publisher {
	return &Publisher{
		rootDir:     rootDir,
		collections: collections,
		locker:      locker,
		verifier:    verifier,
		pending:     make(map[distComponent]struct{}),
	}
}

// PoolDir returns the pool directory under the repository root
func (p *Publisher) PoolDir() string {
	return filepath.Join(p.rootDir, "pool")
}

// poolPath is the repository-relative path for one file of a package
func (p *Publisher) poolPath(component, pkg, filename string) string {
	return filepath.Join("pool", component, deb.PoolBucket(pkg), pkg, filename)
}

// Install copies every file of an accepted upload into the pool and records
// it. Re-installing identical content is a no-op, a record for the same path
// with a different checksum is replaced so the pool never serves stale bytes
// under a known name.
func (p *Publisher) Install(tx database.Writer, changes *deb.Changes, dsc *deb.Dsc) error {
	files := p.collections.RepositoryFiles()
	component := changes.Component()
	version := changes.Version.String()

	// the .changes lists the .dsc and new artifacts, the .dsc additionally
	// references origin tarballs carried over from earlier uploads
	toInstall := make(deb.FileEntries, 0, len(changes.Files)+len(dsc.Files))
	seen := make(map[string]struct{})
	for _, entry := range append(append(deb.FileEntries(nil), changes.Files...), dsc.Files...) {
		if _, ok := seen[entry.Filename]; ok {
			continue
		}
		seen[entry.Filename] = struct{}{}
		toInstall = append(toInstall, entry)
	}

	for _, entry := range toInstall {
		relPath := p.poolPath(component, changes.Source, entry.Filename)

		stale, err := files.ByPath(relPath)
		if err != nil {
			return err
		}
		for _, record := range stale {
			if record.SHA256 != entry.Checksums.SHA256 {
				log.Info().Str("path", relPath).Str("package", record.Package).
					Str("version", record.Version).
					Msg("replacing stale repository record")
				if err = files.Delete(tx, record); err != nil {
					return err
				}
			}
		}

		if err = p.copyIntoPool(changes.BasePath, entry.Filename, relPath); err != nil {
			return err
		}

		existing, err := files.Get(changes.Source, version, relPath)
		if err != nil && err != database.ErrNotFound {
			return err
		}
		if existing == nil {
			err = files.Create(tx, &store.RepositoryFile{
				Package:      changes.Source,
				Version:      version,
				Component:    component,
				Distribution: changes.Distribution,
				Path:         relPath,
				Size:         entry.Checksums.Size,
				SHA256:       entry.Checksums.SHA256,
			})
			if err != nil {
				return err
			}
		}
	}

	p.markPending(changes.Distribution, component)
	return nil
}

// Remove drops all records of a package (one version, or every version when
// version is empty) and unlinks pool files no other record still references
func (p *Publisher) Remove(pkg, version string) error {
	files := p.collections.RepositoryFiles()

	records, err := files.ByPackage(pkg, version)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return errors.Errorf("no repository files found for %s %s", pkg, version)
	}

	tx, err := p.collections.Database().OpenTransaction()
	if err != nil {
		return err
	}
	defer tx.Discard()

	for _, record := range records {
		if err = files.Delete(tx, record); err != nil {
			return err
		}
		p.markPending(record.Distribution, record.Component)
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	for _, record := range records {
		shared, err := files.IsShared(record)
		if err != nil {
			return err
		}
		if shared {
			log.Debug().Str("path", record.Path).Msg("pool file is shared, keeping")
			continue
		}

		err = os.Remove(filepath.Join(p.rootDir, record.Path))
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

// markPending flags a (distribution, component) pair for index regeneration
func (p *Publisher) markPending(distribution, component string) {
	p.pending[distComponent{distribution, component}] = struct{}{}
}

// Update regenerates the Sources index for every pending pair. It waits for
// the repository lock: the index must reflect every concurrent install and
// removal, not just this process's.
func (p *Publisher) Update(ctx context.Context) error {
	if len(p.pending) == 0 {
		return nil
	}

	return p.locker.With(ctx, UpdateLockName, true, func() error {
		for pair := range p.pending {
			if err := p.generateSources(pair.distribution, pair.component); err != nil {
				return errors.Wrapf(err, "unable to generate Sources for %s/%s",
					pair.distribution, pair.component)
			}
			delete(p.pending, pair)
		}
		return nil
	})
}

// UpdateAll regenerates the Sources index for every (distribution,
// component) pair present in the repository records
func (p *Publisher) UpdateAll(ctx context.Context) error {
	err := p.collections.RepositoryFiles().ForEach(func(record *store.RepositoryFile) error {
		p.markPending(record.Distribution, record.Component)
		return nil
	})
	if err != nil {
		return err
	}

	return p.Update(ctx)
}

// generateSources rebuilds dists/<distribution>/<component>/source/Sources.{gz,xz}
// from the repository file records, never from a previous index
func (p *Publisher) generateSources(distribution, component string) error {
	files := p.collections.RepositoryFiles()

	var dscRecords []*store.RepositoryFile
	err := files.ForEach(func(record *store.RepositoryFile) error {
		if record.Distribution == distribution && record.Component == component &&
			strings.HasSuffix(record.Path, ".dsc") {
			dscRecords = append(dscRecords, record)
		}
		return nil
	})
	if err != nil {
		return err
	}

	indexDir := filepath.Join(p.rootDir, "dists", distribution, component, "source")
	if err = os.MkdirAll(indexDir, 0755); err != nil {
		return err
	}

	index, err := os.CreateTemp(indexDir, "Sources.tmp")
	if err != nil {
		return err
	}
	defer func() {
		_ = index.Close()
		_ = os.Remove(index.Name())
	}()

	writer := bufio.NewWriter(index)
	for _, record := range dscRecords {
		stanza, err := p.sourceStanza(record)
		if err != nil {
			log.Warn().Err(err).Str("path", record.Path).
				Msg("skipping unreadable .dsc during index generation")
			continue
		}

		if err = stanza.WriteTo(writer); err != nil {
			return err
		}
		if err = writer.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err = writer.Flush(); err != nil {
		return err
	}

	if err = utils.CompressFile(index); err != nil {
		return err
	}

	for _, suffix := range []string{".gz", ".xz"} {
		compressed := index.Name() + suffix
		if err = os.Chmod(compressed, 0644); err != nil {
			return err
		}
		if err = os.Rename(compressed, filepath.Join(indexDir, "Sources"+suffix)); err != nil {
			return err
		}
	}

	return nil
}

// sourceStanza renders one Sources index paragraph from an installed .dsc
func (p *Publisher) sourceStanza(record *store.RepositoryFile) (deb.Stanza, error) {
	dsc, err := deb.NewDsc(filepath.Join(p.rootDir, record.Path), p.verifier)
	if err != nil {
		return nil, err
	}

	stanza := dsc.Stanza.Copy()

	stanza["Package"] = stanza["Source"]
	delete(stanza, "Source")
	stanza["Directory"] = filepath.Dir(record.Path)

	// the index carries the install-time checksum of the .dsc itself
	stanza["Checksums-Sha256"] = strings.TrimRight(stanza["Checksums-Sha256"], "\n") +
		fmt.Sprintf("\n %s %d %s", record.SHA256, record.Size, filepath.Base(record.Path))

	delete(stanza, "Files")
	delete(stanza, "Checksums-Sha1")

	return stanza, nil
}

// copyIntoPool places one upload file at its pool path, mode 0644
func (p *Publisher) copyIntoPool(basePath, filename, relPath string) error {
	destination := filepath.Join(p.rootDir, relPath)

	if err := os.MkdirAll(filepath.Dir(destination), 0755); err != nil {
		return err
	}

	if err := utils.CopyFile(filepath.Join(basePath, filename), destination); err != nil {
		return err
	}

	return os.Chmod(destination, 0644)
}
