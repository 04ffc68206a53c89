package importer

import (
	"strings"

	"github.com/mentors-dev/importer/database"
	"github.com/mentors-dev/importer/deb"
	"github.com/mentors-dev/importer/qa"
	"github.com/mentors-dev/importer/store"
)

// persistRecords writes the upload, package and QA result records inside the
// acceptance transaction
func (i *Importer) persistRecords(tx database.Writer, changes *deb.Changes,
	dsc *deb.Dsc, source *deb.Source, results []qa.Result, gitRef string) error {

	version := changes.Version.String()

	err := i.collections.Uploads().Save(tx, &store.Upload{
		Source:       changes.Source,
		Version:      version,
		Distribution: changes.Distribution,
		Component:    changes.Component(),
		Uploader:     changes.SignerFingerprint,
		Changes:      changes.ChangesText,
		ClosedBugs:   changes.Closes,
		GitRef:       gitRef,
		Date:         changes.Date,
	})
	if err != nil {
		return err
	}

	sourcePkg := &store.SourcePackage{
		Name:       changes.Source,
		Version:    version,
		Maintainer: changes.Maintainer,
		Priority:   dsc.Stanza["Priority"],
		Section:    dsc.Stanza["Section"],
		Homepage:   dsc.Homepage,
		Vcs:        dsc.VcsGit,
	}
	if source.Control != nil {
		if sourcePkg.Section == "" {
			sourcePkg.Section = source.Control.Source.Section
		}
		if sourcePkg.Priority == "" {
			sourcePkg.Priority = source.Control.Source.Priority
		}
		if sourcePkg.Homepage == "" {
			sourcePkg.Homepage = source.Control.Source.Homepage
		}
	}

	// the latest accepted upload's archive-membership signal wins
	if inDebian, found := qa.InDebian(results); found {
		sourcePkg.InDebian = inDebian
	} else if previous, err := i.collections.Packages().Source(changes.Source, version); err == nil && previous != nil {
		sourcePkg.InDebian = previous.InDebian
	}

	if err = i.collections.Packages().SaveSource(tx, sourcePkg); err != nil {
		return err
	}

	if source.Control != nil {
		for _, binary := range source.Control.Binaries {
			err = i.collections.Packages().SaveBinary(tx, &store.BinaryPackage{
				Source:      changes.Source,
				Version:     version,
				Name:        binary.Package,
				Description: firstLine(binary.Description),
				Homepage:    binary.Homepage,
				Priority:    binary.Priority,
				Section:     binary.Section,
			})
			if err != nil {
				return err
			}
		}
	}

	for _, result := range results {
		err = i.collections.Results().Save(tx, changes.Source, version, &store.PluginResult{
			Plugin:   result.Plugin,
			Test:     result.Test,
			Outcome:  result.Outcome,
			Severity: int(result.Severity),
			Data:     result.Data,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// resolveUploader looks up the signer identity in the user directory
func (i *Importer) resolveUploader(changes *deb.Changes) *store.User {
	if changes.SignerFingerprint == "" {
		return nil
	}

	user, err := i.collections.Users().ByFingerprint(changes.SignerFingerprint)
	if err != nil {
		return nil
	}
	return user
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx != -1 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}
