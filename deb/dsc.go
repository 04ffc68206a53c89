package deb

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mentors-dev/importer/pgp"
)

// Required .dsc fields
var dscRequiredFields = []string{
	"Format", "Source", "Version", "Maintainer", "Standards-Version",
	"Checksums-Sha1", "Checksums-Sha256", "Files",
}

// OriginValidator reconciles declared upstream tarballs with the official archive
type OriginValidator interface {
	Validate(origFiles FileEntries) error
}

// Dsc is a parsed .dsc document
type Dsc struct {
	DscName  string
	BasePath string

	Stanza           Stanza
	Source           string
	Version          Version
	Format           string
	Maintainer       string
	Uploaders        []string
	StandardsVersion string
	BuildDepends     []string
	Homepage         string
	VcsBrowser       string
	VcsGit           string
	Files            FileEntries
}

// NewDsc parses a .dsc file, stripping a clearsign wrapper when present
func NewDsc(path string, verifier pgp.Verifier) (*Dsc, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	isClearSigned, err := verifier.IsClearSigned(file)
	if err != nil {
		return nil, err
	}
	_, _ = file.Seek(0, 0)

	var text *os.File
	if isClearSigned {
		text, err = verifier.ExtractClearsigned(file)
		if err != nil {
			return nil, err
		}
		defer func() { _ = text.Close() }()
	} else {
		text = file
	}

	reader := NewControlFileReader(text)
	stanza, err := reader.ReadStanza()
	if err != nil {
		return nil, &DscError{Reason: fmt.Sprintf("%s: %s", filepath.Base(path), err)}
	}
	if len(stanza) == 0 {
		return nil, &DscError{Reason: fmt.Sprintf("%s: empty control document", filepath.Base(path))}
	}

	result := &Dsc{
		DscName:          filepath.Base(path),
		BasePath:         filepath.Dir(path),
		Stanza:           stanza,
		Source:           stanza["Source"],
		Version:          ParseVersion(stanza["Version"]),
		Format:           stanza["Format"],
		Maintainer:       stanza["Maintainer"],
		StandardsVersion: stanza["Standards-Version"],
		Homepage:         stanza["Homepage"],
		VcsBrowser:       stanza["Vcs-Browser"],
		VcsGit:           stanza["Vcs-Git"],
	}

	if uploaders, ok := stanza["Uploaders"]; ok {
		for _, u := range strings.Split(uploaders, ",") {
			if u = strings.TrimSpace(u); u != "" {
				result.Uploaders = append(result.Uploaders, u)
			}
		}
	}

	if deps, ok := stanza["Build-Depends"]; ok {
		for _, d := range strings.Split(deps, ",") {
			if d = strings.TrimSpace(d); d != "" {
				result.BuildDepends = append(result.BuildDepends, d)
			}
		}
	}

	result.Files, err = result.Files.ParseSumFields(stanza)
	if err != nil {
		return nil, &DscError{Reason: fmt.Sprintf("%s: %s", result.DscName, err)}
	}

	return result, nil
}

// FullPath returns the path to the .dsc file
func (d *Dsc) FullPath() string {
	return filepath.Join(d.BasePath, d.DscName)
}

// Validate checks required fields, per-file checksums and reconciles origin
// tarballs with the official archive
func (d *Dsc) Validate(origin OriginValidator) error {
	for _, field := range dscRequiredFields {
		if _, ok := d.Stanza[field]; !ok {
			return &DscError{Reason: fmt.Sprintf("%s is missing mandatory field %s",
				d.DscName, field)}
		}
	}

	for i := range d.Files {
		// origin tarballs are allowed to be absent from the upload, they
		// get fetched from the pool or the archive and verified then
		if d.Files[i].IsOrig() {
			if _, err := os.Stat(filepath.Join(d.BasePath, d.Files[i].Filename)); os.IsNotExist(err) {
				continue
			}
		}
		if err := d.Files[i].Validate(d.BasePath); err != nil {
			return err
		}
	}

	if origin != nil {
		if err := origin.Validate(d.OrigFiles()); err != nil {
			return err
		}
	}

	return nil
}

// OrigFiles returns the upstream original tarball entries
func (d *Dsc) OrigFiles() FileEntries {
	var result FileEntries
	for _, file := range d.Files {
		if file.IsOrig() {
			result = append(result, file)
		}
	}
	return result
}
