package deb

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mentors-dev/importer/pgp"
)

// Required .changes fields; absence of any one of them rejects the upload
var changesRequiredFields = []string{
	"Architecture", "Changes", "Checksums-Sha1", "Checksums-Sha256",
	"Date", "Distribution", "Files", "Format", "Maintainer", "Source", "Version",
}

// Changes is a parsed and verified .changes document
type Changes struct {
	ChangesName string
	BasePath    string

	Stanza        Stanza
	Source        string
	Version       Version
	Distribution  string
	Architectures []string
	Binary        []string
	Maintainer    string
	ChangedBy     string
	ChangesText   string
	Date          string
	Closes        []int
	Files         FileEntries

	SignatureKeys     []pgp.Key
	SignerFingerprint string
}

// NewChanges bootstraps a Changes document from a file in the spool
func NewChanges(path string) (*Changes, error) {
	if !strings.HasSuffix(path, ".changes") {
		return nil, &ChangesError{Reason: fmt.Sprintf("%s: not a .changes file", filepath.Base(path))}
	}

	return &Changes{
		ChangesName: filepath.Base(path),
		BasePath:    filepath.Dir(path),
	}, nil
}

// FullPath returns the path of the .changes file itself
func (c *Changes) FullPath() string {
	return filepath.Join(c.BasePath, c.ChangesName)
}

// VerifyAndParse does optional signature verification and parses the document.
//
// The stanza must not be trusted until this returns nil.
func (c *Changes) VerifyAndParse(skipSignature bool, verifier pgp.Verifier) error {
	input, err := os.Open(c.FullPath())
	if err != nil {
		return err
	}
	defer func() { _ = input.Close() }()

	isClearSigned, err := verifier.IsClearSigned(input)
	if err != nil {
		return err
	}

	_, _ = input.Seek(0, 0)

	if !isClearSigned && !skipSignature {
		return &SignatureError{Reason: fmt.Sprintf("%s is not signed", c.ChangesName)}
	}

	if isClearSigned && !skipSignature {
		var keyInfo *pgp.KeyInfo
		keyInfo, err = verifier.VerifyClearsigned(input)
		if err != nil {
			return &SignatureError{Reason: fmt.Sprintf("%s: %s", c.ChangesName, err)}
		}
		_, _ = input.Seek(0, 0)

		if len(keyInfo.MissingKeys) > 0 {
			return &SignatureError{Reason: fmt.Sprintf("%s is signed by unknown key %s",
				c.ChangesName, keyInfo.MissingKeys[0])}
		}

		for _, sig := range keyInfo.GoodKeys {
			c.SignatureKeys = append(c.SignatureKeys, sig.KeyID)
			c.SignerFingerprint = sig.Fingerprint
		}
	}

	var text *os.File

	if isClearSigned {
		text, err = verifier.ExtractClearsigned(input)
		if err != nil {
			return err
		}
		defer func() { _ = text.Close() }()
	} else {
		text = input
	}

	reader := NewControlFileReader(text)
	stanza, err := reader.ReadStanza()
	if err != nil {
		return &ChangesError{Reason: fmt.Sprintf("%s: %s", c.ChangesName, err)}
	}
	if len(stanza) == 0 {
		return &ChangesError{Reason: fmt.Sprintf("%s: empty control document", c.ChangesName)}
	}

	c.Stanza = stanza
	c.Source = stanza["Source"]
	c.Version = ParseVersion(stanza["Version"])
	c.Distribution = stanza["Distribution"]
	c.Architectures = strings.Fields(stanza["Architecture"])
	c.Binary = strings.Fields(stanza["Binary"])
	c.Maintainer = stanza["Maintainer"]
	c.ChangedBy = stanza["Changed-By"]
	c.ChangesText = stanza["Changes"]
	c.Date = stanza["Date"]

	c.Files, err = c.Files.ParseSumFields(stanza)
	if err != nil {
		return &ChangesError{Reason: fmt.Sprintf("%s: %s", c.ChangesName, err)}
	}

	c.Closes, err = parseCloses(stanza["Closes"])
	if err != nil {
		return &ChangesError{Reason: fmt.Sprintf("%s: %s", c.ChangesName, err)}
	}

	return nil
}

// Validate checks required fields and per-file checksums
func (c *Changes) Validate() error {
	for _, field := range changesRequiredFields {
		if _, ok := c.Stanza[field]; !ok {
			return &ChangesError{Reason: fmt.Sprintf("%s is missing mandatory field %s",
				c.ChangesName, field)}
		}
	}

	if len(c.Files) == 0 {
		return &ChangesError{Reason: fmt.Sprintf("%s references no files", c.ChangesName)}
	}

	for i := range c.Files {
		if err := c.Files[i].Validate(c.BasePath); err != nil {
			return err
		}
	}

	return nil
}

// DscFile returns the file entry of the source control file
func (c *Changes) DscFile() *FileEntry {
	for i := range c.Files {
		if strings.HasSuffix(c.Files[i].Filename, ".dsc") {
			return &c.Files[i]
		}
	}
	return nil
}

// Component of the upload, derived from the .dsc file entry
func (c *Changes) Component() string {
	if dsc := c.DscFile(); dsc != nil && dsc.Component != "" {
		return dsc.Component
	}
	return "main"
}

// Owns reports whether name is the .changes file itself or one of the files
// it references
func (c *Changes) Owns(name string) bool {
	if name == c.ChangesName {
		return true
	}
	for _, file := range c.Files {
		if file.Filename == name {
			return true
		}
	}
	return false
}

// TakeOwnership adds files materialized next to the upload during processing
// (origin tarballs fetched from the pool or the archive) so that Cleanup
// removes them together with the rest of the upload
func (c *Changes) TakeOwnership(entries FileEntries) {
	for _, entry := range entries {
		if !c.Owns(entry.Filename) {
			c.Files = append(c.Files, entry)
		}
	}
}

// Cleanup removes the .changes file and all files it owns from the spool
func (c *Changes) Cleanup() error {
	for _, file := range c.Files {
		err := os.Remove(filepath.Join(c.BasePath, file.Filename))
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	err := os.Remove(c.FullPath())
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func parseCloses(value string) ([]int, error) {
	var result []int

	for _, field := range strings.Fields(value) {
		bug, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("malformed bug number %#v", field)
		}
		result = append(result, bug)
	}

	return result, nil
}
