package deb

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mentors-dev/importer/pgp"
	"github.com/mentors-dev/importer/utils"
	. "gopkg.in/check.v1"
)

type ChangesSuite struct {
	basePath string
	verifier pgp.Verifier
}

var _ = Suite(&ChangesSuite{})

func (s *ChangesSuite) SetUpTest(c *C) {
	s.basePath = c.MkDir()
	s.verifier = &pgp.NullVerifier{}
}

// writeUpload creates artifact files plus a consistent unsigned .changes
func (s *ChangesSuite) writeUpload(c *C) string {
	artifacts := map[string]string{
		"hello_2.10-3.dsc":           "fake dsc content\n",
		"hello_2.10.orig.tar.gz":     "fake orig tarball\n",
		"hello_2.10-3.debian.tar.xz": "fake debian tarball\n",
	}

	files := ""
	sha1s := ""
	sha256s := ""
	for name, content := range artifacts {
		err := os.WriteFile(filepath.Join(s.basePath, name), []byte(content), 0644)
		c.Assert(err, IsNil)

		sums, err := utils.ChecksumsForFile(filepath.Join(s.basePath, name))
		c.Assert(err, IsNil)

		files += fmt.Sprintf(" %s %d devel optional %s\n", sums.MD5, sums.Size, name)
		sha1s += fmt.Sprintf(" %s %d %s\n", sums.SHA1, sums.Size, name)
		sha256s += fmt.Sprintf(" %s %d %s\n", sums.SHA256, sums.Size, name)
	}

	changes := "Format: 1.8\n" +
		"Date: Thu, 28 May 2026 13:02:12 +0200\n" +
		"Source: hello\n" +
		"Binary: hello\n" +
		"Architecture: source\n" +
		"Version: 2.10-3\n" +
		"Distribution: unstable\n" +
		"Urgency: medium\n" +
		"Maintainer: Santiago Vila <sanvila@debian.org>\n" +
		"Changed-By: Santiago Vila <sanvila@debian.org>\n" +
		"Closes: 871622 893083\n" +
		"Changes:\n hello (2.10-3) unstable; urgency=medium\n .\n   * Standards update.\n" +
		"Files:\n" + files +
		"Checksums-Sha1:\n" + sha1s +
		"Checksums-Sha256:\n" + sha256s

	path := filepath.Join(s.basePath, "hello_2.10-3_source.changes")
	c.Assert(os.WriteFile(path, []byte(changes), 0644), IsNil)
	return path
}

func (s *ChangesSuite) TestNewChanges(c *C) {
	_, err := NewChanges(filepath.Join(s.basePath, "something.deb"))
	c.Check(err, ErrorMatches, ".*not a .changes file")

	changes, err := NewChanges(filepath.Join(s.basePath, "hello_2.10-3_source.changes"))
	c.Assert(err, IsNil)
	c.Check(changes.ChangesName, Equals, "hello_2.10-3_source.changes")
	c.Check(changes.BasePath, Equals, s.basePath)
}

func (s *ChangesSuite) TestVerifyAndParse(c *C) {
	path := s.writeUpload(c)

	changes, err := NewChanges(path)
	c.Assert(err, IsNil)
	c.Assert(changes.VerifyAndParse(true, s.verifier), IsNil)

	c.Check(changes.Source, Equals, "hello")
	c.Check(changes.Version.String(), Equals, "2.10-3")
	c.Check(changes.Distribution, Equals, "unstable")
	c.Check(changes.Architectures, DeepEquals, []string{"source"})
	c.Check(changes.Closes, DeepEquals, []int{871622, 893083})
	c.Check(changes.Files, HasLen, 3)
	c.Check(changes.Owns("hello_2.10.orig.tar.gz"), Equals, true)
	c.Check(changes.Owns("other_1.0.tar.gz"), Equals, false)
}

func (s *ChangesSuite) TestUnsignedRejected(c *C) {
	path := s.writeUpload(c)

	changes, err := NewChanges(path)
	c.Assert(err, IsNil)

	err = changes.VerifyAndParse(false, s.verifier)
	c.Assert(err, NotNil)
	c.Check(err, ErrorMatches, ".*is not signed")
	c.Check(IsValidationError(err), Equals, true)
}

func (s *ChangesSuite) TestValidate(c *C) {
	path := s.writeUpload(c)

	changes, err := NewChanges(path)
	c.Assert(err, IsNil)
	c.Assert(changes.VerifyAndParse(true, s.verifier), IsNil)
	c.Check(changes.Validate(), IsNil)
}

func (s *ChangesSuite) TestValidateMissingFile(c *C) {
	path := s.writeUpload(c)
	c.Assert(os.Remove(filepath.Join(s.basePath, "hello_2.10.orig.tar.gz")), IsNil)

	changes, err := NewChanges(path)
	c.Assert(err, IsNil)
	c.Assert(changes.VerifyAndParse(true, s.verifier), IsNil)

	err = changes.Validate()
	c.Check(err, ErrorMatches, "hello_2.10.orig.tar.gz: missing from upload")
	c.Check(IsValidationError(err), Equals, true)
}

func (s *ChangesSuite) TestValidateMissingField(c *C) {
	path := filepath.Join(s.basePath, "broken_1.0_source.changes")
	c.Assert(os.WriteFile(path, []byte("Source: broken\nVersion: 1.0\n"), 0644), IsNil)

	changes, err := NewChanges(path)
	c.Assert(err, IsNil)
	c.Assert(changes.VerifyAndParse(true, s.verifier), IsNil)

	err = changes.Validate()
	c.Check(err, ErrorMatches, ".*missing mandatory field.*")
}

func (s *ChangesSuite) TestDscFileAndComponent(c *C) {
	path := s.writeUpload(c)

	changes, err := NewChanges(path)
	c.Assert(err, IsNil)
	c.Assert(changes.VerifyAndParse(true, s.verifier), IsNil)

	dsc := changes.DscFile()
	c.Assert(dsc, NotNil)
	c.Check(dsc.Filename, Equals, "hello_2.10-3.dsc")

	// section "devel" carries no component prefix
	c.Check(changes.Component(), Equals, "main")
}

func (s *ChangesSuite) TestCleanup(c *C) {
	path := s.writeUpload(c)

	changes, err := NewChanges(path)
	c.Assert(err, IsNil)
	c.Assert(changes.VerifyAndParse(true, s.verifier), IsNil)

	c.Assert(changes.Cleanup(), IsNil)

	for _, name := range []string{"hello_2.10-3_source.changes", "hello_2.10-3.dsc",
		"hello_2.10.orig.tar.gz", "hello_2.10-3.debian.tar.xz"} {
		_, err = os.Stat(filepath.Join(s.basePath, name))
		c.Check(os.IsNotExist(err), Equals, true)
	}

	// cleanup is idempotent
	c.Check(changes.Cleanup(), IsNil)
}

func (s *ChangesSuite) TestTakeOwnershipCleanup(c *C) {
	path := s.writeUpload(c)

	changes, err := NewChanges(path)
	c.Assert(err, IsNil)
	c.Assert(changes.VerifyAndParse(true, s.verifier), IsNil)

	// a tarball fetched next to the upload after parsing
	fetched := filepath.Join(s.basePath, "hello_2.9.orig.tar.gz")
	c.Assert(os.WriteFile(fetched, []byte("fetched tarball\n"), 0644), IsNil)

	owned := len(changes.Files)
	changes.TakeOwnership(FileEntries{{Filename: "hello_2.9.orig.tar.gz"}})
	c.Check(changes.Files, HasLen, owned+1)

	// files already owned are not duplicated
	changes.TakeOwnership(FileEntries{
		{Filename: "hello_2.9.orig.tar.gz"},
		{Filename: "hello_2.10-3.dsc"},
	})
	c.Check(changes.Files, HasLen, owned+1)

	c.Assert(changes.Cleanup(), IsNil)
	_, err = os.Stat(fetched)
	c.Check(os.IsNotExist(err), Equals, true)
}
