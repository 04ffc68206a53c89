package deb

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mentors-dev/importer/pgp"
	"github.com/mentors-dev/importer/utils"
	. "gopkg.in/check.v1"
)

type DscSuite struct {
	basePath string
	verifier pgp.Verifier
}

var _ = Suite(&DscSuite{})

// originRecorder implements OriginValidator and records what it was given
type originRecorder struct {
	origFiles FileEntries
	err       error
}

func (o *originRecorder) Validate(origFiles FileEntries) error {
	o.origFiles = origFiles
	return o.err
}

func (s *DscSuite) SetUpTest(c *C) {
	s.basePath = c.MkDir()
	s.verifier = &pgp.NullVerifier{}
}

func (s *DscSuite) writeDsc(c *C) string {
	referenced := map[string]string{
		"hello_2.10.orig.tar.gz":     "fake orig tarball\n",
		"hello_2.10-3.debian.tar.xz": "fake debian tarball\n",
	}

	files := ""
	sha1s := ""
	sha256s := ""
	for name, content := range referenced {
		err := os.WriteFile(filepath.Join(s.basePath, name), []byte(content), 0644)
		c.Assert(err, IsNil)

		sums, err := utils.ChecksumsForFile(filepath.Join(s.basePath, name))
		c.Assert(err, IsNil)

		files += fmt.Sprintf(" %s %d %s\n", sums.MD5, sums.Size, name)
		sha1s += fmt.Sprintf(" %s %d %s\n", sums.SHA1, sums.Size, name)
		sha256s += fmt.Sprintf(" %s %d %s\n", sums.SHA256, sums.Size, name)
	}

	dsc := "Format: 3.0 (quilt)\n" +
		"Source: hello\n" +
		"Binary: hello\n" +
		"Architecture: any\n" +
		"Version: 2.10-3\n" +
		"Maintainer: Santiago Vila <sanvila@debian.org>\n" +
		"Uploaders: Somebody Else <else@debian.org>, Third Person <third@debian.org>\n" +
		"Standards-Version: 4.3.0\n" +
		"Build-Depends: debhelper-compat (= 12), gettext\n" +
		"Files:\n" + files +
		"Checksums-Sha1:\n" + sha1s +
		"Checksums-Sha256:\n" + sha256s

	path := filepath.Join(s.basePath, "hello_2.10-3.dsc")
	c.Assert(os.WriteFile(path, []byte(dsc), 0644), IsNil)
	return path
}

func (s *DscSuite) TestNewDsc(c *C) {
	path := s.writeDsc(c)

	dsc, err := NewDsc(path, s.verifier)
	c.Assert(err, IsNil)

	c.Check(dsc.Source, Equals, "hello")
	c.Check(dsc.Version.String(), Equals, "2.10-3")
	c.Check(dsc.Format, Equals, "3.0 (quilt)")
	c.Check(dsc.Uploaders, DeepEquals, []string{
		"Somebody Else <else@debian.org>", "Third Person <third@debian.org>"})
	c.Check(dsc.BuildDepends, DeepEquals, []string{"debhelper-compat (= 12)", "gettext"})
	c.Check(dsc.Files, HasLen, 2)
}

func (s *DscSuite) TestValidate(c *C) {
	path := s.writeDsc(c)

	dsc, err := NewDsc(path, s.verifier)
	c.Assert(err, IsNil)

	origin := &originRecorder{}
	c.Assert(dsc.Validate(origin), IsNil)

	// only the upstream tarball is reconciled with the archive
	c.Assert(origin.origFiles, HasLen, 1)
	c.Check(origin.origFiles[0].Filename, Equals, "hello_2.10.orig.tar.gz")
}

func (s *DscSuite) TestValidateAbsentOrig(c *C) {
	path := s.writeDsc(c)

	// a debian-revision-only upload does not carry the upstream tarball,
	// validation must leave it to the origin fetch instead of rejecting
	c.Assert(os.Remove(filepath.Join(s.basePath, "hello_2.10.orig.tar.gz")), IsNil)

	dsc, err := NewDsc(path, s.verifier)
	c.Assert(err, IsNil)

	origin := &originRecorder{}
	c.Assert(dsc.Validate(origin), IsNil)

	// the absent tarball is still reconciled with the archive
	c.Assert(origin.origFiles, HasLen, 1)
	c.Check(origin.origFiles[0].Filename, Equals, "hello_2.10.orig.tar.gz")
}

func (s *DscSuite) TestValidateOriginMismatch(c *C) {
	path := s.writeDsc(c)

	dsc, err := NewDsc(path, s.verifier)
	c.Assert(err, IsNil)

	origin := &originRecorder{err: &OriginError{File: "hello_2.10.orig.tar.gz",
		Reason: "checksum differs from archive"}}

	err = dsc.Validate(origin)
	c.Check(err, ErrorMatches, "checksum differs from archive")
	c.Check(IsValidationError(err), Equals, true)
}

func (s *DscSuite) TestValidateMissingField(c *C) {
	path := filepath.Join(s.basePath, "broken_1.0.dsc")
	c.Assert(os.WriteFile(path, []byte("Source: broken\nVersion: 1.0\n"), 0644), IsNil)

	dsc, err := NewDsc(path, s.verifier)
	c.Assert(err, IsNil)

	err = dsc.Validate(nil)
	c.Check(err, ErrorMatches, ".*missing mandatory field.*")
}

func (s *DscSuite) TestValidateChecksumMismatch(c *C) {
	path := s.writeDsc(c)
	c.Assert(os.WriteFile(filepath.Join(s.basePath, "hello_2.10.orig.tar.gz"),
		[]byte("tampered content\n"), 0644), IsNil)

	dsc, err := NewDsc(path, s.verifier)
	c.Assert(err, IsNil)

	err = dsc.Validate(&originRecorder{})
	c.Check(err, ErrorMatches, ".*mismatch.*")
	c.Check(IsValidationError(err), Equals, true)
}
