package deb

import (
	"os"
	"path/filepath"

	"github.com/mentors-dev/importer/utils"
	. "gopkg.in/check.v1"
)

type FilesSuite struct {
	basePath string
	content  []byte
	sums     utils.ChecksumInfo
}

var _ = Suite(&FilesSuite{})

func (s *FilesSuite) SetUpTest(c *C) {
	s.basePath = c.MkDir()
	s.content = []byte("fake source artifact\n")

	err := os.WriteFile(filepath.Join(s.basePath, "pkg_1.0-1.dsc"), s.content, 0644)
	c.Assert(err, IsNil)

	s.sums, err = utils.ChecksumsForFile(filepath.Join(s.basePath, "pkg_1.0-1.dsc"))
	c.Assert(err, IsNil)
}

func (s *FilesSuite) TestParseSumFields(c *C) {
	stanza := Stanza{
		"Files":            " md5one 100 net extra pkg_1.0-1.dsc\n md5two 200 net extra pkg_1.0.orig.tar.gz\n",
		"Checksums-Sha256": " sha256one 100 pkg_1.0-1.dsc\n sha256two 200 pkg_1.0.orig.tar.gz\n",
	}

	files, err := FileEntries(nil).ParseSumFields(stanza)
	c.Assert(err, IsNil)
	c.Assert(files, HasLen, 2)

	c.Check(files[0].Filename, Equals, "pkg_1.0-1.dsc")
	c.Check(files[0].Checksums.MD5, Equals, "md5one")
	c.Check(files[0].Checksums.SHA256, Equals, "sha256one")
	c.Check(files[0].Checksums.Size, Equals, int64(100))
	c.Check(files[0].Component, Equals, "main")
	c.Check(files[0].Section, Equals, "net")
	c.Check(files[0].Priority, Equals, "extra")

	c.Check(files[1].IsOrig(), Equals, true)
	c.Check(files[0].IsOrig(), Equals, false)
}

func (s *FilesSuite) TestParseSumFieldsMalformed(c *C) {
	_, err := FileEntries(nil).ParseSumFields(Stanza{"Files": " onlytwo fields\n"})
	c.Check(err, NotNil)
}

func (s *FilesSuite) TestValidateOK(c *C) {
	entry := FileEntry{Filename: "pkg_1.0-1.dsc", Checksums: s.sums}
	c.Check(entry.Validate(s.basePath), IsNil)
}

func (s *FilesSuite) TestValidateMissing(c *C) {
	entry := FileEntry{Filename: "not-uploaded.tar.gz", Checksums: s.sums}

	err := entry.Validate(s.basePath)
	c.Assert(err, NotNil)
	c.Check(err, ErrorMatches, "not-uploaded.tar.gz: missing from upload")
	c.Check(IsValidationError(err), Equals, true)
}

func (s *FilesSuite) TestValidateSizeMismatch(c *C) {
	sums := s.sums
	sums.Size++

	entry := FileEntry{Filename: "pkg_1.0-1.dsc", Checksums: sums}
	c.Check(entry.Validate(s.basePath), ErrorMatches, ".*size mismatch.*")
}

func (s *FilesSuite) TestValidateDigestMismatch(c *C) {
	sums := s.sums
	sums.SHA256 = "0000000000000000000000000000000000000000000000000000000000000000"

	entry := FileEntry{Filename: "pkg_1.0-1.dsc", Checksums: sums}
	c.Check(entry.Validate(s.basePath), ErrorMatches, ".*sha256 mismatch.*")
}
