package utils

import (
	"os"
	"path/filepath"
	"testing"

	. "gopkg.in/check.v1"
)

// Launch gocheck tests
func Test(t *testing.T) {
	TestingT(t)
}

type ChecksumSuite struct {
	tempfile string
}

var _ = Suite(&ChecksumSuite{})

func (s *ChecksumSuite) SetUpTest(c *C) {
	s.tempfile = filepath.Join(c.MkDir(), "file")
	err := os.WriteFile(s.tempfile, []byte("Quick brown fox jumps over black dog\n"), 0644)
	c.Assert(err, IsNil)
}

func (s *ChecksumSuite) TestChecksumsForFile(c *C) {
	info, err := ChecksumsForFile(s.tempfile)
	c.Assert(err, IsNil)

	c.Check(info.Size, Equals, int64(37))
	c.Check(info.MD5, Equals, "5b5526c5cef636e0d94b66423c3908d1")
	c.Check(info.SHA1, Equals, "488e96986e9a01e52de5324b1af27533a50f52a0")
	c.Check(info.SHA256, Equals, "4f8c5a2a0c8967ebbcb19cf6039580ddbd8a0ce207cf0124ef7207686caa0ac5")

	_, err = ChecksumsForFile(filepath.Join(filepath.Dir(s.tempfile), "do-not-exist"))
	c.Check(err, NotNil)
}

func (s *ChecksumSuite) TestChecksumWriter(c *C) {
	w := NewChecksumWriter()
	_, err := w.Write([]byte("Quick brown fox jumps over black dog\n"))
	c.Assert(err, IsNil)

	direct, err := ChecksumsForFile(s.tempfile)
	c.Assert(err, IsNil)

	sum := w.Sum()
	c.Check(sum.Size, Equals, direct.Size)
	c.Check(sum.MD5, Equals, direct.MD5)
	c.Check(sum.SHA1, Equals, direct.SHA1)
	c.Check(sum.SHA256, Equals, direct.SHA256)
	c.Check(sum.SHA512, Equals, direct.SHA512)
}
