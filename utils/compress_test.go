package utils

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"
	. "gopkg.in/check.v1"
)

type CompressSuite struct{}

var _ = Suite(&CompressSuite{})

func (s *CompressSuite) TestCompressFile(c *C) {
	path := filepath.Join(c.MkDir(), "Sources")
	content := "Package: hello\nVersion: 2.10-3\n"

	f, err := os.Create(path)
	c.Assert(err, IsNil)
	_, err = f.WriteString(content)
	c.Assert(err, IsNil)

	c.Assert(CompressFile(f), IsNil)
	c.Assert(f.Close(), IsNil)

	gzFile, err := os.Open(path + ".gz")
	c.Assert(err, IsNil)
	defer func() { _ = gzFile.Close() }()

	gzReader, err := gzip.NewReader(gzFile)
	c.Assert(err, IsNil)
	decoded, err := io.ReadAll(gzReader)
	c.Assert(err, IsNil)
	c.Check(string(decoded), Equals, content)

	xzFile, err := os.Open(path + ".xz")
	c.Assert(err, IsNil)
	defer func() { _ = xzFile.Close() }()

	xzReader, err := xz.NewReader(xzFile)
	c.Assert(err, IsNil)
	decoded, err = io.ReadAll(xzReader)
	c.Assert(err, IsNil)
	c.Check(string(decoded), Equals, content)
}

func (s *CompressSuite) TestCopyFile(c *C) {
	dir := c.MkDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")

	c.Assert(os.WriteFile(src, []byte("payload"), 0644), IsNil)
	c.Assert(CopyFile(src, dst), IsNil)

	content, err := os.ReadFile(dst)
	c.Assert(err, IsNil)
	c.Check(string(content), Equals, "payload")

	c.Check(CopyFile(filepath.Join(dir, "missing"), dst), NotNil)
}
