// Package utils collects various services: checksums, compression, config, subprocess runs
package utils

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"os"
)

// ChecksumInfo represents checksums for a single file
type ChecksumInfo struct {
	Size   int64
	MD5    string
	SHA1   string
	SHA256 string
	SHA512 string
}

// Complete checks if all the checksums are present
func (cksum *ChecksumInfo) Complete() bool {
	return cksum.SHA1 != "" && cksum.SHA256 != ""
}

// ChecksumsForFile generates size, MD5, SHA1, SHA256 & SHA512 checksums for given file
func ChecksumsForFile(path string) (ChecksumInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return ChecksumInfo{}, err
	}

	file, err := os.Open(path)
	if err != nil {
		return ChecksumInfo{}, err
	}
	defer func() { _ = file.Close() }()

	w := NewChecksumWriter()
	_, err = io.Copy(w, file)
	if err != nil {
		return ChecksumInfo{}, err
	}

	result := w.Sum()
	result.Size = st.Size()
	return result, nil
}

// ChecksumWriter is a writer that computes checksums of everything that is written to it
type ChecksumWriter struct {
	sum    ChecksumInfo
	hashes []hash.Hash
}

// Interface check
var (
	_ io.Writer = &ChecksumWriter{}
)

// NewChecksumWriter creates checksum calculator for MD5, SHA1, SHA256 & SHA512
func NewChecksumWriter() *ChecksumWriter {
	return &ChecksumWriter{
		hashes: []hash.Hash{md5.New(), sha1.New(), sha256.New(), sha512.New()},
	}
}

// Write implements io.Writer
func (c *ChecksumWriter) Write(p []byte) (n int, err error) {
	c.sum.Size += int64(len(p))
	for _, h := range c.hashes {
		_, _ = h.Write(p)
	}

	return len(p), nil
}

// Sum returns checksums of everything written so far
func (c *ChecksumWriter) Sum() ChecksumInfo {
	c.sum.MD5 = fmt.Sprintf("%x", c.hashes[0].Sum(nil))
	c.sum.SHA1 = fmt.Sprintf("%x", c.hashes[1].Sum(nil))
	c.sum.SHA256 = fmt.Sprintf("%x", c.hashes[2].Sum(nil))
	c.sum.SHA512 = fmt.Sprintf("%x", c.hashes[3].Sum(nil))

	return c.sum
}
