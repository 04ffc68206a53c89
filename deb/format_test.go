package deb

import (
	"bufio"
	"bytes"
	"strings"

	. "gopkg.in/check.v1"
)

type ControlFileSuite struct{}

var _ = Suite(&ControlFileSuite{})

const changesStanza = `Format: 1.8
Date: Thu, 28 May 2026 13:02:12 +0200
Source: bti
Binary: bti
Architecture: source
Version: 032-1
Distribution: unstable
Urgency: medium
Maintainer: gregor herrmann <gregoa@debian.org>
Changed-By: gregor herrmann <gregoa@debian.org>
Description:
 bti        - command line twitter client
Closes: 984512
Changes:
 bti (032-1) unstable; urgency=medium
 .
   * New upstream release.
Files:
 7d60c558d90139basomehash 22288 net extra bti_032-1.dsc
`

func (s *ControlFileSuite) TestReadStanza(c *C) {
	reader := NewControlFileReader(strings.NewReader(changesStanza))

	stanza, err := reader.ReadStanza()
	c.Assert(err, IsNil)
	c.Assert(stanza, NotNil)

	c.Check(stanza["Source"], Equals, "bti")
	c.Check(stanza["Version"], Equals, "032-1")
	c.Check(stanza["Files"], Equals, " 7d60c558d90139basomehash 22288 net extra bti_032-1.dsc\n")
	c.Check(stanza["Changes"], Equals, " bti (032-1) unstable; urgency=medium\n .\n   * New upstream release.\n")

	stanza, err = reader.ReadStanza()
	c.Assert(err, IsNil)
	c.Check(stanza, IsNil)
}

func (s *ControlFileSuite) TestReadMultipleStanzas(c *C) {
	input := "Source: pkg\nMaintainer: Somebody <some@example.com>\n\nPackage: pkg-bin\nArchitecture: any\n"
	stanzas, err := NewControlFileReader(strings.NewReader(input)).ReadAllStanzas()
	c.Assert(err, IsNil)
	c.Assert(stanzas, HasLen, 2)
	c.Check(stanzas[0]["Source"], Equals, "pkg")
	c.Check(stanzas[1]["Package"], Equals, "pkg-bin")
}

func (s *ControlFileSuite) TestCanonicalCase(c *C) {
	input := "source: pkg\nVCS-BROWSER: http://example.com\nchecksums-sha256:\n abc 1 f\n"
	stanza, err := NewControlFileReader(strings.NewReader(input)).ReadStanza()
	c.Assert(err, IsNil)

	c.Check(stanza["Source"], Equals, "pkg")
	c.Check(stanza["Vcs-Browser"], Equals, "http://example.com")
	c.Check(stanza["Checksums-SHA256"], Equals, "")
	c.Check(stanza["Checksums-Sha256"], Equals, " abc 1 f\n")
}

func (s *ControlFileSuite) TestMalformedStanza(c *C) {
	_, err := NewControlFileReader(strings.NewReader("no colon here\n")).ReadStanza()
	c.Check(err, Equals, ErrMalformedStanza)

	_, err = NewControlFileReader(strings.NewReader(" continuation first\n")).ReadStanza()
	c.Check(err, Equals, ErrMalformedStanza)
}

func (s *ControlFileSuite) TestWriteTo(c *C) {
	stanza := Stanza{
		"Package":   "bti",
		"Version":   "032-1",
		"Directory": "pool/main/b/bti",
	}

	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	err := stanza.Copy().WriteTo(w)
	c.Assert(err, IsNil)
	c.Assert(w.Flush(), IsNil)

	// canonical field order puts Package before Version before Directory
	c.Check(buf.String(), Equals, "Package: bti\nVersion: 032-1\nDirectory: pool/main/b/bti\n")
}

func (s *ControlFileSuite) TestLicenseIsMultiline(c *C) {
	input := "License: GPL-2+\n This program is free software\n"
	stanza, err := NewControlFileReader(strings.NewReader(input)).ReadStanza()
	c.Assert(err, IsNil)

	// multiline values keep the raw lines, leading whitespace included;
	// the first line of a DEP-5 License field is the synopsis
	c.Check(stanza["License"], Equals, " GPL-2+\n This program is free software\n")
	c.Check(strings.TrimSpace(strings.SplitN(stanza["License"], "\n", 2)[0]), Equals, "GPL-2+")
}
