package deb

import (
	"strings"

	. "gopkg.in/check.v1"
)

type CopyrightSuite struct{}

var _ = Suite(&CopyrightSuite{})

const dep5Copyright = `Format: https://www.debian.org/doc/packaging-manuals/copyright-format/1.0/
Upstream-Name: hello
Upstream-Contact: Sample Upstream <upstream@example.com>

Files: *
Copyright: 1992-2026 Free Software Foundation, Inc.
License: GPL-3+
 This program is free software: you can redistribute it and/or modify
 it under the terms of the GNU General Public License.

Files: contrib/*
Copyright: 2010 Somebody
License: Expat

Files: debian/*
Copyright: 2026 The Maintainer
License: GPL-2+

License: GPL-3+
 On Debian systems the full text can be found in
 /usr/share/common-licenses/GPL-3.
`

func (s *CopyrightSuite) TestParseDep5(c *C) {
	copyright, err := NewCopyright(strings.NewReader(dep5Copyright))
	c.Assert(err, IsNil)

	c.Check(copyright.MachineReadable, Equals, true)
	c.Check(copyright.UpstreamName, Equals, "hello")
	c.Check(copyright.UpstreamContact, Equals, "Sample Upstream <upstream@example.com>")
	// the debian/* paragraph covers packaging, not upstream licensing
	c.Check(copyright.Licenses, DeepEquals, []string{"GPL-3+", "Expat"})
}

func (s *CopyrightSuite) TestParseFreeForm(c *C) {
	copyright, err := NewCopyright(strings.NewReader(
		"This package was put together by somebody in 1998.\n\nIt is released under the GPL.\n"))
	c.Assert(err, IsNil)

	c.Check(copyright.MachineReadable, Equals, false)
	c.Check(copyright.Licenses, HasLen, 0)
}

func (s *CopyrightSuite) TestParseMissingLicense(c *C) {
	input := "Format: https://www.debian.org/doc/packaging-manuals/copyright-format/1.0/\n\n" +
		"Files: *\nCopyright: 2026 Somebody\n"

	_, err := NewCopyright(strings.NewReader(input))
	c.Check(err, ErrorMatches, ".*has no License field")
	c.Check(IsValidationError(err), Equals, true)
}

func (s *CopyrightSuite) TestParseEmpty(c *C) {
	copyright, err := NewCopyright(strings.NewReader(""))
	c.Assert(err, IsNil)
	c.Check(copyright.MachineReadable, Equals, false)
}
