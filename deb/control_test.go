package deb

import (
	"strings"

	. "gopkg.in/check.v1"
)

type ControlSuite struct{}

var _ = Suite(&ControlSuite{})

const controlFile = `Source: hello
Section: devel
Priority: optional
Maintainer: Santiago Vila <sanvila@debian.org>
Build-Depends: debhelper-compat (= 12), gettext
Standards-Version: 4.3.0
Homepage: https://www.gnu.org/software/hello/
Vcs-Git: https://salsa.debian.org/sanvila/hello.git

Package: hello
Architecture: any
Depends: ${shlibs:Depends}, ${misc:Depends}
Description: example package based on GNU hello
 The GNU hello program produces a familiar, friendly greeting.

Package: hello-doc
Architecture: all
Section: doc
Description: documentation for GNU hello
`

func (s *ControlSuite) TestParse(c *C) {
	control, err := NewControl(strings.NewReader(controlFile))
	c.Assert(err, IsNil)

	c.Check(control.Source.Source, Equals, "hello")
	c.Check(control.Source.Maintainer, Equals, "Santiago Vila <sanvila@debian.org>")
	c.Check(control.Source.Section, Equals, "devel")
	c.Check(control.Source.VcsGit, Equals, "https://salsa.debian.org/sanvila/hello.git")
	c.Check(control.Source.BuildDepends, DeepEquals, []string{"debhelper-compat", "gettext"})

	c.Assert(control.Binaries, HasLen, 2)
	c.Check(control.Binaries[0].Package, Equals, "hello")
	c.Check(control.Binaries[0].Architecture, Equals, "any")
	c.Check(strings.HasPrefix(strings.TrimSpace(control.Binaries[0].Description), "example package"), Equals, true)
	c.Check(control.Binaries[1].Package, Equals, "hello-doc")
	c.Check(control.Binaries[1].Section, Equals, "doc")
}

func (s *ControlSuite) TestParseNoBinary(c *C) {
	_, err := NewControl(strings.NewReader("Source: x\nMaintainer: A <a@b.c>\n"))
	c.Check(err, ErrorMatches, ".*no binary stanza found")
	c.Check(IsValidationError(err), Equals, true)
}

func (s *ControlSuite) TestParseMissingMandatory(c *C) {
	_, err := NewControl(strings.NewReader("Source: x\n\nPackage: x-bin\n"))
	c.Check(err, ErrorMatches, ".*source stanza is missing mandatory field Maintainer")

	_, err = NewControl(strings.NewReader(
		"Source: x\nMaintainer: A <a@b.c>\n\nPackage: x-bin\nArchitecture: any\n"))
	c.Check(err, ErrorMatches, ".*binary stanza is missing mandatory field Description")
}

func (s *ControlSuite) TestParseEmpty(c *C) {
	_, err := NewControl(strings.NewReader(""))
	c.Check(err, ErrorMatches, ".*no source stanza found")
}
