package deb

import (
	"strings"

	. "gopkg.in/check.v1"
)

type ChangelogSuite struct{}

var _ = Suite(&ChangelogSuite{})

const changelogText = `hello (2.10-3) unstable; urgency=medium, binary-only=no

  * Standards update.
  * Fix watch file. Closes: #871622, #893083
  * Another fix (closes: 904004)

 -- Santiago Vila <sanvila@debian.org>  Thu, 28 May 2026 13:02:12 +0200

hello (2.10-2) unstable; urgency=low

  * Older entry, must be ignored.

 -- Santiago Vila <sanvila@debian.org>  Mon, 10 Feb 2026 10:00:00 +0100
`

func (s *ChangelogSuite) TestParse(c *C) {
	entry, err := NewChangelog(strings.NewReader(changelogText))
	c.Assert(err, IsNil)

	c.Check(entry.Source, Equals, "hello")
	c.Check(entry.Version.String(), Equals, "2.10-3")
	c.Check(entry.Distributions, DeepEquals, []string{"unstable"})
	c.Check(entry.Urgency, Equals, "medium")
	c.Check(entry.Author, Equals, "Santiago Vila <sanvila@debian.org>")
	c.Check(entry.Date, Equals, "Thu, 28 May 2026 13:02:12 +0200")
	c.Check(entry.Closes, DeepEquals, []int{871622, 893083, 904004})
	c.Check(strings.Contains(entry.Text, "Standards update."), Equals, true)
	c.Check(strings.Contains(entry.Text, "Older entry"), Equals, false)
}

func (s *ChangelogSuite) TestParseMultipleDistributions(c *C) {
	input := "pkg (1.0-1) stable unstable; urgency=low\n\n  * X.\n\n -- A B <a@b.c>  Thu, 28 May 2026 13:02:12 +0200\n"

	entry, err := NewChangelog(strings.NewReader(input))
	c.Assert(err, IsNil)
	c.Check(entry.Distributions, DeepEquals, []string{"stable", "unstable"})
}

func (s *ChangelogSuite) TestParseMalformedHeader(c *C) {
	_, err := NewChangelog(strings.NewReader("this is not a changelog\n"))
	c.Check(err, ErrorMatches, ".*malformed entry header.*")
	c.Check(IsValidationError(err), Equals, true)
}

func (s *ChangelogSuite) TestParseEmpty(c *C) {
	_, err := NewChangelog(strings.NewReader(""))
	c.Check(err, ErrorMatches, ".*no entries found")
}

func (s *ChangelogSuite) TestParseNoTrailer(c *C) {
	_, err := NewChangelog(strings.NewReader("pkg (1.0-1) unstable; urgency=low\n\n  * X.\n"))
	c.Check(err, ErrorMatches, ".*no trailer line")
}
