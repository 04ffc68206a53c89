package deb

import (
	. "gopkg.in/check.v1"
)

type SectionSuite struct{}

var _ = Suite(&SectionSuite{})

func (s *SectionSuite) TestParseSection(c *C) {
	component, section := ParseSection("devel")
	c.Check([]string{component, section}, DeepEquals, []string{"main", "devel"})

	component, section = ParseSection("contrib/games")
	c.Check([]string{component, section}, DeepEquals, []string{"contrib", "games"})

	component, section = ParseSection("non-free/admin")
	c.Check([]string{component, section}, DeepEquals, []string{"non-free", "admin"})

	component, section = ParseSection("main/utils")
	c.Check([]string{component, section}, DeepEquals, []string{"main", "utils"})

	// unknown prefix folds into the section under main
	component, section = ParseSection("weird/utils")
	c.Check([]string{component, section}, DeepEquals, []string{"main", "weird_utils"})
}
