package utils

import (
	. "gopkg.in/check.v1"
)

type ListSuite struct{}

var _ = Suite(&ListSuite{})

func (s *ListSuite) TestStrSliceHasItem(c *C) {
	c.Check(StrSliceHasItem([]string{"a", "b"}, "b"), Equals, true)
	c.Check(StrSliceHasItem([]string{"a", "b"}, "c"), Equals, false)
	c.Check(StrSliceHasItem(nil, "a"), Equals, false)
}

func (s *ListSuite) TestStrSliceDeduplicate(c *C) {
	c.Check(StrSliceDeduplicate([]string{"a", "b", "a", "c", "b"}), DeepEquals, []string{"a", "b", "c"})
	c.Check(StrSliceDeduplicate([]string{"a"}), DeepEquals, []string{"a"})
}

func (s *ListSuite) TestStringsIsSubset(c *C) {
	c.Check(StringsIsSubset([]string{"a"}, []string{"a", "b"}, "%s is missing"), IsNil)

	err := StringsIsSubset([]string{"a", "c"}, []string{"a", "b"}, "%s is missing")
	c.Check(err, ErrorMatches, "c is missing")
}
