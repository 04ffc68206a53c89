package deb

import (
	. "gopkg.in/check.v1"
)

type PoolSuite struct{}

var _ = Suite(&PoolSuite{})

func (s *PoolSuite) TestPoolBucket(c *C) {
	c.Check(PoolBucket("hello"), Equals, "h")
	c.Check(PoolBucket("libssl"), Equals, "libs")
	c.Check(PoolBucket("lib"), Equals, "l")
	c.Check(PoolBucket(""), Equals, "")
}
