package deb

import (
	"io"

	"github.com/pkg/errors"
	. "gopkg.in/check.v1"
)

type ErrorsSuite struct{}

var _ = Suite(&ErrorsSuite{})

func (s *ErrorsSuite) TestIsValidationError(c *C) {
	c.Check(IsValidationError(&ChecksumError{File: "f", Reason: "r"}), Equals, true)
	c.Check(IsValidationError(&SignatureError{Reason: "r"}), Equals, true)
	c.Check(IsValidationError(&ChangesError{Reason: "r"}), Equals, true)
	c.Check(IsValidationError(&DscError{Reason: "r"}), Equals, true)
	c.Check(IsValidationError(&ControlError{Reason: "r"}), Equals, true)
	c.Check(IsValidationError(&ChangelogError{Reason: "r"}), Equals, true)
	c.Check(IsValidationError(&CopyrightError{Reason: "r"}), Equals, true)
	c.Check(IsValidationError(&SourceError{Reason: "r"}), Equals, true)
	c.Check(IsValidationError(&OriginError{Reason: "r"}), Equals, true)

	c.Check(IsValidationError(io.EOF), Equals, false)
	c.Check(IsValidationError(errors.New("boom")), Equals, false)
	c.Check(IsValidationError(nil), Equals, false)
}

func (s *ErrorsSuite) TestWrappedValidationError(c *C) {
	err := errors.Wrap(&ChangesError{Reason: "bad field"}, "while validating")
	c.Check(IsValidationError(err), Equals, true)
	c.Check(err, ErrorMatches, "while validating: bad field")
}
