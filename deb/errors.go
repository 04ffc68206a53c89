package deb

import (
	"fmt"

	"github.com/pkg/errors"
)

// ValidationError is the family of package-author-caused failures: the
// pipeline rejects the upload and reports the reason to the uploader.
type ValidationError interface {
	error
	isValidation()
}

type validation struct{}

func (validation) isValidation() {}

// IsValidationError tells package-author-caused failures from internal ones
func IsValidationError(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

// ChecksumError means a declared file is missing or its digest doesn't match
type ChecksumError struct {
	validation
	File   string
	Reason string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("%s: %s", e.File, e.Reason)
}

// SignatureError means the document signature is absent, invalid or untrusted
type SignatureError struct {
	validation
	Reason string
}

func (e *SignatureError) Error() string {
	return e.Reason
}

// ChangesError means the .changes document is malformed or incomplete
type ChangesError struct {
	validation
	Reason string
}

func (e *ChangesError) Error() string {
	return e.Reason
}

// DscError means the .dsc document is malformed or incomplete
type DscError struct {
	validation
	Reason string
}

func (e *DscError) Error() string {
	return e.Reason
}

// ControlError means debian/control is malformed or incomplete
type ControlError struct {
	validation
	Reason string
}

func (e *ControlError) Error() string {
	return e.Reason
}

// ChangelogError means debian/changelog could not be parsed
type ChangelogError struct {
	validation
	Reason string
}

func (e *ChangelogError) Error() string {
	return e.Reason
}

// CopyrightError means machine-readable debian/copyright is malformed
type CopyrightError struct {
	validation
	Reason string
}

func (e *CopyrightError) Error() string {
	return e.Reason
}

// SourceError means source package extraction or its control files failed
type SourceError struct {
	validation
	Reason string
	Output string
}

func (e *SourceError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s:\n%s", e.Reason, e.Output)
	}
	return e.Reason
}

// OriginError means the upstream tarball conflicts with the official archive
type OriginError struct {
	validation
	File     string
	Expected string
	Actual   string
	Reason   string
}

func (e *OriginError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: checksum differs from official archive: %s != %s",
		e.File, e.Actual, e.Expected)
}
