// Package catalog implements the editgroup-mediated mutation engine: the
// editor/editgroup/edit/revision/ident data model and the transactional
// protocol that turns staged edits into an accepted, linearized changelog.
package catalog

import (
	"fmt"

	"github.com/mm--/fatcat/pkg/validate"
)

// Kind classifies a catalog error so the HTTP boundary (internal/api) can
// pick a status code without string matching, mirroring spec.md §7's
// closed error taxonomy.
type Kind int

const (
	// InvalidFatcatId marks a malformed public identifier.
	InvalidFatcatId Kind = iota
	// MalformedExternalId marks a value that failed an identifier
	// syntax check.
	MalformedExternalId
	// MalformedChecksum marks a value that failed a checksum/hash
	// format check.
	MalformedChecksum
	// NotInControlledVocabulary marks an unknown release_type or
	// contrib.role value.
	NotInControlledVocabulary
	// MissingOrMultipleExternalId marks a lookup call that did not
	// supply exactly one external-identifier parameter.
	MissingOrMultipleExternalId
	// EditgroupAlreadyAccepted marks an acceptance race or a second
	// accept of the same editgroup.
	EditgroupAlreadyAccepted
	// NotFound marks an absent or tombstoned ident, edit, or revision.
	NotFound
	// OtherBadRequest marks any other constraint violation or
	// malformed request (invalid UUID, redirect-chain violation, bad
	// ident kind, oversize batch).
	OtherBadRequest
	// Internal marks an unexpected database or codec failure.
	Internal
)

func (k Kind) String() string {
	switch k {
	case InvalidFatcatId:
		return "InvalidFatcatId"
	case MalformedExternalId:
		return "MalformedExternalId"
	case MalformedChecksum:
		return "MalformedChecksum"
	case NotInControlledVocabulary:
		return "NotInControlledVocabulary"
	case MissingOrMultipleExternalId:
		return "MissingOrMultipleExternalId"
	case EditgroupAlreadyAccepted:
		return "EditgroupAlreadyAccepted"
	case NotFound:
		return "NotFound"
	case OtherBadRequest:
		return "OtherBadRequest"
	case Internal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// HTTPStatus maps a Kind to the status code spec.md §7 assigns it.
func (k Kind) HTTPStatus() int {
	switch k {
	case NotFound:
		return 404
	case Internal:
		return 500
	default:
		return 400
	}
}

// Error is the catalog package's error type: a Kind plus a human-readable
// message. It wraps an underlying cause where one exists, so callers can
// still use errors.Is/errors.As against database or codec errors.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds a catalog.Error with no underlying cause.
func NewError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError builds a catalog.Error wrapping cause.
func WrapError(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// wrapValidateError converts a pkg/validate.Error into the matching
// catalog.Error Kind, so the HTTP boundary's errorsAsCatalog walk can map
// it to a 400 instead of falling through to the 500 default. Returns nil
// unchanged and passes through anything that isn't a *validate.Error.
func wrapValidateError(err error) error {
	ve, ok := err.(*validate.Error)
	if !ok {
		return err
	}
	var kind Kind
	switch ve.Kind {
	case validate.KindMalformedChecksum:
		kind = MalformedChecksum
	case validate.KindNotInControlledVocabulary:
		kind = NotInControlledVocabulary
	default:
		kind = MalformedExternalId
	}
	return WrapError(kind, ve, "%s", ve.Message)
}

// IsNotFound reports whether err is (or wraps) a catalog.Error of kind
// NotFound.
func IsNotFound(err error) bool {
	var ce *Error
	if ok := asError(err, &ce); ok {
		return ce.Kind == NotFound
	}
	return false
}

func asError(err error, target **Error) bool {
	for err != nil {
		if ce, ok := err.(*Error); ok {
			*target = ce
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
