// Package errors provides error handling for kpix.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details
//
// Usage:
//
//	// Wrap with context and classify
//	if err != nil {
//	    return errors.Mark(errors.Wrapf(err, "failed to open %s", path), errors.ErrSourceFile)
//	}
//
//	// Add hints for users
//	return errors.WithHint(err, "is Elasticsearch running on ES_HOST:ES_PORT?")
//
//	// Check errors
//	if errors.Is(err, errors.ErrConnection) {
//	    // store unreachable
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapAll      = crdb.UnwrapAll
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// Import error taxonomy. Every failure surfaced by an import is marked with
// exactly one of these so callers can classify it with errors.Is.
var (
	// ErrSourceFile indicates the source file is missing or unreadable
	ErrSourceFile = New("source file error")

	// ErrMalformedInput indicates the delimited text could not be parsed into a table
	ErrMalformedInput = New("malformed input")

	// ErrConnection indicates the document store could not be reached
	ErrConnection = New("store unreachable")

	// ErrBulkWrite indicates the document store rejected some or all of a bulk request
	ErrBulkWrite = New("bulk write rejected")

	// ErrInvalidConfig indicates the effective configuration failed validation
	ErrInvalidConfig = New("invalid configuration")
)

// IsInputError reports whether err happened before any network call was made.
func IsInputError(err error) bool {
	return err != nil && IsAny(err, ErrSourceFile, ErrMalformedInput)
}

// Category returns a short label for the taxonomy bucket err belongs to,
// or "internal" when it carries no marker.
func Category(err error) string {
	switch {
	case err == nil:
		return ""
	case Is(err, ErrSourceFile):
		return "source"
	case Is(err, ErrMalformedInput):
		return "input"
	case Is(err, ErrConnection):
		return "connection"
	case Is(err, ErrBulkWrite):
		return "bulk"
	case Is(err, ErrInvalidConfig):
		return "config"
	default:
		return "internal"
	}
}
