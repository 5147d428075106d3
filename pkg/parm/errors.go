package parm

import (
	"errors"

	"github.com/malaterre/GEMS-PARM-01/internal/check"
	"github.com/malaterre/GEMS-PARM-01/internal/cursor"
	"github.com/malaterre/GEMS-PARM-01/internal/records"
	"github.com/malaterre/GEMS-PARM-01/internal/variant"
)

// Sentinel errors. Every typed error below unwraps to one of them.
var (
	ErrMalformedHeader    = cursor.ErrMalformedHeader
	ErrUnsupportedLength  = variant.ErrUnsupportedLength
	ErrTruncatedInput     = cursor.ErrTruncatedInput
	ErrInvariantViolation = check.ErrInvariantViolation
	ErrPaddingNotZero     = check.ErrPaddingNotZero
	ErrLengthMismatch     = records.ErrLengthMismatch
	// ErrPartialVariant is returned in strict mode for layouts whose body is
	// not derived.
	ErrPartialVariant = errors.New("partial variant")
)

type (
	MalformedHeaderError   = cursor.MalformedHeaderError
	UnsupportedLengthError = variant.UnsupportedLengthError
	TruncatedError         = cursor.TruncatedError
	Violation              = check.Violation
	PaddingError           = check.PaddingError
	LengthMismatchError    = records.LengthMismatchError
)

// Kind labels an error for logs and metrics. It returns "" for nil and "io"
// for anything that is not a decoding error.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedHeader):
		return "malformed_header"
	case errors.Is(err, ErrUnsupportedLength):
		return "unsupported_length"
	case errors.Is(err, ErrTruncatedInput):
		return "truncated_input"
	case errors.Is(err, ErrInvariantViolation):
		return "invariant_violation"
	case errors.Is(err, ErrPaddingNotZero):
		return "padding_not_zero"
	case errors.Is(err, ErrLengthMismatch):
		return "length_mismatch"
	case errors.Is(err, ErrPartialVariant):
		return "partial_variant"
	default:
		return "io"
	}
}
