// Package check holds the stateless invariants that confirm a byte stream
// matches an assumed layout. Every failure carries the field name, the
// absolute byte offset and the expected and actual values, so a human can
// re-derive the layout from the message alone.
package check

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvariantViolation is returned for magic, constant and cross-field mismatches.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrPaddingNotZero is returned when a reserved region holds non-zero bytes.
	ErrPaddingNotZero = errors.New("padding not zero")
)

// Violation is a failed equality, membership or character check.
type Violation struct {
	Field    string
	Offset   int64
	Expected any
	Actual   any
	// Against names the field Expected was taken from, for cross-field checks.
	Against string
}

func (v *Violation) Error() string {
	if v.Against != "" {
		return fmt.Sprintf("invariant violation at offset %d: %s must equal %s (%v), got %v",
			v.Offset, v.Field, v.Against, v.Expected, v.Actual)
	}
	return fmt.Sprintf("invariant violation at offset %d: %s expected %v, got %v",
		v.Offset, v.Field, v.Expected, v.Actual)
}

func (v *Violation) Unwrap() error { return ErrInvariantViolation }

// PaddingError reports the first non-zero byte of a padding region.
type PaddingError struct {
	Field        string
	Offset       int64 // first non-zero byte
	RegionOffset int64
	Length       int
	Value        byte
}

func (e *PaddingError) Error() string {
	return fmt.Sprintf("padding not zero: %s [%d, +%d) has 0x%02X at offset %d",
		e.Field, e.RegionOffset, e.Length, e.Value, e.Offset)
}

func (e *PaddingError) Unwrap() error { return ErrPaddingNotZero }

// EqualsWord checks a single word against a constant.
func EqualsWord(field string, offset int64, got, want uint32) error {
	if got == want {
		return nil
	}
	return &Violation{Field: field, Offset: offset, Expected: want, Actual: got}
}

// EqualsConstant checks a vector element-wise against an expected vector.
func EqualsConstant(field string, offset int64, got, want []uint32) error {
	if slices.Equal(got, want) {
		return nil
	}
	return &Violation{Field: field, Offset: offset, Expected: slices.Clone(want), Actual: slices.Clone(got)}
}

// Equals checks that a vector repeats an earlier vector named other.
func Equals(field string, offset int64, got []uint32, other string, want []uint32) error {
	if slices.Equal(got, want) {
		return nil
	}
	return &Violation{
		Field:    field,
		Offset:   offset,
		Expected: slices.Clone(want),
		Actual:   slices.Clone(got),
		Against:  other,
	}
}

// AllZero checks that every byte of a reserved region is zero.
func AllZero(field string, offset int64, b []byte) error {
	for i, v := range b {
		if v != 0 {
			return &PaddingError{
				Field:        field,
				Offset:       offset + int64(i),
				RegionOffset: offset,
				Length:       len(b),
				Value:        v,
			}
		}
	}
	return nil
}

// OneOf checks that a word matches one of a small set of sentinels.
func OneOf(field string, offset int64, got uint32, candidates []uint32) error {
	if slices.Contains(candidates, got) {
		return nil
	}
	return &Violation{Field: field, Offset: offset, Expected: slices.Clone(candidates), Actual: got}
}

// Printable checks that a text field holds printable ASCII or NUL padding.
func Printable(field string, offset int64, b []byte) error {
	for i, v := range b {
		if v == 0 || (v >= 0x20 && v <= 0x7E) {
			continue
		}
		return &Violation{
			Field:    field,
			Offset:   offset + int64(i),
			Expected: "printable ASCII or NUL",
			Actual:   fmt.Sprintf("0x%02X", v),
		}
	}
	return nil
}
