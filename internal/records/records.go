// Package records walks a variant's ordered group list against a cursor and
// produces the decoded, validated file.
package records

import (
	"errors"
	"fmt"
	"strings"

	"github.com/malaterre/GEMS-PARM-01/internal/check"
	"github.com/malaterre/GEMS-PARM-01/internal/cursor"
	"github.com/malaterre/GEMS-PARM-01/internal/header"
	"github.com/malaterre/GEMS-PARM-01/internal/variant"
)

// ErrLengthMismatch is returned when a fully derived layout does not end
// exactly at the end of the source.
var ErrLengthMismatch = errors.New("length mismatch")

// LengthMismatchError reports the expected and actual consumed length.
type LengthMismatchError struct {
	Expected int64
	Actual   int64
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("length mismatch: layout ends at %d, source ends at %d", e.Expected, e.Actual)
}

func (e *LengthMismatchError) Unwrap() error { return ErrLengthMismatch }

// TextValue is one trimmed text sub-field.
type TextValue struct {
	Name   string `json:"name" yaml:"name"`
	Offset int64  `json:"offset" yaml:"offset"`
	Value  string `json:"value" yaml:"value"`
}

// Group is one decoded record group.
type Group struct {
	Name   string       `json:"name" yaml:"name"`
	Kind   variant.Kind `json:"-" yaml:"-"`
	Offset int64        `json:"offset" yaml:"offset"`
	Width  int          `json:"width" yaml:"width"`
	Words  []uint32     `json:"words,omitempty" yaml:"words,omitempty"`
	Text   []TextValue  `json:"text,omitempty" yaml:"text,omitempty"`
	// Raw holds the bytes of an opaque region.
	Raw []byte `json:"-" yaml:"-"`
}

// Span is a byte range of the source.
type Span struct {
	Offset int64 `json:"offset" yaml:"offset"`
	Length int64 `json:"length" yaml:"length"`
}

// File is the decoded form of one source.
type File struct {
	Variant string
	Length  int64
	Order   cursor.ByteOrder
	Status  variant.Status
	Header  header.Header
	Groups  []Group
	// Unparsed covers the bytes after the last derived group.
	Unparsed Span
}

// Group returns the decoded group with the given name.
func (f *File) Group(name string) (Group, bool) {
	for _, g := range f.Groups {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}

// Decode sniffs the byte order, decodes and checks the fixed header, then
// walks d.Groups in order, stopping at the first failure.
func Decode(c *cursor.Cursor, d variant.Descriptor) (*File, error) {
	order, err := c.Sniff()
	if err != nil {
		return nil, err
	}
	if !d.AllowsOrder(order) {
		return nil, orderViolation(d, order)
	}
	h, err := header.Decode(c, d.Constants, d.Group6)
	if err != nil {
		return nil, err
	}
	f := &File{
		Variant: d.Name,
		Length:  c.Len(),
		Order:   order,
		Status:  d.Status,
		Header:  h,
		Groups:  make([]Group, 0, len(d.Groups)),
	}

	vectors := make(map[string][]uint32, header.Groups+len(d.Groups))
	for i, g := range h.Groups() {
		i, g := i, g
		vectors[header.GroupName(i)] = g[:]
	}

	for _, spec := range d.Groups {
		g, err := decodeGroup(c, spec, vectors)
		if err != nil {
			return nil, err
		}
		if spec.Kind == variant.KindVector {
			vectors[spec.Name] = g.Words
		}
		f.Groups = append(f.Groups, g)
	}

	if d.ExpectedLength != 0 {
		if c.Pos() != d.ExpectedLength {
			return nil, &LengthMismatchError{Expected: d.ExpectedLength, Actual: c.Pos()}
		}
		if c.Len() != d.ExpectedLength {
			return nil, &LengthMismatchError{Expected: d.ExpectedLength, Actual: c.Len()}
		}
	}
	f.Unparsed = Span{Offset: c.Pos(), Length: c.Remaining()}
	return f, nil
}

func orderViolation(d variant.Descriptor, got cursor.ByteOrder) error {
	want := make([]string, len(d.Orders))
	for i, o := range d.Orders {
		want[i] = o.String()
	}
	return &check.Violation{
		Field:    "byte_order",
		Offset:   0,
		Expected: strings.Join(want, "|"),
		Actual:   got.String(),
	}
}

func decodeGroup(c *cursor.Cursor, spec variant.GroupSpec, vectors map[string][]uint32) (Group, error) {
	g := Group{Name: spec.Name, Kind: spec.Kind, Offset: c.Pos(), Width: spec.Width()}
	switch spec.Kind {
	case variant.KindVector:
		words, err := c.ReadWords(spec.Words)
		if err != nil {
			return Group{}, err
		}
		if err := checkVector(spec, g.Offset, words, vectors); err != nil {
			return Group{}, err
		}
		g.Words = words
	case variant.KindPadding:
		b, err := c.ReadBytes(spec.Bytes)
		if err != nil {
			return Group{}, err
		}
		if err := check.AllZero(spec.Name, g.Offset, b); err != nil {
			return Group{}, err
		}
	case variant.KindText:
		b, err := c.ReadBytes(g.Width)
		if err != nil {
			return Group{}, err
		}
		text, err := splitText(spec, g.Offset, b)
		if err != nil {
			return Group{}, err
		}
		g.Text = text
	case variant.KindOpaque:
		b, err := c.ReadBytes(spec.Bytes)
		if err != nil {
			return Group{}, err
		}
		g.Raw = b
	default:
		return Group{}, fmt.Errorf("group %s: unknown kind %s", spec.Name, spec.Kind)
	}
	return g, nil
}

func checkVector(spec variant.GroupSpec, offset int64, words []uint32, vectors map[string][]uint32) error {
	switch spec.Check.Kind {
	case variant.CheckConstant:
		return check.EqualsConstant(spec.Name, offset, words, spec.Check.Want)
	case variant.CheckEquals:
		return check.Equals(spec.Name, offset, words, spec.Check.Field, vectors[spec.Check.Field])
	case variant.CheckOneOf:
		for i, w := range words {
			name := spec.Name
			if len(words) > 1 {
				name = fmt.Sprintf("%s[%d]", spec.Name, i)
			}
			if err := check.OneOf(name, offset+int64(i*cursor.WordSize), w, spec.Check.Candidates); err != nil {
				return err
			}
		}
	}
	return nil
}

// padding that may follow text inside a fixed-width field
const textPadding = "\x00 "

func splitText(spec variant.GroupSpec, offset int64, b []byte) ([]TextValue, error) {
	out := make([]TextValue, 0, len(spec.Fields))
	pos := 0
	for _, field := range spec.Fields {
		raw := b[pos : pos+field.Width]
		at := offset + int64(pos)
		name := spec.Name + "." + field.Name
		if err := check.Printable(name, at, raw); err != nil {
			return nil, err
		}
		out = append(out, TextValue{
			Name:   field.Name,
			Offset: at,
			Value:  strings.TrimRight(string(raw), textPadding),
		})
		pos += field.Width
	}
	return out, nil
}
