package variant

import (
	"fmt"
	"slices"

	"github.com/malaterre/GEMS-PARM-01/internal/cursor"
	"github.com/malaterre/GEMS-PARM-01/internal/header"
)

// Status says how much of a variant's layout has been derived.
type Status uint8

const (
	// StatusComplete variants account for every byte of the file.
	StatusComplete Status = iota
	// StatusHeaderOnly variants carry nothing meaningful after the listed
	// groups; the rest is reported as trailing bytes.
	StatusHeaderOnly
	// StatusPartial variants have a body that is not derived yet.
	StatusPartial
)

func (s Status) String() string {
	switch s {
	case StatusComplete:
		return "complete"
	case StatusHeaderOnly:
		return "header-only"
	case StatusPartial:
		return "partial"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

// Kind is the type of one record group.
type Kind uint8

const (
	KindVector Kind = iota
	KindPadding
	KindText
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindVector:
		return "vector"
	case KindPadding:
		return "padding"
	case KindText:
		return "text"
	case KindOpaque:
		return "opaque"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// CheckKind selects the invariant run right after a vector is read.
type CheckKind uint8

const (
	CheckNone CheckKind = iota
	CheckConstant
	CheckEquals
	CheckOneOf
)

// Check is the invariant attached to a vector group.
type Check struct {
	Kind CheckKind
	// Want is the expected vector for CheckConstant.
	Want []uint32
	// Field names an earlier vector (header groups included) for CheckEquals.
	Field string
	// Candidates are the accepted values of every word for CheckOneOf.
	Candidates []uint32
}

// TextField is one fixed-width sub-field of a text record.
type TextField struct {
	Name  string
	Width int
}

// GroupSpec describes one group following the header.
type GroupSpec struct {
	Name  string
	Kind  Kind
	Words int // KindVector
	Bytes int // KindPadding, KindOpaque
	// Fields of a KindText record, in file order.
	Fields []TextField
	Check  Check
}

// Width returns the group's size in bytes.
func (g GroupSpec) Width() int {
	switch g.Kind {
	case KindVector:
		return g.Words * cursor.WordSize
	case KindText:
		n := 0
		for _, f := range g.Fields {
			n += f.Width
		}
		return n
	default:
		return g.Bytes
	}
}

// Vector returns a numeric vector group spec.
func Vector(name string, words int, chk Check) GroupSpec {
	return GroupSpec{Name: name, Kind: KindVector, Words: words, Check: chk}
}

// Padding returns a zero-padding group spec.
func Padding(name string, n int) GroupSpec {
	return GroupSpec{Name: name, Kind: KindPadding, Bytes: n}
}

// Opaque returns a group spec for a region whose extent is known but whose
// content is not derived.
func Opaque(name string, n int) GroupSpec {
	return GroupSpec{Name: name, Kind: KindOpaque, Bytes: n}
}

// Text returns a fixed-width text record spec.
func Text(name string, fields ...TextField) GroupSpec {
	return GroupSpec{Name: name, Kind: KindText, Fields: fields}
}

// Descriptor is the layout selected by a file length.
type Descriptor struct {
	// Name identifies the layout; aliases share the name of the layout they reuse.
	Name      string
	Length    int64
	Constants header.Constants
	Group6    header.Layout
	Status    Status
	// Orders lists the byte orders the layout is observed in; empty means any.
	Orders []cursor.ByteOrder
	Groups []GroupSpec
	// ExpectedLength, when non-zero, is the exact number of bytes the
	// header plus groups must consume.
	ExpectedLength int64
	Note           string
}

// AllowsOrder reports whether files of this layout may be stored in o.
func (d Descriptor) AllowsOrder(o cursor.ByteOrder) bool {
	return len(d.Orders) == 0 || slices.Contains(d.Orders, o)
}

// Consumed returns the number of bytes the header and groups cover.
func (d Descriptor) Consumed() int64 {
	n := int64(header.Size)
	for _, g := range d.Groups {
		n += int64(g.Width())
	}
	return n
}

// Alias returns a copy of d registered under another length.
func (d Descriptor) Alias(length int64) Descriptor {
	a := d.clone()
	a.Length = length
	if a.ExpectedLength != 0 {
		a.ExpectedLength = length
	}
	return a
}

func (d Descriptor) clone() Descriptor {
	out := d
	out.Orders = slices.Clone(d.Orders)
	out.Groups = make([]GroupSpec, len(d.Groups))
	for i, g := range d.Groups {
		g.Fields = slices.Clone(g.Fields)
		g.Check.Want = slices.Clone(g.Check.Want)
		g.Check.Candidates = slices.Clone(g.Check.Candidates)
		out.Groups[i] = g
	}
	return out
}

func (d Descriptor) validate() error {
	if d.Name == "" {
		return fmt.Errorf("variant for length %d has no name", d.Length)
	}
	if d.Length < header.Size {
		return fmt.Errorf("variant %s: length %d shorter than the %d-byte header", d.Name, d.Length, header.Size)
	}
	known := map[string]int{}
	for i := 0; i < header.Groups; i++ {
		known[header.GroupName(i)] = header.GroupWords
	}
	for _, g := range d.Groups {
		if g.Name == "" {
			return fmt.Errorf("variant %s: unnamed group", d.Name)
		}
		if _, dup := known[g.Name]; dup {
			return fmt.Errorf("variant %s: duplicate group name %q", d.Name, g.Name)
		}
		if g.Width() <= 0 {
			return fmt.Errorf("variant %s: group %s has no width", d.Name, g.Name)
		}
		if err := validateGroup(d.Name, g, known); err != nil {
			return err
		}
		known[g.Name] = g.Words
	}
	consumed := d.Consumed()
	if consumed > d.Length {
		return fmt.Errorf("variant %s: groups cover %d bytes, file is %d", d.Name, consumed, d.Length)
	}
	if d.ExpectedLength != 0 && (d.ExpectedLength != consumed || d.ExpectedLength != d.Length) {
		return fmt.Errorf("variant %s: expected length %d, groups cover %d, file is %d",
			d.Name, d.ExpectedLength, consumed, d.Length)
	}
	if d.Status == StatusComplete && d.ExpectedLength == 0 {
		return fmt.Errorf("variant %s: complete variants need an expected length", d.Name)
	}
	return nil
}

func validateGroup(name string, g GroupSpec, known map[string]int) error {
	if g.Kind == KindText {
		for _, f := range g.Fields {
			if f.Name == "" || f.Width <= 0 {
				return fmt.Errorf("variant %s: text group %s has an invalid field", name, g.Name)
			}
		}
	}
	if g.Check.Kind != CheckNone && g.Kind != KindVector {
		return fmt.Errorf("variant %s: group %s is not a vector but has a check", name, g.Name)
	}
	switch g.Check.Kind {
	case CheckConstant:
		if len(g.Check.Want) != g.Words {
			return fmt.Errorf("variant %s: group %s expects %d words, constant has %d",
				name, g.Name, g.Words, len(g.Check.Want))
		}
	case CheckEquals:
		words, ok := known[g.Check.Field]
		if !ok {
			return fmt.Errorf("variant %s: group %s refers to unknown or later field %q", name, g.Name, g.Check.Field)
		}
		if words != g.Words {
			return fmt.Errorf("variant %s: group %s has %d words, %s has %d", name, g.Name, g.Words, g.Check.Field, words)
		}
	case CheckOneOf:
		if len(g.Check.Candidates) == 0 {
			return fmt.Errorf("variant %s: group %s has an empty candidate set", name, g.Name)
		}
	}
	return nil
}
