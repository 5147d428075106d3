package parm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/malaterre/GEMS-PARM-01/internal/header"
	"github.com/malaterre/GEMS-PARM-01/internal/variant"
)

// Headers implements output.TableRenderer.
func (r Result) Headers() []string {
	return []string{"Field", "Offset", "Kind", "Value"}
}

// Rows lists one row per numeric group, one per text sub-field, and the
// unparsed trailing span when there is one.
func (r Result) Rows() [][]string {
	if r.File == nil {
		return nil
	}
	f := r.File
	var rows [][]string
	for i, g := range f.Header.Groups() {
		i, g := i, g
		value := joinWords(g[:])
		if i == header.Groups-1 {
			value = joinValues(f.Header.Group6Values())
		}
		rows = append(rows, []string{header.GroupName(i), offset(int64(i * header.GroupSize)), "vector", value})
	}
	for _, g := range f.Groups {
		switch g.Kind {
		case variant.KindVector:
			rows = append(rows, []string{g.Name, offset(g.Offset), g.Kind.String(), joinWords(g.Words)})
		case variant.KindText:
			for _, t := range g.Text {
				rows = append(rows, []string{g.Name + "." + t.Name, offset(t.Offset), g.Kind.String(), t.Value})
			}
		case variant.KindPadding:
			rows = append(rows, []string{g.Name, offset(g.Offset), g.Kind.String(), fmt.Sprintf("%d zero bytes", g.Width)})
		default:
			rows = append(rows, []string{g.Name, offset(g.Offset), g.Kind.String(), fmt.Sprintf("%d bytes", g.Width)})
		}
	}
	if f.Unparsed.Length > 0 {
		rows = append(rows, []string{"unparsed", offset(f.Unparsed.Offset), "unparsed", fmt.Sprintf("%d bytes", f.Unparsed.Length)})
	}
	return rows
}

func offset(n int64) string {
	return strconv.FormatInt(n, 10)
}

// VariantListing renders the layouts of a registry.
type VariantListing []variant.Descriptor

// Variants returns the built-in layouts ordered by length.
func Variants() VariantListing {
	return VariantListing(variant.Default().Descriptors())
}

// Headers implements output.TableRenderer.
func (l VariantListing) Headers() []string {
	return []string{"Length", "Name", "Status", "Magic", "Unk2[3]", "Unk3[2]", "Group6", "Groups", "Order"}
}

// Rows implements output.TableRenderer.
func (l VariantListing) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, s := range l.summaries() {
		rows = append(rows, []string{
			strconv.FormatInt(s.Length, 10),
			s.Name,
			s.Status,
			joinWords(s.Magic),
			strconv.FormatUint(uint64(s.Unk2), 10),
			strconv.FormatUint(uint64(s.Unk3), 10),
			s.Group6,
			strings.Join(s.Groups, " "),
			orderString(s.Orders),
		})
	}
	return rows
}

// variantSummary is the serializable view of a descriptor.
type variantSummary struct {
	Length int64    `json:"length" yaml:"length"`
	Name   string   `json:"name" yaml:"name"`
	Status string   `json:"status" yaml:"status"`
	Magic  []uint32 `json:"magic" yaml:"magic"`
	Unk2   uint32   `json:"unk2_3" yaml:"unk2_3"`
	Unk3   uint32   `json:"unk3_2" yaml:"unk3_2"`
	Group6 string   `json:"group6" yaml:"group6"`
	Groups []string `json:"groups,omitempty" yaml:"groups,omitempty"`
	Orders []string `json:"byte_orders,omitempty" yaml:"byte_orders,omitempty"`
	Note   string   `json:"note,omitempty" yaml:"note,omitempty"`
}

func (l VariantListing) summaries() []variantSummary {
	out := make([]variantSummary, 0, len(l))
	for _, d := range l {
		d := d
		s := variantSummary{
			Length: d.Length,
			Name:   d.Name,
			Status: d.Status.String(),
			Magic:  d.Constants.Magic[:],
			Unk2:   d.Constants.Unk2Slot3,
			Unk3:   d.Constants.Unk3Slot2,
			Group6: layoutString(d.Group6),
			Note:   d.Note,
		}
		for _, o := range d.Orders {
			s.Orders = append(s.Orders, o.String())
		}
		for _, g := range d.Groups {
			s.Groups = append(s.Groups, fmt.Sprintf("%s:%s/%d", g.Name, g.Kind, g.Width()))
		}
		out = append(out, s)
	}
	return out
}

// MarshalJSON encodes the listing as a list of layout summaries.
func (l VariantListing) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.summaries())
}

// MarshalYAML encodes the listing as a list of layout summaries.
func (l VariantListing) MarshalYAML() (any, error) {
	return l.summaries(), nil
}

func layoutString(l header.Layout) string {
	parts := make([]string, len(l))
	for i, k := range l {
		parts[i] = k.String()
	}
	return strings.Join(parts, ",")
}

func orderString(orders []string) string {
	if len(orders) == 0 {
		return "any"
	}
	return strings.Join(orders, ",")
}
