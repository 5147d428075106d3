// Package testutil builds synthetic container files and loads fixtures.
package testutil

import (
	"github.com/malaterre/GEMS-PARM-01/internal/cursor"
	"github.com/malaterre/GEMS-PARM-01/internal/header"
	"github.com/malaterre/GEMS-PARM-01/internal/variant"
)

// Builder appends fields to a synthetic file in one byte order.
type Builder struct {
	order cursor.ByteOrder
	buf   []byte
}

// NewBuilder returns an empty builder.
func NewBuilder(order cursor.ByteOrder) *Builder {
	return &Builder{order: order}
}

// Header appends an encoded fixed header.
func (b *Builder) Header(h header.Header) *Builder {
	b.buf = append(b.buf, header.Encode(h, b.order)...)
	return b
}

// Words appends 32-bit words.
func (b *Builder) Words(ws ...uint32) *Builder {
	var word [4]byte
	for _, w := range ws {
		b.order.Binary().PutUint32(word[:], w)
		b.buf = append(b.buf, word[:]...)
	}
	return b
}

// Zeros appends n zero bytes.
func (b *Builder) Zeros(n int) *Builder {
	b.buf = append(b.buf, make([]byte, n)...)
	return b
}

// Text appends s right-padded with pad to width bytes.
func (b *Builder) Text(width int, s string, pad byte) *Builder {
	field := make([]byte, width)
	for i := range field {
		field[i] = pad
	}
	copy(field, s)
	b.buf = append(b.buf, field...)
	return b
}

// Raw appends bytes verbatim.
func (b *Builder) Raw(p []byte) *Builder {
	b.buf = append(b.buf, p...)
	return b
}

// PadTo appends zeros until the file is n bytes long.
func (b *Builder) PadTo(n int) *Builder {
	if len(b.buf) < n {
		b.Zeros(n - len(b.buf))
	}
	return b
}

// Len returns the current length.
func (b *Builder) Len() int {
	return len(b.buf)
}

// Bytes returns a copy of the built file.
func (b *Builder) Bytes() []byte {
	return append([]byte(nil), b.buf...)
}

// ValidHeader returns a header satisfying d's constants, using the values
// printed by the reference tool for the other words.
func ValidHeader(d variant.Descriptor) header.Header {
	return header.Header{
		Unk1:   d.Constants.Magic,
		Unk2:   [4]uint32{320, header.Unk2Slot1, 364, d.Constants.Unk2Slot3},
		Unk3:   [4]uint32{196608, uint32(d.Length) - 16, d.Constants.Unk3Slot2, header.Unk3Slot3},
		Unk4:   [4]uint32{11, 27, 98, 638685450},
		Unk5:   [4]uint32{11, 27, 98, 638685450},
		Unk6:   [4]uint32{971489109, header.Unk6Slot1, 0, header.Unk6Slot3},
		Layout: d.Group6,
	}
}

// Acquisition fills the fields of the acquisition text record.
type Acquisition struct {
	Serial string
	Date   string
	Flag   string
	Time   string
	Status string
}

// ValidFile builds a file of d.Length bytes that decodes cleanly: valid
// header, the groups of d filled with consistent values, then zeros.
func ValidFile(d variant.Descriptor, order cursor.ByteOrder, acq Acquisition) []byte {
	h := ValidHeader(d)
	b := NewBuilder(order).Header(h)
	vectors := map[string][]uint32{}
	for i, g := range h.Groups() {
		i, g := i, g
		vectors[header.GroupName(i)] = append([]uint32(nil), g[:]...)
	}
	for _, g := range d.Groups {
		switch g.Kind {
		case variant.KindVector:
			words := make([]uint32, g.Words)
			switch g.Check.Kind {
			case variant.CheckConstant:
				copy(words, g.Check.Want)
			case variant.CheckEquals:
				copy(words, vectors[g.Check.Field])
			case variant.CheckOneOf:
				for i := range words {
					words[i] = g.Check.Candidates[0]
				}
			}
			vectors[g.Name] = words
			b.Words(words...)
		case variant.KindText:
			values := map[string]string{
				"serial": acq.Serial,
				"date":   acq.Date,
				"flag":   acq.Flag,
				"time":   acq.Time,
				"status": acq.Status,
			}
			for _, f := range g.Fields {
				b.Text(f.Width, values[f.Name], ' ')
			}
		default:
			b.Zeros(g.Width())
		}
	}
	return b.PadTo(int(d.Length)).Bytes()
}
