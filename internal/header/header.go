// Package header decodes the fixed 96-byte record every variant starts with:
// six groups of four 32-bit words.
package header

import (
	"fmt"
	"math"

	"github.com/malaterre/GEMS-PARM-01/internal/check"
	"github.com/malaterre/GEMS-PARM-01/internal/cursor"
)

const (
	Groups     = 6
	GroupWords = 4
	GroupSize  = GroupWords * cursor.WordSize
	Size       = Groups * GroupSize // 0x60
)

// Values shared by every observed variant.
const (
	Unk2Slot1 uint32 = 0x10000
	Unk3Slot3 uint32 = 0
	Unk6Slot1 uint32 = 0
	Unk6Slot3 uint32 = 2
)

// SlotKind selects how a group-6 word is interpreted.
type SlotKind uint8

const (
	SlotUint32 SlotKind = iota
	SlotInt32
	SlotFloat32
)

func (k SlotKind) String() string {
	switch k {
	case SlotUint32:
		return "uint32"
	case SlotInt32:
		return "int32"
	case SlotFloat32:
		return "float32"
	default:
		return fmt.Sprintf("SlotKind(%d)", uint8(k))
	}
}

// Layout is the per-slot interpretation of group 6. Both layouts below are
// observed; the variant descriptor picks one.
type Layout [GroupWords]SlotKind

var (
	IntegerLayout = Layout{SlotUint32, SlotUint32, SlotUint32, SlotUint32}
	FloatLayout   = Layout{SlotFloat32, SlotFloat32, SlotInt32, SlotInt32}
)

// Constants are the variant-specific expected header values.
type Constants struct {
	Magic     [GroupWords]uint32 // unk1
	Unk2Slot3 uint32             // 2048 or 4096
	Unk3Slot2 uint32             // 8 or 12
}

// Header is one decoded fixed header. Words are kept raw; Group6Values
// applies the layout.
type Header struct {
	Unk1 [GroupWords]uint32
	Unk2 [GroupWords]uint32
	Unk3 [GroupWords]uint32
	Unk4 [GroupWords]uint32
	Unk5 [GroupWords]uint32
	Unk6 [GroupWords]uint32

	Order  cursor.ByteOrder
	Layout Layout
}

// GroupName returns "unk1".."unk6" for a zero-based group index.
func GroupName(i int) string {
	return fmt.Sprintf("unk%d", i+1)
}

// Groups returns the six groups in file order.
func (h *Header) Groups() [Groups][GroupWords]uint32 {
	return [Groups][GroupWords]uint32{h.Unk1, h.Unk2, h.Unk3, h.Unk4, h.Unk5, h.Unk6}
}

func (h *Header) group(i int) *[GroupWords]uint32 {
	switch i {
	case 0:
		return &h.Unk1
	case 1:
		return &h.Unk2
	case 2:
		return &h.Unk3
	case 3:
		return &h.Unk4
	case 4:
		return &h.Unk5
	default:
		return &h.Unk6
	}
}

// Group6Values returns group 6 typed per the header's layout: uint32,
// int32 or float32 per slot.
func (h *Header) Group6Values() []any {
	out := make([]any, GroupWords)
	for i, w := range h.Unk6 {
		switch h.Layout[i] {
		case SlotInt32:
			out[i] = int32(w)
		case SlotFloat32:
			out[i] = math.Float32frombits(w)
		default:
			out[i] = w
		}
	}
	return out
}

// Read decodes the six groups without checking any constant. It fails with
// a truncation error before reading anything if fewer than Size bytes remain.
func Read(c *cursor.Cursor, layout Layout) (Header, error) {
	return decode(c, layout, nil)
}

// Decode reads the header and checks the invariants group by group, in file
// order, so the first failure names the earliest mismatching word.
func Decode(c *cursor.Cursor, consts Constants, layout Layout) (Header, error) {
	return decode(c, layout, func(h *Header, g int, base int64) error {
		return validateGroup(h, g, base, consts)
	})
}

type groupCheck func(h *Header, g int, base int64) error

func decode(c *cursor.Cursor, layout Layout, after groupCheck) (Header, error) {
	if c.Remaining() < Size {
		return Header{}, &cursor.TruncatedError{Offset: c.Pos(), Need: Size, Have: c.Remaining()}
	}
	h := Header{Order: c.Order(), Layout: layout}
	base := c.Pos()
	for g := 0; g < Groups; g++ {
		words, err := c.ReadWords(GroupWords)
		if err != nil {
			return Header{}, err
		}
		copy(h.group(g)[:], words)
		if after != nil {
			if err := after(&h, g, base); err != nil {
				return Header{}, err
			}
		}
	}
	return h, nil
}

func slotOffset(base int64, g, slot int) int64 {
	return base + int64(g*GroupSize+slot*cursor.WordSize)
}

func slotName(g, slot int) string {
	return fmt.Sprintf("unk%d[%d]", g+1, slot)
}

func validateGroup(h *Header, g int, base int64, consts Constants) error {
	word := func(slot int, want uint32) error {
		return check.EqualsWord(slotName(g, slot), slotOffset(base, g, slot), h.group(g)[slot], want)
	}
	switch g {
	case 0:
		return check.EqualsConstant("unk1", base, h.Unk1[:], consts.Magic[:])
	case 1:
		if err := word(1, Unk2Slot1); err != nil {
			return err
		}
		return word(3, consts.Unk2Slot3)
	case 2:
		if err := word(2, consts.Unk3Slot2); err != nil {
			return err
		}
		return word(3, Unk3Slot3)
	case 4:
		return check.Equals("unk5", slotOffset(base, 4, 0), h.Unk5[:], "unk4", h.Unk4[:])
	case 5:
		if err := word(1, Unk6Slot1); err != nil {
			return err
		}
		return word(3, Unk6Slot3)
	}
	return nil
}

// Encode serializes h in the given byte order. Decoding the result with
// Read yields h again.
func Encode(h Header, order cursor.ByteOrder) []byte {
	buf := make([]byte, Size)
	bo := order.Binary()
	for g, group := range h.Groups() {
		for s, w := range group {
			bo.PutUint32(buf[g*GroupSize+s*cursor.WordSize:], w)
		}
	}
	return buf
}
