package cursor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ByteOrder is the byte order of every multi-byte word in one file.
type ByteOrder uint8

const (
	LittleEndian ByteOrder = iota
	BigEndian
)

// Leading bytes observed across real files. The magic word 1430323200
// (0x55410000) stored little-endian starts with 0x00, big-endian with 'U'.
const (
	leadLittle byte = 0x00
	leadBig    byte = 'U'
)

// ErrMalformedHeader is returned when the leading byte is not a known marker.
var ErrMalformedHeader = errors.New("malformed header")

// MalformedHeaderError reports the unexpected leading byte.
type MalformedHeaderError struct {
	Lead  byte
	Empty bool
}

func (e *MalformedHeaderError) Error() string {
	if e.Empty {
		return "malformed header: empty source"
	}
	return fmt.Sprintf("malformed header: leading byte 0x%02X is neither 0x00 nor 'U'", e.Lead)
}

func (e *MalformedHeaderError) Unwrap() error { return ErrMalformedHeader }

func (o ByteOrder) String() string {
	switch o {
	case LittleEndian:
		return "little"
	case BigEndian:
		return "big"
	default:
		return fmt.Sprintf("ByteOrder(%d)", uint8(o))
	}
}

// Binary returns the encoding/binary equivalent.
func (o ByteOrder) Binary() binary.ByteOrder {
	if o == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Detect classifies the source by its first byte. It uses ReadAt at offset
// 0 and therefore never moves any read position.
func Detect(r io.ReaderAt) (ByteOrder, error) {
	var lead [1]byte
	n, err := r.ReadAt(lead[:], 0)
	if n == 0 {
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("peek leading byte: %w", err)
		}
		return 0, &MalformedHeaderError{Empty: true}
	}
	return classify(lead[0])
}

func classify(lead byte) (ByteOrder, error) {
	switch lead {
	case leadLittle:
		return LittleEndian, nil
	case leadBig:
		return BigEndian, nil
	default:
		return 0, &MalformedHeaderError{Lead: lead}
	}
}
