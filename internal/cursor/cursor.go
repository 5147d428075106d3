// Package cursor provides the forward-only, position-tracked reader every
// decoding step builds on, plus the byte-order sniffer.
package cursor

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/bits"
)

// WordSize is the width of every numeric field in the format.
const WordSize = 4

// ErrTruncatedInput is returned when the source ends before a read completes.
var ErrTruncatedInput = errors.New("truncated input")

// TruncatedError reports where a read ran off the end of the source.
type TruncatedError struct {
	Offset int64
	Need   int
	Have   int64
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("truncated input: need %d bytes at offset %d, %d remain", e.Need, e.Offset, e.Have)
}

func (e *TruncatedError) Unwrap() error { return ErrTruncatedInput }

// Cursor reads sequentially from an io.ReaderAt of known length.
type Cursor struct {
	r       io.ReaderAt
	size    int64
	pos     int64
	order   ByteOrder
	sniffed bool
}

// New creates a cursor over the first size bytes of r, positioned at 0.
func New(r io.ReaderAt, size int64) *Cursor {
	return &Cursor{r: r, size: size}
}

// FromBytes creates a cursor over an in-memory buffer.
func FromBytes(b []byte) *Cursor {
	return New(bytes.NewReader(b), int64(len(b)))
}

// Sniff detects and records the byte order. It is idempotent and does not
// move the read position.
func (c *Cursor) Sniff() (ByteOrder, error) {
	if c.sniffed {
		return c.order, nil
	}
	if c.size == 0 {
		return 0, &MalformedHeaderError{Empty: true}
	}
	order, err := Detect(c.r)
	if err != nil {
		return 0, err
	}
	c.order = order
	c.sniffed = true
	return order, nil
}

// Order returns the sniffed byte order (LittleEndian before Sniff).
func (c *Cursor) Order() ByteOrder {
	return c.order
}

// Pos returns the current read position.
func (c *Cursor) Pos() int64 {
	return c.pos
}

// Len returns the total length of the source.
func (c *Cursor) Len() int64 {
	return c.size
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int64 {
	return c.size - c.pos
}

// Peek reads n bytes without advancing the position.
func (c *Cursor) Peek(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	if int64(n) > c.Remaining() {
		return nil, &TruncatedError{Offset: c.pos, Need: n, Have: c.Remaining()}
	}
	buf := make([]byte, n)
	if _, err := c.r.ReadAt(buf, c.pos); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read at offset %d: %w", c.pos, err)
	}
	return buf, nil
}

// ReadBytes reads exactly n bytes from the current position.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	buf, err := c.Peek(n)
	if err != nil {
		return nil, err
	}
	c.pos += int64(n)
	return buf, nil
}

// ReadWord reads one 32-bit word, byte-swapped when the order is big-endian.
func (c *Cursor) ReadWord() (uint32, error) {
	buf, err := c.ReadBytes(WordSize)
	if err != nil {
		return 0, err
	}
	return c.word(buf), nil
}

// ReadWords reads n consecutive 32-bit words.
func (c *Cursor) ReadWords(n int) ([]uint32, error) {
	buf, err := c.ReadBytes(n * WordSize)
	if err != nil {
		return nil, err
	}
	words := make([]uint32, n)
	for i := range words {
		words[i] = c.word(buf[i*WordSize:])
	}
	return words, nil
}

func (c *Cursor) word(b []byte) uint32 {
	v := binary.LittleEndian.Uint32(b)
	if c.order == BigEndian {
		v = bits.ReverseBytes32(v)
	}
	return v
}
