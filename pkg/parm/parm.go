// Package parm decodes and validates GEMS PARM container files.
//
// The file length selects a layout variant, the first byte selects the byte
// order, and every observed constant and cross-field equality is checked
// while decoding. Failures are typed errors; see Kind.
package parm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/sirupsen/logrus"

	"github.com/malaterre/GEMS-PARM-01/internal/cursor"
	"github.com/malaterre/GEMS-PARM-01/internal/header"
	internalopts "github.com/malaterre/GEMS-PARM-01/internal/options"
	"github.com/malaterre/GEMS-PARM-01/internal/records"
	"github.com/malaterre/GEMS-PARM-01/internal/variant"
)

// Registry is a table of layout variants keyed by file length.
type Registry = variant.Registry

// Result captures the outcome of one decode.
type Result struct {
	Path      string
	Variant   string
	Status    variant.Status
	ByteOrder cursor.ByteOrder
	ByteCount int64
	// Fingerprint is the xxhash64 digest of the whole source.
	Fingerprint uint64
	File        *records.File
	Fields      map[string]any
}

// Summary is the serializable view of a Result.
type Summary struct {
	Path        string         `json:"path,omitempty" yaml:"path,omitempty"`
	Variant     string         `json:"variant,omitempty" yaml:"variant,omitempty"`
	Status      string         `json:"status,omitempty" yaml:"status,omitempty"`
	ByteOrder   string         `json:"byte_order,omitempty" yaml:"byte_order,omitempty"`
	ByteCount   int64          `json:"byte_count" yaml:"byte_count"`
	Fingerprint string         `json:"fingerprint,omitempty" yaml:"fingerprint,omitempty"`
	Fields      map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`
	Error       string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// Summary returns the serializable view of r.
func (r Result) Summary() Summary {
	s := Summary{Path: r.Path, Variant: r.Variant, ByteCount: r.ByteCount, Fields: r.Fields}
	if r.File != nil {
		s.Status = r.Status.String()
		s.ByteOrder = r.ByteOrder.String()
		s.Fingerprint = fmt.Sprintf("%016x", r.Fingerprint)
	}
	return s
}

// MarshalJSON encodes the summary view.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Summary())
}

// MarshalYAML encodes the summary view.
func (r Result) MarshalYAML() (any, error) {
	return r.Summary(), nil
}

// String renders a human-readable representation of the result.
func (r Result) String() string {
	data, err := json.MarshalIndent(r.Summary(), "", "  ")
	if err != nil {
		return fmt.Sprintf("variant: %s bytes:%d (marshal error: %v)", r.Variant, r.ByteCount, err)
	}
	return string(data)
}

// Decode measures, validates and decodes src with default options.
func Decode(ctx context.Context, src io.ReadSeeker) (Result, error) {
	return DecodeWithOptions(ctx, src, DecodeOptions{})
}

// DecodeBytes decodes an in-memory file.
func DecodeBytes(ctx context.Context, data []byte) (Result, error) {
	return DecodeWithOptions(ctx, bytes.NewReader(data), DecodeOptions{})
}

// DecodeFile opens and decodes the file at path.
func DecodeFile(ctx context.Context, path string, opts DecodeOptions) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		opts.Metrics.RecordFailure(Kind(err), 0)
		return Result{Path: path}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	result, err := DecodeWithOptions(ctx, f, opts)
	result.Path = path
	return result, err
}

// DecodeWithOptions decodes src with custom options. The length is measured
// once, the first byte is peeked to select the byte order, then the whole
// source is read and walked against the variant chosen by its length.
func DecodeWithOptions(ctx context.Context, src io.ReadSeeker, opts DecodeOptions) (Result, error) {
	ctx = opts.toInternal(ctx)
	start := time.Now()
	result, err := decode(ctx, src, opts.registry())
	elapsed := time.Since(start).Seconds()
	if err != nil {
		opts.Metrics.RecordFailure(Kind(err), elapsed)
		return result, err
	}
	opts.Metrics.RecordDecode(result.Variant, result.Status.String(), result.ByteCount, elapsed)
	return result, nil
}

func decode(ctx context.Context, src io.ReadSeeker, reg *variant.Registry) (Result, error) {
	log := internalopts.Logger(ctx)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	size, err := measure(src)
	if err != nil {
		return Result{}, err
	}
	result := Result{ByteCount: size}

	order, err := sniff(src, size)
	if err != nil {
		return result, err
	}
	result.ByteOrder = order

	d, err := reg.Resolve(size)
	if err != nil {
		return result, err
	}
	result.Variant = d.Name

	data := make([]byte, size)
	if _, err := io.ReadFull(src, data); err != nil {
		return result, fmt.Errorf("read source: %w", err)
	}
	result.Fingerprint = xxhash.Sum64(data)

	file, err := records.Decode(cursor.FromBytes(data), d)
	if err != nil {
		return result, err
	}
	result.File = file
	result.Status = file.Status
	result.Fields = fields(file)

	log.WithFields(logrus.Fields{
		"variant":    d.Name,
		"length":     size,
		"byte_order": order.String(),
		"status":     file.Status.String(),
	}).Debug("decoded container")

	if file.Status == variant.StatusPartial && internalopts.Strict(ctx) {
		return result, fmt.Errorf("%w: variant %s leaves %d bytes undecoded",
			ErrPartialVariant, d.Name, file.Unparsed.Length)
	}
	return result, nil
}

func measure(src io.Seeker) (int64, error) {
	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("measure source: %w", err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("rewind source: %w", err)
	}
	return size, nil
}

// sniff peeks the lead byte and rewinds, leaving src at offset 0.
func sniff(src io.ReadSeeker, size int64) (cursor.ByteOrder, error) {
	lead := make([]byte, min(size, 1))
	if _, err := io.ReadFull(src, lead); err != nil {
		return 0, fmt.Errorf("read lead byte: %w", err)
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("rewind source: %w", err)
	}
	return cursor.Detect(bytes.NewReader(lead))
}

// fields flattens a decoded file into a map keyed by group name. Vectors
// become comma-separated values, text sub-fields are keyed group.field.
func fields(f *records.File) map[string]any {
	out := map[string]any{}
	for i, g := range f.Header.Groups() {
		i, g := i, g
		out[header.GroupName(i)] = joinWords(g[:])
	}
	out["unk6"] = joinValues(f.Header.Group6Values())
	for _, g := range f.Groups {
		switch g.Kind {
		case variant.KindVector:
			out[g.Name] = joinWords(g.Words)
		case variant.KindText:
			for _, t := range g.Text {
				out[g.Name+"."+t.Name] = t.Value
			}
		case variant.KindOpaque:
			out[g.Name] = fmt.Sprintf("%d bytes", g.Width)
		}
	}
	if f.Unparsed.Length > 0 {
		out["unparsed"] = fmt.Sprintf("%d bytes at %d", f.Unparsed.Length, f.Unparsed.Offset)
	}
	return out
}

func joinWords(words []uint32) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = strconv.FormatUint(uint64(w), 10)
	}
	return strings.Join(parts, ",")
}

func joinValues(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		switch n := v.(type) {
		case float32:
			parts[i] = strconv.FormatFloat(float64(n), 'g', -1, 32)
		default:
			parts[i] = fmt.Sprint(n)
		}
	}
	return strings.Join(parts, ",")
}
