package variant

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrUnsupportedLength is returned when no layout is registered for a length.
var ErrUnsupportedLength = errors.New("unsupported length")

// UnsupportedLengthError carries the rejected length.
type UnsupportedLengthError struct {
	Length int64
}

func (e *UnsupportedLengthError) Error() string {
	return fmt.Sprintf("unsupported length: no layout for %d bytes", e.Length)
}

func (e *UnsupportedLengthError) Unwrap() error { return ErrUnsupportedLength }

// Registry maps total file length to a layout descriptor.
type Registry struct {
	mu       sync.RWMutex
	byLength map[int64]Descriptor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byLength: make(map[int64]Descriptor)}
}

// Register validates and stores a descriptor. Lengths are unique.
func (r *Registry) Register(d Descriptor) error {
	if err := d.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byLength[d.Length]; ok {
		return fmt.Errorf("length %d already registered to variant %s", d.Length, prev.Name)
	}
	r.byLength[d.Length] = d.clone()
	return nil
}

// Resolve returns a private copy of the descriptor for length.
func (r *Registry) Resolve(length int64) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byLength[length]
	if !ok {
		return Descriptor{}, &UnsupportedLengthError{Length: length}
	}
	return d.clone(), nil
}

// Lengths returns the registered lengths in ascending order.
func (r *Registry) Lengths() []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]int64, 0, len(r.byLength))
	for l := range r.byLength {
		out = append(out, l)
	}
	slices.Sort(out)
	return out
}

// Descriptors returns copies of every registered descriptor ordered by length.
func (r *Registry) Descriptors() []Descriptor {
	lengths := r.Lengths()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(lengths))
	for _, l := range lengths {
		out = append(out, r.byLength[l].clone())
	}
	return out
}

var builtin = NewRegistry()

// Register adds a descriptor to the built-in table. It panics on an invalid
// or duplicate descriptor, since the table is assembled at init time.
func Register(d Descriptor) {
	if err := builtin.Register(d); err != nil {
		panic(fmt.Sprintf("variant: %v", err))
	}
}

// Resolve looks a length up in the built-in table.
func Resolve(length int64) (Descriptor, error) {
	return builtin.Resolve(length)
}

// Default returns the built-in registry.
func Default() *Registry {
	return builtin
}
