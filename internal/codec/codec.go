// Package codec describes the zip compression methods an archive entry can use.
package codec

import (
	"errors"
	"fmt"
	"sort"

	"github.com/klauspost/compress/zip"
)

// ErrUnknown is returned when a codec name is not registered.
var ErrUnknown = errors.New("codec: unknown compression method")

// Codec maps a zip compression method to its compressor and decompressor.
type Codec interface {
	// Name returns the short name used on the command line (e.g., "store", "zstd").
	Name() string
	// Method returns the method ID written to entry headers.
	Method() uint16
	// Compressor returns the compressor to register on writers.
	// Returns nil when the zip package already handles the method.
	Compressor() zip.Compressor
	// Decompressor returns the decompressor to register on readers.
	// Returns nil when the zip package already handles the method.
	Decompressor() zip.Decompressor
}

// Registry holds the codecs known to a client, keyed by name.
type Registry struct {
	byName map[string]Codec
}

// NewRegistry returns a registry holding the given codecs.
// Later codecs replace earlier ones with the same name.
func NewRegistry(codecs ...Codec) *Registry {
	r := &Registry{byName: make(map[string]Codec, len(codecs))}
	for _, c := range codecs {
		r.byName[c.Name()] = c
	}
	return r
}

// Register adds c, replacing any codec with the same name.
// It must not be called concurrently with other methods.
func (r *Registry) Register(c Codec) {
	r.byName[c.Name()] = c
}

// Lookup returns the codec registered under name.
func (r *Registry) Lookup(name string) (Codec, error) {
	c, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return c, nil
}

// Names returns the registered codec names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterDecompressors installs every custom decompressor on zr so that
// entries written with any registered method can be read.
func (r *Registry) RegisterDecompressors(zr *zip.Reader) {
	for _, c := range r.byName {
		if d := c.Decompressor(); d != nil {
			zr.RegisterDecompressor(c.Method(), d)
		}
	}
}

// RegisterCompressor installs c's compressor on zw, if it has one.
func RegisterCompressor(zw *zip.Writer, c Codec) {
	if comp := c.Compressor(); comp != nil {
		zw.RegisterCompressor(c.Method(), comp)
	}
}

// MethodName returns a readable name for a zip method ID.
func MethodName(method uint16) string {
	switch method {
	case zip.Store:
		return "store"
	case zip.Deflate:
		return "deflate"
	case 93:
		return "zstd"
	default:
		return fmt.Sprintf("method(%d)", method)
	}
}
