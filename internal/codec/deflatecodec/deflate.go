// Package deflatecodec provides the Deflate method with a configurable level.
package deflatecodec

import (
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"github.com/zipeasy/zipeasy/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements Deflate compression.
type Codec struct {
	level int
}

// New returns a deflate codec using flate.DefaultCompression.
func New() *Codec {
	return &Codec{level: flate.DefaultCompression}
}

// NewLevel returns a deflate codec using the given level.
// Levels outside [flate.HuffmanOnly, flate.BestCompression] fall back to the default.
func NewLevel(level int) *Codec {
	if level < flate.HuffmanOnly || level > flate.BestCompression {
		level = flate.DefaultCompression
	}
	return &Codec{level: level}
}

// Name returns "deflate".
func (c *Codec) Name() string {
	return "deflate"
}

// Method returns zip.Deflate.
func (c *Codec) Method() uint16 {
	return zip.Deflate
}

// Level returns the configured compression level.
func (c *Codec) Level() int {
	return c.level
}

// Compressor returns a flate compressor at the configured level.
func (c *Codec) Compressor() zip.Compressor {
	level := c.level
	return func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, level)
	}
}

// Decompressor returns nil; the zip package reads Deflate natively.
func (c *Codec) Decompressor() zip.Decompressor {
	return nil
}
