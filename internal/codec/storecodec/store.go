// Package storecodec provides the Store method (entries kept uncompressed).
package storecodec

import (
	"github.com/klauspost/compress/zip"

	"github.com/zipeasy/zipeasy/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements the Store method. Entry bytes are copied verbatim.
type Codec struct{}

// New returns a new store codec.
func New() *Codec {
	return &Codec{}
}

// Name returns "store".
func (c *Codec) Name() string {
	return "store"
}

// Method returns zip.Store.
func (c *Codec) Method() uint16 {
	return zip.Store
}

// Compressor returns nil; the zip package handles Store natively.
func (c *Codec) Compressor() zip.Compressor {
	return nil
}

// Decompressor returns nil; the zip package handles Store natively.
func (c *Codec) Decompressor() zip.Decompressor {
	return nil
}
