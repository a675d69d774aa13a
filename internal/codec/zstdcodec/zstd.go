// Package zstdcodec provides the zstd zip method (ID 93, as written by WinZip).
package zstdcodec

import (
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"

	"github.com/zipeasy/zipeasy/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements zstd compression for zip entries.
type Codec struct{}

// New returns a new zstd codec.
func New() *Codec {
	return &Codec{}
}

// Name returns "zstd".
func (c *Codec) Name() string {
	return "zstd"
}

// Method returns zstd.ZipMethodWinZip.
func (c *Codec) Method() uint16 {
	return zstd.ZipMethodWinZip
}

// Compressor returns a pooled zstd compressor.
func (c *Codec) Compressor() zip.Compressor {
	return zstd.ZipCompressor()
}

// Decompressor returns a pooled zstd decompressor.
func (c *Codec) Decompressor() zip.Decompressor {
	return zstd.ZipDecompressor()
}
