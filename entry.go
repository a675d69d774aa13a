package zipeasy

import (
	"time"

	"github.com/zipeasy/zipeasy/internal/codec"
)

// Mode selects between packing and unpacking.
type Mode int

const (
	// ModeCompress packs a folder into an archive.
	ModeCompress Mode = iota
	// ModeExtract unpacks an archive into a folder.
	ModeExtract
)

func (m Mode) String() string {
	switch m {
	case ModeCompress:
		return "compress"
	case ModeExtract:
		return "extract"
	default:
		return "unknown"
	}
}

// CompressRequest names a folder to pack and where to put it.
type CompressRequest struct {
	// Source is the folder whose children become entries.
	Source string
	// Target is the archive location without its suffix.
	Target string
}

// ExtractRequest names an archive and the folder to unpack it into.
type ExtractRequest struct {
	// Archive is the archive location in the client's store.
	Archive string
	// Target is the extraction root; it is created if missing.
	Target string
}

// Result describes a finished operation.
type Result struct {
	Mode        Mode
	Archive     string
	Entries     int
	Bytes       int64 // uncompressed bytes read or written
	ArchiveSize int64 // bytes of archive written, compress only
	Duration    time.Duration
}

// Entry describes one archive member.
type Entry struct {
	// Name is slash separated and relative; directories end in "/".
	Name     string
	IsDir    bool
	Size     int64
	Method   uint16
	Modified time.Time
}

// MethodName returns the name of the entry's compression method.
func (e Entry) MethodName() string {
	return codec.MethodName(e.Method)
}
