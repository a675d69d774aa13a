package zipeasy

import "fmt"

// EntryError reports the archive entry an operation failed on.
//
// errors.Is matches both Kind, one of the package sentinels, and the
// underlying cause.
type EntryError struct {
	Op    string // "compress", "extract" or "verify"
	Entry string
	Kind  error
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Entry, e.Kind, e.Err)
}

// Unwrap returns the kind and the cause.
func (e *EntryError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func entryError(mode Mode, entry string, kind, err error) *EntryError {
	return &EntryError{Op: mode.String(), Entry: entry, Kind: kind, Err: err}
}
