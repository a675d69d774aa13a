// Package progress reports the advance of archive operations.
package progress

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// Phase names the stage an operation is in.
type Phase string

// Operation phases.
const (
	PhaseScan     Phase = "scan"
	PhaseDownload Phase = "download"
	PhaseEntry    Phase = "entry"
	PhaseDone     Phase = "done"
	PhaseError    Phase = "error"
)

// Progress is a snapshot of an operation's advance.
type Progress struct {
	Op           string // "compress", "extract" or "verify"
	Phase        Phase
	Entry        string
	EntriesDone  int
	EntriesTotal int
	BytesDone    int64
	BytesTotal   int64
	StartTime    time.Time
	Err          error
}

// Fraction returns completion in [0, 1]. Bytes are preferred over entry
// counts when a byte total is known.
func (p Progress) Fraction() float64 {
	if p.Phase == PhaseDone {
		return 1
	}
	var f float64
	switch {
	case p.BytesTotal > 0:
		f = float64(p.BytesDone) / float64(p.BytesTotal)
	case p.EntriesTotal > 0:
		f = float64(p.EntriesDone) / float64(p.EntriesTotal)
	}
	if f > 1 {
		f = 1
	}
	return f
}

// Func is called with progress updates.
type Func func(Progress)

// Nop discards progress updates.
func Nop(Progress) {}

// Writer wraps an io.Writer to track bytes written.
type Writer struct {
	w       io.Writer
	written *atomic.Int64
}

// NewWriter returns a Writer adding every written byte count to counter.
func NewWriter(w io.Writer, counter *atomic.Int64) *Writer {
	return &Writer{w: w, written: counter}
}

func (pw *Writer) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.written.Add(int64(n))
	return n, err
}

// Reader wraps an io.Reader to track bytes read.
type Reader struct {
	r    io.Reader
	read *atomic.Int64
}

// NewReader returns a Reader adding every read byte count to counter.
func NewReader(r io.Reader, counter *atomic.Int64) *Reader {
	return &Reader{r: r, read: counter}
}

func (pr *Reader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	pr.read.Add(int64(n))
	return n, err
}

// FormatBytes formats bytes as human-readable string.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatDuration formats duration as human-readable string.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

// NewPrinter returns a Func that redraws a single status line on out.
// It is meant for terminals; callers should pick Nop otherwise.
func NewPrinter(out io.Writer) Func {
	return func(p Progress) {
		switch p.Phase {
		case PhaseScan:
			fmt.Fprintf(out, "\r[%s] scanning...", p.Op)
		case PhaseDownload:
			fmt.Fprintf(out, "\r[download] %s / %s (%.1f%%)",
				FormatBytes(p.BytesDone), FormatBytes(p.BytesTotal), p.Fraction()*100)
		case PhaseEntry:
			fmt.Fprintf(out, "\r[%s] %d / %d entries, %s (%.1f%%)\033[K",
				p.Op, p.EntriesDone, p.EntriesTotal, FormatBytes(p.BytesDone), p.Fraction()*100)
		case PhaseDone:
			fmt.Fprintf(out, "\r[%s] %d entries, %s in %s\033[K\n",
				p.Op, p.EntriesDone, FormatBytes(p.BytesDone), FormatDuration(time.Since(p.StartTime)))
		case PhaseError:
			fmt.Fprintf(out, "\n[%s] error: %v\n", p.Op, p.Err)
		}
	}
}
