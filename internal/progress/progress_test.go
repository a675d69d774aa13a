package progress

import (
	"bytes"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestProgress_Fraction(t *testing.T) {
	tests := []struct {
		name string
		p    Progress
		want float64
	}{
		{"nothing known", Progress{Phase: PhaseEntry}, 0},
		{"bytes", Progress{Phase: PhaseEntry, BytesDone: 25, BytesTotal: 100}, 0.25},
		{"entries only", Progress{Phase: PhaseEntry, EntriesDone: 1, EntriesTotal: 4}, 0.25},
		{"bytes preferred", Progress{Phase: PhaseEntry, BytesDone: 50, BytesTotal: 100, EntriesDone: 1, EntriesTotal: 4}, 0.5},
		{"clamped", Progress{Phase: PhaseEntry, BytesDone: 150, BytesTotal: 100}, 1},
		{"done", Progress{Phase: PhaseDone}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Fraction(); got != tt.want {
				t.Errorf("Fraction() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWriterAndReader_Count(t *testing.T) {
	var counter atomic.Int64

	var buf bytes.Buffer
	w := NewWriter(&buf, &counter)
	w.Write([]byte("hello"))
	w.Write([]byte(" world"))
	if counter.Load() != 11 {
		t.Errorf("written = %d, want 11", counter.Load())
	}

	counter.Store(0)
	r := NewReader(strings.NewReader("abcdef"), &counter)
	p := make([]byte, 4)
	r.Read(p)
	r.Read(p)
	if counter.Load() != 6 {
		t.Errorf("read = %d, want 6", counter.Load())
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1m 30s"},
		{2*time.Hour + 5*time.Minute, "2h 5m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewPrinter(t *testing.T) {
	var out bytes.Buffer
	print := NewPrinter(&out)

	print(Progress{Op: "compress", Phase: PhaseEntry, EntriesDone: 1, EntriesTotal: 2, BytesDone: 10, BytesTotal: 20})
	if !strings.Contains(out.String(), "[compress] 1 / 2 entries") {
		t.Errorf("entry line = %q", out.String())
	}

	out.Reset()
	print(Progress{Op: "extract", Phase: PhaseDone, EntriesDone: 2, StartTime: time.Now()})
	if !strings.HasSuffix(out.String(), "\n") || !strings.Contains(out.String(), "[extract] 2 entries") {
		t.Errorf("done line = %q", out.String())
	}

	out.Reset()
	print(Progress{Op: "extract", Phase: PhaseError, Err: errors.New("boom")})
	if !strings.Contains(out.String(), "error: boom") {
		t.Errorf("error line = %q", out.String())
	}
}
