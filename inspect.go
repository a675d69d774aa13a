package zipeasy

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zipeasy/zipeasy/internal/progress"
	"github.com/zipeasy/zipeasy/internal/safepath"
	"github.com/zipeasy/zipeasy/internal/stats"
)

// VerifyReport summarizes a Verify run.
type VerifyReport struct {
	Archive  string
	Entries  int
	Bytes    int64
	Duration time.Duration
	// Failures holds one error per bad entry, in archive order.
	Failures []*EntryError
}

// OK reports whether every entry verified.
func (r *VerifyReport) OK() bool {
	return len(r.Failures) == 0
}

// List returns the entries of archive in archive order.
func (c *Client) List(ctx context.Context, archive string) ([]Entry, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	a, zr, err := c.openArchive(ctx, archive)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	entries := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		entries = append(entries, Entry{
			Name:     f.Name,
			IsDir:    isDirEntry(f),
			Size:     int64(f.UncompressedSize64),
			Method:   f.Method,
			Modified: f.Modified,
		})
	}
	return entries, nil
}

// Verify decompresses every file entry of archive, checking its CRC-32,
// and checks every entry name. Bad entries are collected in the report;
// the returned error is only set when the archive cannot be opened or
// parsed, or ctx is cancelled.
func (c *Client) Verify(ctx context.Context, archive string) (*VerifyReport, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	start := time.Now()
	a, zr, err := c.openArchive(ctx, archive)
	if err != nil {
		c.stats.IncCounter(stats.MetricFailures, 1)
		return nil, err
	}
	defer a.Close()

	var total int64
	for _, f := range zr.File {
		total += int64(f.UncompressedSize64)
	}

	var (
		mu       sync.Mutex
		failures = make([]*EntryError, len(zr.File))
		done     int
		bytes    int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i, f := range zr.File {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			n, ferr := verifyEntry(f)

			mu.Lock()
			defer mu.Unlock()
			if ferr != nil {
				failures[i] = ferr
				c.logger.Warn("entry failed verification", zap.String("entry", f.Name), zap.Error(ferr.Err))
			}
			done++
			bytes += n
			c.progress(progress.Progress{
				Op:           "verify",
				Phase:        progress.PhaseEntry,
				Entry:        f.Name,
				EntriesDone:  done,
				EntriesTotal: len(zr.File),
				BytesDone:    bytes,
				BytesTotal:   total,
				StartTime:    start,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("verify cancelled: %w", err)
	}

	report := &VerifyReport{
		Archive:  archive,
		Entries:  len(zr.File),
		Bytes:    bytes,
		Duration: time.Since(start),
	}
	for _, f := range failures {
		if f != nil {
			report.Failures = append(report.Failures, f)
		}
	}
	if !report.OK() {
		c.stats.IncCounter(stats.MetricFailures, 1)
	}

	c.logger.Info("verify finished",
		zap.String("archive", archive),
		zap.Int("entries", report.Entries),
		zap.Int("failures", len(report.Failures)),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

// verifyEntry reads f to the end, which makes the zip reader check its
// checksum.
func verifyEntry(f *zip.File) (int64, *EntryError) {
	if err := safepath.ValidatePath(f.Name); err != nil {
		return 0, &EntryError{Op: "verify", Entry: f.Name, Kind: ErrArchiveCorrupt, Err: err}
	}
	if isDirEntry(f) {
		return 0, nil
	}

	rc, err := f.Open()
	if err != nil {
		return 0, &EntryError{Op: "verify", Entry: f.Name, Kind: ErrArchiveCorrupt, Err: err}
	}
	defer rc.Close()

	n, err := io.Copy(io.Discard, rc)
	if err != nil {
		return n, &EntryError{Op: "verify", Entry: f.Name, Kind: ErrArchiveCorrupt, Err: err}
	}
	return n, nil
}
