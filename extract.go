package zipeasy

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"

	"github.com/zipeasy/zipeasy/internal/progress"
	"github.com/zipeasy/zipeasy/internal/safepath"
	"github.com/zipeasy/zipeasy/internal/store"
)

// Extract unpacks req.Archive into req.Target.
//
// Entries are processed in archive order. Names ending in "/" become
// folders; every other entry becomes a file, with missing parent folders
// created. Every entry name is checked before anything is written: names
// that would land outside the target fail with ErrArchiveCorrupt. The
// target folder is only created once the archive has been parsed. The
// operation stops at the first failing entry; entries already written stay.
func (c *Client) Extract(ctx context.Context, req ExtractRequest) (*Result, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	start := time.Now()
	log := c.logger.With(zap.String("archive", req.Archive), zap.String("target", req.Target))

	a, zr, err := c.openArchive(ctx, req.Archive)
	if err != nil {
		return nil, c.fail(ModeExtract, start, err)
	}
	defer a.Close()

	var total int64
	for _, f := range zr.File {
		if err := safepath.ValidatePath(f.Name); err != nil {
			return nil, c.fail(ModeExtract, start, entryError(ModeExtract, f.Name, ErrArchiveCorrupt, err))
		}
		total += int64(f.UncompressedSize64)
	}

	if err := os.MkdirAll(req.Target, 0755); err != nil {
		return nil, c.fail(ModeExtract, start, fmt.Errorf("%w: creating %s: %w", ErrTargetUnwritable, req.Target, err))
	}

	res := &Result{Mode: ModeExtract, Archive: req.Archive}
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, c.fail(ModeExtract, start, fmt.Errorf("extract cancelled: %w", err))
		}

		n, err := extractEntry(req.Target, f)
		if err != nil {
			return nil, c.fail(ModeExtract, start, err)
		}
		res.Entries++
		res.Bytes += n

		log.Debug("entry extracted", zap.String("entry", f.Name), zap.Int64("bytes", n))
		c.progress(progress.Progress{
			Op:           ModeExtract.String(),
			Phase:        progress.PhaseEntry,
			Entry:        f.Name,
			EntriesDone:  res.Entries,
			EntriesTotal: len(zr.File),
			BytesDone:    res.Bytes,
			BytesTotal:   total,
			StartTime:    start,
		})
	}

	c.finish(res, start)
	return res, nil
}

// openArchive opens name from the store and parses its central directory.
func (c *Client) openArchive(ctx context.Context, name string) (store.Archive, *zip.Reader, error) {
	a, err := c.store.Open(ctx, name)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: opening %s: %w", ErrSourceUnreadable, name, err)
	}

	zr, err := zip.NewReader(a, a.Size())
	if err != nil {
		a.Close()
		return nil, nil, fmt.Errorf("%w: reading %s: %w", ErrArchiveCorrupt, name, err)
	}
	c.registry.RegisterDecompressors(zr)

	return a, zr, nil
}

// isDirEntry reports whether f is a folder marker.
func isDirEntry(f *zip.File) bool {
	return strings.HasSuffix(f.Name, "/") || strings.HasSuffix(f.Name, `\`) || f.FileInfo().IsDir()
}

// extractEntry writes f below root and returns the number of bytes written.
func extractEntry(root string, f *zip.File) (int64, error) {
	dest, err := safepath.Join(root, f.Name)
	if err != nil {
		return 0, entryError(ModeExtract, f.Name, ErrArchiveCorrupt, err)
	}

	if isDirEntry(f) {
		if err := os.MkdirAll(dest, 0755); err != nil {
			return 0, entryError(ModeExtract, f.Name, ErrEntryWriteFailed, err)
		}
		return 0, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return 0, entryError(ModeExtract, f.Name, ErrEntryWriteFailed, err)
	}

	rc, err := f.Open()
	if err != nil {
		return 0, entryError(ModeExtract, f.Name, ErrArchiveCorrupt, err)
	}
	defer rc.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return 0, entryError(ModeExtract, f.Name, ErrEntryWriteFailed, err)
	}

	src := &trackingReader{r: rc}
	n, err := io.Copy(out, src)
	if err != nil {
		out.Close()
		if src.err != nil {
			return n, entryError(ModeExtract, f.Name, ErrArchiveCorrupt, src.err)
		}
		return n, entryError(ModeExtract, f.Name, ErrEntryWriteFailed, err)
	}
	if err := out.Close(); err != nil {
		return n, entryError(ModeExtract, f.Name, ErrEntryWriteFailed, err)
	}
	return n, nil
}
