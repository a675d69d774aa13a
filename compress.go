package zipeasy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"

	"github.com/zipeasy/zipeasy/internal/codec"
	"github.com/zipeasy/zipeasy/internal/progress"
)

// sourceEntry is a file or folder found under the compress source.
type sourceEntry struct {
	path string      // filesystem path
	name string      // archive name, slash separated
	info fs.FileInfo // symlinks resolved
}

// Compress packs the children of req.Source into an archive at
// req.Target plus the client's suffix.
//
// Regular files become entries holding their bytes; folders become
// "name/" markers. Unless the client is recursive, folders are not
// descended into. The source is fully listed before the archive is
// created, so an unreadable source leaves no output behind. The operation
// stops at the first failing entry; a partially written local archive is
// left in place.
func (c *Client) Compress(ctx context.Context, req CompressRequest) (*Result, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}

	start := time.Now()
	archive := c.ArchiveName(req.Target)
	log := c.logger.With(zap.String("source", req.Source), zap.String("archive", archive))

	c.progress(progress.Progress{Op: ModeCompress.String(), Phase: progress.PhaseScan, StartTime: start})

	entries, err := c.scan(req.Source, c.existingArchive(archive), log)
	if err != nil {
		return nil, c.fail(ModeCompress, start, err)
	}

	var total int64
	for _, e := range entries {
		if e.info.Mode().IsRegular() {
			total += e.info.Size()
		}
	}
	log.Debug("source scanned", zap.Int("entries", len(entries)), zap.Int64("bytes", total))

	w, err := c.store.Create(ctx, archive)
	if err != nil {
		return nil, c.fail(ModeCompress, start, fmt.Errorf("%w: creating %s: %w", ErrTargetUnwritable, archive, err))
	}

	var written atomic.Int64
	zw := zip.NewWriter(progress.NewWriter(w, &written))
	codec.RegisterCompressor(zw, c.codec)

	abort := func(err error) (*Result, error) {
		// Push out what was written so far; the partial archive stays.
		if ferr := zw.Flush(); ferr != nil {
			log.Warn("flushing partial archive", zap.Error(ferr))
		}
		if derr := w.Discard(); derr != nil {
			log.Warn("discarding partial archive", zap.Error(derr))
		}
		return nil, c.fail(ModeCompress, start, err)
	}

	res := &Result{Mode: ModeCompress, Archive: archive}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return abort(fmt.Errorf("compress cancelled: %w", err))
		}

		n, err := c.writeEntry(zw, e)
		if err != nil {
			return abort(err)
		}
		res.Entries++
		res.Bytes += n

		log.Debug("entry written", zap.String("entry", e.name), zap.Int64("bytes", n))
		c.progress(progress.Progress{
			Op:           ModeCompress.String(),
			Phase:        progress.PhaseEntry,
			Entry:        e.name,
			EntriesDone:  res.Entries,
			EntriesTotal: len(entries),
			BytesDone:    res.Bytes,
			BytesTotal:   total,
			StartTime:    start,
		})
	}

	if err := zw.Close(); err != nil {
		return abort(fmt.Errorf("%w: finishing %s: %w", ErrTargetUnwritable, archive, err))
	}
	if err := w.Commit(); err != nil {
		return nil, c.fail(ModeCompress, start, fmt.Errorf("%w: committing %s: %w", ErrTargetUnwritable, archive, err))
	}
	res.ArchiveSize = written.Load()

	c.finish(res, start)
	return res, nil
}

// existingArchive returns the file an earlier run left at archive when the
// store keeps archives on the local filesystem, so the scan can leave it out.
func (c *Client) existingArchive(archive string) fs.FileInfo {
	local, ok := c.store.(interface{ Path(key string) string })
	if !ok {
		return nil
	}
	info, err := os.Stat(local.Path(archive))
	if err != nil {
		return nil
	}
	return info
}

// scanner lists source entries, leaving out the output archive.
type scanner struct {
	log  *zap.Logger
	skip fs.FileInfo // may be nil
}

// scan lists the entries to archive in lexical order.
func (c *Client) scan(root string, skip fs.FileInfo, log *zap.Logger) ([]sourceEntry, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrSourceUnreadable, root)
	}

	sc := scanner{log: log, skip: skip}
	if c.recursive {
		// WalkDir does not follow a symlinked root.
		resolved, err := filepath.EvalSymlinks(root)
		if err != nil {
			return nil, fmt.Errorf("%w: resolving %s: %w", ErrSourceUnreadable, root, err)
		}
		return sc.scanTree(resolved)
	}
	return sc.scanChildren(root)
}

// scanChildren lists the immediate children of root.
func (sc scanner) scanChildren(root string) ([]sourceEntry, error) {
	dirents, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrSourceUnreadable, root, err)
	}

	var entries []sourceEntry
	for _, d := range dirents {
		path := filepath.Join(root, d.Name())
		e, ok, err := sc.classify(path, d.Name())
		if err != nil {
			return nil, err
		}
		if ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// scanTree lists every file and folder below root. Symlinked folders are
// recorded as markers but not followed.
func (sc scanner) scanTree(root string) ([]sourceEntry, error) {
	var entries []sourceEntry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if path == root {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		name := filepath.ToSlash(rel)
		if err != nil {
			return entryError(ModeCompress, name, ErrSourceUnreadable, err)
		}

		e, ok, err := sc.classify(path, name)
		if err != nil {
			return err
		}
		if ok {
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		var entryErr *EntryError
		if errors.As(err, &entryErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: walking %s: %w", ErrSourceUnreadable, root, err)
	}
	return entries, nil
}

// classify stats path, following symlinks, and reports whether it can be
// archived. Dangling symlinks are skipped like other special files.
func (sc scanner) classify(path, name string) (sourceEntry, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if li, lerr := os.Lstat(path); lerr == nil && li.Mode()&fs.ModeSymlink != 0 {
				sc.log.Warn("skipping dangling symlink", zap.String("entry", name))
				return sourceEntry{}, false, nil
			}
		}
		return sourceEntry{}, false, entryError(ModeCompress, name, ErrSourceUnreadable, err)
	}
	if sc.skip != nil && os.SameFile(info, sc.skip) {
		sc.log.Debug("skipping output archive", zap.String("entry", name))
		return sourceEntry{}, false, nil
	}

	switch {
	case info.IsDir():
		return sourceEntry{path: path, name: name + "/", info: info}, true, nil
	case info.Mode().IsRegular():
		return sourceEntry{path: path, name: name, info: info}, true, nil
	default:
		sc.log.Warn("skipping special file", zap.String("entry", name), zap.Stringer("mode", info.Mode()))
		return sourceEntry{}, false, nil
	}
}

// writeEntry adds e to zw and returns the number of content bytes copied.
func (c *Client) writeEntry(zw *zip.Writer, e sourceEntry) (int64, error) {
	hdr, err := zip.FileInfoHeader(e.info)
	if err != nil {
		return 0, entryError(ModeCompress, e.name, ErrEntryWriteFailed, err)
	}
	hdr.Name = e.name

	if e.info.IsDir() {
		hdr.Method = zip.Store
		if _, err := zw.CreateHeader(hdr); err != nil {
			return 0, entryError(ModeCompress, e.name, ErrEntryWriteFailed, err)
		}
		return 0, nil
	}
	hdr.Method = c.codec.Method()

	f, err := os.Open(e.path)
	if err != nil {
		return 0, entryError(ModeCompress, e.name, ErrSourceUnreadable, err)
	}
	defer f.Close()

	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return 0, entryError(ModeCompress, e.name, ErrEntryWriteFailed, err)
	}

	src := &trackingReader{r: f}
	n, err := io.Copy(dst, src)
	if err != nil {
		if src.err != nil {
			return n, entryError(ModeCompress, e.name, ErrSourceUnreadable, src.err)
		}
		return n, entryError(ModeCompress, e.name, ErrEntryWriteFailed, err)
	}
	return n, nil
}

// trackingReader remembers the first read error so copy failures can be
// attributed to the reading or the writing side.
type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF && t.err == nil {
		t.err = err
	}
	return n, err
}
