package zipeasy

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/klauspost/compress/zip"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zipeasy/zipeasy/internal/store"
	"github.com/zipeasy/zipeasy/internal/store/memstore"
)

func entryNames(entries []Entry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

func TestCompress_SingleFile(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"a.txt": "hello"})
	target := filepath.Join(t.TempDir(), "out")

	c := newClient(t)
	ctx := context.Background()

	res, err := c.Compress(ctx, CompressRequest{Source: src, Target: target})
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	if res.Archive != target+".zip" {
		t.Errorf("Archive = %q, want %q", res.Archive, target+".zip")
	}
	if res.Entries != 1 || res.Bytes != 5 {
		t.Errorf("Result = %+v, want 1 entry of 5 bytes", res)
	}
	if info, err := os.Stat(res.Archive); err != nil {
		t.Fatalf("Stat() error = %v", err)
	} else if info.Size() != res.ArchiveSize {
		t.Errorf("ArchiveSize = %d, want %d", res.ArchiveSize, info.Size())
	}

	entries, err := c.List(ctx, res.Archive)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "a.txt" || entries[0].IsDir {
		t.Fatalf("List() = %+v, want one file entry a.txt", entries)
	}
	if entries[0].Method != zip.Store {
		t.Errorf("Method = %d, want Store", entries[0].Method)
	}

	dst := t.TempDir()
	if _, err := c.Extract(ctx, ExtractRequest{Archive: res.Archive, Target: dst}); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dst, "a.txt"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("a.txt = %q, want hello", got)
	}
}

func TestCompress_EmptySubdir(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"sub/": ""})

	c := newClient(t, WithStore(memstore.New()))
	ctx := context.Background()

	if _, err := c.Compress(ctx, CompressRequest{Source: src, Target: "out"}); err != nil {
		t.Fatalf("Compress() error = %v", err)
	}

	entries, err := c.List(ctx, "out.zip")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "sub/" || !entries[0].IsDir {
		t.Errorf("List() = %+v, want one directory entry sub/", entries)
	}
}

func TestCompress_ShallowByDefault(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"top.txt":        "top",
		"sub/inner.txt":  "inner",
		"sub/deep/x.txt": "x",
	})

	c := newClient(t, WithStore(memstore.New()))
	ctx := context.Background()

	if _, err := c.Compress(ctx, CompressRequest{Source: src, Target: "out"}); err != nil {
		t.Fatalf("Compress() error = %v", err)
	}

	entries, _ := c.List(ctx, "out.zip")
	want := []string{"sub/", "top.txt"}
	if got := entryNames(entries); !reflect.DeepEqual(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}
}

func TestCompress_Recursive(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"top.txt":        "top",
		"sub/inner.txt":  "inner",
		"sub/deep/x.txt": "x",
		"empty/":         "",
	})

	c := newClient(t, WithStore(memstore.New()), WithRecursive(true))
	ctx := context.Background()

	if _, err := c.Compress(ctx, CompressRequest{Source: src, Target: "out"}); err != nil {
		t.Fatalf("Compress() error = %v", err)
	}

	entries, _ := c.List(ctx, "out.zip")
	want := []string{"empty/", "sub/", "sub/deep/", "sub/deep/x.txt", "sub/inner.txt", "top.txt"}
	if got := entryNames(entries); !reflect.DeepEqual(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}

	dst := t.TempDir()
	if _, err := c.Extract(ctx, ExtractRequest{Archive: "out.zip", Target: dst}); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	got, err := os.ReadFile(filepath.Join(dst, "sub", "deep", "x.txt"))
	if err != nil || string(got) != "x" {
		t.Errorf("sub/deep/x.txt = %q, %v", got, err)
	}
	if info, err := os.Stat(filepath.Join(dst, "empty")); err != nil || !info.IsDir() {
		t.Errorf("empty/ not recreated: %v", err)
	}
}

func TestCompress_RoundTrip(t *testing.T) {
	for _, method := range []string{"store", "deflate", "zstd"} {
		t.Run(method, func(t *testing.T) {
			rng := rand.New(rand.NewSource(42))
			src := t.TempDir()
			want := make(map[string][]byte)
			for i := 0; i < 20; i++ {
				data := make([]byte, rng.Intn(64*1024))
				rng.Read(data)
				name := filepath.Join(src, "file"+string(rune('a'+i)))
				if err := os.WriteFile(name, data, 0644); err != nil {
					t.Fatalf("WriteFile() error = %v", err)
				}
				want[filepath.Base(name)] = data
			}

			c := newClient(t, WithStore(memstore.New()), WithMethod(method))
			ctx := context.Background()

			if _, err := c.Compress(ctx, CompressRequest{Source: src, Target: "out"}); err != nil {
				t.Fatalf("Compress() error = %v", err)
			}
			entries, _ := c.List(ctx, "out.zip")
			for _, e := range entries {
				if e.MethodName() != method {
					t.Errorf("%s method = %s, want %s", e.Name, e.MethodName(), method)
				}
			}

			dst := t.TempDir()
			if _, err := c.Extract(ctx, ExtractRequest{Archive: "out.zip", Target: dst}); err != nil {
				t.Fatalf("Extract() error = %v", err)
			}

			got, err := os.ReadDir(dst)
			if err != nil {
				t.Fatalf("ReadDir() error = %v", err)
			}
			if len(got) != len(want) {
				t.Fatalf("extracted %d files, want %d", len(got), len(want))
			}
			for name, data := range want {
				content, err := os.ReadFile(filepath.Join(dst, name))
				if err != nil {
					t.Fatalf("ReadFile(%s) error = %v", name, err)
				}
				if !reflect.DeepEqual(content, data) && !(len(content) == 0 && len(data) == 0) {
					t.Errorf("%s content mismatch", name)
				}
			}
		})
	}
}

func TestCompress_ReadsAnyMethod(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"a.txt": "zstd written"})
	mem := memstore.New()

	writer := newClient(t, WithStore(mem), WithMethod("zstd"))
	if _, err := writer.Compress(context.Background(), CompressRequest{Source: src, Target: "out"}); err != nil {
		t.Fatalf("Compress() error = %v", err)
	}

	// A client writing with the default method still reads zstd entries.
	reader := newClient(t, WithStore(mem))
	dst := t.TempDir()
	if _, err := reader.Extract(context.Background(), ExtractRequest{Archive: "out.zip", Target: dst}); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	got, _ := os.ReadFile(filepath.Join(dst, "a.txt"))
	if string(got) != "zstd written" {
		t.Errorf("a.txt = %q", got)
	}
}

func TestCompress_MissingSource(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out")
	c := newClient(t)

	_, err := c.Compress(context.Background(), CompressRequest{
		Source: filepath.Join(t.TempDir(), "does-not-exist"),
		Target: target,
	})
	if !errors.Is(err, ErrSourceUnreadable) {
		t.Fatalf("Compress() error = %v, want ErrSourceUnreadable", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Compress() error = %v, want wrapped os.ErrNotExist", err)
	}
	if _, err := os.Stat(target + ".zip"); !os.IsNotExist(err) {
		t.Errorf("archive should not exist, stat error = %v", err)
	}
}

func TestCompress_SourceIsFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "file.txt")
	os.WriteFile(src, []byte("x"), 0644)

	mem := memstore.New()
	c := newClient(t, WithStore(mem))
	_, err := c.Compress(context.Background(), CompressRequest{Source: src, Target: "out"})
	if !errors.Is(err, ErrSourceUnreadable) {
		t.Errorf("Compress() error = %v, want ErrSourceUnreadable", err)
	}
	if len(mem.Keys()) != 0 {
		t.Errorf("store keys = %v, want none", mem.Keys())
	}
}

func TestCompress_TargetUnwritable(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"a.txt": "hello"})

	blocker := filepath.Join(t.TempDir(), "file")
	os.WriteFile(blocker, []byte("x"), 0644)

	c := newClient(t)
	_, err := c.Compress(context.Background(), CompressRequest{
		Source: src,
		Target: filepath.Join(blocker, "out"),
	})
	if !errors.Is(err, ErrTargetUnwritable) {
		t.Errorf("Compress() error = %v, want ErrTargetUnwritable", err)
	}
}

// brokenStore accepts Create but fails every write.
type brokenStore struct {
	*memstore.Store
}

func (s brokenStore) Create(ctx context.Context, key string) (store.Writer, error) {
	return brokenWriter{}, nil
}

type brokenWriter struct{}

func (brokenWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }
func (brokenWriter) Commit() error               { return nil }
func (brokenWriter) Discard() error              { return nil }

func TestCompress_WriteFailureLogged(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"big.bin": string(make([]byte, 64*1024))})

	core, logs := observer.New(zapcore.WarnLevel)
	c := newClient(t, WithStore(brokenStore{memstore.New()}), WithLogger(zap.New(core)))

	_, err := c.Compress(context.Background(), CompressRequest{Source: src, Target: "out"})
	if !errors.Is(err, ErrEntryWriteFailed) {
		t.Fatalf("Compress() error = %v, want ErrEntryWriteFailed", err)
	}
	if n := logs.FilterMessage("flushing partial archive").Len(); n != 1 {
		t.Errorf("flush warnings = %d, want 1", n)
	}
}

func TestCompress_FollowsFileSymlink(t *testing.T) {
	outside := filepath.Join(t.TempDir(), "real.txt")
	os.WriteFile(outside, []byte("linked"), 0644)

	src := t.TempDir()
	if err := os.Symlink(outside, filepath.Join(src, "link.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	c := newClient(t, WithStore(memstore.New()))
	ctx := context.Background()
	if _, err := c.Compress(ctx, CompressRequest{Source: src, Target: "out"}); err != nil {
		t.Fatalf("Compress() error = %v", err)
	}

	dst := t.TempDir()
	if _, err := c.Extract(ctx, ExtractRequest{Archive: "out.zip", Target: dst}); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	got, _ := os.ReadFile(filepath.Join(dst, "link.txt"))
	if string(got) != "linked" {
		t.Errorf("link.txt = %q, want linked", got)
	}
}

func TestCompress_BrokenSymlink(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"a.txt": "hello"})
	if err := os.Symlink(filepath.Join(src, "nowhere"), filepath.Join(src, "dangling")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	for _, recursive := range []bool{false, true} {
		mem := memstore.New()
		c := newClient(t, WithStore(mem), WithRecursive(recursive))
		ctx := context.Background()

		res, err := c.Compress(ctx, CompressRequest{Source: src, Target: "out"})
		if err != nil {
			t.Fatalf("Compress(recursive=%v) error = %v", recursive, err)
		}
		if res.Entries != 1 {
			t.Errorf("Compress(recursive=%v) entries = %d, want 1", recursive, res.Entries)
		}
		entries, _ := c.List(ctx, "out.zip")
		if got := entryNames(entries); !reflect.DeepEqual(got, []string{"a.txt"}) {
			t.Errorf("entries = %v, want [a.txt]", got)
		}
	}
}

func TestCompress_SymlinkedSource(t *testing.T) {
	tree := t.TempDir()
	writeTree(t, tree, map[string]string{"a.txt": "a", "sub/b.txt": "b"})
	src := filepath.Join(t.TempDir(), "link")
	if err := os.Symlink(tree, src); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	tests := []struct {
		recursive bool
		want      []string
	}{
		{false, []string{"a.txt", "sub/"}},
		{true, []string{"a.txt", "sub/", "sub/b.txt"}},
	}

	for _, tt := range tests {
		c := newClient(t, WithStore(memstore.New()), WithRecursive(tt.recursive))
		ctx := context.Background()

		if _, err := c.Compress(ctx, CompressRequest{Source: src, Target: "out"}); err != nil {
			t.Fatalf("Compress(recursive=%v) error = %v", tt.recursive, err)
		}
		entries, _ := c.List(ctx, "out.zip")
		if got := entryNames(entries); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("recursive=%v entries = %v, want %v", tt.recursive, got, tt.want)
		}
	}
}

func TestCompress_SkipsOwnArchive(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"a.txt": "hello"})
	target := filepath.Join(src, "out")

	c := newClient(t)
	ctx := context.Background()

	first, err := c.Compress(ctx, CompressRequest{Source: src, Target: target})
	if err != nil {
		t.Fatalf("Compress() error = %v", err)
	}
	second, err := c.Compress(ctx, CompressRequest{Source: src, Target: target})
	if err != nil {
		t.Fatalf("second Compress() error = %v", err)
	}

	entries, err := c.List(ctx, second.Archive)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if got := entryNames(entries); !reflect.DeepEqual(got, []string{"a.txt"}) {
		t.Errorf("entries = %v, want [a.txt]", got)
	}
	if second.ArchiveSize != first.ArchiveSize {
		t.Errorf("ArchiveSize = %d on rerun, want %d", second.ArchiveSize, first.ArchiveSize)
	}
}

func TestCompress_Cancelled(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"a.txt": "hello"})

	mem := memstore.New()
	c := newClient(t, WithStore(mem))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Compress(ctx, CompressRequest{Source: src, Target: "out"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Compress() error = %v, want context.Canceled", err)
	}
	if _, ok := mem.Data("out.zip"); ok {
		t.Error("cancelled archive should not be committed")
	}
}
