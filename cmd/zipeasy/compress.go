package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zipeasy/zipeasy"
	"github.com/zipeasy/zipeasy/internal/codec/deflatecodec"
	"github.com/zipeasy/zipeasy/internal/progress"
	"github.com/zipeasy/zipeasy/internal/store"
)

var compressCmd = &cobra.Command{
	Use:   "compress SOURCE TARGET",
	Short: "Pack a folder into a zip archive",
	Long: `Pack the children of SOURCE into the archive TARGET.zip.

Files are stored uncompressed unless --method is given. By default only
the immediate children of SOURCE are packed and subfolders become empty
folder entries; use --recursive to pack the whole tree.

The suffix is always appended: "backup" becomes "backup.zip" and
"backup.zip" becomes "backup.zip.zip".

Examples:
  zipeasy compress ./photos backup
  zipeasy compress ./project gs://my-bucket/project --recursive --method deflate --level 9`,
	Args: cobra.ExactArgs(2),
	RunE: runCompress,
}

var (
	compressMethod    string
	compressLevel     int
	compressRecursive bool
	compressSuffix    string
)

func init() {
	compressCmd.Flags().StringVarP(&compressMethod, "method", "m", "store", "compression method: store, deflate, zstd")
	compressCmd.Flags().IntVar(&compressLevel, "level", -1, "deflate level 0-9, -1 for default")
	compressCmd.Flags().BoolVarP(&compressRecursive, "recursive", "r", false, "pack subfolders too")
	compressCmd.Flags().StringVar(&compressSuffix, "suffix", zipeasy.DefaultSuffix, "extension appended to TARGET")
	rootCmd.AddCommand(compressCmd)
}

func runCompress(cmd *cobra.Command, args []string) error {
	source := args[0]
	loc, err := store.ParseLocation(args[1])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []zipeasy.Option{
		zipeasy.WithRecursive(pick(cmd, "recursive", compressRecursive, cfg.Recursive)),
		zipeasy.WithSuffix(pick(cmd, "suffix", compressSuffix, cfg.Suffix)),
	}
	method := pick(cmd, "method", compressMethod, cfg.Method)
	if method == "deflate" {
		opts = append(opts, zipeasy.WithCodec(deflatecodec.NewLevel(pick(cmd, "level", compressLevel, cfg.Level))))
	} else {
		opts = append(opts, zipeasy.WithMethod(method))
	}

	client, err := newClient(ctx, loc, opts...)
	if err != nil {
		return err
	}
	defer client.Close()

	res, err := client.Compress(ctx, zipeasy.CompressRequest{Source: source, Target: loc.Key})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Compressed successfully in %s\n", res.Duration)
	if cfg.Log.Verbose {
		fmt.Fprintf(cmd.OutOrStdout(), "Archive: %s (%d entries, %s)\n", archiveLocation(loc, client), res.Entries, progress.FormatBytes(res.ArchiveSize))
	}
	return nil
}

// archiveLocation returns where Compress wrote for loc, in the form the
// user would type it.
func archiveLocation(loc store.Location, client *zipeasy.Client) string {
	loc.Key = client.ArchiveName(loc.Key)
	return loc.String()
}
