package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zipeasy/zipeasy"
	"github.com/zipeasy/zipeasy/internal/store"
)

var extractCmd = &cobra.Command{
	Use:     "extract ARCHIVE TARGET",
	Aliases: []string{"decompress"},
	Short:   "Unpack a zip archive into a folder",
	Long: `Unpack every entry of ARCHIVE below the folder TARGET, creating it
if needed. Entries whose names would land outside TARGET are refused.

Examples:
  zipeasy extract backup.zip ./restored
  zipeasy extract https://example.com/release.zip ./release`,
	Args: cobra.ExactArgs(2),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	loc, err := store.ParseLocation(args[0])
	if err != nil {
		return err
	}
	target := args[1]

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newClient(ctx, loc)
	if err != nil {
		return err
	}
	defer client.Close()

	res, err := client.Extract(ctx, zipeasy.ExtractRequest{Archive: loc.Key, Target: target})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Decompressed successfully in %s\n", res.Duration)
	return nil
}
