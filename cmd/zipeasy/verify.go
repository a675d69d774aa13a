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

var verifyCmd = &cobra.Command{
	Use:   "verify ARCHIVE",
	Short: "Verify the integrity of a zip archive",
	Long: `Verify that every entry of ARCHIVE is intact.

This command checks:
- Each file entry decompresses and matches its CRC-32
- No entry name points outside the folder it would be extracted to`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

var (
	verifyWorkers int
)

func init() {
	verifyCmd.Flags().IntVar(&verifyWorkers, "workers", zipeasy.DefaultWorkers, "entries checked in parallel")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	loc, err := store.ParseLocation(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := newClient(ctx, loc, zipeasy.WithWorkers(pick(cmd, "workers", verifyWorkers, cfg.Workers)))
	if err != nil {
		return err
	}
	defer client.Close()

	out := cmd.OutOrStdout()
	report, err := client.Verify(ctx, loc.Key)
	if err != nil {
		return err
	}

	for _, f := range report.Failures {
		fmt.Fprintf(out, "  ERROR: %s: %v\n", f.Entry, f.Err)
	}
	if !report.OK() {
		return fmt.Errorf("%d of %d entries failed verification", len(report.Failures), report.Entries)
	}

	fmt.Fprintf(out, "All %d entries verified successfully in %s.\n", report.Entries, report.Duration)
	return nil
}
