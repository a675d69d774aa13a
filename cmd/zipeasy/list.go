package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zipeasy/zipeasy/internal/progress"
	"github.com/zipeasy/zipeasy/internal/store"
)

var listCmd = &cobra.Command{
	Use:   "list ARCHIVE",
	Short: "List the entries of a zip archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	loc, err := store.ParseLocation(args[0])
	if err != nil {
		return err
	}

	ctx := context.Background()
	client, err := newClient(ctx, loc)
	if err != nil {
		return err
	}
	defer client.Close()

	entries, err := client.List(ctx, loc.Key)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tMETHOD\tMODIFIED")
	var total int64
	for _, e := range entries {
		size := progress.FormatBytes(e.Size)
		if e.IsDir {
			size = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, size, e.MethodName(), e.Modified.Format("2006-01-02 15:04"))
		total += e.Size
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d entries, %s\n", len(entries), progress.FormatBytes(total))
	return nil
}
