package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"scrollsplice/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Browse recorded stitch runs",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *history.Store) error {
				runs, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				fmt.Fprintln(out, renderRunsTable(runs))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list (0 lists all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print runs as JSON")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run and its per-pair offsets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *history.Store) error {
				run, err := store.Get(cmd.Context(), args[0])
				switch {
				case errors.Is(err, history.ErrNotFound):
					return fmt.Errorf("no run matches %q", args[0])
				case errors.Is(err, history.ErrAmbiguousID):
					return fmt.Errorf("%q matches more than one run; use a longer prefix", args[0])
				case err != nil:
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, run)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderRunDetail(run))
				if len(run.Pairs) > 0 {
					fmt.Fprintln(out, renderPairsTable(run.Pairs))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run as JSON")
	return cmd
}

func renderRunsTable(runs []*history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			run.CreatedAt.Local().Format(time.DateTime),
			filepath.Base(run.Source),
			formatCount(run.FrameCount),
			fmt.Sprintf("%s x %s", formatCount(run.PanoramaWidth), formatCount(run.PanoramaHeight)),
			strconv.Itoa(run.FallbackCount),
			formatDuration(run.Duration),
		})
	}
	return renderTable(
		[]string{"ID", "Created", "Source", "Frames", "Panorama", "Fallbacks", "Took"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	)
}

func renderRunDetail(run *history.Run) string {
	rows := [][]string{
		{"ID", run.ID},
		{"Created", run.CreatedAt.Local().Format(time.RFC3339)},
		{"Source", run.Source},
		{"Output", run.Output},
		{"Output size", formatBytes(run.OutputBytes)},
		{"Frame", fmt.Sprintf("%d x %d", run.FrameWidth, run.FrameHeight)},
		{"Frames", formatCount(run.FrameCount)},
		{"Panorama", fmt.Sprintf("%s x %s", formatCount(run.PanoramaWidth), formatCount(run.PanoramaHeight))},
		{"Crop top/bottom", fmt.Sprintf("%d / %d px", run.CropTop, run.CropBottom)},
		{"Expected offset", fmt.Sprintf("%d px", run.ExpectedOffset)},
		{"Min overlap", fmt.Sprintf("%d px", run.MinOverlap)},
		{"Approx diff", strconv.FormatFloat(run.ApproxDiff, 'g', -1, 64)},
		{"Transpose", yesNo(run.Transpose)},
		{"Fallbacks", strconv.Itoa(run.FallbackCount)},
		{"Took", formatDuration(run.Duration)},
	}
	return renderTable([]string{"Field", "Value"}, rows, nil)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
