package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"scrollsplice/internal/deps"
	"scrollsplice/internal/preflight"
)

var errDoctorFailed = errors.New("one or more checks failed")

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that ffmpeg, ffprobe and the history directory are usable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)

			fmt.Fprintln(out, renderStatusLine("Config", statusOK, ctx.configPath, colorize))
			if cfg.History.Enabled {
				if err := cfg.EnsureDirectories(); err != nil {
					fmt.Fprintln(out, renderStatusLine("History directory", statusError, err.Error(), colorize))
					return errDoctorFailed
				}
			}

			versions := map[string]string{
				"FFmpeg":  cfg.Media.FFmpegBinary,
				"FFprobe": deps.ResolveFFprobe(cfg.Media.FFmpegBinary, cfg.Media.FFprobeBinary),
			}
			failed := false
			for _, result := range preflight.RunAll(cmd.Context(), cfg) {
				if !result.Passed {
					failed = true
					fmt.Fprintln(out, renderStatusLine(result.Name, statusError, result.Detail, colorize))
					continue
				}
				detail := result.Detail
				if binary, ok := versions[result.Name]; ok {
					version, err := deps.Version(cmd.Context(), binary)
					if err != nil {
						fmt.Fprintln(out, renderStatusLine(result.Name, statusWarn, fmt.Sprintf("%s (version unknown: %v)", detail, err), colorize))
						continue
					}
					detail = fmt.Sprintf("%s (%s)", detail, version)
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, statusOK, detail, colorize))
			}
			if !cfg.History.Enabled {
				fmt.Fprintln(out, renderStatusLine("History", statusWarn, "disabled", colorize))
			}
			if failed {
				return errDoctorFailed
			}
			return nil
		},
	}
}
