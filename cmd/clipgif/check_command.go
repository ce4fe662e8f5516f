package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"clipgif/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify ffmpeg, ffprobe and working directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			fmt.Fprintln(cmd.OutOrStdout(), renderPreflight(results))
			if preflight.Failed(results) {
				return errors.New("one or more required checks failed")
			}
			return nil
		},
	}
}

func renderPreflight(results []preflight.Result) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.Name, preflightLabel(r), r.Detail})
	}
	return renderTable("Environment", []string{"Check", "Status", "Detail"}, rows, nil)
}

func preflightLabel(r preflight.Result) string {
	switch {
	case r.Passed:
		return "OK"
	case r.Optional:
		return "WARN"
	default:
		return "FAIL"
	}
}
