package main

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"clipgif/internal/config"
	"clipgif/internal/deps"
	"clipgif/internal/media/ffprobe"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var durationFlag string

	cmd := &cobra.Command{
		Use:   "probe <video>",
		Short: "Inspect a clip and estimate the GIF it would produce",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			limit := cfg.DefaultDuration()
			if durationFlag != "" {
				if limit, err = config.ParseClipDuration(durationFlag); err != nil {
					return err
				}
			}

			ffprobePath := deps.ResolveFFprobePath(cfg.FFmpeg.FFprobeBinary, deps.ResolveFFmpegPath(cfg.FFmpeg.Binary))
			result, err := ffprobe.Inspect(cmd.Context(), ffprobePath, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderProbe(result, limit, cfg.Extraction.FPS))
			return nil
		},
	}
	cmd.Flags().StringVarP(&durationFlag, "duration", "d", "", "Clip length to estimate for (HH:MM:SS or Go duration)")
	return cmd
}

func renderProbe(result ffprobe.Result, limit time.Duration, fps int) string {
	rows := [][]string{
		{"Container", result.Format.FormatName},
		{"Duration", formatProbeDuration(result.Duration())},
		{"Video streams", fmt.Sprintf("%d", result.VideoStreamCount())},
	}
	if video, ok := result.PrimaryVideo(); ok {
		rows = append(rows,
			[]string{"Codec", video.CodecName},
			[]string{"Resolution", video.Resolution()},
			[]string{"Frame rate", fmt.Sprintf("%.3f", video.FrameRate())},
		)
	}

	effective := limit
	if d := result.Duration(); d > 0 && d < effective {
		effective = d
	}
	frames := int(math.Ceil(effective.Seconds() * float64(fps)))
	rows = append(rows,
		[]string{"GIF length", formatProbeDuration(effective)},
		[]string{"GIF frames", fmt.Sprintf("~%d at %d fps", frames, fps)},
	)
	return renderTable("Source", []string{"Field", "Value"}, rows, nil)
}

func formatProbeDuration(d time.Duration) string {
	if d <= 0 {
		return "unknown"
	}
	return d.Round(time.Millisecond).String()
}
