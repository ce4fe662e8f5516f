package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"clipgif/internal/config"
	"clipgif/internal/convert"
	"clipgif/internal/deps"
	"clipgif/internal/extract"
	"clipgif/internal/logging"
	"clipgif/internal/media/ffprobe"
	"clipgif/internal/preflight"
)

type convertOptions struct {
	duration   string
	output     string
	noProgress bool
	skipChecks bool
}

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert <video>",
		Short: "Convert the start of a video clip into an animated GIF",
		Long: "Extracts frames from the start of <video> with ffmpeg and encodes them as a looping GIF.\n" +
			"When <video> is a regular file the GIF is written next to it with a .gif extension.\n" +
			"Press Ctrl+C once to stop after the current frame, twice to abort ffmpeg.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) > 0 {
				input = args[0]
			}
			return runConvert(cmd, ctx, input, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.duration, "duration", "d", "", "Clip length to convert (HH:MM:SS or Go duration, default conversion.default_duration)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output path used when the input is not a regular file")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Print status lines instead of a progress bar")
	cmd.Flags().BoolVar(&opts.skipChecks, "skip-checks", false, "Skip environment checks before converting")
	return cmd
}

func runConvert(cmd *cobra.Command, ctx *commandContext, input string, opts convertOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	limit := cfg.DefaultDuration()
	if strings.TrimSpace(opts.duration) != "" {
		if limit, err = config.ParseClipDuration(opts.duration); err != nil {
			return err
		}
	}

	baseCtx := cmd.Context()
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	if !opts.skipChecks && strings.TrimSpace(input) != "" {
		results := preflight.RunAll(baseCtx, cfg)
		if preflight.Failed(results) {
			fmt.Fprintln(cmd.ErrOrStderr(), renderPreflight(results))
			return errors.New("environment checks failed; run `clipgif check` for details")
		}
	}

	ctrl, err := buildController(cfg, logger, opts.output)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(baseCtx)
	defer cancel()
	go forwardSignals(runCtx, ctrl, cancel, logger)

	errOut := cmd.ErrOrStderr()
	useBar := !opts.noProgress && shouldColorize(errOut)

	var reporter *lineReporter
	if !useBar {
		reporter = newLineReporter(errOut)
		unsubscribe := ctrl.State().Subscribe(reporter.observe)
		defer unsubscribe()
	}

	if err := ctrl.Start(runCtx, input, limit); err != nil {
		if snap := ctrl.Snapshot(); snap.Status == convert.StatusNoInput {
			return errors.New(snap.Status)
		}
		return err
	}

	var summary convert.RunSummary
	var runErr error
	if useBar {
		view := newProgressView(errOut)
		done := make(chan struct{})
		go func() {
			summary, runErr = ctrl.Wait(context.Background())
			close(done)
		}()
		pollProgress(ctrl, view, 100*time.Millisecond, done)
		view.finish(summary.Outcome)
	} else {
		summary, runErr = ctrl.Wait(context.Background())
	}

	for _, line := range summaryLines(summary, runErr, shouldColorize(cmd.OutOrStdout())) {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return runErr
}

func buildController(cfg *config.Config, logger *slog.Logger, output string) (*convert.Controller, error) {
	ffmpegPath := deps.ResolveFFmpegPath(cfg.FFmpeg.Binary)
	extractor, err := extract.New(ffmpegPath,
		extract.WithFPS(cfg.Extraction.FPS),
		extract.WithFrameFormat(cfg.Extraction.FrameFormat),
		extract.WithTimeout(cfg.FFmpegTimeout()),
		extract.WithWatch(cfg.Extraction.WatchFrames),
		extract.WithLogger(logging.NewComponentLogger(logger, "extract")),
	)
	if err != nil {
		return nil, err
	}

	var probe convert.ProbeFunc
	if cfg.FFmpeg.ProbeSource {
		ffprobePath := deps.ResolveFFprobePath(cfg.FFmpeg.FFprobeBinary, ffmpegPath)
		probe = func(ctx context.Context, path string) (ffprobe.Result, error) {
			return ffprobe.Inspect(ctx, ffprobePath, path)
		}
	}

	converter := convert.NewConverter(extractor, convert.Options{
		ScratchDir:         cfg.ScratchDir(),
		Speed:              cfg.Encoder.Speed,
		ValidateDimensions: cfg.Encoder.ValidateDimensions,
		Probe:              probe,
		Logger:             logger,
	})

	if strings.TrimSpace(output) == "" {
		output = cfg.Conversion.DefaultOutput
	}
	return convert.NewController(converter, convert.NewState(),
		convert.WithLockPath(cfg.LockPath()),
		convert.WithDefaultOutput(output),
		convert.WithControllerLogger(logger),
	), nil
}

// forwardSignals maps the first interrupt to a cooperative cancellation and
// the second to a hard context cancel that also stops ffmpeg.
func forwardSignals(ctx context.Context, ctrl *convert.Controller, hardCancel context.CancelFunc, logger *slog.Logger) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	received := 0
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-sigCh:
			received++
			if received == 1 {
				logger.Warn("cancellation requested; finishing current frame",
					logging.String("signal", sig.String()),
					logging.String(logging.FieldEventType, "cancel_requested"),
				)
				ctrl.RequestCancellation()
				continue
			}
			logger.Warn("second interrupt; aborting",
				logging.String("signal", sig.String()),
				logging.String(logging.FieldEventType, "hard_cancel"),
			)
			hardCancel()
			return
		}
	}
}
