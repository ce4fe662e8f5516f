package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"clipgif/internal/frames"
	"clipgif/internal/gifenc"
	"clipgif/internal/logging"
	"clipgif/internal/media/ffprobe"
	"clipgif/internal/services"
)

// Extractor decodes a time-bounded slice of a clip into frame files.
type Extractor interface {
	Extract(ctx context.Context, source string, limit time.Duration, dir string, onFrame func(count int)) error
	FPS() int
	FrameFormat() string
}

// ProbeFunc inspects a source clip before extraction.
type ProbeFunc func(ctx context.Context, path string) (ffprobe.Result, error)

// Options configures a Converter.
type Options struct {
	// ScratchDir is the parent of per-run temporary directories; empty means the OS default.
	ScratchDir         string
	Speed              int
	ValidateDimensions bool
	// Probe, when set, runs before extraction. Its failure is only logged.
	Probe  ProbeFunc
	Logger *slog.Logger
}

// Converter runs the extract, collect and encode procedure.
type Converter struct {
	extractor Extractor
	opts      Options
	logger    *slog.Logger
}

// NewConverter constructs a converter around the given extractor.
func NewConverter(extractor Extractor, opts Options) *Converter {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Converter{
		extractor: extractor,
		opts:      opts,
		logger:    logging.NewComponentLogger(logger, "convert"),
	}
}

// Run converts req, reporting through state. Failures set the status to
// "Error: <message>" and are also returned; cancellation is not an error.
func (c *Converter) Run(ctx context.Context, req Request, state *State) (RunSummary, error) {
	started := time.Now()
	state.begin()

	runID, ok := services.RunIDFromContext(ctx)
	if !ok {
		runID = uuid.NewString()
		ctx = services.WithRunID(ctx, runID)
	}
	ctx = services.WithSource(ctx, req.SourcePath)
	logger := logging.WithContext(ctx, c.logger)

	output := ResolveOutputPath(req.SourcePath, req.DestinationPath)
	if req.DestinationPath != "" && output != req.DestinationPath {
		logger.Info("output placed next to source",
			logging.String("requested", req.DestinationPath),
			logging.String("output", output),
		)
	}

	summary := RunSummary{RunID: runID, Source: req.SourcePath, Output: output}
	finish := func(outcome Outcome, status string, err error) (RunSummary, error) {
		summary.Outcome = outcome
		summary.Elapsed = time.Since(started)
		if outcome == OutcomeCompleted {
			state.SetProgress(100)
		}
		state.finish(status)
		if err != nil {
			logging.ErrorWithContext(logger, "conversion failed", "conversion_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, hintFor(err)),
			)
		} else {
			logger.Info("conversion finished",
				logging.String("outcome", string(outcome)),
				logging.Int("frames_written", summary.Written),
				logging.Duration("elapsed", summary.Elapsed),
			)
		}
		return summary, err
	}
	fail := func(err error) (RunSummary, error) {
		return finish(OutcomeFailed, statusErrorPrefix+err.Error(), err)
	}

	if strings.TrimSpace(output) == "" {
		return fail(services.Wrap(services.ErrConfiguration, "convert", "resolve output", "no output path", nil))
	}

	c.probe(ctx, req)

	workDir, err := os.MkdirTemp(c.opts.ScratchDir, "clipgif-")
	if err != nil {
		return fail(services.Wrap(services.ErrTemporaryStorage, "convert", "create temp dir", "", err))
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			logger.Warn("temp dir cleanup failed", logging.String("dir", workDir), logging.Error(err))
		}
	}()

	extractCtx := services.WithStage(ctx, "extract")
	state.SetStatus(StatusExtracting)
	logging.WithContext(extractCtx, c.logger).Info("extracting frames",
		logging.Duration("limit", req.DurationLimit),
		logging.Int("fps", c.extractor.FPS()),
	)
	err = c.extractor.Extract(extractCtx, req.SourcePath, req.DurationLimit, workDir, func(count int) {
		state.SetStatus(fmt.Sprintf("%s (%d)", StatusExtracting, count))
	})
	if err != nil {
		return fail(err)
	}

	collected, err := frames.Collect(workDir, c.extractor.FrameFormat())
	if err != nil {
		return fail(err)
	}
	summary.Frames = len(collected)

	outcome, err := c.encode(services.WithStage(ctx, "encode"), collected, output, state, &summary)
	if err != nil {
		return fail(err)
	}
	if outcome == OutcomeCancelled {
		return finish(OutcomeCancelled, StatusCancelled, nil)
	}
	return finish(OutcomeCompleted, statusCompletedPrefix+output, nil)
}

func (c *Converter) encode(ctx context.Context, collected []frames.Frame, output string, state *State, summary *RunSummary) (Outcome, error) {
	logger := logging.WithContext(ctx, c.logger)

	width, height, err := gifenc.FrameSize(collected[0].Path)
	if err != nil {
		return OutcomeFailed, err
	}
	enc, err := gifenc.Create(output, width, height, gifenc.Options{
		Delay:              gifenc.DelayForFPS(c.extractor.FPS()),
		Speed:              c.opts.Speed,
		ValidateDimensions: c.opts.ValidateDimensions,
	})
	if err != nil {
		return OutcomeFailed, err
	}
	logger.Info("encoding frames",
		logging.Int("frames", len(collected)),
		logging.String("size", fmt.Sprintf("%dx%d", enc.Width(), enc.Height())),
		logging.String("output", output),
	)

	sampler := logging.NewProgressSampler(10)
	total := len(collected)
	for i, frame := range collected {
		if state.CancelRequested() {
			_ = enc.Close()
			logger.Info("conversion cancelled", logging.Int("frames_written", i))
			return OutcomeCancelled, nil
		}
		img, err := gifenc.DecodeFrame(frame.Path)
		if err != nil {
			_ = enc.Close()
			return OutcomeFailed, err
		}
		if err := enc.WriteFrame(img); err != nil {
			_ = enc.Close()
			return OutcomeFailed, err
		}
		summary.Written = i + 1

		percent := (i + 1) * 100 / total
		state.SetProgress(percent)
		if sampler.ShouldLog(percent, "encode") {
			logger.Debug("encode progress", logging.Int("percent", percent), logging.Int("frame", i+1))
		}
	}
	if err := enc.Close(); err != nil {
		return OutcomeFailed, err
	}
	return OutcomeCompleted, nil
}

func (c *Converter) probe(ctx context.Context, req Request) {
	if c.opts.Probe == nil {
		return
	}
	ctx = services.WithStage(ctx, "probe")
	logger := logging.WithContext(ctx, c.logger)

	result, err := c.opts.Probe(ctx, req.SourcePath)
	if err != nil {
		logging.WarnWithContext(logger, "source probe failed", "probe_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check ffprobe availability or disable ffmpeg.probe_source"),
			logging.String(logging.FieldImpact, "clip metadata not reported"),
		)
		return
	}

	attrs := []logging.Attr{logging.Duration("source_duration", result.Duration())}
	if video, ok := result.PrimaryVideo(); ok {
		attrs = append(attrs,
			logging.String("resolution", video.Resolution()),
			logging.String("codec", video.CodecName),
		)
	}
	logger.Info("source inspected", logging.Args(attrs...)...)

	if d := result.Duration(); d > 0 && req.DurationLimit > d {
		logging.WarnWithContext(logger, "duration limit exceeds source length", "limit_exceeds_source",
			logging.Duration("limit", req.DurationLimit),
			logging.Duration("source_duration", d),
			logging.String(logging.FieldImpact, "GIF covers the whole clip"),
			logging.String(logging.FieldErrorHint, "shorten the duration to silence this warning"),
		)
	}
}

func hintFor(err error) string {
	switch services.Kind(err) {
	case "external_tool":
		return "verify the input is a readable video and ffmpeg is installed"
	case "timeout":
		return "raise ffmpeg.timeout_seconds or shorten the clip"
	case "empty_result":
		return "the duration may be shorter than one frame or the input has no video stream"
	case "temporary_storage":
		return "check paths.temp_dir permissions and free space"
	case "write":
		return "check the output directory is writable"
	case "image_decode":
		return "set encoder.validate_dimensions = false to fit mismatched frames"
	default:
		return "check logs for details"
	}
}
