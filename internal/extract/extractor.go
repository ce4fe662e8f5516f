package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"clipgif/internal/logging"
	"clipgif/internal/services"
)

const (
	// DefaultFPS is the sampling rate used when none is configured.
	DefaultFPS = 15

	maxStderrDetail = 512
)

// Executor abstracts command execution for testability. Run returns whatever
// the command wrote to stderr alongside the execution error.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

// Option configures the extractor.
type Option func(*Extractor)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(e *Extractor) {
		if exec != nil {
			e.exec = exec
		}
	}
}

// WithTimeout bounds each ffmpeg run. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Extractor) {
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

// WithFPS sets the sampling rate passed to ffmpeg's fps filter.
func WithFPS(fps int) Option {
	return func(e *Extractor) {
		if fps > 0 {
			e.fps = fps
		}
	}
}

// WithFrameFormat sets the intermediate image extension (png or webp).
func WithFrameFormat(ext string) Option {
	return func(e *Extractor) {
		e.ext = normalizeExt(ext)
	}
}

// WithWatch enables counting frame files while ffmpeg runs.
func WithWatch(enabled bool) Option {
	return func(e *Extractor) {
		e.watch = enabled
	}
}

// WithLogger sets the logger used for watcher diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Extractor wraps ffmpeg frame extraction.
type Extractor struct {
	binary  string
	fps     int
	ext     string
	timeout time.Duration
	watch   bool
	exec    Executor
	logger  *slog.Logger
}

// New constructs an extractor for the given ffmpeg binary.
func New(binary string, opts ...Option) (*Extractor, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	e := &Extractor{
		binary: binary,
		fps:    DefaultFPS,
		ext:    "png",
		exec:   commandExecutor{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// FPS reports the configured sampling rate.
func (e *Extractor) FPS() int { return e.fps }

// FrameFormat reports the configured image extension.
func (e *Extractor) FrameFormat() string { return e.ext }

// Extract decodes up to limit of source into dir. onFrame, when non-nil and
// watching is enabled, receives the running count of frame files.
func (e *Extractor) Extract(ctx context.Context, source string, limit time.Duration, dir string, onFrame func(count int)) error {
	if strings.TrimSpace(source) == "" {
		return services.Wrap(services.ErrConfiguration, "extract", "validate", "source path required", nil)
	}
	if strings.TrimSpace(dir) == "" {
		return services.Wrap(services.ErrTemporaryStorage, "extract", "validate", "destination directory required", nil)
	}

	runCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	if e.watch && onFrame != nil {
		stop, err := watchFrames(dir, e.ext, onFrame)
		if err != nil {
			logging.WarnWithContext(e.logger, "frame watcher unavailable", "frame_watch_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "extraction progress not reported"),
			)
		} else {
			defer stop()
		}
	}

	args := BuildArgs(source, limit, dir, e.fps, e.ext)
	e.logger.Debug("running ffmpeg",
		logging.String("binary", e.binary),
		logging.String("args", strings.Join(args, " ")),
	)

	stderr, err := e.exec.Run(runCtx, e.binary, args)
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return services.Wrap(services.ErrExternalTool, "extract", "run ffmpeg",
			fmt.Sprintf("%s interrupted", e.binary), ctxErr)
	}
	if e.timeout > 0 && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, "extract", "run ffmpeg",
			fmt.Sprintf("%s exceeded %s", e.binary, e.timeout), err)
	}

	msg := fmt.Sprintf("%s failed", e.binary)
	if detail := trimDetail(stderr); detail != "" {
		msg += ": " + detail
	}
	return services.Wrap(services.ErrExternalTool, "extract", "run ffmpeg", msg, err)
}

func trimDetail(stderr []byte) string {
	detail := strings.TrimSpace(string(stderr))
	if len(detail) > maxStderrDetail {
		detail = detail[len(detail)-maxStderrDetail:]
	}
	return detail
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.Bytes(), err
}
