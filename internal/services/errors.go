package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTemporaryStorage = errors.New("temporary storage error")
	ErrExternalTool     = errors.New("external tool error")
	ErrFrameDiscovery   = errors.New("frame discovery error")
	ErrEmptyResult      = errors.New("empty result")
	ErrImageDecode      = errors.New("image decode error")
	ErrEncoderInit      = errors.New("encoder init error")
	ErrWrite            = errors.New("write error")
	ErrTimeout          = errors.New("timeout")
	ErrConfiguration    = errors.New("configuration error")
	ErrBusy             = errors.New("conversion already running")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short machine-friendly label for the marker carried by err.
// It is used as the error_kind log field and in CLI summaries.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTemporaryStorage):
		return "temporary_storage"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrExternalTool):
		return "external_tool"
	case errors.Is(err, ErrFrameDiscovery):
		return "frame_discovery"
	case errors.Is(err, ErrEmptyResult):
		return "empty_result"
	case errors.Is(err, ErrImageDecode):
		return "image_decode"
	case errors.Is(err, ErrEncoderInit):
		return "encoder_init"
	case errors.Is(err, ErrWrite):
		return "write"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrBusy):
		return "busy"
	default:
		return "unknown"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
