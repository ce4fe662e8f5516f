package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const defaultClipDuration = 5 * time.Second

// minClipDuration is the smallest limit ffmpeg's -t can express at the
// millisecond precision the extractor renders.
const minClipDuration = time.Millisecond

// ParseClipDuration accepts either an ffmpeg-style clock value ("00:00:05",
// "01:30", "7.5") or a Go duration string ("5s", "1m30s").
func ParseClipDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("duration: empty value")
	}
	if d, err := time.ParseDuration(value); err == nil {
		return checkClipDuration(value, d)
	}

	parts := strings.Split(value, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("duration %q: expected [[HH:]MM:]SS", value)
	}
	var total float64
	for i, part := range parts {
		part = strings.TrimSpace(part)
		last := i == len(parts)-1
		if last {
			seconds, err := strconv.ParseFloat(part, 64)
			if err != nil || seconds < 0 {
				return 0, fmt.Errorf("duration %q: invalid seconds %q", value, part)
			}
			if len(parts) > 1 && seconds >= 60 {
				return 0, fmt.Errorf("duration %q: seconds must be below 60", value)
			}
			total = total*60 + seconds
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("duration %q: invalid component %q", value, part)
		}
		if i > 0 && n >= 60 {
			return 0, fmt.Errorf("duration %q: minutes must be below 60", value)
		}
		total = total*60 + float64(n)
	}
	return checkClipDuration(value, time.Duration(total*float64(time.Second)))
}

func checkClipDuration(value string, d time.Duration) (time.Duration, error) {
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", value)
	}
	if d < minClipDuration {
		return 0, fmt.Errorf("duration %q is below the %s minimum", value, minClipDuration)
	}
	return d, nil
}
