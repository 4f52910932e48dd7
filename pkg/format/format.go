package format

import (
	"fmt"
	"time"

	"github.com/docker/go-units"
)

// Bytes renders a size in binary units, e.g. "4.883MiB"
func Bytes(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return units.BytesSize(float64(bytes))
}

// KiBCeil is the size in whole KiB rounded up, as reported by bundle limits
func KiBCeil(bytes int64) int64 {
	if bytes <= 0 {
		return 0
	}
	return (bytes + 1023) / 1024
}

// Ratio renders compressed/original as a percentage
func Ratio(compressed, original int64) string {
	if original <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(compressed)*100/float64(original))
}

// Duration formats durations in a readable way
func Duration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Microsecond).String()
	}
	return units.HumanDuration(d)
}
