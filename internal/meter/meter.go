// Package meter draws a live input level bar on a terminal line while a
// recording is in progress.
package meter

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
)

// Width is the number of cells in the bar.
const Width = 30

// LevelSource reports the current input level in [0, 1].
type LevelSource interface {
	Level() float64
}

// Run redraws the bar every interval until ctx is cancelled, then clears the
// line. Write errors are ignored: the meter never affects the capture.
func Run(ctx context.Context, src LevelSource, w io.Writer, interval time.Duration) {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer fmt.Fprint(w, "\r"+strings.Repeat(" ", Width+4)+"\r")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, "\r"+Bar(src.Level()))
		}
	}
}

// Bar renders a level as "[####......]". Speech sits well below full
// scale, so the level is mapped on a square-root curve.
func Bar(level float64) string {
	if math.IsNaN(level) || level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	filled := int(math.Round(math.Sqrt(level) * Width))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", Width-filled) + "]"
}
