package cli

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	apperr "github.com/matzehuels/flowgrid/pkg/errors"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// parseLevel maps a config level name to a log level.
func parseLevel(s string) (log.Level, error) {
	level, err := log.ParseLevel(strings.ToLower(s))
	if err != nil {
		return LogInfo, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "log level %q", s)
	}
	return level, nil
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Placed 13 nodes (1ms)"
func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Info(msg, append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))...)
}
