package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// New creates a logger writing to w at the given level. An empty level is
// info, or debug when ENV=dev.
func New(w io.Writer, level string) (*log.Logger, error) {
	l := log.NewWithOptions(w, log.Options{
		Level:           log.InfoLevel,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	if err := SetLogLevel(l, level); err != nil {
		return nil, err
	}
	return l, nil
}

// ParseLevel accepts the level names of the --log-level flag and the log.level
// setting. An empty level is info, or debug when ENV=dev.
func ParseLevel(level string) (log.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	switch {
	case level == "" && os.Getenv("ENV") == "dev":
		level = "debug"
	case level == "":
		level = "info"
	case level == "warning":
		level = "warn"
	}
	return log.ParseLevel(level)
}

// SetLogLevel sets the level of l and of the package-level logger.
func SetLogLevel(l *log.Logger, level string) error {
	logLevel, err := ParseLevel(level)
	if err != nil {
		return err
	}

	l.SetLevel(logLevel)
	log.SetLevel(logLevel)
	l.Debug("Log level set", "level", logLevel.String())
	return nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
