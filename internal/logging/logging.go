// Package logging builds the zerolog logger and adapts it to the logger
// interfaces of the client and the retrying transport.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"github.com/fivetwenty-io/bizapi/pkg/bizapi"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config selects level, format and destination.
type Config struct {
	Level   string
	Format  string
	NoColor bool
	// Out defaults to os.Stderr.
	Out io.Writer
}

// ParseLevel maps a level name to a zerolog level. Unknown names mean info.
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(name) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// New configures a zerolog logger.
func New(cfg Config) zerolog.Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	level := ParseLevel(cfg.Level)

	if strings.EqualFold(cfg.Format, FormatJSON) {
		return zerolog.New(out).Level(level).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !ColorEnabled(out, cfg.NoColor),
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// ColorEnabled reports whether out is a terminal that should get colors.
func ColorEnabled(out io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}

	file, ok := out.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

// Adapter exposes a zerolog logger as a bizapi.Logger.
type Adapter struct {
	logger zerolog.Logger
}

var _ bizapi.Logger = (*Adapter)(nil)

// NewAdapter wraps logger.
func NewAdapter(logger zerolog.Logger) *Adapter {
	return &Adapter{logger: logger}
}

// Debug logs at debug level.
func (a *Adapter) Debug(msg string, fields map[string]interface{}) {
	a.logger.Debug().Fields(fields).Msg(msg)
}

// Info logs at info level.
func (a *Adapter) Info(msg string, fields map[string]interface{}) {
	a.logger.Info().Fields(fields).Msg(msg)
}

// Warn logs at warn level.
func (a *Adapter) Warn(msg string, fields map[string]interface{}) {
	a.logger.Warn().Fields(fields).Msg(msg)
}

// Error logs at error level.
func (a *Adapter) Error(msg string, fields map[string]interface{}) {
	a.logger.Error().Fields(fields).Msg(msg)
}

// RetryLogger exposes a zerolog logger as retryablehttp's leveled logger.
// Attempt chatter goes to debug so it only shows with --verbose.
type RetryLogger struct {
	logger zerolog.Logger
}

var _ retryablehttp.LeveledLogger = (*RetryLogger)(nil)

// NewRetryLogger wraps logger.
func NewRetryLogger(logger zerolog.Logger) *RetryLogger {
	return &RetryLogger{logger: logger.With().Str("component", "transport").Logger()}
}

// Error logs at error level.
func (r *RetryLogger) Error(msg string, keysAndValues ...interface{}) {
	r.logger.Error().Fields(keysAndValues).Msg(msg)
}

// Info logs at debug level.
func (r *RetryLogger) Info(msg string, keysAndValues ...interface{}) {
	r.logger.Debug().Fields(keysAndValues).Msg(msg)
}

// Debug logs at debug level.
func (r *RetryLogger) Debug(msg string, keysAndValues ...interface{}) {
	r.logger.Debug().Fields(keysAndValues).Msg(msg)
}

// Warn logs at warn level.
func (r *RetryLogger) Warn(msg string, keysAndValues ...interface{}) {
	r.logger.Warn().Fields(keysAndValues).Msg(msg)
}
