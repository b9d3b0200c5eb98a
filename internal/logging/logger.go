package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logger configuration
type Config struct {
	Level   string
	LogFile string
	NoColor bool
	// FileOnly drops the console writer. The window owns the terminal
	// while it runs, so it logs to the file alone.
	FileOnly bool
	// Console overrides the console destination (stderr by default)
	Console io.Writer
}

// Loggers is the process logger plus a file-only logger that writes
// through the same rotating file
type Loggers struct {
	Log  *zerolog.Logger
	File *zerolog.Logger

	file *lumberjack.Logger
}

// NewLogger creates a new zerolog logger with dual output (console + file)
func NewLogger(cfg Config) *zerolog.Logger {
	return NewLoggers(cfg).Log
}

// NewLoggers creates the console + file logger and a file-only logger
// sharing one lumberjack writer
func NewLoggers(cfg Config) *Loggers {
	// Enable stack trace marshaling
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	level := parseLevel(cfg.Level)
	l := &Loggers{}

	if cfg.LogFile != "" {
		dir := filepath.Dir(cfg.LogFile)
		if err := os.MkdirAll(dir, 0755); err == nil {
			l.file = &lumberjack.Logger{
				Filename:   cfg.LogFile,
				MaxSize:    10, // MB
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			}
		}
	}

	var writers, fileWriters []io.Writer

	if !cfg.FileOnly {
		out := cfg.Console
		if out == nil {
			out = os.Stderr
		}
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
			NoColor:    cfg.NoColor || os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb",
		})
	}
	if l.file != nil {
		writers = append(writers, l.file)
		fileWriters = append(fileWriters, l.file)
	}

	l.Log = newLogger(level, writers)
	l.File = newLogger(level, fileWriters)
	return l
}

// Close closes the shared log file
func (l *Loggers) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

func newLogger(level zerolog.Level, writers []io.Writer) *zerolog.Logger {
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &logger
}

// NoColorFor maps the logging.color setting to ConsoleWriter.NoColor
func NoColorFor(setting string) bool {
	switch setting {
	case "never", "false", "off":
		return true
	default:
		return false
	}
}

// parseLevel converts string level to zerolog.Level
func parseLevel(level string) zerolog.Level {
	switch level {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewTestLogger creates a logger for testing that writes to a buffer
func NewTestLogger(w io.Writer) *zerolog.Logger {
	logger := zerolog.New(w).With().Timestamp().Logger()
	return &logger
}
