package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/averlon/questline/internal/config"
	"github.com/averlon/questline/internal/constants"
)

// logFileWriter holds the rotating log file writer for cleanup during
// shutdown.
var logFileWriter io.WriteCloser //nolint:gochecknoglobals // Needed for cleanup

// InitLogger creates and configures a zerolog.Logger from verbosity
// flags and the logging section of the configuration.
//
// Log levels are resolved as follows:
//   - verbose=true: Debug level
//   - quiet=true: Warn level
//   - otherwise: the configured level (info when unset)
//
// Output format follows cfg.Format; when empty it auto-detects: a
// console writer on a TTY without NO_COLOR, JSON to stderr otherwise.
//
// When cfg.File is enabled the logger also writes JSON entries to
// ~/.questline/logs/questline.log with rotation. If the log file cannot
// be created, the logger continues with console-only output.
func InitLogger(verbose, quiet bool, cfg config.LoggingConfig) zerolog.Logger {
	level := selectLevel(verbose, quiet, cfg.Level)
	console := selectOutput(cfg.Format)

	writer := console
	if cfg.File {
		if fileWriter, err := createLogFileWriter(cfg); err == nil {
			logFileWriter = fileWriter
			writer = zerolog.MultiLevelWriter(console, fileWriter)
		}
	}

	logger := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	// Mirror into the zerolog global so stray log.Debug() calls use the
	// same formatting.
	log.Logger = logger
	return logger
}

// InitLoggerWithWriter creates a zerolog.Logger with a custom writer.
// This is primarily intended for testing purposes.
func InitLoggerWithWriter(verbose, quiet bool, w io.Writer) zerolog.Logger {
	level := selectLevel(verbose, quiet, "")
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// CloseLogFile closes the rotating log file writer if it was opened.
// Call during application shutdown.
func CloseLogFile() {
	if logFileWriter != nil {
		_ = logFileWriter.Close()
		logFileWriter = nil
	}
}

// selectLevel resolves the log level from flags, falling back to the
// configured level. Flags always win over configuration.
func selectLevel(verbose, quiet bool, configured string) zerolog.Level {
	switch {
	case verbose:
		return zerolog.DebugLevel
	case quiet:
		return zerolog.WarnLevel
	}

	if lvl, err := zerolog.ParseLevel(configured); err == nil && configured != "" {
		return lvl
	}
	return zerolog.InfoLevel
}

// selectOutput determines the console writer based on the configured
// format, terminal capabilities, and environment settings.
func selectOutput(format string) io.Writer {
	switch format {
	case "console":
		return zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		}
	case "json":
		return os.Stderr
	}

	// Auto-detect: console writer for a TTY without NO_COLOR
	if term.IsTerminal(int(os.Stderr.Fd())) && os.Getenv("NO_COLOR") == "" {
		return zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
		}
	}

	return os.Stderr
}

// createLogFileWriter creates a rotating file writer for the CLI log
// under ~/.questline/logs.
func createLogFileWriter(cfg config.LoggingConfig) (io.WriteCloser, error) {
	logDir, err := config.LogsDir()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(logDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   filepath.Join(logDir, constants.CLILogFileName),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}, nil
}

// LogFilePath returns the path to the CLI log file, for displaying the
// log location to users.
func LogFilePath() (string, error) {
	logDir, err := config.LogsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(logDir, constants.CLILogFileName), nil
}
