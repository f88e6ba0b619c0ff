// Package logger provides process-wide structured logging over log/slog.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Config holds logger configuration.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or file path
}

var (
	mu      sync.RWMutex
	level   = new(slog.LevelVar)
	format  = "text"
	output  io.Writer = os.Stderr
	noColor           = !isatty.IsTerminal(os.Stderr.Fd())
	slogger *slog.Logger
)

func init() {
	level.Set(slog.LevelInfo)
	reconfigure()
}

// reconfigure rebuilds the slog handler based on current settings.
// Callers must hold mu.
func reconfigure() {
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level})
	} else {
		handler = tint.NewHandler(output, &tint.Options{
			Level:   level,
			NoColor: noColor,
		})
	}
	slogger = slog.New(handler)
}

// Init initializes the logger with the given configuration.
// Output can be "stdout", "stderr", or a file path.
func Init(cfg Config) error {
	mu.Lock()
	defer mu.Unlock()

	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		output = os.Stderr
		noColor = !isatty.IsTerminal(os.Stderr.Fd())
	case "stdout":
		output = os.Stdout
		noColor = !isatty.IsTerminal(os.Stdout.Fd())
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
		}
		output = f
		noColor = true
	}

	setLevel(cfg.Level)
	setFormat(cfg.Format)
	reconfigure()
	return nil
}

// InitWithWriter initializes the logger with a custom io.Writer.
// This is primarily useful for testing.
func InitWithWriter(w io.Writer, lvl, fmtName string) {
	mu.Lock()
	defer mu.Unlock()

	output = w
	noColor = true
	setLevel(lvl)
	setFormat(fmtName)
	reconfigure()
}

// SetLevel sets the minimum log level.
func SetLevel(lvl string) {
	mu.Lock()
	defer mu.Unlock()
	setLevel(lvl)
}

func setLevel(lvl string) {
	switch strings.ToUpper(lvl) {
	case "DEBUG":
		level.Set(slog.LevelDebug)
	case "INFO":
		level.Set(slog.LevelInfo)
	case "WARN":
		level.Set(slog.LevelWarn)
	case "ERROR":
		level.Set(slog.LevelError)
	}
}

func setFormat(f string) {
	f = strings.ToLower(f)
	if f == "text" || f == "json" {
		format = f
	}
}

// getLogger returns the current slog logger.
func getLogger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return slogger
}

// Debug logs at debug level with structured fields.
// Usage: Debug("message", "key1", value1, "key2", value2)
func Debug(msg string, args ...any) {
	getLogger().Debug(msg, args...)
}

// Info logs at info level with structured fields.
func Info(msg string, args ...any) {
	getLogger().Info(msg, args...)
}

// Warn logs at warn level with structured fields.
func Warn(msg string, args ...any) {
	getLogger().Warn(msg, args...)
}

// Error logs at error level with structured fields.
func Error(msg string, args ...any) {
	getLogger().Error(msg, args...)
}

// With returns a new slog.Logger with additional attributes.
func With(args ...any) *slog.Logger {
	return getLogger().With(args...)
}
