// Package logger holds the process-wide slog logger used by poolctl and
// handed to the allocator.
package logger

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// L is the global logger. It discards everything until Init enables it.
var L = slog.New(slog.DiscardHandler)

const (
	logPrefix     = "poolctl-"
	logSuffix     = ".log"
	dateLayout    = "2006-01-02"
	retentionDays = 14
)

// Options configures Init.
type Options struct {
	Enabled bool       // false discards all output
	File    string     // explicit log file; takes precedence over Dir
	Dir     string     // directory for dated log files
	Stderr  bool       // text records on stderr instead of a file
	Level   slog.Level // minimum level; zero value is Info
}

// closer is the open log file, if any.
var closer io.Closer

// Init replaces L according to opts. Calling it again closes any file the
// previous call opened.
func Init(opts Options) error {
	if err := Close(); err != nil {
		return err
	}
	if !opts.Enabled {
		L = slog.New(slog.DiscardHandler)
		return nil
	}

	hopts := &slog.HandlerOptions{Level: opts.Level}

	if opts.Stderr && opts.File == "" && opts.Dir == "" {
		L = slog.New(slog.NewTextHandler(os.Stderr, hopts))
		return nil
	}

	path := opts.File
	if path == "" {
		if opts.Dir == "" {
			return errors.New("logger: enabled without a file, directory or stderr")
		}
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return err
		}
		cleanOldLogs(opts.Dir, time.Now())
		path = filepath.Join(opts.Dir, logPrefix+time.Now().Format(dateLayout)+logSuffix)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	closer = f
	L = slog.New(slog.NewJSONHandler(f, hopts))
	return nil
}

// Close closes the log file opened by Init and resets L to discard.
func Close() error {
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	L = slog.New(slog.DiscardHandler)
	return err
}

// cleanOldLogs removes dated log files older than retentionDays.
func cleanOldLogs(dir string, now time.Time) {
	cutoff := now.AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, logPrefix) || !strings.HasSuffix(name, logSuffix) {
			continue
		}
		// poolctl-2024-01-05.log
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, logPrefix), logSuffix)
		day, err := time.Parse(dateLayout, stamp)
		if err != nil {
			continue
		}
		if day.Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, name))
		}
	}
}

// Debug logs at debug level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at info level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at warn level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at error level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
