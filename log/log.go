// Package log writes structured diagnostics for the recorder to a file under
// an OS-specific directory. Logging is optional: before Init (or after
// Close) every call is a no-op, so library code can log unconditionally.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog  zerolog.Logger
	diagFile *os.File
	logMu    sync.Mutex
	logReady bool
	pid      int
	dir      string
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		if !filepath.IsAbs(flagPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, flagPath), nil
		}
		return flagPath, nil
	}

	// Priority 2: ROKUON_LOG_PATH environment variable
	envPath := os.Getenv("ROKUON_LOG_PATH")
	if envPath != "" {
		if !filepath.IsAbs(envPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, envPath), nil
		}
		return envPath, nil
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	f, err := os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	diagFile = f

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func SessionStart(format string, sampleRate uint32, bitDepth uint16, compressor bool) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("format", format).
		Uint32("sample_rate", sampleRate).
		Uint16("bit_depth", bitDepth).
		Bool("compressor", compressor).
		Msg("session_start")
}

func RecordingStart(device, path string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("device", device).
		Str("file", path).
		Msg("recording_start")
}

func RecordingStop(device, path string, frames uint64, dur time.Duration) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("device", device).
		Str("file", path).
		Uint64("frames", frames).
		Float64("seconds", dur.Seconds()).
		Msg("recording_stop")
}

// CallbackFault records a non-fatal fault on the frame-callback path; the
// stream keeps running.
func CallbackFault(device string, err error) {
	if !logReady {
		return
	}
	diagLog.Error().
		Str("device", device).
		Err(err).
		Msg("callback_fault")
}
