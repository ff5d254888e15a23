// Package logging provides the leveled printf-style logging facade used
// throughout the program, backed by zerolog.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	// Level gates D() output: debug lines print when their level is <= Level.
	Level int
)

// Setup configures the global logger. When logFilePath is non-empty, output
// is mirrored to the file in plain JSON alongside the console writer.
func Setup(debugLevel int, logFilePath string) error {
	mu.Lock()
	defer mu.Unlock()

	Level = debugLevel

	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}
	if logFilePath != "" {
		f, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		writers = append(writers, f)
	}

	lvl := zerolog.InfoLevel
	if debugLevel > 0 {
		lvl = zerolog.DebugLevel
	}

	logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lvl).
		With().
		Timestamp().
		Logger()
	return nil
}

// E logs an error-level message.
func E(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	logger.Error().Msgf(format, args...)
}

// W logs a warning-level message.
func W(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	logger.Warn().Msgf(format, args...)
}

// I logs an info-level message.
func I(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	logger.Info().Msgf(format, args...)
}

// S logs a success message at info level.
func S(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	logger.Info().Str("outcome", "success").Msgf(format, args...)
}

// D logs a debug message gated by level l.
func D(l int, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if l > Level {
		return
	}
	logger.Debug().Int("lvl", l).Msgf(format, args...)
}
