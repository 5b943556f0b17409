// Package log provides the package-wide zerolog logger, mirroring the
// gnark logger package's Logger()/SetOutput()/SetLevel() shape (see
// the "github.com/nume-crypto/gnark/logger" import pulled in by the
// Sparse R1CS solver this module's r1cs package descends from).
package log

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
)

// Logger returns the current package-wide logger. Safe for concurrent use.
func Logger() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &logger
}

// SetOutput redirects subsequent log records to w, keeping the
// console writer formatting the ceremony CLI defaults to.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).With().Timestamp().Logger()
}

// SetLevel adjusts the minimum emitted log level.
func SetLevel(lvl zerolog.Level) {
	mu.Lock()
	defer mu.Unlock()
	logger = logger.Level(lvl)
}

// Disable silences all log output, used by tests that exercise error
// paths expected to log loudly in production.
func Disable() {
	SetLevel(zerolog.Disabled)
}
