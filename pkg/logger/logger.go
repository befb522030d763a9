// Package logger is the logging interface shared by every chromeimport
// package. Importers report skipped rows and unavailable stores through it;
// they never print directly.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/spf13/afero"
)

// Logger is a printf-style leveled logger.
// Implementations must never be handed cookie values or passwords.
type Logger interface {
	// Info logs progress worth seeing with --verbose (e.g. "history: no History in profile").
	Info(format string, args ...interface{})

	// Warning logs a skipped record or a degraded category.
	Warning(format string, args ...interface{})

	// Error logs a store that exists but could not be read.
	Error(format string, args ...interface{})

	// Close releases the logger's output. Safe to call more than once.
	Close() error
}

// StandardLogger writes to a *log.Logger with a level prefix.
type StandardLogger struct {
	logger *log.Logger
	closer io.Closer
	once   sync.Once
}

// NewStandardLogger wraps l. Close does not close l's writer.
func NewStandardLogger(l *log.Logger) *StandardLogger {
	return &StandardLogger{logger: l}
}

// NewFileLogger appends timestamped lines to the file at path on fs.
func NewFileLogger(fs afero.Fs, path string) (*StandardLogger, error) {
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("error: cannot open log file %s: %w", path, err)
	}
	return &StandardLogger{
		logger: log.New(f, "", log.LstdFlags),
		closer: f,
	}, nil
}

func (s *StandardLogger) Info(format string, args ...interface{}) {
	s.logger.Printf("[INFO] "+format, args...)
}

func (s *StandardLogger) Warning(format string, args ...interface{}) {
	s.logger.Printf("[WARNING] "+format, args...)
}

func (s *StandardLogger) Error(format string, args ...interface{}) {
	s.logger.Printf("[ERROR] "+format, args...)
}

// Close closes the underlying file for loggers made by NewFileLogger.
func (s *StandardLogger) Close() error {
	var err error
	s.once.Do(func() {
		if s.closer != nil {
			err = s.closer.Close()
		}
	})
	return err
}

// NopLogger discards everything.
type NopLogger struct{}

func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

func (n *NopLogger) Info(format string, args ...interface{}) {}

func (n *NopLogger) Warning(format string, args ...interface{}) {}

func (n *NopLogger) Error(format string, args ...interface{}) {}

func (n *NopLogger) Close() error {
	return nil
}

var (
	_ Logger = (*StandardLogger)(nil)
	_ Logger = (*NopLogger)(nil)
)

// MockLogger records formatted messages for tests.
type MockLogger struct {
	mu           sync.Mutex
	InfoCalls    []string
	WarningCalls []string
	ErrorCalls   []string
	CloseCalled  bool
}

func NewMockLogger() *MockLogger {
	return &MockLogger{
		InfoCalls:    make([]string, 0),
		WarningCalls: make([]string, 0),
		ErrorCalls:   make([]string, 0),
	}
}

func (m *MockLogger) Info(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InfoCalls = append(m.InfoCalls, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Warning(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WarningCalls = append(m.WarningCalls, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Error(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ErrorCalls = append(m.ErrorCalls, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
	return nil
}

var _ Logger = (*MockLogger)(nil)
