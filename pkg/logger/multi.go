package logger

import "errors"

// MultiLogger sends every message to each of its loggers: the console at
// the user's level and, with --log-file, a file that keeps everything.
type MultiLogger []Logger

// NewMultiLogger drops nil entries, so an optional logger can be passed
// unconditionally.
func NewMultiLogger(loggers ...Logger) MultiLogger {
	m := make(MultiLogger, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			m = append(m, l)
		}
	}
	return m
}

func (m MultiLogger) Info(format string, args ...interface{}) {
	for _, l := range m {
		l.Info(format, args...)
	}
}

func (m MultiLogger) Warning(format string, args ...interface{}) {
	for _, l := range m {
		l.Warning(format, args...)
	}
}

func (m MultiLogger) Error(format string, args ...interface{}) {
	for _, l := range m {
		l.Error(format, args...)
	}
}

// Close closes every logger, even after a failure, and joins their errors.
func (m MultiLogger) Close() error {
	var errs []error
	for _, l := range m {
		errs = append(errs, l.Close())
	}
	return errors.Join(errs...)
}

var _ Logger = MultiLogger(nil)
