package snowfall

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// Logger is the logging surface shared by the overlay runtime. Engines derive
// scoped loggers per display with Named.
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Named(scope string) Logger
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type DefaultLogger struct {
	state  *loggerState
	prefix string
}

// loggerState is shared between a logger and every logger Named from it, so
// SetDebug on the root flips all of them.
type loggerState struct {
	mu    sync.Mutex
	debug bool
	out   *log.Logger
	err   *log.Logger
}

func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	return &DefaultLogger{
		prefix: prefix,
		state: &loggerState{
			debug: debug,
			out:   log.New(os.Stdout, "", flags),
			err:   log.New(os.Stderr, "", flags),
		},
	}
}

func (l *DefaultLogger) DebugEnabled() bool {
	l.state.mu.Lock()
	defer l.state.mu.Unlock()
	return l.state.debug
}

func (l *DefaultLogger) SetDebug(enabled bool) {
	l.state.mu.Lock()
	l.state.debug = enabled
	l.state.mu.Unlock()
}

// Named returns a logger writing to the same outputs with scope appended to
// the prefix, e.g. "snowfall/display-1".
func (l *DefaultLogger) Named(scope string) Logger {
	prefix := scope
	if l.prefix != "" {
		prefix = l.prefix + "/" + scope
	}
	return &DefaultLogger{state: l.state, prefix: prefix}
}

func (l *DefaultLogger) format(level string, format string, args ...any) string {
	if l.prefix != "" {
		return fmt.Sprintf("[%s] %s: %s", l.prefix, level, fmt.Sprintf(format, args...))
	}
	return fmt.Sprintf("%s: %s", level, fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Debugf(format string, args ...any) {
	if !l.DebugEnabled() {
		return
	}
	l.state.out.Print(l.format("DEBUG", format, args...))
}

func (l *DefaultLogger) Infof(format string, args ...any) {
	l.state.out.Print(l.format("INFO", format, args...))
}

func (l *DefaultLogger) Warnf(format string, args ...any) {
	l.state.err.Print(l.format("WARN", format, args...))
}

func (l *DefaultLogger) Errorf(format string, args ...any) {
	l.state.err.Print(l.format("ERROR", format, args...))
}

type nopLogger struct{}

func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) DebugEnabled() bool                { return false }
func (nopLogger) SetDebug(enabled bool)             {}
func (n nopLogger) Named(scope string) Logger       { return n }
func (nopLogger) Debugf(format string, args ...any) {}
func (nopLogger) Infof(format string, args ...any)  {}
func (nopLogger) Warnf(format string, args ...any)  {}
func (nopLogger) Errorf(format string, args ...any) {}

// OrNop returns l, or a no-op logger when l is nil. Never returns nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NewNopLogger()
	}
	return l
}
