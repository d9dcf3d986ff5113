package interp

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// DiagLogger is host-side diagnostic logging of interpreter internals
// (frame pushes, namespace creation, recursion-limit trips) -- distinct
// from the script-visible `trace add execution` subsystem (C10). Off by
// default. Grounded on barn's trace.Tracer: a struct holding an enabled
// flag, glob filters, and an io.Writer-backed *log.Logger, with a
// package-level global instance toggled once at host startup.
type DiagLogger struct {
	enabled bool
	filters []string
	logger  *log.Logger
	mu      sync.Mutex
}

var globalDiag *DiagLogger

// InitDiagLog initializes the global diagnostic logger. writer defaults
// to os.Stderr when nil, matching trace.Init's behavior.
func InitDiagLog(enabled bool, filters []string, writer io.Writer) {
	if writer == nil {
		writer = os.Stderr
	}
	globalDiag = &DiagLogger{
		enabled: enabled,
		filters: filters,
		logger:  log.New(writer, "[diag] ", log.LstdFlags),
	}
}

// DiagEnabled reports whether the global diagnostic logger is active.
func DiagEnabled() bool {
	return globalDiag != nil && globalDiag.enabled
}

func (d *DiagLogger) matches(subject string) bool {
	if len(d.filters) == 0 {
		return true
	}
	for _, pattern := range d.filters {
		if matched, _ := filepath.Match(pattern, subject); matched {
			return true
		}
	}
	return false
}

// diagLog emits a diagnostic line for subject (typically a command or
// namespace name) if the global logger is enabled and subject passes its
// filter. A no-op when diagnostics are off, so call sites can call it
// unconditionally without paying for string formatting -- DiagEnabled()
// is checked first by every caller in this package.
func diagLog(subject, format string, args ...any) {
	if globalDiag == nil || !globalDiag.enabled || !globalDiag.matches(subject) {
		return
	}
	globalDiag.mu.Lock()
	defer globalDiag.mu.Unlock()
	globalDiag.logger.Printf(format, args...)
}
