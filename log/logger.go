package log

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Compile-time interface checks
var _ LibraryLogger = (*Logger)(nil)

// Logger writes the transaction log for one bpkg run. Info, warning and
// error messages go to bpkg.log under the configured logs directory; debug
// messages go to a separate debug log (and to bpkg.log only when verbose)
// so a verbose resolver run does not drown the main log.
type Logger struct {
	mainFile  *os.File
	debugFile *os.File
	verbose   bool
	mu        sync.Mutex
}

// NewLogger creates a logger writing under logsPath. When verbose is set,
// debug messages are mirrored to the main log.
func NewLogger(logsPath string, verbose bool) (*Logger, error) {
	if err := os.MkdirAll(logsPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	l := &Logger{verbose: verbose}

	var err error
	l.mainFile, err = os.Create(filepath.Join(logsPath, "bpkg.log"))
	if err != nil {
		return nil, err
	}
	l.debugFile, err = os.Create(filepath.Join(logsPath, "bpkg-debug.log"))
	if err != nil {
		l.mainFile.Close()
		return nil, err
	}

	l.writeHeaders()

	return l, nil
}

// Close closes the log files.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.mainFile != nil {
		l.mainFile.Close()
	}
	if l.debugFile != nil {
		l.debugFile.Close()
	}
}

func (l *Logger) writeHeaders() {
	timestamp := time.Now().Format(time.RFC3339)

	fmt.Fprintf(l.mainFile, "bpkg transaction log - %s\n", timestamp)
	fmt.Fprintf(l.mainFile, "%s\n\n", strings.Repeat("=", 70))
	fmt.Fprintf(l.debugFile, "bpkg debug log - %s\n\n", timestamp)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...any) {
	l.write(l.mainFile, "INFO", format, args...)
}

// Debug logs diagnostic information
func (l *Logger) Debug(format string, args ...any) {
	l.write(l.debugFile, "DEBUG", format, args...)
	if l.verbose {
		l.write(l.mainFile, "DEBUG", format, args...)
	}
}

// Warn logs a non-fatal issue
func (l *Logger) Warn(format string, args ...any) {
	l.write(l.mainFile, "WARN", format, args...)
	l.write(l.debugFile, "WARN", format, args...)
}

// Error logs a failure
func (l *Logger) Error(format string, args ...any) {
	l.write(l.mainFile, "ERROR", format, args...)
	l.write(l.debugFile, "ERROR", format, args...)
}

func (l *Logger) write(f *os.File, level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("15:04:05")
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(f, "[%s] %s: %s\n", timestamp, level, msg)
	f.Sync()
}

// WriteSummary appends a summary block for a resolved transaction.
func (l *Logger) WriteSummary(id string, queued, missing int, duration time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.mainFile, "\n%s\n", strings.Repeat("=", 70))
	fmt.Fprintf(l.mainFile, "TRANSACTION %s\n", id)
	fmt.Fprintf(l.mainFile, "Queued packages:   %d\n", queued)
	fmt.Fprintf(l.mainFile, "Missing deps:      %d\n", missing)
	fmt.Fprintf(l.mainFile, "Duration:          %s\n", duration)
	fmt.Fprintf(l.mainFile, "%s\n", strings.Repeat("=", 70))

	l.mainFile.Sync()
}
