package sync

import (
	"fmt"
	gosync "sync"
)

// DebugLog collects the status lines of a reindex run. It is reset at the
// start of each run and never persisted.
type DebugLog struct {
	mu    gosync.Mutex
	lines []string
}

// Addf appends a formatted line
func (l *DebugLog) Addf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

// Lines returns a copy of the collected lines in insertion order
func (l *DebugLog) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

// Reset drops all lines
func (l *DebugLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = nil
}
