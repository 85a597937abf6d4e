package logger

import (
	"bytes"
	"encoding/json"
	"sync"
	"time"
)

// LogEntry represents a single log entry in the buffer
type LogEntry struct {
	Timestamp time.Time `json:"time"`
	Level     string    `json:"level"`
	Message   string    `json:"msg"`
}

// ActivityBuffer is a thread-safe ring buffer that collects JSON log lines
// for display inside the wizard.
type ActivityBuffer struct {
	mu           sync.Mutex
	ringBuffer   []LogEntry
	maxSize      int
	currentIndex int
	wrapped      bool

	totalEntries uint64
	badLines     uint64
}

// NewActivityBuffer creates a buffer that keeps the last maxSize entries
func NewActivityBuffer(maxSize int) *ActivityBuffer {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &ActivityBuffer{
		ringBuffer: make([]LogEntry, maxSize),
		maxSize:    maxSize,
	}
}

// Write implements io.Writer for zap's JSON encoder. One call may carry
// several newline separated entries.
func (ab *ActivityBuffer) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(p, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			ab.mu.Lock()
			ab.badLines++
			ab.mu.Unlock()
			continue
		}
		ab.Add(entry)
	}
	return len(p), nil
}

// Add appends an entry, evicting the oldest one when full
func (ab *ActivityBuffer) Add(entry LogEntry) {
	ab.mu.Lock()
	defer ab.mu.Unlock()

	ab.ringBuffer[ab.currentIndex] = entry
	ab.currentIndex = (ab.currentIndex + 1) % ab.maxSize
	if ab.currentIndex == 0 {
		ab.wrapped = true
	}
	ab.totalEntries++
}

// GetRecentLogs returns up to limit entries, oldest first
func (ab *ActivityBuffer) GetRecentLogs(limit int) []LogEntry {
	ab.mu.Lock()
	defer ab.mu.Unlock()

	count := ab.currentIndex
	start := 0
	if ab.wrapped {
		count = ab.maxSize
		start = ab.currentIndex
	}

	if limit > 0 && limit < count {
		start += count - limit
		count = limit
	}

	logs := make([]LogEntry, 0, count)
	for i := 0; i < count; i++ {
		logs = append(logs, ab.ringBuffer[(start+i)%ab.maxSize])
	}
	return logs
}

// GetStats returns buffer statistics
func (ab *ActivityBuffer) GetStats() (total, malformed uint64) {
	ab.mu.Lock()
	defer ab.mu.Unlock()
	return ab.totalEntries, ab.badLines
}

// Sync is a no-op; entries live in memory.
func (ab *ActivityBuffer) Sync() error { return nil }
