// Package logring keeps the most recent log lines in memory so they can be
// shown next to the live telemetry.
package logring

import (
	log "github.com/sirupsen/logrus"
	"strings"
	"sync"
)

const DefaultCapacity = 1000

// Ring is a bounded queue of lines, the oldest line is dropped when full.
type Ring struct {
	mu       sync.Mutex
	lines    []string
	capacity int
}

func New(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{
		lines:    make([]string, 0, capacity),
		capacity: capacity,
	}
}

func (r *Ring) Push(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.lines) == r.capacity {
		copy(r.lines, r.lines[1:])
		r.lines = r.lines[:len(r.lines)-1]
	}
	r.lines = append(r.lines, line)
}

func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lines)
}

// RecentUnique returns up to n of the newest distinct lines, oldest first.
func (r *Ring) RecentUnique(n int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, n)
	var out []string
	for i := len(r.lines) - 1; i >= 0 && len(out) < n; i-- {
		if _, ok := seen[r.lines[i]]; ok {
			continue
		}
		seen[r.lines[i]] = struct{}{}
		out = append(out, r.lines[i])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Hook copies every log entry into a Ring.
type Hook struct {
	ring      *Ring
	formatter log.Formatter
}

func NewHook(r *Ring) *Hook {
	return &Hook{
		ring: r,
		formatter: &log.TextFormatter{
			DisableColors:    true,
			DisableTimestamp: true,
		},
	}
}

func (h *Hook) Levels() []log.Level {
	return log.AllLevels
}

func (h *Hook) Fire(entry *log.Entry) error {
	b, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	h.ring.Push(strings.TrimRight(string(b), "\n"))
	return nil
}
