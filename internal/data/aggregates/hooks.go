package aggregates

import (
	"sync"
	"time"

	"github.com/yungbote/typecast-backend/internal/platform/logger"
)

// Hooks receives one signal per write plus conflict/retry counts.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}

// LogHooks logs every write and keeps running totals for the health endpoint.
type LogHooks struct {
	log *logger.Logger

	mu        sync.Mutex
	ops       map[string]int64
	conflicts map[string]int64
	retries   map[string]int64
}

func NewLogHooks(log *logger.Logger) *LogHooks {
	return &LogHooks{
		log:       log.With("component", "WriteHooks"),
		ops:       map[string]int64{},
		conflicts: map[string]int64{},
		retries:   map[string]int64{},
	}
}

func (h *LogHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.mu.Lock()
	h.ops[name+":"+status]++
	h.mu.Unlock()
	if status != "success" {
		h.log.Warn("write failed", "op", name, "status", status, "duration_ms", dur.Milliseconds())
		return
	}
	h.log.Debug("write ok", "op", name, "duration_ms", dur.Milliseconds())
}

func (h *LogHooks) IncConflict(name string) {
	h.mu.Lock()
	h.conflicts[name]++
	h.mu.Unlock()
}

func (h *LogHooks) IncRetry(name string) {
	h.mu.Lock()
	h.retries[name]++
	h.mu.Unlock()
}

// Snapshot copies the counters.
type Snapshot struct {
	Operations map[string]int64 `json:"operations"`
	Conflicts  map[string]int64 `json:"conflicts"`
	Retries    map[string]int64 `json:"retries"`
}

func (h *LogHooks) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Snapshot{
		Operations: copyCounts(h.ops),
		Conflicts:  copyCounts(h.conflicts),
		Retries:    copyCounts(h.retries),
	}
}

func copyCounts(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
