package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/typecast-backend/internal/data/aggregates"
)

// HooksRecorder keeps every hook call for assertions.
type HooksRecorder struct {
	mu sync.Mutex

	Statuses  map[string][]string
	Conflicts []string
	Retries   []string
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Statuses == nil {
		h.Statuses = map[string][]string{}
	}
	h.Statuses[name] = append(h.Statuses[name], status)
}

func (h *HooksRecorder) IncConflict(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Conflicts = append(h.Conflicts, name)
}

func (h *HooksRecorder) IncRetry(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Retries = append(h.Retries, name)
}

func (h *HooksRecorder) Last(name string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.Statuses[name]
	if len(s) == 0 {
		return ""
	}
	return s[len(s)-1]
}
