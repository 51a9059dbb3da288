package orchestrator

import (
	"fmt"
	"sync"

	"github.com/tigerroll/weekreport/internal/domain/model"
)

// inflight tracks the (period, farm) pairs being processed by this process.
type inflight struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newInflight() *inflight {
	return &inflight{keys: make(map[string]struct{})}
}

func inflightKey(p model.ReportingPeriod, farmNo int) string {
	return fmt.Sprintf("%s/%d", p.Key(), farmNo)
}

// claim registers key and reports whether it was free.
func (f *inflight) claim(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.keys[key]; busy {
		return false
	}
	f.keys[key] = struct{}{}
	return true
}

func (f *inflight) release(key string) {
	f.mu.Lock()
	delete(f.keys, key)
	f.mu.Unlock()
}
