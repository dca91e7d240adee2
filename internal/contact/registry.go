// internal/contact/registry.go
//
// Per-visitor controller registry.
//
// Context
// -------
// Each visitor (session.VisitorID) gets its own Controller, created lazily
// on first use and kept in a sync.Map.  Run drives a background evictor that
// every interval removes:
//
//   - controllers idle longer than idleTTL
//   - least-recently-used controllers when the map exceeds maxEntries
//
// A controller with a send in flight is never evicted; it becomes eligible
// again once the send settles.  Each eviction is logged and counted.
package contact

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/cadence/internal/metrics"
)

// EvictInterval is how often Run scans the registry.
const EvictInterval = time.Minute

// Registry maps visitor ids to Controllers.
type Registry struct {
	factory    func() *Controller
	idleTTL    time.Duration
	maxEntries int
	now        func() time.Time

	m sync.Map // visitor id → *Controller
}

// NewRegistry returns a Registry building controllers with factory.
func NewRegistry(factory func() *Controller, idleTTL time.Duration, maxEntries int) *Registry {
	return &Registry{
		factory:    factory,
		idleTTL:    idleTTL,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the visitor's Controller, creating it on first use.
func (r *Registry) Get(visitor string) *Controller {
	if v, ok := r.m.Load(visitor); ok {
		return v.(*Controller)
	}
	v, loaded := r.m.LoadOrStore(visitor, r.factory())
	if !loaded {
		metrics.ContactSessions.Inc()
	}
	return v.(*Controller)
}

// Len reports how many controllers are held.
func (r *Registry) Len() int {
	n := 0
	r.m.Range(func(_, _ any) bool { n++; return true })
	return n
}

// Run evicts until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = EvictInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.evict()
		}
	}
}

func (r *Registry) evict() {
	now := r.now()

	type kv struct {
		key string
		at  time.Time
	}
	var live []kv

	// ----------------------------------------------------------------
	// Idle eviction pass
	// ----------------------------------------------------------------
	r.m.Range(func(key, value any) bool {
		ctl := value.(*Controller)
		seen, evictable := ctl.idleSince()
		if !evictable {
			return true
		}
		if idle := now.Sub(seen); r.idleTTL > 0 && idle > r.idleTTL {
			r.drop(key.(string), ctl, "idle", idle)
			return true
		}
		live = append(live, kv{key: key.(string), at: seen})
		return true
	})

	// ----------------------------------------------------------------
	// LRU eviction pass
	// ----------------------------------------------------------------
	excess := r.Len() - r.maxEntries
	if r.maxEntries <= 0 || excess <= 0 {
		return
	}
	sort.Slice(live, func(i, j int) bool { return live[i].at.Before(live[j].at) })
	for i := 0; i < excess && i < len(live); i++ {
		if v, ok := r.m.Load(live[i].key); ok {
			r.drop(live[i].key, v.(*Controller), "lru", now.Sub(live[i].at))
		}
	}
}

func (r *Registry) drop(key string, ctl *Controller, reason string, idle time.Duration) {
	if !r.m.CompareAndDelete(key, ctl) {
		return
	}
	ctl.close()
	zap.S().Debugw("contact session evicted", "visitor", key, "reason", reason, "idle", idle.Truncate(time.Second))
	metrics.ContactEvictTotal.Inc()
	metrics.ContactSessions.Dec()
}
