// Package guard encapsulates the service's shared reliability state: the TTL
// response cache, the non-blocking concurrency admission gate, and the
// rolling-window circuit breaker. It exists as one component with an explicit
// interface so it can be unit-tested without the HTTP surface.
package guard

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/giftvault/voucher-service/internal/model"
)

// Outcome tags one provider attempt for the rolling error window. Cache hits
// are not attempts and are never recorded.
type Outcome string

const (
	OutcomeSuccess     Outcome = "success"
	OutcomeFallback    Outcome = "fallback"
	OutcomeInvalidJSON Outcome = "invalid_json"
)

// Config controls guard behavior.
type Config struct {
	// CacheTTL is how long a provider response stays reusable. Default: 24h.
	CacheTTL time.Duration
	// CacheCapacity bounds the cache; oldest-inserted entries are evicted
	// first. Default: 256.
	CacheCapacity int
	// MaxInFlight caps concurrent provider calls. Admission never queues:
	// a request over the cap goes straight to the offline result. Default: 4.
	MaxInFlight int64
	// WindowSize is the rolling outcome window capacity. Default: 20.
	WindowSize int
	// WindowMinSamples is the minimum number of recorded outcomes before the
	// breaker may trip. Default: 10.
	WindowMinSamples int
	// TripThreshold is the non-success fraction at or above which the
	// breaker trips. Default: 0.5.
	TripThreshold float64
}

func applyDefaults(cfg Config) Config {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	if cfg.CacheCapacity <= 0 {
		cfg.CacheCapacity = 256
	}
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 4
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 20
	}
	if cfg.WindowMinSamples <= 0 {
		cfg.WindowMinSamples = 10
	}
	if cfg.TripThreshold <= 0 {
		cfg.TripThreshold = 0.5
	}
	return cfg
}

type cacheEntry struct {
	result    *model.ExtractionResult
	expiresAt time.Time
}

// Guard holds the three pieces of process-lifetime mutable state behind one
// mutex (plus the admission semaphore, which manages its own synchronization).
type Guard struct {
	cfg Config
	sem *semaphore.Weighted

	mu      sync.Mutex
	cache   map[string]cacheEntry
	order   []string // cache insertion order, oldest first
	window  []Outcome
	tripped bool

	// nowFunc allows test injection of time.
	nowFunc func() time.Time
}

// New creates a Guard with the given config.
func New(cfg Config) *Guard {
	cfg = applyDefaults(cfg)
	return &Guard{
		cfg:     cfg,
		sem:     semaphore.NewWeighted(cfg.MaxInFlight),
		cache:   make(map[string]cacheEntry),
		nowFunc: time.Now,
	}
}

// CacheKey returns the SHA-256 hex digest identifying one extraction request.
// It detects identical repeated requests only; semantically equivalent
// vouchers are the fingerprint's job, not the cache's.
func CacheKey(sourceText, sourceType string) string {
	h := sha256.Sum256([]byte(sourceText + "\x00" + sourceType))
	return fmt.Sprintf("%x", h)
}

// TryAdmit reserves an in-flight provider slot. It never blocks: false means
// the caller should use the offline result instead.
func (g *Guard) TryAdmit() bool {
	return g.sem.TryAcquire(1)
}

// Release returns an in-flight slot. Callers must pair every successful
// TryAdmit with exactly one Release on every exit path.
func (g *Guard) Release() {
	g.sem.Release(1)
}

// CacheGet returns a copy of the cached result for key, expiring stale
// entries on read. A miss is always safe: it just means call the provider.
func (g *Guard) CacheGet(key string) (*model.ExtractionResult, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.cache[key]
	if !ok {
		return nil, false
	}
	if g.nowFunc().After(e.expiresAt) {
		delete(g.cache, key)
		g.dropFromOrder(key)
		return nil, false
	}
	return e.result.Clone(), true
}

// CachePut stores a copy of result under key, evicting the oldest-inserted
// entries beyond capacity.
func (g *Guard) CachePut(key string, result *model.ExtractionResult) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.cache[key]; !exists {
		g.order = append(g.order, key)
	}
	g.cache[key] = cacheEntry{
		result:    result.Clone(),
		expiresAt: g.nowFunc().Add(g.cfg.CacheTTL),
	}

	for len(g.cache) > g.cfg.CacheCapacity && len(g.order) > 0 {
		oldest := g.order[0]
		g.order = g.order[1:]
		delete(g.cache, oldest)
	}
}

// dropFromOrder removes key from the insertion-order slice. Linear, but the
// cache is capacity-bounded and small.
func (g *Guard) dropFromOrder(key string) {
	for i, k := range g.order {
		if k == key {
			g.order = append(g.order[:i], g.order[i+1:]...)
			return
		}
	}
}

// RecordOutcome appends one provider attempt outcome to the rolling window
// and trips the breaker once the non-success fraction reaches the threshold
// over at least the minimum sample size. The trip is one-way: recovery is a
// process restart, never an in-process reset.
func (g *Guard) RecordOutcome(o Outcome) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.window = append(g.window, o)
	if len(g.window) > g.cfg.WindowSize {
		g.window = g.window[len(g.window)-g.cfg.WindowSize:]
	}

	if g.tripped || len(g.window) < g.cfg.WindowMinSamples {
		return
	}

	var failures int
	for _, w := range g.window {
		if w != OutcomeSuccess {
			failures++
		}
	}
	fraction := float64(failures) / float64(len(g.window))
	if fraction >= g.cfg.TripThreshold {
		g.tripped = true
		zap.L().Error("provider circuit breaker tripped, escalation disabled until restart",
			zap.Int("window_size", len(g.window)),
			zap.Int("failures", failures),
			zap.Float64("failure_fraction", fraction),
		)
	}
}

// IsTripped reports whether the breaker has tripped.
func (g *Guard) IsTripped() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tripped
}

// Counters returns a snapshot of window occupancy, failure count, and cache
// size for observability.
func (g *Guard) Counters() (windowLen, failures, cacheSize int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, w := range g.window {
		if w != OutcomeSuccess {
			failures++
		}
	}
	return len(g.window), failures, len(g.cache)
}
