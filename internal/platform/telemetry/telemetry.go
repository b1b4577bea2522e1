// Package telemetry provides lightweight observability for the consultation
// queue service using only standard library constructs: counters, gauges, an
// HTTP duration histogram, and a Prometheus text exposition endpoint.
package telemetry

import (
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

// defaultDurationBuckets are the histogram bucket boundaries (in seconds)
// used for HTTP request duration.
var defaultDurationBuckets = []float64{
	0.010, 0.025, 0.050, 0.100, 0.250, 0.500, 1.0, 2.5, 5.0, 10.0,
}

// histogram is a thread-safe histogram with configurable bucket boundaries.
type histogram struct {
	boundaries   []float64
	bucketCounts []int64 // one per boundary, non-cumulative
	count        int64
	sum          uint64     // stored as math.Float64bits for atomic add
	mu           sync.Mutex // protects bucketCounts
}

func newHistogram(boundaries []float64) *histogram {
	return &histogram{
		boundaries:   boundaries,
		bucketCounts: make([]int64, len(boundaries)),
	}
}

// Observe records a single value.
func (h *histogram) Observe(v float64) {
	atomic.AddInt64(&h.count, 1)
	atomicAddFloat64(&h.sum, v)

	h.mu.Lock()
	for i, b := range h.boundaries {
		if v <= b {
			h.bucketCounts[i]++
			h.mu.Unlock()
			return
		}
	}
	// Value exceeds all boundaries; counted in +Inf at export.
	h.mu.Unlock()
}

// Count returns the total number of observations.
func (h *histogram) Count() int64 {
	return atomic.LoadInt64(&h.count)
}

// Sum returns the total sum of all observations.
func (h *histogram) Sum() float64 {
	return math.Float64frombits(atomic.LoadUint64(&h.sum))
}

func (h *histogram) cumulativeBuckets() []int64 {
	h.mu.Lock()
	raw := make([]int64, len(h.bucketCounts))
	copy(raw, h.bucketCounts)
	h.mu.Unlock()

	cum := make([]int64, len(raw))
	var running int64
	for i, c := range raw {
		running += c
		cum[i] = running
	}
	return cum
}

// atomicAddFloat64 performs an atomic add on a uint64 that stores a float64
// using CAS.
func atomicAddFloat64(addr *uint64, delta float64) {
	for {
		old := atomic.LoadUint64(addr)
		newVal := math.Float64frombits(old) + delta
		if atomic.CompareAndSwapUint64(addr, old, math.Float64bits(newVal)) {
			return
		}
	}
}

type counterStore struct {
	mu    sync.RWMutex
	items map[string]*int64
}

func newCounterStore() *counterStore {
	return &counterStore{items: make(map[string]*int64)}
}

func (s *counterStore) inc(key string) {
	s.mu.RLock()
	p, ok := s.items[key]
	s.mu.RUnlock()
	if ok {
		atomic.AddInt64(p, 1)
		return
	}
	s.mu.Lock()
	p, ok = s.items[key]
	if !ok {
		v := int64(1)
		s.items[key] = &v
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	atomic.AddInt64(p, 1)
}

func (s *counterStore) get(key string) int64 {
	s.mu.RLock()
	p, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return 0
	}
	return atomic.LoadInt64(p)
}

func (s *counterStore) snapshot() map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make(map[string]int64, len(s.items))
	for k, p := range s.items {
		cp[k] = atomic.LoadInt64(p)
	}
	return cp
}

type gaugeStore struct {
	mu    sync.RWMutex
	items map[string]*int64
}

func newGaugeStore() *gaugeStore {
	return &gaugeStore{items: make(map[string]*int64)}
}

func (s *gaugeStore) set(name string, val int64) {
	s.mu.RLock()
	p, ok := s.items[name]
	s.mu.RUnlock()
	if ok {
		atomic.StoreInt64(p, val)
		return
	}
	s.mu.Lock()
	p, ok = s.items[name]
	if !ok {
		v := val
		s.items[name] = &v
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	atomic.StoreInt64(p, val)
}

func (s *gaugeStore) add(name string, delta int64) {
	s.mu.RLock()
	p, ok := s.items[name]
	s.mu.RUnlock()
	if ok {
		atomic.AddInt64(p, delta)
		return
	}
	s.mu.Lock()
	p, ok = s.items[name]
	if !ok {
		v := delta
		s.items[name] = &v
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	atomic.AddInt64(p, delta)
}

func (s *gaugeStore) get(name string) int64 {
	s.mu.RLock()
	p, ok := s.items[name]
	s.mu.RUnlock()
	if !ok {
		return 0
	}
	return atomic.LoadInt64(p)
}

func (s *gaugeStore) snapshot() map[string]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make(map[string]int64, len(s.items))
	for k, p := range s.items {
		cp[k] = atomic.LoadInt64(p)
	}
	return cp
}

// Provider manages all observability state for the service.
type Provider struct {
	serviceName string

	durationHist *histogram
	counters     *counterStore
	gauges       *gaugeStore
}

// NewProvider creates and initialises the telemetry provider.
func NewProvider(serviceName string) *Provider {
	if serviceName == "" {
		serviceName = "teleclinic-server"
	}
	return &Provider{
		serviceName:  serviceName,
		durationHist: newHistogram(defaultDurationBuckets),
		counters:     newCounterStore(),
		gauges:       newGaugeStore(),
	}
}

// QueueTransitionCounter increments the queue.transition.count metric for the
// given transition name (accept, call, start, end, cancel, request).
func (p *Provider) QueueTransitionCounter(transition string) {
	p.counters.inc("queue.transition.count|" + transition)
}

// GetTransitionCount returns the current count for a transition.
func (p *Provider) GetTransitionCount(transition string) int64 {
	return p.counters.get("queue.transition.count|" + transition)
}

// SetQueueDepth sets the waiting-entry gauge for one doctor queue.
func (p *Provider) SetQueueDepth(doctorID string, depth int64) {
	p.gauges.set("queue.depth|"+doctorID, depth)
}

// GetQueueDepth returns the waiting-entry gauge for one doctor queue.
func (p *Provider) GetQueueDepth(doctorID string) int64 {
	return p.gauges.get("queue.depth|" + doctorID)
}

// Middleware returns an Echo middleware that records request duration and
// tracks in-flight requests.
func (p *Provider) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p.gauges.add("http.server.active_requests", 1)
			start := time.Now()

			err := next(c)

			p.gauges.add("http.server.active_requests", -1)
			p.durationHist.Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// PrometheusHandler returns an Echo handler that serves metrics in Prometheus
// text exposition format.
func (p *Provider) PrometheusHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		var b strings.Builder

		// http_server_request_duration_seconds
		b.WriteString("# HELP http_server_request_duration_seconds Duration of HTTP requests in seconds.\n")
		b.WriteString("# TYPE http_server_request_duration_seconds histogram\n")
		cum := p.durationHist.cumulativeBuckets()
		for i, boundary := range defaultDurationBuckets {
			fmt.Fprintf(&b, "http_server_request_duration_seconds_bucket{le=\"%g\"} %d\n", boundary, cum[i])
		}
		fmt.Fprintf(&b, "http_server_request_duration_seconds_bucket{le=\"+Inf\"} %d\n", p.durationHist.Count())
		fmt.Fprintf(&b, "http_server_request_duration_seconds_sum %g\n", p.durationHist.Sum())
		fmt.Fprintf(&b, "http_server_request_duration_seconds_count %d\n", p.durationHist.Count())
		b.WriteByte('\n')

		// http_server_active_requests
		b.WriteString("# HELP http_server_active_requests Number of active HTTP requests.\n")
		b.WriteString("# TYPE http_server_active_requests gauge\n")
		fmt.Fprintf(&b, "http_server_active_requests %d\n", p.gauges.get("http.server.active_requests"))
		b.WriteByte('\n')

		// queue_transition_count
		counters := p.counters.snapshot()
		b.WriteString("# HELP queue_transition_count Total queue transitions by name.\n")
		b.WriteString("# TYPE queue_transition_count counter\n")
		for _, key := range sortedKeys(counters) {
			parts := strings.SplitN(key, "|", 2)
			if len(parts) == 2 && parts[0] == "queue.transition.count" {
				fmt.Fprintf(&b, "queue_transition_count{transition=%q} %d\n", parts[1], counters[key])
			}
		}
		b.WriteByte('\n')

		// queue_depth
		gauges := p.gauges.snapshot()
		b.WriteString("# HELP queue_depth Waiting entries per doctor queue.\n")
		b.WriteString("# TYPE queue_depth gauge\n")
		for _, key := range sortedKeys(gauges) {
			parts := strings.SplitN(key, "|", 2)
			if len(parts) == 2 && parts[0] == "queue.depth" {
				fmt.Fprintf(&b, "queue_depth{doctor=%q} %d\n", parts[1], gauges[key])
			}
		}

		return c.String(http.StatusOK, b.String())
	}
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
