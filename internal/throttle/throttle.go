// Package throttle gates automatic discovery triggers within one browsing session.
package throttle

import (
	"sync"
	"time"
)

// MinInterval is the minimum time between two automatic discovery triggers.
const MinInterval = 60 * time.Second

// MarkerStore holds the session-scoped timestamp of the last automatic
// discovery trigger. Read returns ok=false when no trigger has happened yet.
// The store is injected so the controller is testable without real session
// storage; implementations may fail, in which case the controller degrades
// to "always trigger".
type MarkerStore interface {
	Read() (marker time.Time, ok bool, err error)
	Write(marker time.Time) error
}

// MemoryMarker is the default MarkerStore: a process-lifetime timestamp that
// is absent at session start and dies with the session.
type MemoryMarker struct {
	mu     sync.Mutex
	marker time.Time
	set    bool
}

// Read returns the current marker.
func (m *MemoryMarker) Read() (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.marker, m.set, nil
}

// Write overwrites the marker.
func (m *MemoryMarker) Write(marker time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marker = marker
	m.set = true
	return nil
}

// Controller enforces the minimum interval between automatic discovery
// triggers. It is the single writer of the throttle marker.
type Controller struct {
	mu       sync.Mutex
	store    MarkerStore
	interval time.Duration
}

// NewController creates a controller over the given marker store.
func NewController(store MarkerStore) *Controller {
	return &Controller{store: store, interval: MinInterval}
}

// NewControllerWithInterval creates a controller with a custom minimum
// interval. Used by tests; production code uses MinInterval.
func NewControllerWithInterval(store MarkerStore, interval time.Duration) *Controller {
	return &Controller{store: store, interval: interval}
}

// ShouldTrigger reports whether an automatic discovery may run at now.
// A marker read failure degrades to true: availability wins over strict
// throttling.
func (c *Controller) ShouldTrigger(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shouldTriggerLocked(now)
}

func (c *Controller) shouldTriggerLocked(now time.Time) bool {
	marker, ok, err := c.store.Read()
	if err != nil {
		return true
	}
	if !ok {
		return true
	}
	return now.Sub(marker) >= c.interval
}

// MarkTriggered records now as the last trigger time. Callers must invoke it
// before the discovery operation starts so a slow or failing crawl cannot
// cause a burst of retriggers within the interval.
func (c *Controller) MarkTriggered(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.markTriggeredLocked(now)
}

func (c *Controller) markTriggeredLocked(now time.Time) {
	// A write failure leaves the old marker; the next attempt degrades to
	// trigger, which is the documented availability-first behavior.
	_ = c.store.Write(now)
}

// TryTrigger combines ShouldTrigger and MarkTriggered under one lock so the
// read-then-write on the shared marker is atomic. Returns true exactly when
// the caller should proceed with discovery.
func (c *Controller) TryTrigger(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.shouldTriggerLocked(now) {
		return false
	}
	c.markTriggeredLocked(now)
	return true
}
