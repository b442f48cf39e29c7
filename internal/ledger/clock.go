package ledger

import (
	"sync"
	"time"

	"github.com/LeJamon/goShadowOracle/internal/oracle"
)

// SlotDuration is the target time between slots.
const SlotDuration = 400 * time.Millisecond

// ManualClock is a controllable slot clock. It only moves when told to.
type ManualClock struct {
	mu      sync.RWMutex
	current time.Time
	slot    uint64
}

// NewManualClock returns a clock at slot 1, January 1, 2024, 00:00:00 UTC.
func NewManualClock() *ManualClock {
	return NewManualClockAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 1)
}

// NewManualClockAt returns a clock at the given time and slot.
func NewManualClockAt(t time.Time, slot uint64) *ManualClock {
	return &ManualClock{current: t, slot: slot}
}

// Now returns the current time on the clock.
func (c *ManualClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Slot returns the current slot.
func (c *ManualClock) Slot() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.slot
}

// Snapshot returns the clock as the oracle providers see it.
func (c *ManualClock) Snapshot() oracle.Clock {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return oracle.Clock{Slot: c.slot, UnixTimestamp: c.current.Unix()}
}

// Advance moves the time forward by d. The slot is unchanged.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// AdvanceSlots moves forward n slots and n*SlotDuration.
func (c *ManualClock) AdvanceSlots(n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slot += n
	c.current = c.current.Add(time.Duration(n) * SlotDuration)
}

// WarpToSlot jumps to slot without touching the time.
func (c *ManualClock) WarpToSlot(slot uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slot = slot
}

// Set sets the clock to a specific time and slot.
func (c *ManualClock) Set(t time.Time, slot uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
	c.slot = slot
}
