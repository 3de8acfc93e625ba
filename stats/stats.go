// Package stats provides the advisory, lock-free counters spec.md §5
// requires of the CSC converter and scroll detector: per-instance
// frame counts and cumulative processing time, readable without
// synchronising with the writer.
package stats

import (
	"sync/atomic"
	"time"
)

// Counters is embedded by value in the types it instruments. The zero
// value is ready to use. Counters must not be copied after first use.
type Counters struct {
	frames   atomic.Int64
	nanos    atomic.Int64
	lastCall atomic.Int64 // duration in nanos of the most recent AddTiming, 0 if none yet
}

// AddFrame records one processed frame, advancing Frames() by one and
// leaving Elapsed() unchanged. Safe for concurrent use, though a single Detector or
// Converter is documented elsewhere as caller-serialised.
func (c *Counters) AddFrame() {
	c.frames.Add(1)
}

// AddTiming records one processed frame together with how long it took,
// for callers (the CSC engine) that want Elapsed() to reflect real work.
func (c *Counters) AddTiming(d time.Duration) {
	c.frames.Add(1)
	c.nanos.Add(d.Nanoseconds())
	c.lastCall.Store(int64(d))
}

// Frames returns the number of frames recorded so far.
func (c *Counters) Frames() int64 {
	return c.frames.Load()
}

// Elapsed returns the cumulative duration passed to AddTiming calls;
// frames recorded via the plain AddFrame do not contribute to it.
func (c *Counters) Elapsed() time.Duration {
	return time.Duration(c.nanos.Load())
}

// LastFrameDuration returns the duration of the most recent AddTiming
// call, or zero if AddTiming has never been called.
func (c *Counters) LastFrameDuration() time.Duration {
	return time.Duration(c.lastCall.Load())
}

// Reset zeroes all counters. It is not atomic across fields: a reader
// racing a Reset may observe a partially-cleared state, acceptable
// given the advisory, lock-free contract these counters document.
func (c *Counters) Reset() {
	c.frames.Store(0)
	c.nanos.Store(0)
	c.lastCall.Store(0)
}
