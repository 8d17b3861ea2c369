package web

// limiter.go bounds how many uploaded files are decoded and parsed at once.
//
// Ingest holds a whole file plus its decoded text and records in memory, so
// a burst of 10MB uploads can exhaust the process. Requests beyond the limit
// wait up to maxWait for a slot and then fail with ErrIngestBusy (503).
//
// WaitForDrain lets shutdown block until in-flight parses finish.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrIngestBusy is returned when no parse slot frees up in time.
var ErrIngestBusy = errors.New("too many files being processed, please try again later")

const (
	defaultMaxConcurrentIngest = 5
	defaultIngestWait          = 30 * time.Second
	drainPollInterval          = 100 * time.Millisecond
)

// IngestLimiter is a counting semaphore over file parsing.
type IngestLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

// NewIngestLimiter allows maxConcurrent parses at once. Non-positive
// arguments fall back to 5 slots and a 30s wait.
func NewIngestLimiter(maxConcurrent int, maxWait time.Duration) *IngestLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrentIngest
	}
	if maxWait <= 0 {
		maxWait = defaultIngestWait
	}
	return &IngestLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting at most maxWait. Cancellation of ctx is
// reported as ctx.Err(); running out of wait time as ErrIngestBusy.
// Every successful Acquire must be paired with Release.
func (l *IngestLimiter) Acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrIngestBusy
	}
}

// Release returns a slot taken by Acquire.
func (l *IngestLimiter) Release() {
	l.active.Add(-1)
	<-l.slots
}

// Active is the number of parses in progress.
func (l *IngestLimiter) Active() int {
	return int(l.active.Load())
}

// Capacity is the maximum number of concurrent parses.
func (l *IngestLimiter) Capacity() int {
	return cap(l.slots)
}

// WaitForDrain blocks until no parse is in progress or ctx ends.
func (l *IngestLimiter) WaitForDrain(ctx context.Context) error {
	if l.Active() == 0 {
		return nil
	}

	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.Active() == 0 {
				return nil
			}
		}
	}
}

// LimiterStatus is the limiter snapshot reported by /healthz.
type LimiterStatus struct {
	Active    int `json:"active"`
	Available int `json:"available"`
	Capacity  int `json:"capacity"`
}

// Status reports current slot usage.
func (l *IngestLimiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:    l.Active(),
		Available: cap(l.slots) - len(l.slots),
		Capacity:  cap(l.slots),
	}
}
