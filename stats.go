package conveyor

import "time"

// Stats holds cumulative-since-last-read counters.
type Stats struct {
	BytesWritten      uint64
	BytesRead         uint64
	WriteOps          uint64
	ReadOps           uint64
	WriteLatencyNanos int64
	ReadLatencyNanos  int64
	CongestionEvents  uint64
}

// GetStats atomically snapshots and zeroes the engine's counters.
func (e *Engine) GetStats() Stats {
	e.stats.mu.Lock()
	defer e.stats.mu.Unlock()
	s := Stats{
		BytesWritten:      e.stats.bytesWritten,
		BytesRead:         e.stats.bytesRead,
		WriteOps:          e.stats.writeOps,
		ReadOps:           e.stats.readOps,
		WriteLatencyNanos: e.stats.writeLatencyNs,
		ReadLatencyNanos:  e.stats.readLatencyNs,
		CongestionEvents:  e.stats.congestionEvents,
	}
	e.stats.bytesWritten = 0
	e.stats.bytesRead = 0
	e.stats.writeOps = 0
	e.stats.readOps = 0
	e.stats.writeLatencyNs = 0
	e.stats.readLatencyNs = 0
	e.stats.congestionEvents = 0
	return s
}

func (e *Engine) recordWrite(n int, latency time.Duration) {
	e.stats.mu.Lock()
	e.stats.bytesWritten += uint64(n)
	e.stats.writeOps++
	e.stats.writeLatencyNs += latency.Nanoseconds()
	e.stats.mu.Unlock()
}

func (e *Engine) recordRead(n int, latency time.Duration) {
	e.stats.mu.Lock()
	e.stats.bytesRead += uint64(n)
	e.stats.readOps++
	e.stats.readLatencyNs += latency.Nanoseconds()
	e.stats.mu.Unlock()
}

// GetLastError returns the sticky error without clearing it. It returns
// nil when no asynchronous failure has been observed.
func (e *Engine) GetLastError() error {
	if ce := e.lastErr.Load(); ce != nil {
		return ce
	}
	return nil
}

// ClearError zeroes the sticky error slot, so operations no longer fail at
// entry with it. It does not restart the write worker, which stops for
// good after a backing-store write failure (see failWrite).
func (e *Engine) ClearError() {
	e.lastErr.Store(nil)
}

// stickyError returns the sticky error as a typed *ConveyorError, or nil.
func (e *Engine) stickyError() error {
	ce := e.lastErr.Load()
	if ce == nil {
		return nil
	}
	return ce
}

// stickyErrorOrNil is the entry check every public operation performs:
// if a sticky error is set, fail immediately with it.
func (e *Engine) stickyErrorOrNil() error {
	return e.stickyError()
}

// setStickyError stores err as the sticky error if none is set yet. Once
// non-nil, the slot remains set until ClearError is called.
func (e *Engine) setStickyError(err error) {
	if err == nil {
		return
	}
	ce, ok := err.(*ConveyorError)
	if !ok {
		ce = newError(CodeIO, err)
	}
	e.lastErr.CompareAndSwap(nil, ce)
}
