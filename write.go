package conveyor

import "time"

// Write appends up to len(p) bytes to the write ring and returns the
// number of bytes accepted. It fails with ErrBadDescriptor when the
// engine is not open for writing, and with the sticky error itself when
// one is set. A zero-length
// p always returns (0, nil) without touching the backing store.
func (e *Engine) Write(p []byte) (int, error) {
	if err := e.stickyErrorOrNil(); err != nil {
		return 0, err
	}
	if !e.writeEnabled {
		return 0, ErrBadDescriptor
	}
	if len(p) == 0 {
		return 0, nil
	}
	if e.writeRing.max > 0 && len(p) > e.writeRing.max {
		return 0, ErrMessageTooLong
	}

	deadline := time.Now().Add(e.writeTimeout)
	accepted := 0

	e.writeMu.Lock()
	for accepted < len(p) {
		if e.writeStop.Load() {
			break
		}
		if err := e.stickyError(); err != nil {
			e.writeMu.Unlock()
			if accepted > 0 {
				return accepted, nil
			}
			return 0, err
		}

		if e.writeRing.free() > 0 {
			chunk := p[accepted:]
			n := e.writeRing.write(chunk)
			if n > 0 {
				req := writeRequest{
					offset:     e.offset.Load() + int64(accepted),
					seq:        e.writeRing.totalWritten - int64(n),
					length:     n,
					generation: e.generation.Load(),
				}
				e.writeQueue.push(req)
				accepted += n
				e.writeConsumer.Signal()
			}
			continue
		}

		// Ring full. Try adaptive growth first.
		remaining := len(p) - accepted
		if e.writeRing.capacity < e.writeRing.max {
			target := e.writeRing.growthTarget(remaining)
			if target > e.writeRing.capacity {
				e.writeRing.resize(target)
				continue
			}
		}

		// No growth headroom: wait with a deadline.
		e.recordCongestion()
		if !e.condWaitUntil(e.writeProducer, &e.writeMu, deadline) {
			e.writeMu.Unlock()
			return accepted, ErrTimedOut
		}
	}
	e.writeMu.Unlock()

	e.offset.Add(int64(accepted))

	if accepted > 0 && e.mode == OpenReadWrite {
		e.invalidateReadCache()
	}
	return accepted, nil
}

// recordCongestion bumps the congestion counter. Called with writeMu held.
func (e *Engine) recordCongestion() {
	e.stats.mu.Lock()
	e.stats.congestionEvents++
	e.stats.mu.Unlock()
}

// invalidateReadCache marks the read cache stale because a write just
// changed the view of the stream at offsets that may already sit in the
// read ring.
func (e *Engine) invalidateReadCache() {
	if !e.readEnabled {
		return
	}
	e.readMu.Lock()
	e.readStale.Store(true)
	e.readProducer.Signal()
	e.readMu.Unlock()
}
