package conveyor

import "time"

// readWorkerLoop waits for fill requests (or a stale signal from a write
// or a Seek) and pulls data from the backend into the read ring. It is
// the engine's single read-side background goroutine.
func (e *Engine) readWorkerLoop() {
	defer e.readWG.Done()

	for {
		e.readMu.Lock()
		for !e.readFillWant.Load() && !e.readStale.Load() && !e.readStop.Load() {
			e.readProducer.Wait()
		}

		if e.readStop.Load() {
			e.readMu.Unlock()
			return
		}

		if e.readStale.Load() {
			e.readRing.clear()
			e.readEOF.Store(false)
			e.readShortRunN = 0
			e.readStale.Store(false)
			if !e.readFillWant.Load() {
				e.readMu.Unlock()
				continue
			}
		}

		off := e.readFillOff.Load()
		length := e.readFillLen.Load()
		e.readFillWant.Store(false)
		gen := e.generation.Load()
		e.readMu.Unlock()

		if length <= 0 {
			continue
		}
		buf := make([]byte, length)

		start := time.Now()
		n, err := e.backend.Pread(e.handle, buf, off)
		latency := time.Since(start)

		e.readMu.Lock()
		if gen != e.generation.Load() {
			// A Seek raced this fill: discard the stale result.
			e.readMu.Unlock()
			continue
		}

		if err != nil {
			e.readMu.Unlock()
			e.setStickyError(err)
			e.logEvent("read_error", map[string]any{"error": err.Error()})
			e.readMu.Lock()
			e.readConsumer.Broadcast()
			e.readMu.Unlock()
			continue
		}

		if n == 0 {
			e.readEOF.Store(true)
			e.readConsumer.Broadcast()
			e.readMu.Unlock()
			continue
		}

		if e.readRing.capacity < e.readRing.max && n > e.readRing.free() {
			target := e.readRing.growthTarget(n)
			if target > e.readRing.capacity {
				e.readRing.resize(target)
			}
		}
		e.readRing.write(buf[:n])
		e.recordRead(n, latency)
		e.readConsumer.Broadcast()
		e.readMu.Unlock()

		e.logEvent("read_filled", map[string]any{"offset": off, "length": n})
	}
}
