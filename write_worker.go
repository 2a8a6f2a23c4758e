package conveyor

import "time"

// writeWorkerLoop drains the write queue strictly in FIFO order, calling
// the backend's Pwrite for each request and releasing the corresponding
// ring bytes on success. It is the engine's single write-side background
// goroutine.
func (e *Engine) writeWorkerLoop() {
	defer e.writeWG.Done()

	for {
		e.writeMu.Lock()
		for e.writeQueue.empty() && !e.flushRequest.Load() && !e.writeStop.Load() {
			e.writeConsumer.Wait()
		}

		if e.writeStop.Load() && e.writeQueue.empty() {
			e.writeMu.Unlock()
			return
		}

		req, ok := e.writeQueue.front()
		if !ok {
			// Nothing to drain; only a flush request woke us. Signal
			// flush waiters directly (queue already empty).
			if e.flushRequest.Load() {
				e.flushRequest.Store(false)
				e.writeProducer.Broadcast()
			}
			e.writeMu.Unlock()
			continue
		}
		e.writeMu.Unlock()

		buf := make([]byte, req.length)
		e.writeMu.Lock()
		e.writeRing.peekAtSeq(req.seq, buf)
		e.writeMu.Unlock()

		targetOffset := req.offset
		if e.append {
			end, err := e.backend.Lseek(e.handle, 0, SeekEnd)
			if err != nil {
				e.failWrite(err)
				return
			}
			targetOffset = end
		}

		start := time.Now()
		n, err := e.writeAll(buf, targetOffset)
		latency := time.Since(start)

		if err != nil {
			e.failWrite(err)
			return
		}

		e.writeMu.Lock()
		e.writeRing.read(nil, n)
		e.recordWrite(n, latency)
		e.writeQueue.popFront()
		becameEmpty := e.writeQueue.empty()
		e.writeProducer.Broadcast()
		if becameEmpty && e.flushRequest.Load() {
			e.flushRequest.Store(false)
			e.writeProducer.Broadcast()
		}
		e.writeMu.Unlock()

		e.logEvent("write_flushed", map[string]any{"offset": targetOffset, "length": n})
	}
}

// writeAll calls Pwrite, retrying short writes for the remainder of a
// single request. It does not retry after a negative (error) return.
func (e *Engine) writeAll(buf []byte, offset int64) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := e.backend.Pwrite(e.handle, buf[total:], offset+int64(total))
		if err != nil {
			return total, err
		}
		if n <= 0 {
			return total, errShortWriteStalled
		}
		total += n
	}
	return total, nil
}

// failWrite sets the sticky error, wakes any waiters, and stops further
// processing of queued requests: the worker exits and no further drains
// happen until the engine is recreated.
func (e *Engine) failWrite(err error) {
	e.setStickyError(err)
	e.logEvent("write_error", map[string]any{"error": err.Error()})
	e.writeMu.Lock()
	e.writeStop.Store(true)
	e.writeProducer.Broadcast()
	e.writeMu.Unlock()
}
