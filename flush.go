package conveyor

// Flush blocks until every write currently queued has been drained to the
// backing store, or a sticky error appears. It is a no-op on a
// write-disabled engine.
func (e *Engine) Flush() error {
	if err := e.stickyErrorOrNil(); err != nil {
		return err
	}
	return e.flushLocked()
}

// flushLocked is Flush without the entry sticky-error check, so Seek can
// flush as an internal step after making that check itself, and Close can
// flush best-effort with a sticky error set.
func (e *Engine) flushLocked() error {
	if !e.writeEnabled {
		return nil
	}

	e.writeMu.Lock()
	if e.writeQueue.empty() {
		e.writeMu.Unlock()
		return nil
	}
	e.flushRequest.Store(true)
	e.writeConsumer.Signal()

	for !e.writeQueue.empty() {
		if e.writeStop.Load() {
			break
		}
		if err := e.stickyError(); err != nil {
			e.writeMu.Unlock()
			return err
		}
		e.writeProducer.Wait()
	}
	e.writeMu.Unlock()

	e.logEvent("flush", nil)
	return e.stickyErrorOrNil()
}
