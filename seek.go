package conveyor

// Seek flushes any pending writes, repositions the backing store, and
// invalidates the read cache. Both mutexes are held across the backend
// call in the fixed "read then write" order to avoid deadlocking with
// Close, the only other operation that takes both.
func (e *Engine) Seek(offset int64, whence Whence) (int64, error) {
	if err := e.stickyErrorOrNil(); err != nil {
		return 0, err
	}

	if err := e.flushLocked(); err != nil {
		return 0, err
	}

	target := offset
	if whence == SeekCur {
		target = e.offset.Load() + offset
		whence = SeekSet
	}

	e.lockBoth()

	abs, err := e.backend.Lseek(e.handle, target, whence)
	if err != nil {
		e.unlockBoth()
		return 0, newError(CodeIO, err)
	}

	e.readRing.clear()
	e.readEOF.Store(false)
	e.readStale.Store(false)
	e.readShortRunN = 0
	e.offset.Store(abs)
	e.readFillOff.Store(abs)
	e.generation.Add(1)

	e.readProducer.Broadcast()
	e.readConsumer.Broadcast()
	e.writeProducer.Broadcast()
	e.writeConsumer.Broadcast()

	e.unlockBoth()

	e.logEvent("seek", map[string]any{"offset": abs})
	return abs, nil
}
