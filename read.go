package conveyor

// Read copies up to len(p) bytes starting at the engine's current logical
// offset into p, advancing the offset by the number of bytes copied. It
// layers three sources over the read ring: already-cached bytes, a
// backing-store fill (looped until satisfied, EOF, or shutdown), and a
// snoop overlay of any writes still sitting in the write queue that this
// read's range would otherwise see stale or missing data for — including
// bytes past a backing-store EOF that a pending write has already claimed.
func (e *Engine) Read(p []byte) (int, error) {
	if err := e.stickyErrorOrNil(); err != nil {
		return 0, err
	}
	if !e.readEnabled {
		return 0, ErrBadDescriptor
	}
	if len(p) == 0 {
		return 0, nil
	}

	offset := e.offset.Load()

	e.readMu.Lock()
	n, err := e.readLocked(p, offset)
	eof := e.readEOF.Load()
	e.readMu.Unlock()

	if err != nil {
		return n, err
	}

	e.applySnoop(p[:n], offset)
	if eof && n < len(p) {
		n += e.extendFromPendingWrites(p[n:], offset+int64(n))
	}

	if n > 0 {
		e.offset.Add(int64(n))
	}
	return n, nil
}

// readLocked implements the cache-then-fill layer, looping over as many
// fill cycles as it takes to satisfy p, hit EOF, or observe shutdown or a
// racing Seek. readMu must be held. Per spec.md §4.2/§9, the only timeout
// anywhere in the engine is the write-producer wait — a read blocks on
// the read-consumer condition variable with no deadline.
func (e *Engine) readLocked(p []byte, offset int64) (int, error) {
	delivered := 0
	for delivered < len(p) && !e.readStop.Load() {
		if err := e.stickyError(); err != nil {
			return delivered, err
		}
		if e.readRing.empty() {
			if e.readEOF.Load() {
				break
			}
			genAtRequest := e.generation.Load()
			e.requestFill(offset + int64(delivered))
			e.readConsumer.Wait()
			if e.generation.Load() != genAtRequest {
				// A Seek raced this read: the offset this wait was for
				// no longer means anything. Stop with what's delivered.
				return delivered, nil
			}
			continue
		}
		delivered += e.readRing.read(p[delivered:], len(p)-delivered)
	}

	if delivered >= len(p) {
		e.readShortRunN = 0
		return delivered, nil
	}

	e.readShortRunN++
	if e.readShortRunN >= shortReadGrowthStreak && e.readRing.capacity < e.readRing.max {
		target := e.readRing.growthTarget(len(p))
		if target > e.readRing.capacity {
			e.readRing.resize(target)
		}
	}
	return delivered, nil
}

// requestFill asks the read worker to pull more data starting at off. If an
// identical (offset, length) fill is already pending, re-signalling it
// would just relabel the same request, so it is skipped.
func (e *Engine) requestFill(off int64) {
	length := int64(e.readRing.free())
	if e.readFillWant.Load() && e.readFillOff.Load() == off && e.readFillLen.Load() == length {
		return
	}
	e.readFillOff.Store(off)
	e.readFillLen.Store(length)
	e.readFillWant.Store(true)
	e.readProducer.Signal()
}

// applySnoop overlays any still-queued write bytes onto the portion of p
// that falls within a pending write's range, so a read never observes
// stale backing-store data for writes not yet drained. It must run
// without readMu held, since it takes writeMu.
func (e *Engine) applySnoop(p []byte, readOffset int64) {
	if len(p) == 0 || !e.writeEnabled {
		return
	}
	readEnd := readOffset + int64(len(p))

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	e.writeQueue.forEach(func(req writeRequest) {
		reqEnd := req.offset + int64(req.length)
		lo := req.offset
		if lo < readOffset {
			lo = readOffset
		}
		hi := reqEnd
		if hi > readEnd {
			hi = readEnd
		}
		if lo >= hi {
			return
		}
		chunk := make([]byte, hi-lo)
		e.writeRing.peekAtSeq(req.seq+(lo-req.offset), chunk)
		copy(p[lo-readOffset:hi-readOffset], chunk)
	})
}

// extendFromPendingWrites fills dst, starting at offset, with bytes found
// entirely in the write queue, stopping at the first byte no pending
// request covers. It exists for the case a read runs past a
// backing-store EOF that a pending write has already claimed: the cache
// and fill layers see nothing past EOF, but the write queue already has
// the bytes, and POSIX read() must return a contiguous prefix, so
// coverage stops at the first gap rather than leaving holes in dst.
func (e *Engine) extendFromPendingWrites(dst []byte, offset int64) int {
	if len(dst) == 0 || !e.writeEnabled {
		return 0
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	covered := make([]bool, len(dst))
	end := offset + int64(len(dst))

	e.writeQueue.forEach(func(req writeRequest) {
		reqEnd := req.offset + int64(req.length)
		lo := req.offset
		if lo < offset {
			lo = offset
		}
		hi := reqEnd
		if hi > end {
			hi = end
		}
		if lo >= hi {
			return
		}
		chunk := make([]byte, hi-lo)
		e.writeRing.peekAtSeq(req.seq+(lo-req.offset), chunk)
		copy(dst[lo-offset:hi-offset], chunk)
		for i := lo - offset; i < hi-offset; i++ {
			covered[i] = true
		}
	})

	n := 0
	for n < len(dst) && covered[n] {
		n++
	}
	return n
}
