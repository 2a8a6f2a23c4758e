package conveyor

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Engine is the buffered I/O acceleration engine. It is created bound to
// one backing-store handle and one Backend, and is safe for concurrent
// use by multiple goroutines subject to the ordering guarantees in
// SPEC_FULL.md §5.
type Engine struct {
	id string

	handle  any
	backend Backend
	flags   OpenFlag
	mode    OpenFlag // resolved access mode
	append  bool
	logger  EventLogger

	generation atomic.Uint64
	lastErr    atomic.Pointer[ConveyorError]

	offset atomic.Int64 // logical current offset

	stats engineStats

	// write side
	writeEnabled  bool
	writeMu       sync.Mutex
	writeProducer *sync.Cond // signalled when ring space frees up
	writeConsumer *sync.Cond // signalled when the queue gains work
	writeRing     *ringBuffer
	writeQueue    writeQueue
	writeTimeout  time.Duration
	writeStop     atomic.Bool
	flushRequest  atomic.Bool

	// read side
	readEnabled   bool
	readMu        sync.Mutex
	readProducer  *sync.Cond // signalled when a fill is requested / stale
	readConsumer  *sync.Cond // signalled when the cache gains data or EOF
	readRing      *ringBuffer
	readStop      atomic.Bool
	readStale     atomic.Bool
	readEOF       atomic.Bool
	readFillWant  atomic.Bool
	readFillOff   atomic.Int64
	readFillLen   atomic.Int64
	readShortRunN int // consecutive reads that ended short of their requested length, guarded by readMu

	readWG  sync.WaitGroup
	writeWG sync.WaitGroup
}

type engineStats struct {
	mu               sync.Mutex
	bytesWritten     uint64
	bytesRead        uint64
	writeOps         uint64
	readOps          uint64
	writeLatencyNs   int64
	readLatencyNs    int64
	congestionEvents uint64
}

// Create validates cfg, allocates the write and/or read rings (sized zero
// when their direction is disabled by a zero initial capacity), starts
// the appropriate background workers, and returns an owning Engine.
func Create(cfg Config) (*Engine, error) {
	if cfg.Backend == nil {
		return nil, newError(CodeInvalid, errNilBackend)
	}
	if cfg.InitialWriteCapacity > 0 && cfg.MaxWriteCapacity < cfg.InitialWriteCapacity {
		return nil, newError(CodeInvalid, errMaxBelowInitial)
	}
	if cfg.InitialReadCapacity > 0 && cfg.MaxReadCapacity < cfg.InitialReadCapacity {
		return nil, newError(CodeInvalid, errMaxBelowInitial)
	}

	mode := cfg.Flags.accessMode()
	writeEnabled := cfg.InitialWriteCapacity > 0 && (mode == OpenWriteOnly || mode == OpenReadWrite)
	readEnabled := cfg.InitialReadCapacity > 0 && (mode == OpenReadOnly || mode == OpenReadWrite)

	timeout := cfg.WriteTimeout
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}

	e := &Engine{
		id:           uuid.New().String(),
		handle:       cfg.Handle,
		backend:      cfg.Backend,
		flags:        cfg.Flags,
		mode:         mode,
		append:       cfg.Flags&OpenAppend != 0,
		logger:       cfg.Logger,
		writeEnabled: writeEnabled,
		readEnabled:  readEnabled,
		writeTimeout: timeout,
	}

	e.writeProducer = sync.NewCond(&e.writeMu)
	e.writeConsumer = sync.NewCond(&e.writeMu)
	e.readProducer = sync.NewCond(&e.readMu)
	e.readConsumer = sync.NewCond(&e.readMu)

	if writeEnabled {
		e.writeRing = newRingBuffer(cfg.InitialWriteCapacity, cfg.MaxWriteCapacity)
	} else {
		e.writeRing = newRingBuffer(0, 0)
	}
	if readEnabled {
		e.readRing = newRingBuffer(cfg.InitialReadCapacity, cfg.MaxReadCapacity)
	} else {
		e.readRing = newRingBuffer(0, 0)
	}

	if readEnabled {
		e.readWG.Add(1)
		go e.readWorkerLoop()
	}
	if writeEnabled {
		e.writeWG.Add(1)
		go e.writeWorkerLoop()
	}

	e.logEvent("created", map[string]any{"write_enabled": writeEnabled, "read_enabled": readEnabled})
	return e, nil
}

// ID returns the engine's stable instance identifier, useful for
// correlating log lines and stats snapshots across many concurrently
// open engines.
func (e *Engine) ID() string { return e.id }

// condWaitUntil waits on cond, which must be built on mu, until either
// another goroutine signals it or deadline passes. mu must be held on
// entry and is held again on return. It reports whether the wake-up
// happened before the deadline.
func (e *Engine) condWaitUntil(cond *sync.Cond, mu *sync.Mutex, deadline time.Time) bool {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return false
	}
	timer := time.AfterFunc(remaining, func() {
		mu.Lock()
		cond.Broadcast()
		mu.Unlock()
	})
	cond.Wait()
	timer.Stop()
	return time.Now().Before(deadline)
}

// lockBoth acquires both mutexes in the engine's fixed global order
// (read then write), the only deadlock-avoiding protocol needed since
// Seek and Close are the only two operations that ever take both.
func (e *Engine) lockBoth() {
	e.readMu.Lock()
	e.writeMu.Lock()
}

// unlockBoth releases both mutexes in the reverse of the order lockBoth
// acquired them.
func (e *Engine) unlockBoth() {
	e.writeMu.Unlock()
	e.readMu.Unlock()
}
