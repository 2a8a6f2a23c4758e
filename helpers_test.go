package conveyor

import (
	"errors"
	"sync"
	"testing"
	"time"
)

var errTestInjected = errors.New("injected backend failure")

// memBackend is an in-memory Backend double modelled on mock_storage.hpp:
// a growable byte slice addressed by absolute offset, with an optional
// injected failure and short-write/short-read truncation for exercising
// the engine's retry and sticky-error paths without touching a real file.
type memBackend struct {
	mu         sync.Mutex
	data       []byte
	failWith   error
	maxChunk   int           // if >0, caps every Pwrite/Pread to this many bytes
	writeDelay time.Duration // artificial pwrite latency, mirrors spec.md's S2/S3 scenarios
}

func newMemBackend() *memBackend {
	return &memBackend{}
}

func (m *memBackend) Pwrite(handle any, buf []byte, offset int64) (int, error) {
	m.mu.Lock()
	delay := m.writeDelay
	m.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	n := len(buf)
	if m.maxChunk > 0 && n > m.maxChunk {
		n = m.maxChunk
	}
	end := offset + int64(n)
	if end > int64(len(m.data)) {
		grown := make([]byte, end)
		copy(grown, m.data)
		m.data = grown
	}
	copy(m.data[offset:end], buf[:n])
	return n, nil
}

func (m *memBackend) Pread(handle any, buf []byte, offset int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	if offset >= int64(len(m.data)) {
		return 0, nil
	}
	n := copy(buf, m.data[offset:])
	if m.maxChunk > 0 && n > m.maxChunk {
		n = m.maxChunk
	}
	return n, nil
}

func (m *memBackend) Lseek(handle any, offset int64, whence Whence) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch whence {
	case SeekSet:
		return offset, nil
	case SeekEnd:
		return int64(len(m.data)) + offset, nil
	default:
		// SeekCur is resolved by the engine before it ever reaches the
		// backend; a direct test call falls through like mock_storage.hpp.
		return offset, nil
	}
}

func (m *memBackend) size() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.data))
}

func (m *memBackend) setFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *memBackend) {
	t.Helper()
	backend := newMemBackend()
	cfg.Backend = backend
	e, err := Create(cfg)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return e, backend
}

func defaultTestConfig() Config {
	cfg := DefaultConfig(nil, nil)
	cfg.InitialWriteCapacity = 64
	cfg.MaxWriteCapacity = 1024
	cfg.InitialReadCapacity = 64
	cfg.MaxReadCapacity = 1024
	cfg.WriteTimeout = 2 * time.Second
	return cfg
}
