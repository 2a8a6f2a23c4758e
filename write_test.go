package conveyor

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

func TestWriteDrainsToBackend(t *testing.T) {
	e, backend := newTestEngine(t, defaultTestConfig())
	defer e.Close()

	payload := []byte("hello conveyor")
	n, err := e.Write(payload)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != len(payload) {
		t.Fatalf("expected %d accepted, got %d", len(payload), n)
	}

	if err := e.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	backend.mu.Lock()
	got := append([]byte(nil), backend.data...)
	backend.mu.Unlock()
	if !bytes.Equal(got, payload) {
		t.Fatalf("backend mismatch: got %q want %q", got, payload)
	}
}

func TestWriteRejectsOversizedMessage(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.MaxWriteCapacity = 16
	cfg.InitialWriteCapacity = 8
	e, _ := newTestEngine(t, cfg)
	defer e.Close()

	_, err := e.Write(make([]byte, 32))
	if !errors.Is(err, ErrMessageTooLong) {
		t.Fatalf("expected ErrMessageTooLong, got %v", err)
	}
}

func TestWriteZeroLengthIsNoop(t *testing.T) {
	e, _ := newTestEngine(t, defaultTestConfig())
	defer e.Close()

	n, err := e.Write(nil)
	if n != 0 || err != nil {
		t.Fatalf("expected (0, nil), got (%d, %v)", n, err)
	}
}

func TestWriteOnReadOnlyEngineFails(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Flags = OpenReadOnly
	e, _ := newTestEngine(t, cfg)
	defer e.Close()

	_, err := e.Write([]byte("x"))
	if !errors.Is(err, ErrBadDescriptor) {
		t.Fatalf("expected ErrBadDescriptor, got %v", err)
	}
}

func TestWriteStickyErrorAfterBackendFailure(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.InitialWriteCapacity = 4
	cfg.MaxWriteCapacity = 4
	cfg.WriteTimeout = 500 * time.Millisecond
	e, backend := newTestEngine(t, cfg)
	defer e.Close()

	backend.setFailure(errors.New("disk full"))

	if _, err := e.Write([]byte("abcd")); err != nil {
		t.Fatalf("first write should be accepted into the ring: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for e.GetLastError() == nil && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if e.GetLastError() == nil {
		t.Fatalf("expected sticky error to be set after backend failure")
	}

	if _, err := e.Write([]byte("z")); err == nil {
		t.Fatalf("expected subsequent write to fail with the sticky error")
	}
}

func TestWriteGrowsRingAdaptively(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.InitialWriteCapacity = 8
	cfg.MaxWriteCapacity = 256
	e, _ := newTestEngine(t, cfg)
	defer e.Close()

	big := bytes.Repeat([]byte("x"), 64)
	n, err := e.Write(big)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != len(big) {
		t.Fatalf("expected full accept via growth, got %d", n)
	}
	if e.writeRing.capacity <= 8 {
		t.Fatalf("expected ring to have grown, capacity=%d", e.writeRing.capacity)
	}
}
