package conveyor

import "testing"

func TestSeekSetRepositionsAndInvalidatesCache(t *testing.T) {
	cfg := defaultTestConfig()
	e, backend := newTestEngine(t, cfg)
	defer e.Close()

	backend.mu.Lock()
	backend.data = []byte("0123456789")
	backend.mu.Unlock()

	dst := make([]byte, 4)
	if _, err := e.Read(dst); err != nil {
		t.Fatalf("Read: %v", err)
	}

	abs, err := e.Seek(8, SeekSet)
	if err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if abs != 8 {
		t.Fatalf("expected absolute offset 8, got %d", abs)
	}

	dst2 := make([]byte, 2)
	n, err := e.Read(dst2)
	if err != nil {
		t.Fatalf("Read after seek: %v", err)
	}
	if n != 2 || string(dst2) != "89" {
		t.Fatalf("got %q n=%d", dst2[:n], n)
	}
}

func TestSeekCurResolvedAgainstLogicalOffset(t *testing.T) {
	cfg := defaultTestConfig()
	e, backend := newTestEngine(t, cfg)
	defer e.Close()

	backend.mu.Lock()
	backend.data = []byte("0123456789")
	backend.mu.Unlock()

	dst := make([]byte, 3)
	if _, err := e.Read(dst); err != nil {
		t.Fatalf("Read: %v", err)
	}

	abs, err := e.Seek(2, SeekCur)
	if err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if abs != 5 {
		t.Fatalf("expected absolute offset 5 (3+2), got %d", abs)
	}
}

func TestSeekFlushesPendingWritesFirst(t *testing.T) {
	cfg := defaultTestConfig()
	e, backend := newTestEngine(t, cfg)
	defer e.Close()

	if _, err := e.Write([]byte("payload")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := e.Seek(0, SeekSet); err != nil {
		t.Fatalf("Seek: %v", err)
	}

	backend.mu.Lock()
	n := len(backend.data)
	backend.mu.Unlock()
	if n != len("payload") {
		t.Fatalf("expected Seek to have flushed the pending write first, backend has %d bytes", n)
	}
}
