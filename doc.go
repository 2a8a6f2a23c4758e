// Package conveyor provides a user-space I/O acceleration engine that sits
// between a POSIX-like client and an arbitrary block-addressable backing
// store.
//
// The engine absorbs writes into an in-memory write queue that a background
// worker drains via offset-addressed writes, and prefetches sequential
// reads into an in-memory read cache that a second background worker fills
// via offset-addressed reads. The client sees Write, Read, Seek, Flush, and
// Stats with the semantics of a regular seekable byte stream.
//
// The package is organised one concern per file:
//
//	options.go      - Config, OpenFlag, defaults
//	backend.go      - the Backend capability interface and FileBackend
//	ringbuffer.go   - the circular byte region shared by both directions
//	writequeue.go   - the FIFO of pending write requests
//	engine.go       - Engine, Create
//	write.go        - the producer side of Write
//	write_worker.go - the background write-draining goroutine
//	read.go         - Read, including the cache/fill/snoop layers
//	read_worker.go  - the background cache-filling goroutine
//	seek.go         - Seek
//	flush.go        - Flush
//	stats.go        - Stats, GetStats, GetLastError, ClearError
//	errors.go       - the error taxonomy
//	lifecycle.go    - Close
//	log.go          - the optional structured-event logging hook
//
// See SPEC_FULL.md and DESIGN.md in the repository root for the full
// contract and the rationale behind each design decision.
package conveyor
