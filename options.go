package conveyor

import "time"

// OpenFlag is a bitmask of the recognised open flags. Unknown bits are
// ignored.
type OpenFlag int

const (
	OpenReadOnly OpenFlag = 1 << iota
	OpenWriteOnly
	OpenReadWrite
	OpenAppend
)

// accessMode reports which of the three access modes a flag set selects.
func (f OpenFlag) accessMode() OpenFlag {
	switch {
	case f&OpenReadWrite != 0:
		return OpenReadWrite
	case f&OpenWriteOnly != 0:
		return OpenWriteOnly
	default:
		return OpenReadOnly
	}
}

// EventLogger receives structured events from an Engine. A nil logger
// disables logging; supply one to route events into whatever logging
// stack the embedding host already uses.
type EventLogger func(event string, fields map[string]any)

// DefaultWriteTimeout bounds how long a producer waits for write-ring
// space when adaptive growth cannot help.
const DefaultWriteTimeout = 30 * time.Second

// shortReadGrowthStreak is the number of consecutive reads that end short
// of their requested length (cache and backing store both ran out) after
// which each further short read grows the read ring toward its maximum.
// A fully satisfied read or a Seek resets the count.
const shortReadGrowthStreak = 3

// Config describes a new Engine.
type Config struct {
	// Handle is passed verbatim to every Backend call.
	Handle any

	// Backend supplies the three offset-addressed operations the engine
	// buffers in front of.
	Backend Backend

	// Flags selects the access mode (OpenReadOnly / OpenWriteOnly /
	// OpenReadWrite) and whether OpenAppend reseeks to end-of-store
	// before every backing-store write.
	Flags OpenFlag

	// InitialWriteCapacity is the starting size of the write ring in
	// bytes. Zero disables the write direction.
	InitialWriteCapacity int

	// MaxWriteCapacity bounds adaptive growth of the write ring. Must be
	// >= InitialWriteCapacity when the write direction is enabled.
	MaxWriteCapacity int

	// InitialReadCapacity is the starting size of the read ring in
	// bytes. Zero disables the read direction.
	InitialReadCapacity int

	// MaxReadCapacity bounds adaptive growth of the read ring. Must be
	// >= InitialReadCapacity when the read direction is enabled.
	MaxReadCapacity int

	// WriteTimeout bounds how long Write blocks waiting for ring space
	// when adaptive growth cannot help. Zero selects DefaultWriteTimeout.
	WriteTimeout time.Duration

	// Logger receives structured events. Nil disables logging.
	Logger EventLogger
}

// DefaultConfig returns a Config with conservative buffer sizes and
// read-write access, suitable as a starting point for callers to override.
func DefaultConfig(handle any, backend Backend) Config {
	return Config{
		Handle:               handle,
		Backend:              backend,
		Flags:                OpenReadWrite,
		InitialWriteCapacity: 64 * 1024,
		MaxWriteCapacity:     4 * 1024 * 1024,
		InitialReadCapacity:  64 * 1024,
		MaxReadCapacity:      4 * 1024 * 1024,
		WriteTimeout:         DefaultWriteTimeout,
	}
}
