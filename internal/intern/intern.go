// Package intern provides canonical strings for option names.
// Used by the carp parser for short-option names and by option tables for
// registered long names.
package intern

import (
	"sync"
)

// Interner maps option names to a single canonical string instance.
type Interner struct {
	names map[string]string
	mutex sync.RWMutex
}

// NewInterner creates an interner with optional pre-allocated capacity
func NewInterner(capacity int) *Interner {
	if capacity <= 0 {
		capacity = 64
	}
	return &Interner{
		names: make(map[string]string, capacity),
	}
}

// Intern returns the canonical version of s.
func (in *Interner) Intern(s string) string {
	in.mutex.RLock()
	if interned, exists := in.names[s]; exists {
		in.mutex.RUnlock()
		return interned
	}
	in.mutex.RUnlock()

	in.mutex.Lock()
	defer in.mutex.Unlock()

	// Double-check after acquiring write lock
	if interned, exists := in.names[s]; exists {
		return interned
	}

	// Detach from the caller's backing string so the map never pins a
	// whole argument or file buffer for a short name.
	owned := string(append([]byte(nil), s...))
	in.names[owned] = owned
	return owned
}

// Len returns the number of interned names.
func (in *Interner) Len() int {
	in.mutex.RLock()
	defer in.mutex.RUnlock()
	return len(in.names)
}

// Reset removes all interned names (useful for testing)
func (in *Interner) Reset() {
	in.mutex.Lock()
	defer in.mutex.Unlock()
	clear(in.names)
}

// singleBytes holds a one-byte string for every byte value so short-option
// lookups never allocate.
var singleBytes [256]string

// Byte returns the one-byte option name for b without allocating.
func Byte(b byte) string {
	return singleBytes[b]
}

// Global is the process-wide interner used by option tables.
var Global *Interner

//nolint:gochecknoinits // lookup tables are built once
func init() {
	for i := range singleBytes {
		singleBytes[i] = string([]byte{byte(i)})
	}
	Global = NewInterner(128)
}

// Intern interns a name using the global interner
func Intern(s string) string {
	return Global.Intern(s)
}
