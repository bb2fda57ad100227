// Package vector provides the growable string buffer used by the carp parser
// for callback arguments and residual arguments.
package vector

// DefaultCapacity is the initial capacity the parser uses for its buffers.
const DefaultCapacity = 25

// Vector is an append-only (with pop) sequence of borrowed strings.
// Capacity doubles when a push finds the buffer full and halves when a pop
// leaves it at a quarter of its capacity or less.
type Vector struct {
	buf  []string
	size int
}

// New returns a vector with the given initial capacity.
func New(capacity int) *Vector {
	v := &Vector{}
	v.Init(capacity)
	return v
}

// Init (re)initializes the vector with an empty buffer of the given capacity.
func (v *Vector) Init(capacity int) {
	if capacity < 0 {
		capacity = 0
	}
	v.buf = make([]string, capacity)
	v.size = 0
}

// Push appends s, doubling the capacity first when the buffer is full.
func (v *Vector) Push(s string) {
	if v.size == len(v.buf) {
		next := len(v.buf) * 2
		if next == 0 {
			next = 1
		}
		v.resize(next)
	}
	v.buf[v.size] = s
	v.size++
}

// Pop removes and returns the last element. It reports false when the vector
// is empty.
func (v *Vector) Pop() (string, bool) {
	if v.size == 0 {
		return "", false
	}
	v.size--
	s := v.buf[v.size]
	v.buf[v.size] = ""

	if v.size <= len(v.buf)/4 {
		v.resize(len(v.buf) / 2)
	}
	return s, true
}

// At returns the element at index i. It reports false when i is out of range.
func (v *Vector) At(i int) (string, bool) {
	if i < 0 || i >= v.size {
		return "", false
	}
	return v.buf[i], true
}

// Size returns the number of stored elements.
func (v *Vector) Size() int { return v.size }

// Cap returns the current capacity.
func (v *Vector) Cap() int { return len(v.buf) }

// Items returns the stored elements. The slice aliases the vector's storage
// and is only valid until the next Push, Pop, Reset or Release.
func (v *Vector) Items() []string { return v.buf[:v.size:v.size] }

// Reset empties the vector but keeps its storage.
func (v *Vector) Reset() {
	clear(v.buf[:v.size])
	v.size = 0
}

// Release drops the storage. The vector stays usable and grows again on Push.
func (v *Vector) Release() {
	v.buf = nil
	v.size = 0
}

func (v *Vector) resize(capacity int) {
	buf := make([]string, capacity)
	copy(buf, v.buf[:v.size])
	v.buf = buf
}
