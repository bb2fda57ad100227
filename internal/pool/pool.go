// Package pool provides object pooling for the carp parser and its logging
// middleware: callback-argument vectors and byte buffers for log lines.
package pool

import (
	"sync"

	"github.com/dzonerzy/go-carp/internal/vector"
)

// Pool provides a generic, type-safe object pool
type Pool[T any] struct {
	pool    sync.Pool
	reset   func(*T)     // Optional reset function called before reuse
	maxSize int          // Maximum objects to keep (0 = unlimited)
	count   int64        // Current pool size (approximate)
	mutex   sync.RWMutex // Protects count
}

// NewPool creates a new generic pool with the given factory function
func NewPool[T any](factory func() *T) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return factory()
			},
		},
	}
}

// NewPoolWithReset creates a pool with a reset function called before reuse
func NewPoolWithReset[T any](factory func() *T, reset func(*T)) *Pool[T] {
	p := NewPool(factory)
	p.reset = reset
	return p
}

// Get retrieves an object from the pool or creates a new one
func (p *Pool[T]) Get() *T {
	obj := p.pool.Get().(*T)
	if p.reset != nil {
		p.reset(obj)
	}
	if p.maxSize > 0 {
		p.mutex.Lock()
		if p.count > 0 {
			p.count--
		}
		p.mutex.Unlock()
	}
	return obj
}

// Put returns an object to the pool for reuse
func (p *Pool[T]) Put(obj *T) {
	if obj == nil {
		return
	}

	if p.maxSize > 0 {
		p.mutex.Lock()
		if p.count >= int64(p.maxSize) {
			p.mutex.Unlock()
			return
		}
		p.count++
		p.mutex.Unlock()
	}

	p.pool.Put(obj)
}

// SetMaxSize sets the maximum number of objects to keep in the pool
func (p *Pool[T]) SetMaxSize(size int) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.maxSize = size
}

// Stats returns approximate pool statistics
func (p *Pool[T]) Stats() (count int64, maxSize int) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.count, p.maxSize
}

// BufferPool pools byte slices in capacity buckets
type BufferPool struct {
	pools   map[int]*Pool[[]byte]
	buckets []int
	minCap  int
	maxCap  int
}

// NewBufferPool creates a buffer pool with buckets sized for log lines
func NewBufferPool() *BufferPool {
	buckets := []int{64, 128, 256, 512, 1024, 2048, 4096}

	bp := &BufferPool{
		pools:   make(map[int]*Pool[[]byte], len(buckets)),
		buckets: buckets,
		minCap:  buckets[0],
		maxCap:  buckets[len(buckets)-1],
	}

	for _, capacity := range buckets {
		bp.pools[capacity] = NewPoolWithReset(
			func() *[]byte {
				buf := make([]byte, 0, capacity)
				return &buf
			},
			func(buf *[]byte) {
				*buf = (*buf)[:0]
			},
		)
	}

	return bp
}

// Get retrieves a buffer with at least the requested capacity
func (bp *BufferPool) Get(minCap int) *[]byte {
	if minCap > bp.maxCap {
		buf := make([]byte, 0, minCap)
		return &buf
	}
	return bp.pools[bp.findBucket(minCap)].Get()
}

// Put returns a buffer to the bucket matching its capacity
func (bp *BufferPool) Put(buf *[]byte) {
	if buf == nil {
		return
	}

	capacity := cap(*buf)
	if capacity < bp.minCap || capacity > bp.maxCap {
		return
	}

	// A buffer that grew past its bucket goes to the largest bucket it fills.
	bucket := bp.minCap
	for _, b := range bp.buckets {
		if b <= capacity {
			bucket = b
		}
	}
	bp.pools[bucket].Put(buf)
}

func (bp *BufferPool) findBucket(minCap int) int {
	for _, bucket := range bp.buckets {
		if bucket >= minCap {
			return bucket
		}
	}
	return bp.maxCap
}

// maxVectorGrowth bounds how far past its initial capacity a pooled vector
// may have grown before its storage is dropped on Put.
const maxVectorGrowth = 4

// VectorPool pools callback-argument vectors. Vectors come back empty; storage
// is kept unless the vector outgrew maxVectorGrowth times the pool capacity.
type VectorPool struct {
	*Pool[vector.Vector]
	capacity int
}

// NewVectorPool creates a vector pool whose fresh vectors have the given capacity
func NewVectorPool(capacity int) *VectorPool {
	return &VectorPool{
		Pool: NewPoolWithReset(
			func() *vector.Vector {
				return vector.New(capacity)
			},
			func(v *vector.Vector) {
				v.Reset()
			},
		),
		capacity: capacity,
	}
}

// Put empties v and returns it to the pool. An oversized vector has its
// storage released and replaced by a fresh buffer of the pool capacity.
func (vp *VectorPool) Put(v *vector.Vector) {
	if v == nil {
		return
	}
	if v.Cap() > vp.capacity*maxVectorGrowth {
		v.Release()
		v.Init(vp.capacity)
	} else {
		v.Reset()
	}
	vp.Pool.Put(v)
}

var (
	// GlobalBufferPool backs log-line formatting
	GlobalBufferPool = NewBufferPool()

	// GlobalVectorPool backs per-parse callback buffers
	GlobalVectorPool = NewVectorPool(vector.DefaultCapacity)
)

// GetBuffer retrieves a buffer from the global pool
func GetBuffer(minCap int) *[]byte {
	return GlobalBufferPool.Get(minCap)
}

// PutBuffer returns a buffer to the global pool
func PutBuffer(buf *[]byte) {
	GlobalBufferPool.Put(buf)
}

// GetVector retrieves an empty callback vector from the global pool
func GetVector() *vector.Vector {
	return GlobalVectorPool.Get()
}

// PutVector returns a callback vector to the global pool
func PutVector(v *vector.Vector) {
	GlobalVectorPool.Put(v)
}
