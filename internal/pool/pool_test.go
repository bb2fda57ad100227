package pool

import (
	"sync"
	"testing"
)

func TestPool_WithReset(t *testing.T) {
	resetCalled := false
	pool := NewPoolWithReset(
		func() *[]int {
			slice := make([]int, 0, 10)
			return &slice
		},
		func(slice *[]int) {
			*slice = (*slice)[:0]
			resetCalled = true
		},
	)

	slice1 := pool.Get()
	if !resetCalled {
		t.Error("Reset function was not called on Get")
	}
	*slice1 = append(*slice1, 1, 2, 3)
	pool.Put(slice1)

	slice2 := pool.Get()
	if len(*slice2) != 0 {
		t.Errorf("Expected empty slice after reset, got length %d", len(*slice2))
	}
}

func TestPool_PutNil(t *testing.T) {
	pool := NewPool(func() *int {
		x := 7
		return &x
	})
	pool.Put(nil)

	if got := pool.Get(); got == nil || *got != 7 {
		t.Errorf("Expected fresh object from factory, got %v", got)
	}
}

func TestPool_MaxSize(t *testing.T) {
	pool := NewPool(func() *int {
		x := 0
		return &x
	})
	pool.SetMaxSize(2)

	obj1 := pool.Get()
	obj2 := pool.Get()
	obj3 := pool.Get()

	pool.Put(obj1)
	pool.Put(obj2)
	pool.Put(obj3) // discarded

	count, maxSize := pool.Stats()
	if maxSize != 2 {
		t.Errorf("Expected max size 2, got %d", maxSize)
	}
	if count != 2 {
		t.Errorf("Expected count 2, got %d", count)
	}
}

func TestPool_Concurrent(t *testing.T) {
	pool := NewPoolWithReset(
		func() *[]int {
			slice := make([]int, 0, 16)
			return &slice
		},
		func(slice *[]int) { *slice = (*slice)[:0] },
	)

	const numGoroutines = 50
	const numOperations = 500

	var wg sync.WaitGroup
	for i := range numGoroutines {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range numOperations {
				obj := pool.Get()
				if len(*obj) != 0 {
					t.Errorf("goroutine %d: got dirty slice", id)
					return
				}
				*obj = append(*obj, id*1000+j)
				pool.Put(obj)
			}
		}(i)
	}
	wg.Wait()
}

func TestBufferPool_Basic(t *testing.T) {
	bp := NewBufferPool()

	for _, size := range []int{10, 64, 128, 256, 512, 1024, 4096} {
		buf := bp.Get(size)
		if cap(*buf) < size {
			t.Errorf("Expected capacity >= %d, got %d", size, cap(*buf))
		}
		if len(*buf) != 0 {
			t.Errorf("Expected empty buffer, got length %d", len(*buf))
		}
		*buf = append(*buf, make([]byte, size/2)...)
		bp.Put(buf)
	}
}

func TestBufferPool_OutOfRange(t *testing.T) {
	bp := NewBufferPool()

	buf := bp.Get(10000)
	if cap(*buf) < 10000 {
		t.Errorf("Expected capacity >= 10000, got %d", cap(*buf))
	}
	// not pooled, must not panic
	bp.Put(buf)

	small := make([]byte, 0, 8)
	bp.Put(&small)
	bp.Put(nil)
}

func TestBufferPool_GrownBuffer(t *testing.T) {
	bp := NewBufferPool()

	buf := bp.Get(64)
	*buf = append(*buf, make([]byte, 300)...)
	bp.Put(buf)

	// Whatever comes back from the 256 bucket must still honour its size.
	got := bp.Get(256)
	if cap(*got) < 256 {
		t.Errorf("Expected capacity >= 256, got %d", cap(*got))
	}
}

func TestVectorPool(t *testing.T) {
	vp := NewVectorPool(4)

	v := vp.Get()
	if v.Size() != 0 {
		t.Fatalf("Expected empty vector, got size %d", v.Size())
	}
	if v.Cap() < 4 {
		t.Errorf("Expected capacity >= 4, got %d", v.Cap())
	}

	v.Push("a")
	v.Push("b")
	vp.Put(v)

	v2 := vp.Get()
	if v2.Size() != 0 {
		t.Errorf("Expected reset vector, got size %d", v2.Size())
	}
}

func TestVectorPool_PutReleasesOversized(t *testing.T) {
	tests := []struct {
		name    string
		pushes  int
		wantCap int
	}{
		{"within bound keeps storage", 16, 16},
		{"oversized is released", 17, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vp := NewVectorPool(4)
			v := vp.Get()
			for i := 0; i < tt.pushes; i++ {
				v.Push("x")
			}
			vp.Put(v)

			if v.Size() != 0 {
				t.Errorf("Expected empty vector after Put, got size %d", v.Size())
			}
			if v.Cap() != tt.wantCap {
				t.Errorf("Expected capacity %d after Put, got %d", tt.wantCap, v.Cap())
			}
		})
	}
}

func TestGlobalPools(t *testing.T) {
	buf := GetBuffer(512)
	if cap(*buf) < 512 {
		t.Errorf("Expected buffer capacity >= 512, got %d", cap(*buf))
	}
	PutBuffer(buf)

	v := GetVector()
	if v == nil || v.Size() != 0 {
		t.Fatalf("Expected empty vector from global pool")
	}
	PutVector(v)
}
