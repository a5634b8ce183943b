package batch

import (
	"github.com/gostdlib/base/concurrency/sync"
	"github.com/gostdlib/base/context"
	"github.com/gostdlib/base/values/sizes"
)

var framePools = newFramePools()

// tieredPools hands out frame buffers from a pool sized for the request.
type tieredPools struct {
	_4K, _64K, _1M *sync.Pool[*[]byte]
}

func newFramePools() *tieredPools {
	mk := func(name string, size int) *sync.Pool[*[]byte] {
		return sync.NewPool(
			context.Background(),
			name,
			func() *[]byte {
				b := make([]byte, 0, size)
				return &b
			},
			sync.WithBuffer(10),
		)
	}
	return &tieredPools{
		_4K:  mk("framePool4K", 4*sizes.KiB),
		_64K: mk("framePool64K", 64*sizes.KiB),
		_1M:  mk("framePool1M", 1*sizes.MiB),
	}
}

// Get returns an empty slice with a capacity of at least size.
func (t *tieredPools) Get(ctx context.Context, size int) []byte {
	switch {
	case size <= 4*sizes.KiB:
		return (*t._4K.Get(ctx))[:0]
	case size <= 64*sizes.KiB:
		return (*t._64K.Get(ctx))[:0]
	case size <= 1*sizes.MiB:
		return (*t._1M.Get(ctx))[:0]
	default:
		return make([]byte, 0, size)
	}
}

// Put returns b to the pool matching its capacity. Buffers larger than the biggest tier are
// left to the garbage collector.
func (t *tieredPools) Put(ctx context.Context, b []byte) {
	b = b[:0]
	switch c := cap(b); {
	case c < 4*sizes.KiB:
	case c < 64*sizes.KiB:
		t._4K.Put(ctx, &b)
	case c < 1*sizes.MiB:
		t._64K.Put(ctx, &b)
	case c < 2*sizes.MiB:
		t._1M.Put(ctx, &b)
	}
}
