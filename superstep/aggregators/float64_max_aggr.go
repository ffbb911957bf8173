package aggregators

import (
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/Ahmed-Sermani/corpusrank/superstep"
)

var _ superstep.Aggregator = (*Float64MaxAggregator)(nil)

// Float64MaxAggregator implements a concurrent-safe tracker for the
// maximum of the aggregated float64 values.
type Float64MaxAggregator struct {
	curMax float64
}

func (a *Float64MaxAggregator) Type() string {
	return "Float64MaxAggregator"
}

func (a *Float64MaxAggregator) Get() any {
	return loadFloat64(&a.curMax)
}

func (a *Float64MaxAggregator) Set(v any) {
	atomic.StoreUint64(
		(*uint64)(unsafe.Pointer(&a.curMax)),
		math.Float64bits(v.(float64)),
	)
}

func (a *Float64MaxAggregator) Aggregate(v any) {
	for v64 := v.(float64); ; {
		oldMax := loadFloat64(&a.curMax)
		if v64 <= oldMax {
			return
		}
		if atomic.CompareAndSwapUint64(
			(*uint64)(unsafe.Pointer(&a.curMax)),
			math.Float64bits(oldMax),
			math.Float64bits(v64),
		) {
			return
		}
	}
}
