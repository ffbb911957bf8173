package aggregators

import (
	"math"
	"sync/atomic"
	"unsafe"

	"github.com/Ahmed-Sermani/corpusrank/superstep"
)

var _ superstep.Aggregator = (*Float64Aggregator)(nil)

// Float64Aggregator implements a concurrent-safe accumulator for float64
// values.
type Float64Aggregator struct {
	curSum float64
}

func (a *Float64Aggregator) Type() string {
	return "Float64Aggregator"
}

func (a *Float64Aggregator) Get() any {
	return loadFloat64(&a.curSum)
}

func (a *Float64Aggregator) Set(v any) {
	atomic.StoreUint64(
		(*uint64)(unsafe.Pointer(&a.curSum)),
		math.Float64bits(v.(float64)),
	)
}

func (a *Float64Aggregator) Aggregate(v any) {
	for v64 := v.(float64); ; {
		oldCur := loadFloat64(&a.curSum)
		newCur := oldCur + v64
		if atomic.CompareAndSwapUint64(
			(*uint64)(unsafe.Pointer(&a.curSum)),
			math.Float64bits(oldCur),
			math.Float64bits(newCur),
		) {
			return
		}
	}
}

// atomic load for float64
// it works by casting float64 to uint64 then loading the latter.
func loadFloat64(fp *float64) float64 {
	return math.Float64frombits(
		atomic.LoadUint64((*uint64)(unsafe.Pointer(fp))),
	)
}
