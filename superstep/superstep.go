/*
   Implements a single-node, superstep-based graph processor modelled
   after the BSP https://en.wikipedia.org/wiki/Bulk_synchronous_parallel
   computing model. Vertices carry a float64 score and exchange score
   mass with their neighbors; deliveries made during one superstep become
   visible at the next one.
*/
package superstep

import (
	"golang.org/x/xerrors"
)

var (
	// ErrUnknownEdgeSource is returned when adding an edge whose source
	// vertex is not part of the graph.
	ErrUnknownEdgeSource = xerrors.New("source vertex is not part of the graph")

	// ErrUnknownDeposit is returned when score mass is deposited to a
	// vertex that is not part of the graph.
	ErrUnknownDeposit = xerrors.New("deposit destination is not part of the graph")
)

// Aggregator is implemented by concurrency-safe accumulators that
// compute global values across all vertices during a superstep.
type Aggregator interface {
	Type() string
	Set(val any)
	Get() any
	// Aggregate updates the aggregator's value based on the current value.
	Aggregate(val any)
}
