package rank

import (
	"math"

	"github.com/Ahmed-Sermani/corpusrank/superstep"
)

// makeRankerComputeFunc returns a ComputeFunc that executes one
// application of the PageRank recurrence per superstep using the
// provided dampingFactor value.
func makeRankerComputeFunc(dampingFactor float64) superstep.ComputeFunc {
	return func(g *superstep.Graph, v *superstep.Vertex, incoming float64) error {
		superstepNum := g.Superstep()
		pageCountAgg := g.Aggregator("page_count")

		// At step 0, we use an aggregator to count the number of pages
		// in the graph.
		if superstepNum == 0 {
			pageCountAgg.Aggregate(1)
			return nil
		}

		var (
			pageCount = float64(pageCountAgg.Get().(int))
			newScore  float64
		)
		switch superstepNum {
		case 1:
			// At step 1 evenly distribute the scores across all pages.
			// As the sum of all scores should be equal to 1, each page
			// is assigned an initial score of 1/pageCount.
			newScore = 1.0 / pageCount
		default:
			// incoming carries the summed rank[q]/L(q) shares of every
			// page q that links here.
			newScore = (1.0-dampingFactor)/pageCount + dampingFactor*incoming

			// Add the accumulated residual rank from any sinks
			// encountered during the previous step.
			resAggr := g.Aggregator(residualInputAccName(superstepNum))
			newScore += dampingFactor * resAggr.Get().(float64)
		}

		absDelta := math.Abs(v.Score() - newScore)
		g.Aggregator("max_delta").Aggregate(absDelta)

		v.SetScore(newScore)

		// If this is a sink (no outgoing links) we treat the page as if
		// it was connected to every page in the graph. Since we cannot
		// broadcast to all vertices we add the per-page residual score
		// to an accumulator and integrate it into the scores calculated
		// over the next round.
		numOutLinks := float64(len(v.Neighbors()))
		if numOutLinks == 0.0 {
			g.Aggregator(residualOutputAccName(superstepNum)).Aggregate(newScore / pageCount)
			return nil
		}

		// Otherwise, evenly distribute this page's score to all its
		// neighbors.
		return g.BroadcastToNeighbors(v, newScore/numOutLinks)
	}
}
