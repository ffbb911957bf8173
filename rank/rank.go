/*
   Implements Google's famous and first
   PageRank algorithm https://en.wikipedia.org/wiki/PageRank
*/
package rank

import (
	"github.com/Ahmed-Sermani/corpusrank/corpus"
	"golang.org/x/xerrors"
)

/*
   PageRank works by counting the number and quality of links to
   a page to determine a rough estimate of how important the page is.
   The underlying assumption is that more important pages are likely
   to receive more links from other pages.

   To calculate the score for each page in the graph, the PageRank
   algorithm utilizes the model of the random surfer. Under this model,
   a surfer lands on a page from the graph. From that point on, surfers
   randomly select one of the following two options:

       They can follow any outgoing link from the current page and
       navigate to a new page. Surfers choose this option with a
       predefined probability that we will be referring to with the
       term damping factor.

       Alternatively, they can decide to run a new search. This decision
       has the effect of teleporting the surfer to a random page in the
       graph.

   PageRank score values reflect the probability that a surfer lands on
   a particular page. By this definition, we expect the following:
       Each PageRank score should be a value in the [0, 1] range
       The sum of all assigned PageRank scores should be exactly equal to 1

   This package computes the scores with two independent strategies: a
   Monte Carlo estimator (Sampler) that simulates the random surfer and
   counts page visits, and an iterative solver (Ranker) that applies the
   PageRank recurrence until it reaches the fixed point. Both consume
   the same corpus.Graph and converge toward the same distribution.
*/

var (
	// ErrEmptyGraph is returned when ranking a graph with no pages.
	ErrEmptyGraph = xerrors.New("graph contains no pages")

	// ErrUnknownPage is returned when computing a transition
	// distribution from a page that is not part of the graph.
	ErrUnknownPage = xerrors.New("page is not part of the graph")

	// ErrNoConvergence is returned by the iterative solver when the
	// scores are still moving after the configured iteration cap.
	ErrNoConvergence = xerrors.New("scores did not converge within the iteration limit")
)

// Distribution maps every page in a graph to the probability of
// visiting it next. The probabilities sum to 1.
type Distribution map[corpus.Page]float64

// Scores maps every page in a graph to its estimated PageRank value.
// The values sum to 1.
type Scores map[corpus.Page]float64
