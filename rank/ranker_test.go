package rank

import (
	"context"
	"math"

	"github.com/Ahmed-Sermani/corpusrank/corpus"
	"github.com/Ahmed-Sermani/corpusrank/superstep"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(RankerTestSuite))

type RankerTestSuite struct{}

func (s *RankerTestSuite) TestSymmetricPair(c *gc.C) {
	g := corpus.Graph{
		"a.html": corpus.LinkSet{"b.html": {}},
		"b.html": corpus.LinkSet{"a.html": {}},
	}

	scores := s.rank(c, g, RankerConfig{DampingFactor: 0.85})

	// The symmetric two-page graph is already at its fixed point.
	assertInDelta(c, scores["a.html"], 0.5, 1e-9)
	assertInDelta(c, scores["b.html"], 0.5, 1e-9)
}

func (s *RankerTestSuite) TestSinkGraphMatchesRecurrence(c *gc.C) {
	// b.html is a sink; its rank is redistributed across the whole
	// graph each iteration.
	g := corpus.Graph{
		"a.html": corpus.LinkSet{"b.html": {}, "c.html": {}},
		"b.html": corpus.LinkSet{},
		"c.html": corpus.LinkSet{"a.html": {}},
	}

	cfg := RankerConfig{DampingFactor: 0.85}
	scores := s.rank(c, g, cfg)

	// Step the recurrence by hand until it is stable within the same
	// epsilon and compare.
	expected := referenceRanks(g, 0.85, 0.001)
	for page := range g {
		assertInDelta(c, scores[page], expected[page], 0.001)
	}

	// a.html collects c.html's undivided endorsement while b.html and
	// c.html split a.html's; the latter two are tied since their
	// in-links are identical.
	c.Assert(scores["a.html"] > scores["c.html"], gc.Equals, true)
	assertInDelta(c, scores["b.html"], scores["c.html"], 1e-6)
}

func (s *RankerTestSuite) TestScoresSumToOne(c *gc.C) {
	g := corpus.Graph{
		"a.html": corpus.LinkSet{"b.html": {}, "d.html": {}},
		"b.html": corpus.LinkSet{"c.html": {}},
		"c.html": corpus.LinkSet{},
		"d.html": corpus.LinkSet{"a.html": {}, "c.html": {}},
	}

	scores := s.rank(c, g, RankerConfig{})

	var sum float64
	for _, score := range scores {
		c.Assert(score >= 0, gc.Equals, true)
		sum += score
	}
	assertInDelta(c, sum, 1.0, 1e-6)
}

func (s *RankerTestSuite) TestConvergedScoresAreStable(c *gc.C) {
	g := corpus.Graph{
		"a.html": corpus.LinkSet{"b.html": {}, "c.html": {}},
		"b.html": corpus.LinkSet{},
		"c.html": corpus.LinkSet{"a.html": {}},
	}

	cfg := RankerConfig{Epsilon: 0.001}
	scores := s.rank(c, g, cfg)

	// One more application of the recurrence must not move any page by
	// more than epsilon.
	next := stepRecurrence(g, 0.85, scores)
	for page := range g {
		c.Assert(math.Abs(next[page]-scores[page]) < 0.001, gc.Equals, true)
	}
}

func (s *RankerTestSuite) TestParallelComputeMatchesSequential(c *gc.C) {
	g := corpus.Graph{
		"a.html": corpus.LinkSet{"b.html": {}, "c.html": {}},
		"b.html": corpus.LinkSet{"c.html": {}},
		"c.html": corpus.LinkSet{},
		"d.html": corpus.LinkSet{"a.html": {}, "b.html": {}},
	}

	sequential := s.rank(c, g, RankerConfig{ComputeWorkers: 1})
	parallel := s.rank(c, g, RankerConfig{ComputeWorkers: 4})

	for page := range g {
		assertInDelta(c, parallel[page], sequential[page], 1e-9)
	}
}

func (s *RankerTestSuite) TestEmptyGraph(c *gc.C) {
	ranker, err := NewRanker(RankerConfig{})
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(ranker.Close(), gc.IsNil) }()

	_, err = ranker.Rank(context.Background(), corpus.Graph{})
	c.Assert(err, gc.NotNil)
	c.Assert(xerrors.Is(err, ErrEmptyGraph), gc.Equals, true)
}

func (s *RankerTestSuite) TestIterationCap(c *gc.C) {
	g := corpus.Graph{
		"a.html": corpus.LinkSet{"b.html": {}, "c.html": {}},
		"b.html": corpus.LinkSet{},
		"c.html": corpus.LinkSet{"a.html": {}},
	}

	ranker, err := NewRanker(RankerConfig{MaxIterations: 1})
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(ranker.Close(), gc.IsNil) }()

	_, err = ranker.Rank(context.Background(), g)
	c.Assert(err, gc.NotNil)
	c.Assert(xerrors.Is(err, ErrNoConvergence), gc.Equals, true)
}

func (s *RankerTestSuite) TestExecutorFactoryOverride(c *gc.C) {
	g := corpus.Graph{
		"a.html": corpus.LinkSet{"b.html": {}},
		"b.html": corpus.LinkSet{"a.html": {}},
	}

	ranker, err := NewRanker(RankerConfig{})
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(ranker.Close(), gc.IsNil) }()

	var invoked bool
	ranker.SetExecutorFactory(func(sg *superstep.Graph, hooks superstep.ExecutorHooks) *superstep.Executor {
		invoked = true
		return superstep.NewExecutor(sg, hooks)
	})

	_, err = ranker.Rank(context.Background(), g)
	c.Assert(err, gc.IsNil)
	c.Assert(invoked, gc.Equals, true)
}

func (s *RankerTestSuite) TestConfigValidation(c *gc.C) {
	_, err := NewRanker(RankerConfig{DampingFactor: 1.0})
	c.Assert(err, gc.NotNil)

	_, err = NewRanker(RankerConfig{Epsilon: 1.5})
	c.Assert(err, gc.NotNil)

	_, err = NewRanker(RankerConfig{MaxIterations: -1})
	c.Assert(err, gc.NotNil)
}

func (s *RankerTestSuite) rank(c *gc.C, g corpus.Graph, cfg RankerConfig) Scores {
	ranker, err := NewRanker(cfg)
	c.Assert(err, gc.IsNil)
	defer func() { c.Assert(ranker.Close(), gc.IsNil) }()

	scores, err := ranker.Rank(context.Background(), g)
	c.Assert(err, gc.IsNil)
	return scores
}

// stepRecurrence applies the PageRank recurrence once: every page
// receives the teleport share plus the damped endorsements of its
// in-neighbors, with sinks contributing rank/N to every page.
func stepRecurrence(g corpus.Graph, damping float64, ranks Scores) Scores {
	n := float64(g.Len())
	next := make(Scores, g.Len())
	for page := range g {
		var rankSum float64
		for other, links := range g {
			if len(links) == 0 {
				rankSum += ranks[other] / n
			} else if links.Contains(page) {
				rankSum += ranks[other] / float64(len(links))
			}
		}
		next[page] = (1-damping)/n + damping*rankSum
	}
	return next
}

// referenceRanks hand-steps the recurrence from the uniform starting
// point until every page is stable within epsilon.
func referenceRanks(g corpus.Graph, damping, epsilon float64) Scores {
	n := float64(g.Len())
	ranks := make(Scores, g.Len())
	for page := range g {
		ranks[page] = 1 / n
	}

	for {
		next := stepRecurrence(g, damping, ranks)
		var maxDelta float64
		for page := range g {
			if delta := math.Abs(next[page] - ranks[page]); delta > maxDelta {
				maxDelta = delta
			}
		}
		ranks = next
		if maxDelta < epsilon {
			return ranks
		}
	}
}
