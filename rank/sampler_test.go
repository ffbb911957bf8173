package rank

import (
	"context"
	"math/rand"

	"github.com/Ahmed-Sermani/corpusrank/corpus"
	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(SamplerTestSuite))

type SamplerTestSuite struct{}

func (s *SamplerTestSuite) testGraph() corpus.Graph {
	return corpus.Graph{
		"a.html": corpus.LinkSet{"b.html": {}, "c.html": {}},
		"b.html": corpus.LinkSet{},
		"c.html": corpus.LinkSet{"a.html": {}},
	}
}

func (s *SamplerTestSuite) TestEstimatesSumToOne(c *gc.C) {
	sampler, err := NewSampler(SamplerConfig{
		Samples: 1000,
		Rand:    rand.New(rand.NewSource(42)),
	})
	c.Assert(err, gc.IsNil)

	scores, err := sampler.Rank(context.Background(), s.testGraph())
	c.Assert(err, gc.IsNil)
	c.Assert(scores, gc.HasLen, 3)

	var sum float64
	for _, score := range scores {
		c.Assert(score >= 0, gc.Equals, true)
		sum += score
	}
	assertInDelta(c, sum, 1.0, 1e-9)
}

func (s *SamplerTestSuite) TestSingleSampleIsDeterministic(c *gc.C) {
	const seed = 42

	graph := s.testGraph()
	sampler, err := NewSampler(SamplerConfig{
		Samples: 1,
		Rand:    rand.New(rand.NewSource(seed)),
	})
	c.Assert(err, gc.IsNil)

	scores, err := sampler.Rank(context.Background(), graph)
	c.Assert(err, gc.IsNil)

	// With a single sample the estimator visits exactly the starting
	// page, which is fully determined by the first draw of the seeded
	// source.
	pages := graph.Pages()
	expected := pages[rand.New(rand.NewSource(seed)).Intn(len(pages))]
	for _, page := range pages {
		if page == expected {
			c.Assert(scores[page], gc.Equals, 1.0)
		} else {
			c.Assert(scores[page], gc.Equals, 0.0)
		}
	}
}

func (s *SamplerTestSuite) TestConvergesTowardStationaryDistribution(c *gc.C) {
	g := corpus.Graph{
		"a.html": corpus.LinkSet{"b.html": {}},
		"b.html": corpus.LinkSet{"a.html": {}},
	}

	sampler, err := NewSampler(SamplerConfig{
		Samples: 50000,
		Rand:    rand.New(rand.NewSource(1)),
	})
	c.Assert(err, gc.IsNil)

	scores, err := sampler.Rank(context.Background(), g)
	c.Assert(err, gc.IsNil)

	// The symmetric two-page graph has a 0.5/0.5 fixed point.
	assertInDelta(c, scores["a.html"], 0.5, 0.05)
	assertInDelta(c, scores["b.html"], 0.5, 0.05)
}

func (s *SamplerTestSuite) TestConcurrentWalkersPartitionTheBudget(c *gc.C) {
	sampler, err := NewSampler(SamplerConfig{
		Samples: 10001,
		Walkers: 4,
		Rand:    rand.New(rand.NewSource(42)),
	})
	c.Assert(err, gc.IsNil)

	scores, err := sampler.Rank(context.Background(), s.testGraph())
	c.Assert(err, gc.IsNil)

	// The merged visit counts must account for every sample in the
	// budget, so the normalized scores still total 1.
	var sum float64
	for _, score := range scores {
		sum += score
	}
	assertInDelta(c, sum, 1.0, 1e-9)
}

func (s *SamplerTestSuite) TestEmptyGraph(c *gc.C) {
	sampler, err := NewSampler(SamplerConfig{})
	c.Assert(err, gc.IsNil)

	_, err = sampler.Rank(context.Background(), corpus.Graph{})
	c.Assert(err, gc.NotNil)
	c.Assert(xerrors.Is(err, ErrEmptyGraph), gc.Equals, true)
}

func (s *SamplerTestSuite) TestConfigValidation(c *gc.C) {
	_, err := NewSampler(SamplerConfig{DampingFactor: 1.0})
	c.Assert(err, gc.NotNil)

	_, err = NewSampler(SamplerConfig{DampingFactor: -0.1})
	c.Assert(err, gc.NotNil)

	_, err = NewSampler(SamplerConfig{Samples: -1})
	c.Assert(err, gc.NotNil)

	_, err = NewSampler(SamplerConfig{Walkers: -1})
	c.Assert(err, gc.NotNil)
}

func (s *SamplerTestSuite) TestConfigDefaults(c *gc.C) {
	cfg := SamplerConfig{}
	c.Assert(cfg.validate(), gc.IsNil)
	c.Assert(cfg.DampingFactor, gc.Equals, 0.85)
	c.Assert(cfg.Samples, gc.Equals, 10000)
	c.Assert(cfg.Walkers, gc.Equals, 1)
	c.Assert(cfg.Rand, gc.NotNil)
}
