package rank

import (
	"math/rand"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

// SamplerConfig encapsulates the required parameters for creating a new
// Sampler instance.
type SamplerConfig struct {
	// DampingFactor is the probability that the simulated surfer
	// follows one of the outgoing links on the page they are currently
	// visiting instead of teleporting to a random page in the graph.
	//
	// If not specified, a default value of 0.85 will be used instead.
	DampingFactor float64

	// Samples is the number of surfer steps to simulate. Each step
	// visits exactly one page, so the visit counts always total
	// Samples.
	//
	// If not specified, a default value of 10000 will be used instead.
	Samples int

	// Walkers is the number of independent random walks to run
	// concurrently. The sample budget is split across the walks and
	// their visit counts are summed before normalizing. If not
	// specified, a single walk is used; a single walk with an explicit
	// Rand yields fully deterministic output.
	Walkers int

	// Rand is the source of randomness for the walk. If not specified,
	// a time-seeded source will be used instead. Supplying a fixed-seed
	// source makes the estimator reproducible.
	Rand *rand.Rand
}

func (c *SamplerConfig) validate() error {
	var err error
	if c.DampingFactor < 0 || c.DampingFactor >= 1.0 {
		err = multierror.Append(err, xerrors.New("DampingFactor must be in the range (0, 1)"))
	} else if c.DampingFactor == 0 {
		c.DampingFactor = 0.85
	}

	if c.Samples < 0 {
		err = multierror.Append(err, xerrors.New("Samples must be a positive integer"))
	} else if c.Samples == 0 {
		c.Samples = 10000
	}

	if c.Walkers < 0 {
		err = multierror.Append(err, xerrors.New("Walkers must be a positive integer"))
	} else if c.Walkers == 0 {
		c.Walkers = 1
	}

	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return err
}

// RankerConfig encapsulates the required parameters for creating a new
// Ranker instance.
type RankerConfig struct {
	// DampingFactor is the probability that a random surfer will click
	// on one of the outgoing links on the page they are currently
	// visiting instead of teleporting to a random page in the graph.
	//
	// If not specified, a default value of 0.85 will be used instead.
	DampingFactor float64

	// At each iteration the solver tracks the largest absolute change
	// in any page's score. The algorithm keeps iterating until that
	// maximum drops below Epsilon, i.e. every page is simultaneously
	// stable within the tolerance.
	//
	// If not specified, a default value of 0.001 will be used instead.
	Epsilon float64

	// MaxIterations caps the number of applications of the PageRank
	// recurrence. If the scores are still moving past the cap, the run
	// fails with ErrNoConvergence instead of iterating forever.
	//
	// If not specified, a default value of 200 will be used instead.
	MaxIterations int

	// ComputeWorkers is the number of workers to use for calculating
	// the per-page scores within one iteration. If not specified, a
	// default value of 1 will be used instead.
	ComputeWorkers int
}

func (c *RankerConfig) validate() error {
	var err error
	if c.DampingFactor < 0 || c.DampingFactor >= 1.0 {
		err = multierror.Append(err, xerrors.New("DampingFactor must be in the range (0, 1)"))
	} else if c.DampingFactor == 0 {
		c.DampingFactor = 0.85
	}

	if c.Epsilon < 0 || c.Epsilon >= 1.0 {
		err = multierror.Append(err, xerrors.New("Epsilon must be in the range (0, 1)"))
	} else if c.Epsilon == 0 {
		c.Epsilon = 0.001
	}

	if c.MaxIterations < 0 {
		err = multierror.Append(err, xerrors.New("MaxIterations must be a positive integer"))
	} else if c.MaxIterations == 0 {
		c.MaxIterations = 200
	}

	if c.ComputeWorkers <= 0 {
		c.ComputeWorkers = 1
	}

	return err
}
