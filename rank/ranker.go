package rank

import (
	"context"

	"github.com/Ahmed-Sermani/corpusrank/corpus"
	"github.com/Ahmed-Sermani/corpusrank/superstep"
	"github.com/Ahmed-Sermani/corpusrank/superstep/aggregators"
	"golang.org/x/xerrors"
)

// ExecutorFactory is a function that creates a superstep executor for
// running the PageRank iterations over a loaded graph.
type ExecutorFactory func(*superstep.Graph, superstep.ExecutorHooks) *superstep.Executor

// Ranker executes the iterative version of the PageRank algorithm on a
// graph until the desired level of convergence is reached. It is the
// authoritative computation; the Sampler approximates the same fixed
// point.
type Ranker struct {
	g   *superstep.Graph
	cfg RankerConfig

	executorFactory ExecutorFactory
}

// NewRanker returns a new Ranker instance using the provided config
// options.
func NewRanker(cfg RankerConfig) (*Ranker, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("PageRank ranker config validation failed: %w", err)
	}

	g, err := superstep.NewGraph(superstep.GraphConfig{
		ComputeWorkers: cfg.ComputeWorkers,
		ComputeFn:      makeRankerComputeFunc(cfg.DampingFactor),
	})
	if err != nil {
		return nil, err
	}

	return &Ranker{
		cfg:             cfg,
		g:               g,
		executorFactory: superstep.NewExecutor,
	}, nil
}

// Close releases any resources allocated by this PageRank ranker
// instance.
func (r *Ranker) Close() error {
	return r.g.Close()
}

// SetExecutorFactory configures the ranker to use a custom executor
// factory for its runs.
func (r *Ranker) SetExecutorFactory(factory ExecutorFactory) {
	r.executorFactory = factory
}

// Rank loads graph into the superstep engine, applies the PageRank
// recurrence until every page's score is stable within Epsilon and
// returns the converged scores. The scores sum to 1 at every iteration.
// Rank fails with ErrNoConvergence if the scores are still moving after
// MaxIterations applications of the recurrence.
func (r *Ranker) Rank(ctx context.Context, graph corpus.Graph) (Scores, error) {
	if graph.Len() == 0 {
		return nil, xerrors.Errorf("iterative ranking: %w", ErrEmptyGraph)
	}

	if err := r.loadGraph(graph); err != nil {
		return nil, err
	}

	var converged bool
	hooks := superstep.ExecutorHooks{
		PreStep: func(_ context.Context, g *superstep.Graph) error {
			// Reset the max-delta aggregator and the residual
			// aggregator written during this step.
			g.Aggregator("max_delta").Set(0.0)
			g.Aggregator(residualOutputAccName(g.Superstep())).Set(0.0)
			return nil
		},
		PostStepKeepRunning: func(_ context.Context, g *superstep.Graph, _ int) (bool, error) {
			// Supersteps 0 and 1 are part of the algorithm
			// initialization; the predicate should only be evaluated
			// for supersteps > 1.
			maxDelta := g.Aggregator("max_delta").Get().(float64)
			converged = g.Superstep() > 1 && maxDelta < r.cfg.Epsilon
			return !converged, nil
		},
	}

	// The first two supersteps count the pages and seed the initial
	// scores; every superstep after that is one application of the
	// recurrence.
	ex := r.executorFactory(r.g, hooks)
	if err := ex.RunSteps(ctx, r.cfg.MaxIterations+2); err != nil {
		return nil, xerrors.Errorf("iterative ranking: %w", err)
	}
	if !converged {
		return nil, xerrors.Errorf("iterative ranking stopped after %d iterations: %w", r.cfg.MaxIterations, ErrNoConvergence)
	}

	scores := make(Scores, graph.Len())
	for id, v := range r.g.Vertices() {
		scores[corpus.Page(id)] = v.Score()
	}
	return scores, nil
}

// loadGraph resets the superstep engine and mirrors graph into it.
func (r *Ranker) loadGraph(graph corpus.Graph) error {
	if err := r.g.Reset(); err != nil {
		return err
	}

	for page := range graph {
		r.g.AddVertex(string(page), 0.0)
	}
	for page, links := range graph {
		for target := range links {
			if err := r.g.AddEdge(string(page), string(target)); err != nil {
				return err
			}
		}
	}

	r.g.RegisterAggregator("page_count", new(aggregators.IntAggregator))
	r.g.RegisterAggregator("residual_0", new(aggregators.Float64Aggregator))
	r.g.RegisterAggregator("residual_1", new(aggregators.Float64Aggregator))
	r.g.RegisterAggregator("max_delta", new(aggregators.Float64MaxAggregator))
	return nil
}

// residualOutputAccName returns the name of the aggregator where the
// residual scores of sink pages for the specified superstep are to be
// written to.
func residualOutputAccName(superstepNum int) string {
	if superstepNum%2 == 0 {
		return "residual_0"
	}
	return "residual_1"
}

// residualInputAccName returns the name of the aggregator where the
// residual scores of sink pages for the specified superstep are to be
// read from.
func residualInputAccName(superstepNum int) string {
	if (superstepNum+1)%2 == 0 {
		return "residual_0"
	}
	return "residual_1"
}
