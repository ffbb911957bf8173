package rank

import (
	"context"
	"math/rand"
	"sync"

	"github.com/Ahmed-Sermani/corpusrank/corpus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// Sampler estimates PageRank scores by simulating a random surfer and
// counting how often each page gets visited. Each page's estimate is
// its visit count divided by the total number of samples, so the
// estimates always sum to 1 and converge to the surfer's stationary
// distribution as the sample count grows.
type Sampler struct {
	cfg SamplerConfig
}

// NewSampler returns a new Sampler instance using the provided config
// options.
func NewSampler(cfg SamplerConfig) (*Sampler, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("PageRank sampler config validation failed: %w", err)
	}
	return &Sampler{cfg: cfg}, nil
}

// Rank runs the random walk over graph and returns the estimated score
// for every page. Calls to Rank block until the walk completes, an
// error occurs or the context is cancelled.
func (s *Sampler) Rank(ctx context.Context, graph corpus.Graph) (Scores, error) {
	if graph.Len() == 0 {
		return nil, xerrors.Errorf("sample ranking: %w", ErrEmptyGraph)
	}

	pages := graph.Pages()
	counts := make(map[corpus.Page]int, len(pages))

	var err error
	if s.cfg.Walkers == 1 {
		err = s.walk(ctx, graph, pages, s.cfg.Rand, s.cfg.Samples, counts)
	} else {
		err = s.walkConcurrently(ctx, graph, pages, counts)
	}
	if err != nil {
		return nil, err
	}

	scores := make(Scores, len(pages))
	for _, page := range pages {
		scores[page] = float64(counts[page]) / float64(s.cfg.Samples)
	}
	return scores, nil
}

// walk simulates a single surfer for the given number of steps and
// accumulates per-page visit counts into counts.
func (s *Sampler) walk(ctx context.Context, graph corpus.Graph, pages []corpus.Page, rng *rand.Rand, steps int, counts map[corpus.Page]int) error {
	current := pages[rng.Intn(len(pages))]
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		counts[current]++
		model, err := Transition(graph, current, s.cfg.DampingFactor)
		if err != nil {
			return err
		}
		current = draw(pages, model, rng)
	}
	return nil
}

// walkConcurrently splits the sample budget across cfg.Walkers
// independent walks and merges their visit counts. Each walk gets its
// own random source derived from the configured one, so the walks never
// contend on a shared generator.
func (s *Sampler) walkConcurrently(ctx context.Context, graph corpus.Graph, pages []corpus.Page, counts map[corpus.Page]int) error {
	var mu sync.Mutex
	grp, gctx := errgroup.WithContext(ctx)

	perWalker := s.cfg.Samples / s.cfg.Walkers
	remainder := s.cfg.Samples % s.cfg.Walkers

	for i := 0; i < s.cfg.Walkers; i++ {
		budget := perWalker
		if i < remainder {
			budget++
		}
		if budget == 0 {
			continue
		}

		rng := rand.New(rand.NewSource(s.cfg.Rand.Int63()))
		grp.Go(func() error {
			local := make(map[corpus.Page]int, len(pages))
			if err := s.walk(gctx, graph, pages, rng, budget, local); err != nil {
				return err
			}

			mu.Lock()
			for page, visits := range local {
				counts[page] += visits
			}
			mu.Unlock()
			return nil
		})
	}

	return grp.Wait()
}

// draw performs a weighted random selection over the transition model.
// Pages are scanned in their sorted order so that a fixed random source
// fully determines the walk.
func draw(pages []corpus.Page, model Distribution, rng *rand.Rand) corpus.Page {
	target := rng.Float64()
	var cumulative float64
	for _, page := range pages {
		cumulative += model[page]
		if target < cumulative {
			return page
		}
	}

	// Float round-off can leave the cumulative sum marginally below 1.
	return pages[len(pages)-1]
}
