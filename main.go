package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/Ahmed-Sermani/corpusrank/corpus"
	"github.com/Ahmed-Sermani/corpusrank/crawler"
	"github.com/Ahmed-Sermani/corpusrank/rank"
	"github.com/Ahmed-Sermani/corpusrank/report"
	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

var appName = "corpusrank"

func main() {
	rootLogger := logrus.New()
	logger := rootLogger.WithFields(logrus.Fields{
		"app":    appName,
		"run_id": uuid.New().String(),
	})

	if err := run(logger); err != nil {
		logger.WithField("err", err).Error("ranking run failed")
		os.Exit(1)
	}
}

type runConfig struct {
	corpusDir  string
	seed       int64
	samplerCfg rank.SamplerConfig
	rankerCfg  rank.RankerConfig
}

// fileConfig mirrors the optional YAML configuration file. File values
// apply on top of the flag defaults; flags passed explicitly on the
// command line always win.
type fileConfig struct {
	DampingFactor  *float64 `yaml:"damping_factor"`
	Samples        *int     `yaml:"samples"`
	SampleWalkers  *int     `yaml:"sample_walkers"`
	Epsilon        *float64 `yaml:"epsilon"`
	MaxIterations  *int     `yaml:"max_iterations"`
	ComputeWorkers *int     `yaml:"compute_workers"`
	Seed           *int64   `yaml:"seed"`
}

func run(logger *logrus.Entry) error {
	cfg, err := parseConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGHUP)
	defer cancel()

	wallClock := clock.WallClock
	crawlStart := wallClock.Now()
	corpusCrawler, err := crawler.NewCrawler(crawler.Config{
		Dir:    cfg.corpusDir,
		Logger: logger.WithField("component", "crawler"),
	})
	if err != nil {
		return err
	}
	graph, err := corpusCrawler.Crawl()
	if err != nil {
		return err
	}
	if err := corpus.Validate(graph); err != nil {
		return xerrors.Errorf("corpus validation failed: %w", err)
	}
	logger.WithField("took", wallClock.Now().Sub(crawlStart)).Info("corpus crawled and validated")

	sampler, err := rank.NewSampler(cfg.samplerCfg)
	if err != nil {
		return err
	}
	ranker, err := rank.NewRanker(cfg.rankerCfg)
	if err != nil {
		return err
	}
	defer func() { _ = ranker.Close() }()

	// The two algorithms consume the same read-only graph and are
	// independent of each other, so they run concurrently.
	var sampled, iterated rank.Scores
	rankStart := wallClock.Now()
	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		var rankErr error
		sampled, rankErr = sampler.Rank(gctx, graph)
		return rankErr
	})
	grp.Go(func() error {
		var rankErr error
		iterated, rankErr = ranker.Rank(gctx, graph)
		return rankErr
	})
	if err := grp.Wait(); err != nil {
		return err
	}
	logger.WithField("took", wallClock.Now().Sub(rankStart)).Info("ranking completed")

	if err := report.Write(os.Stdout, report.SamplingHeader(cfg.samplerCfg.Samples), sampled); err != nil {
		return err
	}
	return report.Write(os.Stdout, report.IterationHeader(), iterated)
}

func parseConfig() (runConfig, error) {
	var (
		cfg        runConfig
		configPath string
	)

	flag.Float64Var(&cfg.samplerCfg.DampingFactor, "damping", 0.85, "The probability of following a link instead of teleporting to a random page (must be in (0, 1))")
	flag.IntVar(&cfg.samplerCfg.Samples, "samples", 10000, "The number of random-surfer steps to simulate")
	flag.IntVar(&cfg.samplerCfg.Walkers, "sample-walkers", 1, "The number of concurrent random walks to split the sample budget across")
	flag.Float64Var(&cfg.rankerCfg.Epsilon, "epsilon", 0.001, "The per-page score change below which the iterative solver is considered converged")
	flag.IntVar(&cfg.rankerCfg.MaxIterations, "max-iterations", 200, "The maximum number of iterations before the solver reports non-convergence")
	flag.IntVar(&cfg.rankerCfg.ComputeWorkers, "compute-workers", runtime.NumCPU(), "The number of workers to use for calculating scores within one iteration (defaults to number of CPUs)")
	flag.Int64Var(&cfg.seed, "seed", 0, "The seed for the sampling estimator's random source (0 seeds from the current time)")
	flag.StringVar(&configPath, "config", "", "An optional YAML file with configuration values")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return runConfig{}, xerrors.New("usage: corpusrank [flags] CORPUS_DIR")
	}
	cfg.corpusDir = flag.Arg(0)

	if configPath != "" {
		if err := applyConfigFile(&cfg, configPath); err != nil {
			return runConfig{}, err
		}
	}

	cfg.rankerCfg.DampingFactor = cfg.samplerCfg.DampingFactor
	if cfg.seed != 0 {
		cfg.samplerCfg.Rand = rand.New(rand.NewSource(cfg.seed))
	}
	return cfg, nil
}

// applyConfigFile loads path and copies its values over the defaults of
// any flag the user did not set explicitly.
func applyConfigFile(cfg *runConfig, path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return xerrors.Errorf("read config file: %w", err)
	}

	var fileCfg fileConfig
	if err := yaml.Unmarshal(payload, &fileCfg); err != nil {
		return xerrors.Errorf("parse config file %q: %w", path, err)
	}

	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })

	apply := func(name string, fn func()) {
		if !setFlags[name] {
			fn()
		}
	}
	if fileCfg.DampingFactor != nil {
		apply("damping", func() { cfg.samplerCfg.DampingFactor = *fileCfg.DampingFactor })
	}
	if fileCfg.Samples != nil {
		apply("samples", func() { cfg.samplerCfg.Samples = *fileCfg.Samples })
	}
	if fileCfg.SampleWalkers != nil {
		apply("sample-walkers", func() { cfg.samplerCfg.Walkers = *fileCfg.SampleWalkers })
	}
	if fileCfg.Epsilon != nil {
		apply("epsilon", func() { cfg.rankerCfg.Epsilon = *fileCfg.Epsilon })
	}
	if fileCfg.MaxIterations != nil {
		apply("max-iterations", func() { cfg.rankerCfg.MaxIterations = *fileCfg.MaxIterations })
	}
	if fileCfg.ComputeWorkers != nil {
		apply("compute-workers", func() { cfg.rankerCfg.ComputeWorkers = *fileCfg.ComputeWorkers })
	}
	if fileCfg.Seed != nil {
		apply("seed", func() { cfg.seed = *fileCfg.Seed })
	}
	return nil
}
