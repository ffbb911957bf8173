package superstep

import "context"

// Executor wraps a Graph instance and provides an orchestration layer
// for executing supersteps until an error occurs or an exit condition is
// met. Users can provide an optional set of hooks to be executed before
// and after each superstep.
type Executor struct {
	g  *Graph
	cb ExecutorHooks
}

// NewExecutor returns an Executor instance for graph g that invokes the
// provided hooks inside each execution loop.
func NewExecutor(g *Graph, cb ExecutorHooks) *Executor {
	if cb.PreStep == nil {
		cb.PreStep = func(context.Context, *Graph) error { return nil }
	}
	if cb.PostStep == nil {
		cb.PostStep = func(context.Context, *Graph, int) error { return nil }
	}
	if cb.PostStepKeepRunning == nil {
		cb.PostStepKeepRunning = func(context.Context, *Graph, int) (bool, error) { return true, nil }
	}
	g.superstep = 0
	return &Executor{
		g:  g,
		cb: cb,
	}
}

// ExecutorHooks encapsulates a series of hooks that are invoked by an
// Executor instance on a graph. All hooks are optional and will be
// ignored if not specified.
type ExecutorHooks struct {
	// PreStep, if defined, is invoked before running the next superstep.
	// This is a good place to initialize aggregator values for the step.
	PreStep func(ctx context.Context, g *Graph) error

	// PostStep, if defined, is invoked after running a superstep.
	PostStep func(ctx context.Context, g *Graph, activeInStep int) error

	// PostStepKeepRunning, if defined, is invoked after running a
	// superstep to decide whether the stop condition for terminating the
	// run has been met. The number of active vertices in the last step
	// is passed as the second argument.
	PostStepKeepRunning func(ctx context.Context, g *Graph, activeInStep int) (bool, error)
}

// RunToCompletion keeps executing supersteps until the context expires,
// an error occurs or the PostStepKeepRunning hook returns false.
func (ex *Executor) RunToCompletion(ctx context.Context) error {
	return ex.run(ctx, -1)
}

// RunSteps executes at most numSteps supersteps unless the context
// expires, an error occurs or the PostStepKeepRunning hook returns
// false.
func (ex *Executor) RunSteps(ctx context.Context, numSteps int) error {
	return ex.run(ctx, numSteps)
}

// Graph returns the graph instance associated with this executor.
func (ex *Executor) Graph() *Graph {
	return ex.g
}

// Superstep returns the current graph superstep.
func (ex *Executor) Superstep() int {
	return ex.g.Superstep()
}

func (ex *Executor) run(ctx context.Context, maxSteps int) error {
	var (
		activeInStep int
		err          error
		keepRunning  bool
		cb           = ex.cb
	)

	for ; maxSteps != 0; ex.g.superstep, maxSteps = ex.g.superstep+1, maxSteps-1 {
		// check for context cancellation before the start of each step
		if err = ctx.Err(); err != nil {
			break
		}

		if err = cb.PreStep(ctx, ex.g); err != nil {
			break
		} else if activeInStep, err = ex.g.step(); err != nil {
			break
		} else if err = cb.PostStep(ctx, ex.g, activeInStep); err != nil {
			break
		} else if keepRunning, err = cb.PostStepKeepRunning(ctx, ex.g, activeInStep); !keepRunning || err != nil {
			break
		}
	}
	return err
}
