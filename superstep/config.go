package superstep

import (
	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

// GraphConfig encapsulates the configuration options for creating a
// superstep graph.
type GraphConfig struct {
	// ComputeFn is invoked on each vertex when executing a superstep.
	ComputeFn ComputeFunc

	// ComputeWorkers is the number of workers to use for invoking the
	// compute function. If not specified, a default value of 1 will be
	// used instead.
	ComputeWorkers int
}

func (c *GraphConfig) validate() error {
	var err error
	if c.ComputeFn == nil {
		err = multierror.Append(err, xerrors.New("compute function must be specified"))
	}
	if c.ComputeWorkers <= 0 {
		c.ComputeWorkers = 1
	}
	return err
}
