package superstep

import (
	"math"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/xerrors"
)

// ComputeFunc is a function that a graph instance invokes on each vertex
// when executing a superstep. incoming is the total score mass that was
// deposited for the vertex during the previous superstep.
type ComputeFunc func(g *Graph, v *Vertex, incoming float64) error

// inbox accumulates the score mass deposited for a vertex. Deposits are
// lock-free so that compute workers can deliver to the same vertex
// concurrently.
type inbox struct {
	sum      float64
	deposits int64
}

func (in *inbox) add(score float64) {
	atomic.AddInt64(&in.deposits, 1)
	for {
		old := loadFloat64(&in.sum)
		if atomic.CompareAndSwapUint64(
			(*uint64)(unsafe.Pointer(&in.sum)),
			math.Float64bits(old),
			math.Float64bits(old+score),
		) {
			return
		}
	}
}

func (in *inbox) pending() bool {
	return atomic.LoadInt64(&in.deposits) != 0
}

// drain returns the accumulated score mass and resets the inbox. It is
// only invoked by the single worker processing the owning vertex.
func (in *inbox) drain() float64 {
	sum := loadFloat64(&in.sum)
	atomic.StoreInt64(&in.deposits, 0)
	atomic.StoreUint64((*uint64)(unsafe.Pointer(&in.sum)), math.Float64bits(0))
	return sum
}

// Vertex holds the score for a single graph node together with its
// outgoing edges.
type Vertex struct {
	id     string
	score  float64
	active bool

	// Two inboxes are needed: the inbox at index superstep%2 holds the
	// deposits for the current superstep while the inbox at
	// (superstep+1)%2 buffers the deposits for the next one.
	in  [2]inbox
	out []string
}

func (v *Vertex) ID() string { return v.id }

func (v *Vertex) Score() float64 { return v.score }

func (v *Vertex) SetScore(score float64) { v.score = score }

// Neighbors returns the IDs of the vertices v has outgoing edges to.
func (v *Vertex) Neighbors() []string { return v.out }

// Freeze marks the vertex as inactive. Inactive vertices will not be
// processed in the following supersteps unless they receive a deposit in
// which case they will be re-activated.
func (v *Vertex) Freeze() { v.active = false }

// Graph implements a parallel superstep processor based on the concepts
// described in the Pregel paper
// https://15799.courses.cs.cmu.edu/fall2013/static/papers/p135-malewicz.pdf .
type Graph struct {
	superstep   int
	vertices    map[string]*Vertex
	aggregators map[string]Aggregator
	computeFunc ComputeFunc

	// wg used for compute workers
	wg sync.WaitGroup

	// vertexCh is polled by compute workers to obtain the next vertex to
	// be processed.
	vertexCh chan *Vertex

	// errCh is a buffered channel where workers publish any errors that
	// occur while invoking the compute function. If the channel is full,
	// another error has already been written to it and the new error is
	// safely ignored.
	errCh chan error

	// stepCompletedCh allows compute workers to signal when the last
	// enqueued vertex has been processed.
	stepCompletedCh chan struct{}

	// activeInStep is the number of vertices that were processed in the
	// current superstep; reset at the start of each superstep.
	activeInStep int64

	// pendingInStep counts the vertices still to be processed in the
	// current superstep; set to len(vertices) at its start.
	pendingInStep int64
}

// NewGraph creates a new Graph instance using the specified
// configuration. It is important for callers to invoke Close() on the
// returned graph instance when they are done using it.
func NewGraph(cfg GraphConfig) (*Graph, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("superstep graph config validation failed: %w", err)
	}

	g := &Graph{
		computeFunc: cfg.ComputeFn,
		vertices:    make(map[string]*Vertex),
		aggregators: make(map[string]Aggregator),
	}
	g.startWorkers(cfg.ComputeWorkers)

	return g, nil
}

// Close releases any resources associated with the graph.
func (g *Graph) Close() error {
	close(g.vertexCh)
	g.wg.Wait()

	return g.Reset()
}

// Reset the state of the graph by removing any existing vertices or
// aggregators and resetting the superstep counter.
func (g *Graph) Reset() error {
	g.superstep = 0
	g.vertices = make(map[string]*Vertex)
	g.aggregators = make(map[string]Aggregator)
	return nil
}

// AddVertex inserts a new vertex with the specified id and initial score
// into the graph. If the vertex already exists, AddVertex will just
// overwrite its score with the provided initScore.
func (g *Graph) AddVertex(id string, initScore float64) {
	v := g.vertices[id]
	if v == nil {
		v = &Vertex{
			id:     id,
			active: true,
		}
		g.vertices[id] = v
	}
	v.SetScore(initScore)
}

// AddEdge inserts a directed edge from src to dst. Edges are owned by
// their source and therefore src must resolve to a known vertex,
// otherwise AddEdge returns an error.
func (g *Graph) AddEdge(src, dst string) error {
	srcVertex := g.vertices[src]
	if srcVertex == nil {
		return xerrors.Errorf("create edge from %q to %q: %w", src, dst, ErrUnknownEdgeSource)
	}

	srcVertex.out = append(srcVertex.out, dst)
	return nil
}

func (g *Graph) RegisterAggregator(name string, aggregator Aggregator) {
	g.aggregators[name] = aggregator
}

func (g *Graph) Aggregator(name string) Aggregator {
	return g.aggregators[name]
}

func (g *Graph) Aggregators() map[string]Aggregator { return g.aggregators }

func (g *Graph) Superstep() int { return g.superstep }

func (g *Graph) Vertices() map[string]*Vertex { return g.vertices }

// Deposit delivers score mass to the vertex with the specified
// destination ID. Deposits are buffered and become visible to the
// recipient in the next superstep.
func (g *Graph) Deposit(dst string, score float64) error {
	dstVertex := g.vertices[dst]
	if dstVertex == nil {
		return xerrors.Errorf("can't deposit score to %q: %w", dst, ErrUnknownDeposit)
	}

	dstVertex.in[(g.superstep+1)%2].add(score)
	return nil
}

// BroadcastToNeighbors delivers the provided score mass to every vertex
// that v has an outgoing edge to. Neighbors observe the deposit in the
// next superstep.
func (g *Graph) BroadcastToNeighbors(v *Vertex, score float64) error {
	for _, dst := range v.out {
		if err := g.Deposit(dst, score); err != nil {
			return err
		}
	}
	return nil
}

// startWorkers allocates the required channels and spins up numWorkers
// to execute each superstep.
func (g *Graph) startWorkers(numWorkers int) {
	g.vertexCh = make(chan *Vertex)
	g.errCh = make(chan error, 1)
	g.stepCompletedCh = make(chan struct{})

	g.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go g.stepWorker()
	}
}

// stepWorker consumes vertexCh for incoming vertices and executes the
// configured ComputeFunc for each one. The worker exits when vertexCh
// gets closed.
func (g *Graph) stepWorker() {
	defer g.wg.Done()
	for v := range g.vertexCh {
		stepInbox := &v.in[g.superstep%2]
		if v.active || stepInbox.pending() {
			_ = atomic.AddInt64(&g.activeInStep, 1)
			v.active = true

			incoming := stepInbox.drain()
			if err := g.computeFunc(g, v, incoming); err != nil {
				emitError(g.errCh, xerrors.Errorf("error while running compute function for vertex %q: %w", v.ID(), err))
			}
		}
		if atomic.AddInt64(&g.pendingInStep, -1) == 0 {
			g.stepCompletedCh <- struct{}{}
		}
	}
}

// step executes the next superstep and returns back the number of
// vertices that were processed either because they were still active or
// because they received a deposit.
func (g *Graph) step() (int, error) {
	g.activeInStep = 0
	g.pendingInStep = int64(len(g.vertices))

	// no work to do
	if g.pendingInStep == 0 {
		return 0, nil
	}

	for _, v := range g.vertices {
		g.vertexCh <- v
	}

	// block until the worker pool has finished processing all vertices
	<-g.stepCompletedCh

	var err error
	select {
	case err = <-g.errCh:
	default: // no error
	}

	return int(g.activeInStep), err
}

func emitError(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default: // the channel already contains an error
	}
}

// loadFloat64 atomically loads a float64 by casting it to uint64 and
// loading the latter.
func loadFloat64(fp *float64) float64 {
	return math.Float64frombits(
		atomic.LoadUint64((*uint64)(unsafe.Pointer(fp))),
	)
}
