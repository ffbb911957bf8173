package rank

import (
	"github.com/Ahmed-Sermani/corpusrank/corpus"
	"golang.org/x/xerrors"
)

// Transition returns the probability distribution over which page a
// random surfer on page visits next. With probability damping the
// surfer follows one of the outgoing links of page; with probability
// 1-damping they teleport to a page chosen uniformly from the whole
// graph. A sink page is treated as if it linked to every page in the
// graph, itself included.
//
// The damping factor must lie in (0, 1); callers are expected to have
// validated it through a SamplerConfig or RankerConfig beforehand.
func Transition(graph corpus.Graph, page corpus.Page, damping float64) (Distribution, error) {
	links, ok := graph[page]
	if !ok {
		return nil, xerrors.Errorf("transition from %q: %w", page, ErrUnknownPage)
	}

	n := float64(graph.Len())
	model := make(Distribution, graph.Len())

	// A sink links to everything: uniform over the whole graph.
	if len(links) == 0 {
		for p := range graph {
			model[p] = 1 / n
		}
		return model, nil
	}

	// Probability of following one of the outgoing links.
	probLinked := damping / float64(len(links))

	// Probability of teleporting to any page in the graph.
	probRandom := (1 - damping) / n

	// The assignment is exclusive: a linked page never receives the
	// teleport share on top of the link share. This keeps the sum at 1
	// and relies on the no-self-loop invariant enforced upstream.
	for p := range graph {
		if links.Contains(p) {
			model[p] = probLinked
		} else {
			model[p] = probRandom
		}
	}
	return model, nil
}
