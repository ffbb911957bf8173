package corpus

import (
	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

var (
	// ErrMalformedPage indicates a page with an empty identifier.
	ErrMalformedPage = xerrors.New("page identifier must not be empty")

	// ErrNilLinkSet indicates a page whose link set was never allocated.
	ErrNilLinkSet = xerrors.New("page has a nil link set")

	// ErrDanglingLink indicates a link target that is not itself a page
	// in the corpus.
	ErrDanglingLink = xerrors.New("link target is not a page in the corpus")

	// ErrSelfLink indicates a page that links to itself.
	ErrSelfLink = xerrors.New("page links to itself")
)

// Validate checks the structural invariants the ranking algorithms rely
// on: non-empty page identifiers, allocated link sets, a closed link
// universe and no self-links. It reports every violation it finds and
// never mutates the graph; callers must not rank a graph that failed
// validation.
func Validate(g Graph) error {
	var err error
	for page, links := range g {
		if page == "" {
			err = multierror.Append(err, ErrMalformedPage)
		}
		if links == nil {
			err = multierror.Append(err, xerrors.Errorf("page %q: %w", page, ErrNilLinkSet))
			continue
		}
		for target := range links {
			if target == page {
				err = multierror.Append(err, xerrors.Errorf("page %q: %w", page, ErrSelfLink))
			}
			if _, inCorpus := g[target]; !inCorpus {
				err = multierror.Append(err, xerrors.Errorf("page %q links to %q: %w", page, target, ErrDanglingLink))
			}
		}
	}
	return err
}
