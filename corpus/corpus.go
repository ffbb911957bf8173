/*
   Models a static corpus of pages as a directed link graph. The graph is
   built once by the crawler and treated as read-only by the ranking
   algorithms.
*/
package corpus

import "sort"

// Page identifies a single page in the corpus. In practice this is the
// file name the crawler discovered the page under.
type Page string

// LinkSet holds the outbound link targets of a page with set semantics.
type LinkSet map[Page]struct{}

// Contains reports whether target is a member of the set.
func (ls LinkSet) Contains(target Page) bool {
	_, ok := ls[target]
	return ok
}

// Graph maps every page in the corpus to the set of in-corpus pages it
// links to. A page with an empty link set is a sink.
type Graph map[Page]LinkSet

// Len returns the number of pages in the corpus.
func (g Graph) Len() int { return len(g) }

// Pages returns the page identifiers sorted in ascending order. The
// stable ordering keeps sampling draws and report output deterministic.
func (g Graph) Pages() []Page {
	pages := make([]Page, 0, len(g))
	for page := range g {
		pages = append(pages, page)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i] < pages[j] })
	return pages
}

// Links returns the outbound link set for page.
func (g Graph) Links(page Page) LinkSet { return g[page] }

// AddPage inserts page with an empty link set unless it is already
// present.
func (g Graph) AddPage(page Page) {
	if _, exists := g[page]; !exists {
		g[page] = make(LinkSet)
	}
}

// AddLink records a directed link from src to dst. Self-links are
// silently dropped so that the no-self-loop invariant holds by
// construction.
func (g Graph) AddLink(src, dst Page) {
	if src == dst {
		return
	}
	g.AddPage(src)
	g[src][dst] = struct{}{}
}
