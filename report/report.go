/*
   Renders ranking results for human consumption.
*/
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/Ahmed-Sermani/corpusrank/corpus"
	"github.com/Ahmed-Sermani/corpusrank/rank"
	"golang.org/x/xerrors"
)

// SamplingHeader returns the header line for results produced by the
// Monte Carlo estimator with the given sample count.
func SamplingHeader(samples int) string {
	return fmt.Sprintf("PageRank Results from Sampling (n = %d)", samples)
}

// IterationHeader returns the header line for results produced by the
// iterative solver.
func IterationHeader() string {
	return "PageRank Results from Iteration"
}

// Write renders the header followed by one line per page, sorted by
// page identifier, with the rank formatted to four decimal places.
func Write(w io.Writer, header string, scores rank.Scores) error {
	if _, err := fmt.Fprintln(w, header); err != nil {
		return xerrors.Errorf("write report: %w", err)
	}

	pages := make([]corpus.Page, 0, len(scores))
	for page := range scores {
		pages = append(pages, page)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i] < pages[j] })

	for _, page := range pages {
		if _, err := fmt.Fprintf(w, "  %s: %.4f\n", page, scores[page]); err != nil {
			return xerrors.Errorf("write report: %w", err)
		}
	}
	return nil
}
