/*
   Builds a corpus.Graph out of a directory of static HTML pages.
*/
package crawler

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Ahmed-Sermani/corpusrank/corpus"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/xerrors"
)

type Config struct {
	// Dir is the directory holding the corpus pages. Only .html files
	// at the top level are considered; everything else is ignored.
	Dir string

	// Logger for the crawler. If not specified, a null logger will be
	// used instead.
	Logger *logrus.Entry
}

func (c *Config) validate() error {
	var err error
	if c.Dir == "" {
		err = multierror.Append(err, xerrors.New("corpus directory must be specified"))
	}
	if c.Logger == nil {
		nullLogger := logrus.New()
		nullLogger.SetOutput(io.Discard)
		c.Logger = logrus.NewEntry(nullLogger)
	}
	return err
}

// Crawler scans a directory of HTML documents and assembles the link
// graph that the ranking algorithms consume. Links pointing outside the
// corpus and links from a page to itself never enter the graph.
type Crawler struct {
	cfg Config
}

// NewCrawler returns a new Crawler instance using the provided config
// options.
func NewCrawler(cfg Config) (*Crawler, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("crawler config validation failed: %w", err)
	}
	return &Crawler{cfg: cfg}, nil
}

// Crawl parses every HTML file in the configured directory, extracts
// the anchor targets of each page and returns the resulting graph
// restricted to in-corpus targets.
func (c *Crawler) Crawl() (corpus.Graph, error) {
	entries, err := os.ReadDir(c.cfg.Dir)
	if err != nil {
		return nil, xerrors.Errorf("crawl corpus: %w", err)
	}

	graph := make(corpus.Graph)
	targets := make(map[corpus.Page][]corpus.Page)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}

		page := corpus.Page(entry.Name())
		hrefs, err := c.extractLinks(filepath.Join(c.cfg.Dir, entry.Name()))
		if err != nil {
			return nil, err
		}

		graph.AddPage(page)
		targets[page] = hrefs
	}

	// Only include links to other pages in the corpus. AddLink drops
	// self-references and duplicates.
	var linkCount int
	for page, hrefs := range targets {
		for _, target := range hrefs {
			if _, inCorpus := graph[target]; inCorpus && target != page {
				graph.AddLink(page, target)
				linkCount++
			}
		}
	}

	c.cfg.Logger.WithFields(logrus.Fields{
		"dir":   c.cfg.Dir,
		"pages": graph.Len(),
		"links": linkCount,
	}).Info("crawled corpus")
	return graph, nil
}

// extractLinks parses path and returns the href target of every anchor
// element. The parser is tolerant, so malformed markup yields a partial
// link list rather than an error.
func (c *Crawler) extractLinks(path string) ([]corpus.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("crawl corpus: %w", err)
	}
	defer f.Close()

	root, err := html.Parse(f)
	if err != nil {
		return nil, xerrors.Errorf("crawl corpus: parse %q: %w", path, err)
	}

	var links []corpus.Page
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					links = append(links, corpus.Page(attr.Val))
					break
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			visit(child)
		}
	}
	visit(root)
	return links, nil
}
