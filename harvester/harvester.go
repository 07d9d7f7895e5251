// Package harvester drives the fetch, parse and merge loop over the
// dictionary's result pages until the last page is reached.
package harvester

import (
	"context"
	"errors"
	"fmt"
	"io"

	"crossword-scraper/fetcher"
	"crossword-scraper/models"
	"crossword-scraper/parser"

	"github.com/rs/zerolog"
)

// ErrInitialRequest wraps any failure of the first request.
var ErrInitialRequest = errors.New("initial request failed")

// Stats summarizes one run
type Stats struct {
	Pages   int
	Words   int
	Skipped int
	Posts   int
}

// Harvester fetches every page of the listing and accumulates its entries
type Harvester struct {
	fetcher  fetcher.Fetcher
	parser   *parser.Parser
	token    string
	maxPages int
	progress io.Writer
	log      zerolog.Logger
}

// Option configures a Harvester
type Option func(*Harvester)

// WithMaxPages stops after n pages. Zero means no limit.
func WithMaxPages(n int) Option {
	return func(h *Harvester) { h.maxPages = n }
}

// WithProgress sets where the per-page progress lines go
func WithProgress(w io.Writer) Option {
	return func(h *Harvester) { h.progress = w }
}

// WithLogger sets the logger
func WithLogger(log zerolog.Logger) Option {
	return func(h *Harvester) { h.log = log }
}

// New creates a Harvester. token is posted back to advance to the next page;
// the site uses the label of its forward button.
func New(f fetcher.Fetcher, p *parser.Parser, token string, opts ...Option) *Harvester {
	h := &Harvester{
		fetcher:  f,
		parser:   p,
		token:    token,
		progress: io.Discard,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run harvests all pages and returns the accumulated dictionary. Nothing is
// returned on failure: a run either completes or loses everything.
func (h *Harvester) Run(ctx context.Context) (models.Dictionary, Stats, error) {
	var stats Stats
	dict := models.NewDictionary()

	body, err := h.fetcher.FetchInitial()
	if err != nil {
		return nil, stats, fmt.Errorf("%w: %w", ErrInitialRequest, err)
	}

	for {
		page, err := h.parser.Page(stats.Pages+1, body)
		if err != nil {
			return nil, stats, err
		}

		dict.Merge(page.Entries)
		stats.Pages++
		stats.Skipped += page.Skipped
		fmt.Fprintf(h.progress, "Downloaded pages: %d\n", stats.Pages)
		h.log.Debug().
			Int("page", page.Number).
			Int("entries", len(page.Entries)).
			Int("skipped", page.Skipped).
			Int("total", len(dict)).
			Bool("has_next", page.HasNext).
			Msg("Page harvested")

		if !page.HasNext {
			break
		}
		if h.maxPages > 0 && stats.Pages >= h.maxPages {
			h.log.Info().Int("max_pages", h.maxPages).Msg("Page limit reached, stopping early")
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		body, err = h.fetcher.FetchNext(h.token)
		stats.Posts++
		if err != nil {
			return nil, stats, fmt.Errorf("page %d: %w", stats.Pages+1, err)
		}
	}

	stats.Words = len(dict)
	return dict, stats, nil
}
