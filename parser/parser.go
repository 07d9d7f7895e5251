package parser

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"crossword-scraper/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrNoTable means the page has no table body to read rows from.
	ErrNoTable = errors.New("no table body in page")
	// ErrMalformedRow means a data row lacks the word cell or the definitions block.
	ErrMalformedRow = errors.New("malformed row")
)

// RowError reports which data row could not be read
type RowError struct {
	Row    int // 0-based index within the table body
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s %d: %s", ErrMalformedRow, e.Row, e.Reason)
}

func (e *RowError) Unwrap() error {
	return ErrMalformedRow
}

var nonAlpha = regexp.MustCompile(`[^A-Za-z]`)

// Parser extracts word entries from the dictionary's result pages
type Parser struct {
	marker      string
	strict      bool
	foldAccents bool
	log         zerolog.Logger
}

// Option configures a Parser
type Option func(*Parser)

// WithStrict makes a malformed row fail the page instead of being skipped.
func WithStrict(strict bool) Option {
	return func(p *Parser) { p.strict = strict }
}

// WithFoldAccents folds accented letters to their base letter before the
// non-letters are stripped, so "PERCHÈ" becomes "PERCHE" instead of "PERCH".
func WithFoldAccents(fold bool) Option {
	return func(p *Parser) { p.foldAccents = fold }
}

// WithLogger sets the logger used for skipped-row warnings
func WithLogger(log zerolog.Logger) Option {
	return func(p *Parser) { p.log = log }
}

// NewParser creates a new Parser. marker is the label of the "next page" control.
func NewParser(marker string, opts ...Option) *Parser {
	p := &Parser{marker: marker, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseHTML builds a document from a response body
func (p *Parser) ParseHTML(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// Page parses one response into a models.Page
func (p *Parser) Page(number int, body []byte) (*models.Page, error) {
	doc, err := p.ParseHTML(body)
	if err != nil {
		return nil, err
	}

	entries, skipped, err := p.ExtractEntries(doc)
	if err != nil {
		return nil, fmt.Errorf("page %d: %w", number, err)
	}

	return &models.Page{
		Number:  number,
		Entries: entries,
		HasNext: p.HasNextPage(doc),
		Skipped: skipped,
	}, nil
}

// ExtractEntries reads every row of the results table except the last one,
// which holds the paging controls. It returns the entries in document order and
// the number of malformed rows that were skipped.
func (p *Parser) ExtractEntries(doc *goquery.Document) ([]models.WordEntry, int, error) {
	tbody := resultsTable(doc)
	if tbody.Length() == 0 {
		return nil, 0, ErrNoTable
	}

	rows := tbody.ChildrenFiltered("tr")
	if rows.Length() == 0 {
		return nil, 0, ErrNoTable
	}

	var entries []models.WordEntry
	skipped := 0
	for i := 0; i < rows.Length()-1; i++ {
		entry, err := p.extractRow(i, rows.Eq(i))
		if err != nil {
			if p.strict {
				return nil, skipped, err
			}
			p.log.Warn().Err(err).Int("row", i).Msg("Skipping malformed row")
			skipped++
			continue
		}
		entries = append(entries, entry)
	}

	return entries, skipped, nil
}

// resultsTable finds the innermost table body holding definition blocks.
// The HTML parser adds a tbody to every table, layout tables included.
func resultsTable(doc *goquery.Document) *goquery.Selection {
	const sel = "tbody:has(td pre)"
	return doc.Find(sel).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Find(sel).Length() == 0
	}).First()
}

func (p *Parser) extractRow(i int, row *goquery.Selection) (models.WordEntry, error) {
	cells := row.Find("td")
	if cells.Length() < 2 {
		return models.WordEntry{}, &RowError{Row: i, Reason: fmt.Sprintf("expected 2 cells, found %d", cells.Length())}
	}

	raw := cells.Eq(0).Text()
	if p.foldAccents {
		raw = FoldAccents(raw)
	}
	word := NormalizeWord(raw)
	if word == "" {
		return models.WordEntry{}, &RowError{Row: i, Reason: "word cell has no letters"}
	}

	pre := cells.Eq(1).Find("pre").First()
	if pre.Length() == 0 {
		return models.WordEntry{}, &RowError{Row: i, Reason: "definitions cell has no <pre> block"}
	}

	return models.WordEntry{
		Word:        word,
		Definitions: SplitDefinitions(pre.Text()),
	}, nil
}

// HasNextPage reports whether the page carries the forward paging control
func (p *Parser) HasNextPage(doc *goquery.Document) bool {
	found := false
	doc.Find("input").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if v, ok := s.Attr("value"); ok && v == p.marker {
			found = true
			return false
		}
		return true
	})
	return found
}

// NormalizeWord drops everything that is not an ASCII letter. Case is kept,
// accented letters are dropped too.
func NormalizeWord(raw string) string {
	return nonAlpha.ReplaceAllString(raw, "")
}

// FoldAccents replaces accented letters with their base letter
func FoldAccents(raw string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, raw)
	if err != nil {
		return raw
	}
	return folded
}

// SplitDefinitions splits a definitions block into its non-empty lines
func SplitDefinitions(block string) []string {
	block = strings.ReplaceAll(block, "\r\n", "\n")
	block = strings.ReplaceAll(block, "\r", "\n")

	lines := make([]string, 0)
	for _, line := range strings.Split(block, "\n") {
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
