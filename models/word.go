package models

import "sort"

// WordEntry is one scraped row: a normalized word and its definition lines
type WordEntry struct {
	Word        string
	Definitions []string
}

// Page is the parse result of one response
type Page struct {
	Number  int
	Entries []WordEntry
	HasNext bool
	Skipped int // malformed rows left out of Entries
}

// Dictionary maps a word to its definition lines, in document order.
type Dictionary map[string][]string

// NewDictionary returns an empty dictionary
func NewDictionary() Dictionary {
	return make(Dictionary)
}

// Merge folds entries into the dictionary. A word already present is replaced,
// so the last page that lists a word wins.
func (d Dictionary) Merge(entries []WordEntry) {
	for _, e := range entries {
		defs := make([]string, len(e.Definitions))
		copy(defs, e.Definitions)
		d[e.Word] = defs
	}
}

// Words returns the keys in sorted order
func (d Dictionary) Words() []string {
	words := make([]string, 0, len(d))
	for w := range d {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Entries returns the dictionary as entries sorted by word
func (d Dictionary) Entries() []WordEntry {
	entries := make([]WordEntry, 0, len(d))
	for _, w := range d.Words() {
		entries = append(entries, WordEntry{Word: w, Definitions: d[w]})
	}
	return entries
}
