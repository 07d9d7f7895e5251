package filter

import (
	"crossword-scraper/config"
	"crossword-scraper/models"
)

// Filter applies filter criteria to harvested words
type Filter struct {
	cfg *config.Config
}

// NewFilter creates a new Filter instance
func NewFilter(cfg *config.Config) *Filter {
	return &Filter{
		cfg: cfg,
	}
}

// Apply returns a new dictionary holding only the words that match the
// configuration, and how many were dropped
func (f *Filter) Apply(dict models.Dictionary) (models.Dictionary, int) {
	filtered := models.NewDictionary()
	dropped := 0

	for word, defs := range dict {
		if !f.matches(word, defs) {
			dropped++
			continue
		}
		filtered[word] = defs
	}

	return filtered, dropped
}

// matches checks if a word matches all filter criteria
func (f *Filter) matches(word string, defs []string) bool {
	// words are ASCII letters only, so byte length is letter count
	if len(word) < f.cfg.Filters.MinWordLength {
		return false
	}

	if f.cfg.Filters.MaxWordLength > 0 && len(word) > f.cfg.Filters.MaxWordLength {
		return false
	}

	if len(defs) < f.cfg.Filters.MinDefinitions {
		return false
	}

	return true
}
