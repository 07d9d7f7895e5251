package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultEndpoint is the word-to-definition listing of the crossword dictionary.
	DefaultEndpoint = "https://www.crossword.one/pag_from_word_to_definition.asp"
	// DefaultOutput is where the harvested mapping is written.
	DefaultOutput = "data/words.txt"
	// DefaultPagingField is the form field the site reads to move between pages.
	DefaultPagingField = "fpdbr_0_PagingMove"
	// DefaultPagingMarker is the label of the "next page" button, posted back verbatim.
	DefaultPagingMarker = "  >   "
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the harvester configuration
type Config struct {
	Endpoint       string        `yaml:"endpoint"`
	Output         string        `yaml:"output"`
	UserAgent      string        `yaml:"user_agent"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxPages       int           `yaml:"max_pages"`
	MaxBodySize    int           `yaml:"max_body_size"` // bytes, 0 for no limit

	Pagination struct {
		Field       string            `yaml:"field"`
		Marker      string            `yaml:"marker"`
		ExtraFields map[string]string `yaml:"extra_fields"`
	} `yaml:"pagination"`

	Parser struct {
		Strict      bool `yaml:"strict"`
		FoldAccents bool `yaml:"fold_accents"`
	} `yaml:"parser"`

	Filters struct {
		MinWordLength  int `yaml:"min_word_length"`
		MaxWordLength  int `yaml:"max_word_length"`
		MinDefinitions int `yaml:"min_definitions"`
	} `yaml:"filters"`

	Database struct {
		Enabled bool   `yaml:"enabled"`
		URL     string `yaml:"url"`
	} `yaml:"database"`

	Sheets struct {
		SpreadsheetURL  string `yaml:"spreadsheet_url"`
		SheetName       string `yaml:"sheet_name"`
		CredentialsPath string `yaml:"credentials_path"`
	} `yaml:"sheets"`

	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
}

// LoadConfig loads configuration from a YAML file on top of the defaults
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := GetDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path if it exists. A missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return GetDefaultConfig(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return GetDefaultConfig(), nil
	}
	return LoadConfig(path)
}

// GetDefaultConfig returns a default configuration
func GetDefaultConfig() *Config {
	cfg := &Config{
		Endpoint:  DefaultEndpoint,
		Output:    DefaultOutput,
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	}
	cfg.Pagination.Field = DefaultPagingField
	cfg.Pagination.Marker = DefaultPagingMarker
	cfg.Pagination.ExtraFields = map[string]string{"Parola": ""}
	cfg.Sheets.SheetName = "Words"
	return cfg
}

// Validate checks the fields the harvester cannot run without
func (c *Config) Validate() error {
	switch {
	case c.Endpoint == "":
		return fmt.Errorf("%w: endpoint is empty", ErrInvalidConfig)
	case c.Output == "":
		return fmt.Errorf("%w: output is empty", ErrInvalidConfig)
	case c.Pagination.Field == "":
		return fmt.Errorf("%w: pagination.field is empty", ErrInvalidConfig)
	case c.Pagination.Marker == "":
		return fmt.Errorf("%w: pagination.marker is empty", ErrInvalidConfig)
	case c.MaxBodySize < 0:
		return fmt.Errorf("%w: max_body_size must not be negative", ErrInvalidConfig)
	case c.MaxPages < 0:
		return fmt.Errorf("%w: max_pages must not be negative", ErrInvalidConfig)
	case c.Filters.MaxWordLength != 0 && c.Filters.MaxWordLength < c.Filters.MinWordLength:
		return fmt.Errorf("%w: filters.max_word_length is below min_word_length", ErrInvalidConfig)
	}
	return nil
}
