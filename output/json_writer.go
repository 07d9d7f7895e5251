package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"crossword-scraper/models"
)

// MarshalDictionary renders the dictionary as one JSON object with sorted
// keys and 4-space indentation. HTML characters are written as is.
func MarshalDictionary(dict models.Dictionary) ([]byte, error) {
	if dict == nil {
		dict = models.NewDictionary()
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(dict); err != nil {
		return nil, fmt.Errorf("failed to encode dictionary: %w", err)
	}
	// Encode terminates with a newline
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// WriteJSON writes the dictionary to path in a single write. The parent
// directory must already exist.
func WriteJSON(path string, dict models.Dictionary) error {
	data, err := MarshalDictionary(dict)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadJSON loads a dictionary previously written by WriteJSON
func ReadJSON(path string) (models.Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	dict := models.NewDictionary()
	if err := json.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return dict, nil
}
