package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"crossword-scraper/models"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Writer handles writing harvested words to Google Sheets
type Writer struct {
	service       *sheets.Service
	spreadsheetID string
	log           zerolog.Logger
}

// NewWriter creates a new Google Sheets writer. Credentials come from
// credentialsPath, or from GOOGLE_SHEETS_CREDENTIALS when the path is empty.
func NewWriter(ctx context.Context, spreadsheetID, credentialsPath string, log zerolog.Logger) (*Writer, error) {
	credsJSON, err := loadCredentials(credentialsPath)
	if err != nil {
		return nil, err
	}

	service, err := sheets.NewService(ctx, option.WithCredentialsJSON(credsJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return NewWriterWithService(service, spreadsheetID, log), nil
}

// NewWriterWithService wraps an existing service
func NewWriterWithService(service *sheets.Service, spreadsheetID string, log zerolog.Logger) *Writer {
	return &Writer{
		service:       service,
		spreadsheetID: spreadsheetID,
		log:           log,
	}
}

func loadCredentials(credentialsPath string) ([]byte, error) {
	var credsJSON []byte
	if credentialsPath != "" {
		data, err := os.ReadFile(credentialsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		credsJSON = data
	} else {
		credsEnv := strings.TrimSpace(os.Getenv("GOOGLE_SHEETS_CREDENTIALS"))
		if credsEnv == "" {
			return nil, fmt.Errorf("credentials not found: GOOGLE_SHEETS_CREDENTIALS environment variable is empty or not set")
		}
		credsJSON = []byte(credsEnv)
	}

	var creds map[string]interface{}
	if err := json.Unmarshal(credsJSON, &creds); err != nil {
		return nil, fmt.Errorf("invalid credentials JSON: %w", err)
	}
	if creds["type"] != "service_account" {
		return nil, fmt.Errorf("credentials must be a service account JSON file (type: service_account), got type: %v", creds["type"])
	}

	return credsJSON, nil
}

// WriteDictionary replaces the contents of sheetName with one row per word
func (w *Writer) WriteDictionary(ctx context.Context, sheetName string, dict models.Dictionary) error {
	sheetName = sanitizeSheetName(sheetName)
	range_ := fmt.Sprintf("'%s'!A:B", sheetName)

	_, err := w.service.Spreadsheets.Values.Clear(w.spreadsheetID, range_, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to clear sheet %q: %w", sheetName, err)
	}

	valueRange := &sheets.ValueRange{
		Values: BuildRows(dict),
	}
	_, err = w.service.Spreadsheets.Values.Update(w.spreadsheetID, fmt.Sprintf("'%s'!A1", sheetName), valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to write sheet %q: %w", sheetName, err)
	}

	w.log.Info().Int("words", len(dict)).Str("sheet", sheetName).Msg("Wrote words to Google Sheets")
	return nil
}

// BuildRows lays out the dictionary as a header row plus one row per word
func BuildRows(dict models.Dictionary) [][]interface{} {
	rows := make([][]interface{}, 0, len(dict)+1)
	rows = append(rows, []interface{}{"Word", "Definitions"})
	for _, entry := range dict.Entries() {
		rows = append(rows, []interface{}{entry.Word, strings.Join(entry.Definitions, "\n")})
	}
	return rows
}

// sanitizeSheetName removes invalid characters from sheet name
func sanitizeSheetName(name string) string {
	// Google Sheets sheet names cannot contain: / \ ? * [ ]
	invalidChars := []string{"/", "\\", "?", "*", "[", "]", "'"}
	result := name
	for _, char := range invalidChars {
		result = strings.ReplaceAll(result, char, "_")
	}
	result = strings.TrimSpace(result)
	if result == "" {
		result = "Sheet1"
	}
	return result
}

// ExtractSpreadsheetID extracts the spreadsheet ID from a Google Sheets URL
func ExtractSpreadsheetID(url string) string {
	// https://docs.google.com/spreadsheets/d/SPREADSHEET_ID/edit?usp=sharing
	parts := strings.Split(url, "/d/")
	if len(parts) < 2 {
		return ""
	}

	idPart := parts[1]
	if idx := strings.Index(idPart, "/"); idx != -1 {
		idPart = idPart[:idx]
	}
	if idx := strings.Index(idPart, "?"); idx != -1 {
		idPart = idPart[:idx]
	}

	return strings.TrimSpace(idPart)
}
