package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"crossword-scraper/models"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func TestExtractSpreadsheetID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://docs.google.com/spreadsheets/d/abc123/edit?usp=sharing", "abc123"},
		{"https://docs.google.com/spreadsheets/d/abc123/edit", "abc123"},
		{"https://docs.google.com/spreadsheets/d/abc123?x=1", "abc123"},
		{"https://docs.google.com/spreadsheets/d/abc123", "abc123"},
		{"https://example.com/", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ExtractSpreadsheetID(tt.url); got != tt.want {
			t.Errorf("ExtractSpreadsheetID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestSanitizeSheetName(t *testing.T) {
	tests := map[string]string{
		"Words":        "Words",
		"a/b\\c?d*[e]": "a_b_c_d__e_",
		"it's":         "it_s",
		"   ":          "Sheet1",
	}
	for in, want := range tests {
		if got := sanitizeSheetName(in); got != want {
			t.Errorf("sanitizeSheetName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildRows(t *testing.T) {
	got := BuildRows(models.Dictionary{
		"DOG": {"canine", "loyal"},
		"CAT": {"feline"},
	})
	want := [][]interface{}{
		{"Word", "Definitions"},
		{"CAT", "feline"},
		{"DOG", "canine\nloyal"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("BuildRows() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadCredentials(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	if err := os.WriteFile(good, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	user := filepath.Join(dir, "user.json")
	if err := os.WriteFile(user, []byte(`{"type":"authorized_user"}`), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := loadCredentials(good); err != nil {
		t.Errorf("loadCredentials(service account) error = %v", err)
	}
	if _, err := loadCredentials(user); err == nil {
		t.Error("loadCredentials(authorized_user) error = nil")
	}
	if _, err := loadCredentials(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("loadCredentials(missing) error = nil")
	}

	t.Setenv("GOOGLE_SHEETS_CREDENTIALS", "")
	if _, err := loadCredentials(""); err == nil {
		t.Error("loadCredentials(empty env) error = nil")
	}
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS", ` {"type":"service_account"} `)
	if _, err := loadCredentials(""); err != nil {
		t.Errorf("loadCredentials(env) error = %v", err)
	}
}

func TestWriteDictionary(t *testing.T) {
	var cleared bool
	var written sheets.ValueRange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":clear"):
			cleared = true
		case r.Method == http.MethodPut && strings.Contains(r.URL.Path, "/v4/spreadsheets/sheet-id/values/"):
			if got := r.URL.Query().Get("valueInputOption"); got != "RAW" {
				t.Errorf("valueInputOption = %q", got)
			}
			if err := json.NewDecoder(r.Body).Decode(&written); err != nil {
				t.Errorf("decode body: %v", err)
			}
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	ctx := context.Background()
	service, err := sheets.NewService(ctx, option.WithHTTPClient(srv.Client()), option.WithEndpoint(srv.URL+"/"))
	if err != nil {
		t.Fatalf("sheets.NewService() error = %v", err)
	}

	w := NewWriterWithService(service, "sheet-id", zerolog.Nop())
	if err := w.WriteDictionary(ctx, "Words", models.Dictionary{"CAT": {"feline"}}); err != nil {
		t.Fatalf("WriteDictionary() error = %v", err)
	}

	if !cleared {
		t.Error("sheet was not cleared before writing")
	}
	if len(written.Values) != 2 {
		t.Fatalf("wrote %d rows, want 2", len(written.Values))
	}
	if written.Values[1][0] != "CAT" {
		t.Errorf("first data row = %v", written.Values[1])
	}
}
