package notify

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFormatSummary(t *testing.T) {
	got := FormatSummary(Summary{
		Endpoint: "https://example.test/words",
		Output:   "data/words.txt",
		Pages:    3,
		Words:    6,
	})
	want := "✅ Word harvest finished\n\nPages: 3\nWords: 6\nOutput: data/words.txt\nSource: https://example.test/words"
	if got != want {
		t.Errorf("FormatSummary() = %q, want %q", got, want)
	}

	got = FormatSummary(Summary{
		Endpoint: "https://example.test/words",
		Output:   "data/words.txt",
		Pages:    1,
		Skipped:  2,
		Err:      errors.New("GET https://example.test/words: unexpected status 500"),
	})
	for _, part := range []string{"failed", "unexpected status 500", "Skipped rows: 2"} {
		if !strings.Contains(got, part) {
			t.Errorf("FormatSummary() = %q, missing %q", got, part)
		}
	}
	if strings.Contains(got, "Output:") {
		t.Errorf("failed summary mentions an output file: %q", got)
	}
}

func TestTelegramNotify(t *testing.T) {
	var sent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"words","username":"words_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			if err := r.ParseForm(); err != nil {
				t.Errorf("ParseForm() error = %v", err)
			}
			if got := r.FormValue("chat_id"); got != "42" {
				t.Errorf("chat_id = %q", got)
			}
			sent = r.FormValue("text")
			w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	tg, err := NewTelegramWithEndpoint("token", srv.URL+"/bot%s/%s", 42, srv.Client())
	if err != nil {
		t.Fatalf("NewTelegramWithEndpoint() error = %v", err)
	}
	if err := tg.Notify(Summary{Endpoint: "e", Pages: 1, Words: 2}); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if !strings.Contains(sent, "Words: 2") {
		t.Errorf("sent text = %q", sent)
	}
}
