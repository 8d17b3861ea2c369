package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/labelmerge/internal/logging"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(logging.New(&buf, "debug", "json"))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantLevel string
	}{
		{"success", http.StatusOK, "hello", "INFO"},
		{"client error", http.StatusConflict, "incomplete", "WARN"},
		{"server error", http.StatusInternalServerError, "", "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)

			r := chi.NewRouter()
			r.Use(Logger)
			r.Get("/api/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			req := httptest.NewRequest(http.MethodGet, "/api/sessions/abc", nil)
			req.Header.Set("User-Agent", "label-test")
			r.ServeHTTP(httptest.NewRecorder(), req)

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("log is not one JSON entry: %v\n%s", err, buf.String())
			}

			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", entry["level"], tt.wantLevel)
			}
			if entry["status"] != float64(tt.status) {
				t.Errorf("status = %v, want %d", entry["status"], tt.status)
			}
			if entry["bytes"] != float64(len(tt.body)) {
				t.Errorf("bytes = %v, want %d", entry["bytes"], len(tt.body))
			}
			if entry["route"] != "/api/sessions/{id}" {
				t.Errorf("route = %v", entry["route"])
			}
			if entry["path"] != "/api/sessions/abc" || entry["user_agent"] != "label-test" {
				t.Errorf("entry = %v", entry)
			}
		})
	}
}

func TestResponseWriter_DefaultStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	ww := &responseWriter{ResponseWriter: rec, status: http.StatusOK}

	ww.Write([]byte("abc"))
	ww.WriteHeader(http.StatusTeapot)

	if ww.status != http.StatusOK || rec.Code != http.StatusOK {
		t.Errorf("status = %d (recorder %d), want 200 after implicit header", ww.status, rec.Code)
	}
	if ww.bytes != 3 {
		t.Errorf("bytes = %d, want 3", ww.bytes)
	}
}
