package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Zuo-Peng/igfa/internal/analyze"
	"github.com/Zuo-Peng/igfa/internal/archive/archivetest"
	"github.com/Zuo-Peng/igfa/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRouter(maxBytes int64) http.Handler {
	logger := testLogger()
	h := NewAnalyzeHandler(analyze.New(logger), config.Analysis{MinMessages: 2, TopN: 1}, maxBytes, logger)
	return NewRouter(h)
}

func sampleExport(t *testing.T) []byte {
	t.Helper()
	chat := func(a, b string, n int) []archivetest.Msg {
		msgs := make([]archivetest.Msg, n)
		for i := range msgs {
			sender := a
			if i%2 == 1 {
				sender = b
			}
			msgs[i] = archivetest.Msg{Sender: sender, At: int64(i+1) * int64(len(a)) * 1000}
		}
		return msgs
	}
	return archivetest.NewExport("bob").
		Conversation("amy_1", []string{"Amy", "bob"}, chat("Amy", "bob", 4)...).
		Conversation("kimberly_2", []string{"Kimberly", "bob"}, chat("Kimberly", "bob", 3)...).
		Followers(2).
		Bytes(t)
}

func multipartBody(t *testing.T, field string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "export.zip")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	fw.Write(data)
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestAnalyze_Multipart(t *testing.T) {
	body, ct := multipartBody(t, "file", sampleExport(t))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()

	newTestRouter(1 << 20).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp AnalyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Report == nil || resp.Report.Account.Username != "bob" {
		t.Fatalf("report = %+v", resp.Report)
	}
	if len(resp.Report.Contacts) != 2 || resp.Report.Contacts[0].Name != "Amy" {
		t.Errorf("contacts = %+v", resp.Report.Contacts)
	}
	if resp.Report.Relationships.Followers != 2 {
		t.Errorf("followers = %d", resp.Report.Relationships.Followers)
	}
	if resp.Summary.Contacts != 2 || resp.Summary.TotalMessages != 7 {
		t.Errorf("summary = %+v", resp.Summary)
	}
	if len(resp.TopFriends) != 1 || resp.TopFriends[0].Name != "Amy" {
		t.Errorf("top friends = %+v", resp.TopFriends)
	}
	if len(resp.SlowRepliers) != 1 || resp.SlowRepliers[0].Name != "Kimberly" {
		t.Errorf("slow repliers = %+v", resp.SlowRepliers)
	}
}

func TestAnalyze_RawBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader(sampleExport(t)))
	req.Header.Set("Content-Type", "application/zip")
	rec := httptest.NewRecorder()

	newTestRouter(1 << 20).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestAnalyze_Errors(t *testing.T) {
	unknownRoot := archivetest.Zip(t, archivetest.File{Name: "backup/x.json", Body: "{}"})
	missingField, missingCT := multipartBody(t, "upload", sampleExport(t))

	tests := []struct {
		name        string
		body        io.Reader
		contentType string
		maxBytes    int64
		wantCode    int
		wantError   string
	}{
		{"not a zip", strings.NewReader("hello"), "application/zip", 1 << 20, http.StatusBadRequest, "not a valid zip"},
		{"empty body", strings.NewReader(""), "application/zip", 1 << 20, http.StatusBadRequest, "empty upload"},
		{"empty zip", bytes.NewReader(archivetest.Zip(t)), "application/zip", 1 << 20, http.StatusBadRequest, "is empty"},
		{"unknown root", bytes.NewReader(unknownRoot), "application/zip", 1 << 20, http.StatusUnprocessableEntity, "detect username"},
		{"missing file field", missingField, missingCT, 1 << 20, http.StatusBadRequest, "missing file"},
		{"too large", bytes.NewReader(sampleExport(t)), "application/zip", 64, http.StatusRequestEntityTooLarge, "exceeds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", tt.body)
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()

			newTestRouter(tt.maxBytes).ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if !strings.Contains(body["error"], tt.wantError) {
				t.Errorf("error = %q, want mention of %q", body["error"], tt.wantError)
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(1).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"status":"ok"}` {
		t.Errorf("body = %s", got)
	}
}

func TestAnalyze_MethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(1).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analyze", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
