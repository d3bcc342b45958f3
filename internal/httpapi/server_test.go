package httpapi

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"scribegate/internal/config"
	"scribegate/internal/upstream/assemblyai"
)

type stubTranscripts struct {
	submitted  assemblyai.Transcript
	submitErr  error
	fileBody   string
	transcript assemblyai.Transcript
	getErr     error
	getID      string
	subtitles  string
	subErr     error
	subFormat  assemblyai.SubtitleFormat
}

func (s *stubTranscripts) SubmitUpload(_ context.Context, file io.Reader) (assemblyai.Transcript, error) {
	body, _ := io.ReadAll(file)
	s.fileBody = string(body)
	return s.submitted, s.submitErr
}

func (s *stubTranscripts) Get(_ context.Context, id string) (assemblyai.Transcript, error) {
	s.getID = id
	return s.transcript, s.getErr
}

func (s *stubTranscripts) Subtitles(_ context.Context, _ string, format assemblyai.SubtitleFormat) (string, error) {
	s.subFormat = format
	return s.subtitles, s.subErr
}

func newTestHandler(t *testing.T, svc TranscriptService) http.Handler {
	t.Helper()
	cfg := config.Config{
		ListenAddr:      ":0",
		UpstreamBaseURL: "http://example.com",
		UpstreamAPIKey:  "x",
		RequestTimeout:  time.Second,
		UploadTimeout:   time.Second,
		PollInterval:    time.Second,
		PollTimeout:     time.Second,
		RefreshInterval: 3 * time.Second,
		MaxUploadBytes:  1024 * 1024,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(cfg, logger, Dependencies{Transcripts: svc})
}

func multipartUpload(t *testing.T, field, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, "sample.wav")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	_, _ = part.Write([]byte(content))
	_ = mw.Close()
	return &body, mw.FormDataContentType()
}

func TestIndexServesUploadForm(t *testing.T) {
	h := newTestHandler(t, &stubTranscripts{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Fatalf("unexpected content type: %q", got)
	}
	if !strings.Contains(w.Body.String(), `action="/upload-file"`) {
		t.Fatalf("form target missing from body: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `name="file"`) {
		t.Fatalf("file input missing from body: %s", w.Body.String())
	}
}

func TestUploadFileRedirectsToTranscript(t *testing.T) {
	svc := &stubTranscripts{submitted: assemblyai.Transcript{ID: "abc123", Status: assemblyai.StatusQueued}}
	h := newTestHandler(t, svc)

	body, contentType := multipartUpload(t, "file", "audio-bytes")
	req := httptest.NewRequest(http.MethodPost, "/upload-file", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != "/transcript/abc123" {
		t.Fatalf("unexpected redirect location: %q", got)
	}
	if svc.fileBody != "audio-bytes" {
		t.Fatalf("unexpected file body: %q", svc.fileBody)
	}
}

func TestUploadFileMissingFieldIsBadRequest(t *testing.T) {
	h := newTestHandler(t, &stubTranscripts{})

	body, contentType := multipartUpload(t, "attachment", "audio")
	req := httptest.NewRequest(http.MethodPost, "/upload-file", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "multipart field 'file' is required") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestUploadFileUpstreamErrorIsBadGateway(t *testing.T) {
	svc := &stubTranscripts{submitErr: &assemblyai.APIError{Message: "invalid api key"}}
	h := newTestHandler(t, svc)

	body, contentType := multipartUpload(t, "file", "audio")
	req := httptest.NewRequest(http.MethodPost, "/upload-file", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "invalid api key") {
		t.Fatalf("expected upstream message in details: %s", w.Body.String())
	}
}

func TestTranscriptCompletedRendersText(t *testing.T) {
	svc := &stubTranscripts{transcript: assemblyai.Transcript{
		ID:     "abc123",
		Status: assemblyai.StatusCompleted,
		Text:   "hello world",
	}}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/transcript/abc123", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	if svc.getID != "abc123" {
		t.Fatalf("unexpected id passed to service: %q", svc.getID)
	}
	if w.Body.String() != "hello world" {
		t.Fatalf("unexpected body: %q", w.Body.String())
	}
	if got := w.Header().Get("Refresh"); got != "" {
		t.Fatalf("completed transcript must not set Refresh, got %q", got)
	}
}

func TestTranscriptProcessingRendersStatusWithRefresh(t *testing.T) {
	svc := &stubTranscripts{transcript: assemblyai.Transcript{
		ID:     "abc123",
		Status: assemblyai.StatusProcessing,
	}}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/transcript/abc123", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	if w.Body.String() != "processing" {
		t.Fatalf("unexpected body: %q", w.Body.String())
	}
	if got := w.Header().Get("Refresh"); got != "3" {
		t.Fatalf("unexpected Refresh header: %q", got)
	}
}

func TestTranscriptUnknownIDSurfacesError(t *testing.T) {
	svc := &stubTranscripts{getErr: &assemblyai.APIError{Message: "transcript not found"}}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/transcript/unknown-id", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"upstream_error"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestSubtitlesRejectsUnknownFormat(t *testing.T) {
	h := newTestHandler(t, &stubTranscripts{})

	req := httptest.NewRequest(http.MethodGet, "/transcript/abc123/subtitles?format=ass", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
}

func TestSubtitlesServesVTT(t *testing.T) {
	svc := &stubTranscripts{subtitles: "WEBVTT\n\n00:00.000 --> 00:01.000\nhi\n"}
	h := newTestHandler(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/transcript/abc123/subtitles?format=vtt", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", w.Code, w.Body.String())
	}
	if svc.subFormat != assemblyai.SubtitleVTT {
		t.Fatalf("unexpected format passed to service: %q", svc.subFormat)
	}
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/vtt") {
		t.Fatalf("unexpected content type: %q", got)
	}
	if !strings.HasPrefix(w.Body.String(), "WEBVTT") {
		t.Fatalf("unexpected body: %q", w.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(t, &stubTranscripts{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestRequestIDEchoedBack(t *testing.T) {
	h := newTestHandler(t, &stubTranscripts{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "my-req-1")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-Id"); got != "my-req-1" {
		t.Fatalf("unexpected request id header: %q", got)
	}
}
