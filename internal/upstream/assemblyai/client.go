package assemblyai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

type ObserverFunc func(endpoint string, status int, duration time.Duration)

type Option func(*Client)

type Client struct {
	baseURL      string
	apiKey       string
	httpClient   *http.Client
	observer     ObserverFunc
	pollInterval time.Duration
}

// APIError is an error reported by the transcription service itself: the
// response body carried an "error" field. The message is the server's,
// verbatim.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Error is a non-200 upstream response that did not carry the JSON error
// shape.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream request failed with status %d", e.StatusCode)
}

type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

type Transcript struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error,omitempty"`
}

type CreateTranscriptParams struct {
	AudioURL   string `json:"audio_url"`
	WebhookURL string `json:"webhook_url,omitempty"`
}

type SubtitleFormat string

const (
	SubtitleSRT SubtitleFormat = "srt"
	SubtitleVTT SubtitleFormat = "vtt"
)

func WithObserver(observer ObserverFunc) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

func WithPollInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

func New(baseURL, apiKey string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       strings.TrimSpace(apiKey),
		httpClient:   httpClient,
		pollInterval: 3 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Upload stages a media file with the service and returns the short-lived
// upload URL for it. The reader is streamed straight into the request body
// and consumed exactly once; it must not be reused afterwards.
func (c *Client) Upload(ctx context.Context, file io.Reader) (string, error) {
	started := time.Now()
	statusCode := 0
	defer func() { c.observe("upload", statusCode, time.Since(started)) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", file)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed struct {
		UploadURL string `json:"upload_url"`
		Error     string `json:"error"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &Error{StatusCode: resp.StatusCode, Body: truncateBody(string(respBody))}
	}
	if parsed.Error != "" {
		return "", &APIError{Message: parsed.Error}
	}
	if parsed.UploadURL == "" {
		return "", fmt.Errorf("invalid upload response: missing upload_url")
	}
	return parsed.UploadURL, nil
}

func (c *Client) CreateTranscript(ctx context.Context, params CreateTranscriptParams) (Transcript, error) {
	started := time.Now()
	statusCode := 0
	defer func() { c.observe("create_transcript", statusCode, time.Since(started)) }()

	payload, err := json.Marshal(params)
	if err != nil {
		return Transcript{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcript", bytes.NewReader(payload))
	if err != nil {
		return Transcript{}, err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Transcript{}, err
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	return parseTranscript(resp)
}

func (c *Client) GetTranscript(ctx context.Context, id string) (Transcript, error) {
	started := time.Now()
	statusCode := 0
	defer func() { c.observe("get_transcript", statusCode, time.Since(started)) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transcript/"+id, nil)
	if err != nil {
		return Transcript{}, err
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Transcript{}, err
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	return parseTranscript(resp)
}

// WaitForTranscript polls GetTranscript on a fixed interval until the
// transcript completes. It returns ctx.Err() when the context is cancelled
// or its deadline passes, an *APIError as soon as the service reports a
// failure, and an error for any status it does not recognize rather than
// polling forever.
func (c *Client) WaitForTranscript(ctx context.Context, id string) (Transcript, error) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return Transcript{}, ctx.Err()
		case <-timer.C:
		}

		transcript, err := c.GetTranscript(ctx, id)
		if err != nil {
			return Transcript{}, err
		}

		switch transcript.Status {
		case StatusCompleted:
			return transcript, nil
		case StatusError:
			// Normally surfaced by GetTranscript already via the error
			// field; this covers a failed transcript with no message.
			return Transcript{}, &APIError{Message: "transcription failed"}
		case StatusQueued, StatusProcessing:
			timer.Reset(c.pollInterval)
		default:
			return Transcript{}, fmt.Errorf("unexpected transcript status %q", transcript.Status)
		}
	}
}

// GetSubtitles fetches the transcript rendered as srt or vtt. The 200 body
// is returned verbatim, never re-parsed.
func (c *Client) GetSubtitles(ctx context.Context, id string, format SubtitleFormat) (string, error) {
	started := time.Now()
	statusCode := 0
	defer func() { c.observe("get_subtitles", statusCode, time.Since(started)) }()

	switch format {
	case SubtitleSRT, SubtitleVTT:
	default:
		return "", fmt.Errorf("unsupported subtitle format %q", format)
	}

	url := fmt.Sprintf("%s/transcript/%s/%s", c.baseURL, id, format)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		if isJSONContentType(resp.Header.Get("Content-Type")) {
			var parsed struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal(respBody, &parsed); err == nil && parsed.Error != "" {
				return "", &APIError{Message: parsed.Error}
			}
		}
		return "", &Error{StatusCode: resp.StatusCode, Body: truncateBody(string(respBody))}
	}

	return string(respBody), nil
}

func (c *Client) observe(endpoint string, status int, duration time.Duration) {
	if c.observer != nil {
		c.observer(endpoint, status, duration)
	}
}

// parseTranscript decodes a transcript response body. A server error field
// wins over the success shape, whatever the HTTP status was.
func parseTranscript(resp *http.Response) (Transcript, error) {
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Transcript{}, err
	}

	var parsed Transcript
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Transcript{}, &Error{StatusCode: resp.StatusCode, Body: truncateBody(string(respBody))}
	}
	if parsed.Error != "" {
		return Transcript{}, &APIError{Message: parsed.Error}
	}
	if parsed.ID == "" {
		return Transcript{}, fmt.Errorf("invalid transcript response: missing id")
	}
	return parsed, nil
}

func isJSONContentType(value string) bool {
	mediaType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func truncateBody(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 4096 {
		return s
	}
	return s[:4096] + "..."
}
