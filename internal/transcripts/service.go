package transcripts

import (
	"context"
	"io"
	"strings"
	"time"

	"scribegate/internal/upstream/assemblyai"
)

type Client interface {
	Upload(ctx context.Context, file io.Reader) (string, error)
	CreateTranscript(ctx context.Context, params assemblyai.CreateTranscriptParams) (assemblyai.Transcript, error)
	GetTranscript(ctx context.Context, id string) (assemblyai.Transcript, error)
	WaitForTranscript(ctx context.Context, id string) (assemblyai.Transcript, error)
	GetSubtitles(ctx context.Context, id string, format assemblyai.SubtitleFormat) (string, error)
}

type Service struct {
	client         Client
	webhookURL     string
	requestTimeout time.Duration
	uploadTimeout  time.Duration
	pollTimeout    time.Duration
}

func New(client Client, webhookURL string, requestTimeout, uploadTimeout, pollTimeout time.Duration) *Service {
	return &Service{
		client:         client,
		webhookURL:     strings.TrimSpace(webhookURL),
		requestTimeout: requestTimeout,
		uploadTimeout:  uploadTimeout,
		pollTimeout:    pollTimeout,
	}
}

// SubmitUpload stages the file upstream and creates a transcript job for it.
// The file reader is consumed exactly once.
func (s *Service) SubmitUpload(ctx context.Context, file io.Reader) (assemblyai.Transcript, error) {
	ctx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()

	audioURL, err := s.client.Upload(ctx, file)
	if err != nil {
		return assemblyai.Transcript{}, err
	}

	return s.client.CreateTranscript(ctx, assemblyai.CreateTranscriptParams{
		AudioURL:   audioURL,
		WebhookURL: s.webhookURL,
	})
}

func (s *Service) Get(ctx context.Context, id string) (assemblyai.Transcript, error) {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	return s.client.GetTranscript(ctx, id)
}

// Await blocks until the transcript completes or the poll timeout passes.
// The browser flow never calls this; it is here for programmatic callers
// that want synchronous long-polling.
func (s *Service) Await(ctx context.Context, id string) (assemblyai.Transcript, error) {
	ctx, cancel := context.WithTimeout(ctx, s.pollTimeout)
	defer cancel()

	return s.client.WaitForTranscript(ctx, id)
}

func (s *Service) Subtitles(ctx context.Context, id string, format assemblyai.SubtitleFormat) (string, error) {
	if format == "" {
		format = assemblyai.SubtitleSRT
	}

	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	return s.client.GetSubtitles(ctx, id, format)
}
