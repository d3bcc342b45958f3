package config

import (
	"errors"
	"strings"
	"time"

	cenv "github.com/caarlos0/env/v11"
)

type Config struct {
	ListenAddr      string
	UpstreamBaseURL string
	UpstreamAPIKey  string
	WebhookURL      string
	RequestTimeout  time.Duration
	UploadTimeout   time.Duration
	PollInterval    time.Duration
	PollTimeout     time.Duration
	RefreshInterval time.Duration
	MaxUploadBytes  int64
	LogLevel        string
}

type envConfig struct {
	ListenAddr            string `env:"LISTEN_ADDR" envDefault:":8080"`
	UpstreamBaseURL       string `env:"ASSEMBLYAI_BASE_URL" envDefault:"https://api.assemblyai.com/v2"`
	UpstreamAPIKey        string `env:"ASSEMBLYAI_API_KEY"`
	WebhookURL            string `env:"WEBHOOK_URL"`
	RequestTimeoutSeconds int    `env:"REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
	UploadTimeoutSeconds  int    `env:"UPLOAD_TIMEOUT_SECONDS" envDefault:"120"`
	PollIntervalSeconds   int    `env:"POLL_INTERVAL_SECONDS" envDefault:"3"`
	PollTimeoutSeconds    int    `env:"POLL_TIMEOUT_SECONDS" envDefault:"600"`
	RefreshSeconds        int    `env:"REFRESH_SECONDS" envDefault:"3"`
	MaxUploadBytes        int64  `env:"MAX_UPLOAD_BYTES" envDefault:"2147483648"`
	LogLevel              string `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (Config, error) {
	var raw envConfig
	if err := cenv.Parse(&raw); err != nil {
		return Config{}, err
	}

	cfg := Config{
		ListenAddr:      strings.TrimSpace(raw.ListenAddr),
		UpstreamBaseURL: strings.TrimRight(strings.TrimSpace(raw.UpstreamBaseURL), "/"),
		UpstreamAPIKey:  strings.TrimSpace(raw.UpstreamAPIKey),
		WebhookURL:      strings.TrimSpace(raw.WebhookURL),
		RequestTimeout:  time.Duration(raw.RequestTimeoutSeconds) * time.Second,
		UploadTimeout:   time.Duration(raw.UploadTimeoutSeconds) * time.Second,
		PollInterval:    time.Duration(raw.PollIntervalSeconds) * time.Second,
		PollTimeout:     time.Duration(raw.PollTimeoutSeconds) * time.Second,
		RefreshInterval: time.Duration(raw.RefreshSeconds) * time.Second,
		MaxUploadBytes:  raw.MaxUploadBytes,
		LogLevel:        strings.ToLower(strings.TrimSpace(raw.LogLevel)),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("LISTEN_ADDR must not be empty")
	}
	if c.UpstreamBaseURL == "" {
		return errors.New("ASSEMBLYAI_BASE_URL must not be empty")
	}
	if c.UpstreamAPIKey == "" {
		return errors.New("ASSEMBLYAI_API_KEY must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT_SECONDS must be > 0")
	}
	if c.UploadTimeout <= 0 {
		return errors.New("UPLOAD_TIMEOUT_SECONDS must be > 0")
	}
	if c.PollInterval <= 0 {
		return errors.New("POLL_INTERVAL_SECONDS must be > 0")
	}
	if c.PollTimeout <= 0 {
		return errors.New("POLL_TIMEOUT_SECONDS must be > 0")
	}
	if c.RefreshInterval <= 0 {
		return errors.New("REFRESH_SECONDS must be > 0")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be > 0")
	}
	return nil
}
