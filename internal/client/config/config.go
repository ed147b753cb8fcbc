// Package config handles configuration for the client, including defaults,
// JSON overlay, and command-line flags.
package config

import "time"

// SizePolicy bounds what the client will accept for one content kind before
// any network call is made.
type SizePolicy struct {
	MaxFileSize   int64
	AcceptedTypes []string
}

// Config holds runtime settings for the medialift CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the backend REST API.
//   - SocketURL: websocket endpoint for live job status.
//   - RequestTimeout: per-request timeout for REST calls.
//   - ReconnectMinDelay / ReconnectMaxDelay: socket reconnect backoff bounds.
//   - Uploads: per-kind (video/audio/image) accept policies.
type Config struct {
	ServerBaseURL     string
	SocketURL         string
	RequestTimeout    time.Duration
	ReconnectMinDelay time.Duration
	ReconnectMaxDelay time.Duration
	Uploads           map[string]SizePolicy
}

// LoadDefaults populates c with sensible defaults. The upload limits mirror
// the backend tiers: 5 GB video, 200 MB audio, 50 MB image.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.SocketURL = "ws://127.0.0.1:8080/jobs/ws"
	c.RequestTimeout = 30 * time.Second
	c.ReconnectMinDelay = 1 * time.Second
	c.ReconnectMaxDelay = 30 * time.Second
	c.Uploads = map[string]SizePolicy{
		"video": {
			MaxFileSize: 5_000_000_000,
			AcceptedTypes: []string{
				"video/mp4", "video/m4a", "video/quicktime",
				"video/x-matroska", "video/webm", "video/wmv",
			},
		},
		"audio": {
			MaxFileSize:   200_000_000,
			AcceptedTypes: []string{"audio/mp3", "audio/wav", "audio/mpeg", "audio/aac"},
		},
		"image": {
			MaxFileSize:   50_000_000,
			AcceptedTypes: []string{"image/png", "image/jpeg", "image/jpg", "image/webp"},
		},
	}
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
