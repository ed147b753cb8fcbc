package config

import (
	"encoding/json"
	"os"

	"github.com/medialift/medialift/internal/flagx"
	"github.com/medialift/medialift/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "3s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config.
type JsonConfig struct {
	ServerBaseURL     string                `json:"server_base_url"`
	SocketURL         string                `json:"socket_url"`
	RequestTimeout    timex.Duration        `json:"request_timeout"`
	ReconnectMinDelay timex.Duration        `json:"reconnect_min_delay"`
	ReconnectMaxDelay timex.Duration        `json:"reconnect_max_delay"`
	Uploads           map[string]JsonPolicy `json:"uploads"`
}

type JsonPolicy struct {
	MaxFileSize   int64    `json:"max_file_size"`
	AcceptedTypes []string `json:"accepted_types"`
}

// parseJson overlays Config with values loaded from a JSON file resolved via
// the -c/-config flags. Absent file means no overlay. Only fields present in
// the JSON override defaults. Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerBaseURL != "" {
		cfg.ServerBaseURL = jc.ServerBaseURL
	}
	if jc.SocketURL != "" {
		cfg.SocketURL = jc.SocketURL
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.ReconnectMinDelay.Duration != 0 {
		cfg.ReconnectMinDelay = jc.ReconnectMinDelay.Duration
	}
	if jc.ReconnectMaxDelay.Duration != 0 {
		cfg.ReconnectMaxDelay = jc.ReconnectMaxDelay.Duration
	}
	for kind, p := range jc.Uploads {
		policy := cfg.Uploads[kind]
		if p.MaxFileSize > 0 {
			policy.MaxFileSize = p.MaxFileSize
		}
		if len(p.AcceptedTypes) > 0 {
			policy.AcceptedTypes = p.AcceptedTypes
		}
		cfg.Uploads[kind] = policy
	}
}
