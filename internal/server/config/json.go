package config

import (
	"encoding/json"
	"os"

	"github.com/medialift/medialift/internal/flagx"
	"github.com/medialift/medialift/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling; durations may
// be "30m"-style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddr                string           `json:"endpoint_addr"`
	DatabaseDSN                 string           `json:"database_dsn"`
	RedisAddr                   string           `json:"redis_addr"`
	RedisStatusChannel          string           `json:"redis_status_channel"`
	SecretKey                   string           `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration   `json:"access_token_validity_duration"`
	S3RootUser                  string           `json:"s3_root_user"`
	S3RootPassword              string           `json:"s3_root_password"`
	S3Bucket                    string           `json:"s3_bucket"`
	S3Region                    string           `json:"s3_region"`
	S3BaseEndpoint              string           `json:"s3_base_endpoint"`
	PresignExpiry               timex.Duration   `json:"presign_expiry"`
	TierStorageLimits           map[string]int64 `json:"tier_storage_limits"`
	TierMaxFilters              map[string]int   `json:"tier_max_filters"`
}

// parseJson overlays Config with values loaded from a JSON file resolved via
// the -c/-config flags. Fields absent from the JSON keep their defaults.
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

	if jc.EndpointAddr != "" {
		cfg.EndpointAddr = jc.EndpointAddr
	}
	if jc.DatabaseDSN != "" {
		cfg.DatabaseDSN = jc.DatabaseDSN
	}
	if jc.RedisAddr != "" {
		cfg.RedisAddr = jc.RedisAddr
	}
	if jc.RedisStatusChannel != "" {
		cfg.RedisStatusChannel = jc.RedisStatusChannel
	}
	if jc.SecretKey != "" {
		cfg.SecretKey = jc.SecretKey
	}
	if jc.AccessTokenValidityDuration.Duration != 0 {
		cfg.AccessTokenValidityDuration = jc.AccessTokenValidityDuration.Duration
	}
	if jc.S3RootUser != "" {
		cfg.S3RootUser = jc.S3RootUser
	}
	if jc.S3RootPassword != "" {
		cfg.S3RootPassword = jc.S3RootPassword
	}
	if jc.S3Bucket != "" {
		cfg.S3Bucket = jc.S3Bucket
	}
	if jc.S3Region != "" {
		cfg.S3Region = jc.S3Region
	}
	if jc.S3BaseEndpoint != "" {
		cfg.S3BaseEndpoint = jc.S3BaseEndpoint
	}
	if jc.PresignExpiry.Duration != 0 {
		cfg.PresignExpiry = jc.PresignExpiry.Duration
	}
	if len(jc.TierStorageLimits) > 0 {
		cfg.TierStorageLimits = jc.TierStorageLimits
	}
	if len(jc.TierMaxFilters) > 0 {
		cfg.TierMaxFilters = jc.TierMaxFilters
	}
}
