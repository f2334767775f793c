package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/employeehub/internal/flagx"
	"github.com/dmitrijs2005/employeehub/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations accept "4h" style
// strings or integer nanoseconds. Absent keys leave the current value alone.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc"`
	DatabaseDSN      string         `json:"database_dsn"`
	SecretKey        string         `json:"secret_key"`
	SessionTTL       timex.Duration `json:"session_ttl"`
	RegisterTokenTTL timex.Duration `json:"register_token_ttl"`
	Environment      string         `json:"environment"`
	ProtectEmployees *bool          `json:"protect_employees"`
	MediaBackend     string         `json:"media_backend"`
	MediaRoot        string         `json:"media_root"`
	MaxUploadSize    int64          `json:"max_upload_size"`
	AllowedOrigins   []string       `json:"allowed_origins"`
	S3RootUser       string         `json:"s3_root_user"`
	S3RootPassword   string         `json:"s3_root_password"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
}

// parseJson loads the file named by -c / -config into config.
// Without the flag nothing happens; an unreadable or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()

	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	overlay(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	overlay(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.SessionTTL, c.SessionTTL.Duration)
	overlay(&config.RegisterTokenTTL, c.RegisterTokenTTL.Duration)
	overlay(&config.Environment, c.Environment)
	if c.ProtectEmployees != nil {
		config.ProtectEmployees = *c.ProtectEmployees
	}
	overlay(&config.MediaBackend, c.MediaBackend)
	overlay(&config.MediaRoot, c.MediaRoot)
	overlay(&config.MaxUploadSize, c.MaxUploadSize)
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	overlay(&config.S3RootUser, c.S3RootUser)
	overlay(&config.S3RootPassword, c.S3RootPassword)
	overlay(&config.S3Bucket, c.S3Bucket)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
