package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/employeehub/internal/flagx"
	"github.com/joho/godotenv"
)

// loadDotEnv is a seam for tests.
var loadDotEnv = godotenv.Load

// parseEnv overlays Config with environment variables. Variables found in a
// dotenv file (the -env flag, or ./.env) are loaded first without replacing
// variables already present in the process environment.
//
// Recognised variables:
//
//	PORT                       HTTP port, shorthand for ROSTER_HTTP_ADDR=":PORT"
//	ROSTER_HTTP_ADDR           HTTP bind address
//	ROSTER_GRPC_ADDR           gRPC health bind address
//	DATABASE_URL               PostgreSQL DSN
//	JWT_SECRET                 token signing secret
//	ROSTER_SESSION_TTL         e.g. "4h"
//	ROSTER_REGISTER_TOKEN_TTL  e.g. "1h"
//	ENV                        "production" or anything else
//	ROSTER_PROTECT_EMPLOYEES   bool
//	ROSTER_MEDIA_BACKEND       "filesystem" or "s3"
//	ROSTER_MEDIA_ROOT          filesystem backend directory
//	ROSTER_MAX_UPLOAD_SIZE     bytes
//	ROSTER_ALLOWED_ORIGINS     comma separated
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT
//
// Malformed values panic, like a broken JSON config does.
func parseEnv(config *Config) {
	envFile := flagx.EnvFileFlag()
	if envFile != "" {
		if err := loadDotEnv(envFile); err != nil {
			panic(err)
		}
	} else {
		_ = loadDotEnv()
	}

	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		config.EndpointAddrHTTP = ":" + v
	}
	setString(&config.EndpointAddrHTTP, "ROSTER_HTTP_ADDR")
	setString(&config.EndpointAddrGRPC, "ROSTER_GRPC_ADDR")
	setString(&config.DatabaseDSN, "DATABASE_URL")
	setString(&config.SecretKey, "JWT_SECRET")
	setDuration(&config.SessionTTL, "ROSTER_SESSION_TTL")
	setDuration(&config.RegisterTokenTTL, "ROSTER_REGISTER_TOKEN_TTL")
	setString(&config.Environment, "ENV")
	setBool(&config.ProtectEmployees, "ROSTER_PROTECT_EMPLOYEES")
	setString(&config.MediaBackend, "ROSTER_MEDIA_BACKEND")
	setString(&config.MediaRoot, "ROSTER_MEDIA_ROOT")
	setInt64(&config.MaxUploadSize, "ROSTER_MAX_UPLOAD_SIZE")
	if v, ok := lookup("ROSTER_ALLOWED_ORIGINS"); ok {
		config.AllowedOrigins = splitList(v)
	}
	setString(&config.S3RootUser, "S3_ROOT_USER")
	setString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	setString(&config.S3Bucket, "S3_BUCKET")
	setString(&config.S3Region, "S3_REGION")
	setString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v, ok := lookup(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*dst = d
	}
}

func setBool(dst *bool, key string) {
	if v, ok := lookup(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		*dst = b
	}
}

func setInt64(dst *int64, key string) {
	if v, ok := lookup(key); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(err)
		}
		*dst = n
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	return result
}
