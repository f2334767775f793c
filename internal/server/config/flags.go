package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/employeehub/internal/flagx"
)

var serverFlags = []string{
	"-a", "-grpc", "-d", "-s", "-t", "-rt", "-mode", "-protect",
	"-media", "-m", "-max", "-origins", "-u", "-p", "-b", "-region", "-e",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string        HTTP bind address (e.g. ":5000")
//	-grpc string     gRPC health bind address, "" disables it
//	-d string        PostgreSQL DSN
//	-s string        JWT HMAC secret key
//	-t int           session token validity, minutes
//	-rt int          registration token validity, minutes (0 = same as -t)
//	-mode string     environment ("production" enables Secure cookies)
//	-protect         require a session on employee routes
//	-media string    media backend: filesystem | s3
//	-m string        filesystem media root
//	-max int         upload size limit, bytes
//	-origins string  comma separated CORS origins
//	-u, -p string    S3 root user / password
//	-b string        S3 bucket
//	-region string   S3 region
//	-e string        S3 base endpoint
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.EndpointAddrGRPC, "grpc", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionTTL := fs.Int("t", int(config.SessionTTL.Minutes()), "session token validity (in minutes)")
	registerTTL := fs.Int("rt", int(config.RegisterTokenTTL.Minutes()), "registration token validity (in minutes)")

	fs.StringVar(&config.Environment, "mode", config.Environment, "environment")
	fs.BoolVar(&config.ProtectEmployees, "protect", config.ProtectEmployees, "require a session on employee routes")
	fs.StringVar(&config.MediaBackend, "media", config.MediaBackend, "media backend")
	fs.StringVar(&config.MediaRoot, "m", config.MediaRoot, "media root directory")
	fs.Int64Var(&config.MaxUploadSize, "max", config.MaxUploadSize, "upload size limit (in bytes)")
	origins := fs.String("origins", strings.Join(config.AllowedOrigins, ","), "CORS origins")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "region", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTTL = time.Duration(*sessionTTL) * time.Minute
	config.RegisterTokenTTL = time.Duration(*registerTTL) * time.Minute
	config.AllowedOrigins = splitList(*origins)
}
