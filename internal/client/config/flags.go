package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/employeehub/internal/flagx"
)

// FlagNames lists the flags parseFlags and parseJson consume. All of them
// take a value.
var FlagNames = []string{"-a", "-t", "-timeout", "-c", "-config"}

// parseFlags populates selected Config fields from command-line flags.
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, so subcommand words do not stop parsing.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-timeout"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the roster API")
	fs.StringVar(&cfg.Token, "t", cfg.Token, "session token")
	timeout := fs.Int("timeout", int(cfg.Timeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.Timeout = time.Duration(*timeout) * time.Second
}
