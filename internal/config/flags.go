package config

import (
	"flag"
	"os"
	"time"

	"github.com/mkarpuk/rowguard/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   PostgreSQL DSN
//	-l int      lock-wait timeout, milliseconds
//	-m string   Prometheus metrics bind address
//
// Arguments are first filtered with flagx.FilterArgs so flags owned by
// other components don't break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-l", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	lockTimeoutMs := fs.Int("l", int(config.LockTimeout.Milliseconds()), "lock-wait timeout (in milliseconds)")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "metrics bind address")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.LockTimeout = time.Duration(*lockTimeoutMs) * time.Millisecond
}
