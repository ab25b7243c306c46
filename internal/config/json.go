package config

import (
	"encoding/json"
	"os"

	"github.com/mkarpuk/rowguard/internal/flagx"
	"github.com/mkarpuk/rowguard/internal/timex"
)

// jsonConfig is the JSON-file shape of Config. Durations accept both
// strings ("5s") and integer nanoseconds via timex.Duration.
type jsonConfig struct {
	DatabaseDSN string         `json:"database_dsn"`
	LockTimeout timex.Duration `json:"lock_timeout"`
	MetricsAddr string         `json:"metrics_addr"`
}

// parseJSON overlays values from the JSON file named by -c/-config, if
// any. An unreadable or malformed file is a startup error and panics.
func parseJSON(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &jsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.LockTimeout.Duration > 0 {
		config.LockTimeout = c.LockTimeout.Duration
	}
	if c.MetricsAddr != "" {
		config.MetricsAddr = c.MetricsAddr
	}
}
