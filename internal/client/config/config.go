package config

import "time"

// Config holds runtime settings for the SimuOrg CLI.
//
// Fields:
//   - APIBaseURL: origin of the backend HTTP API; the /api prefix is
//     appended by the gateway client.
//   - RequestTimeout: per-request timeout of the underlying HTTP transport.
//   - TokenStorePath: path of the SQLite file holding the persisted token.
type Config struct {
	APIBaseURL     string
	RequestTimeout time.Duration
	TokenStorePath string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8000"
	c.RequestTimeout = 30 * time.Second
	c.TokenStorePath = "simuorg.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}
