// Package config defines the application configuration of reportmerge. It is
// loaded from YAML, filled with defaults from struct tags and finally
// overridden by REPORTMERGE_* environment variables.
//
// Example:
//
//	logging: info
//	profile: Indeed_Standard
//	profiles_dir: profiles
//	inputs:
//	  xtm: exports/xtm.csv
//	  tos: exports/tos.xlsx
//	  edit: https://reports.example.com/edit_distance.csv
//	publish:
//	  kind: sql
//	  sql: { kind: postgres, dsn: "postgres://...", table_prefix: weekly }
//	metrics:
//	  backend: prometheus
//	  pushgateway_url: http://pushgateway:9091
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"reportmerge/internal/datasource/httpds"
	"reportmerge/internal/mapping"
	pcsv "reportmerge/internal/parser/csv"
	"reportmerge/internal/publish"
)

// DefaultPath is read when no --config flag is given. A missing default
// file is not an error.
const DefaultPath = "reportmerge.yaml"

// Config is the top-level application configuration.
type Config struct {
	Logging     string `yaml:"logging" default:"info"`
	Profile     string `yaml:"profile" default:"Indeed_Standard"`
	ProfilesDir string `yaml:"profiles_dir"`

	Inputs  Inputs        `yaml:"inputs"`
	CSV     CSVConfig     `yaml:"csv"`
	HTTP    HTTPConfig    `yaml:"http"`
	Publish PublishConfig `yaml:"publish"`
	Metrics MetricsConfig `yaml:"metrics"`
	Server  ServerConfig  `yaml:"server"`
}

// Inputs holds the paths or URLs of the three exports.
type Inputs struct {
	XTM  string `yaml:"xtm"`
	TOS  string `yaml:"tos"`
	EDIT string `yaml:"edit"`
}

// Sources returns the configured inputs keyed by source, skipping empty ones.
func (in Inputs) Sources() map[mapping.SourceID]string {
	out := map[mapping.SourceID]string{}
	for id, loc := range map[mapping.SourceID]string{mapping.XTM: in.XTM, mapping.TOS: in.TOS, mapping.EDIT: in.EDIT} {
		if loc != "" {
			out[id] = loc
		}
	}
	return out
}

// CSVConfig controls delimited text decoding. An empty Comma sniffs the
// delimiter from the file.
type CSVConfig struct {
	Comma     string `yaml:"comma"`
	TrimSpace bool   `yaml:"trim_space" default:"true"`
}

// Options converts c for the csv decoder.
func (c CSVConfig) Options() pcsv.Options {
	var comma rune
	if r := []rune(c.Comma); len(r) == 1 {
		comma = r[0]
	}
	return pcsv.Options{Comma: comma, TrimSpace: c.TrimSpace}
}

// HTTPConfig configures downloads of URL inputs.
type HTTPConfig struct {
	Timeout            time.Duration `yaml:"timeout" default:"60s"`
	MaxRetries         int           `yaml:"max_retries" default:"3"`
	InitialBackoff     time.Duration `yaml:"initial_backoff" default:"500ms"`
	MaxBackoff         time.Duration `yaml:"max_backoff" default:"10s"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
}

// Client builds the download client.
func (h HTTPConfig) Client() *httpds.Client {
	return httpds.NewClient(httpds.Config{
		Timeout:            h.Timeout,
		MaxRetries:         h.MaxRetries,
		InitialBackoff:     h.InitialBackoff,
		MaxBackoff:         h.MaxBackoff,
		InsecureSkipVerify: h.InsecureSkipVerify,
	})
}

// PublishConfig selects the sink. An empty Kind disables publishing.
type PublishConfig struct {
	Kind   string `yaml:"kind"`
	Title  string `yaml:"title"`
	Sheets struct {
		CredentialsFile string `yaml:"credentials_file"`
		ShareAnyone     bool   `yaml:"share_anyone" default:"true"`
	} `yaml:"sheets"`
	XLSX struct {
		Dir  string `yaml:"dir" default:"."`
		Path string `yaml:"path"`
	} `yaml:"xlsx"`
	SQL struct {
		Kind        string `yaml:"kind" default:"sqlite"`
		DSN         string `yaml:"dsn"`
		TablePrefix string `yaml:"table_prefix" default:"reportmerge"`
	} `yaml:"sql"`
}

// Publisher converts p for publish.New.
func (p PublishConfig) Publisher(log logrus.FieldLogger) publish.Config {
	return publish.Config{
		Kind: p.Kind,
		Sheets: publish.SheetsConfig{
			CredentialsFile: p.Sheets.CredentialsFile,
			ShareAnyone:     p.Sheets.ShareAnyone,
		},
		XLSX: publish.XLSXConfig{Dir: p.XLSX.Dir, Path: p.XLSX.Path},
		SQL: publish.SQLConfig{
			Kind:        p.SQL.Kind,
			DSN:         p.SQL.DSN,
			TablePrefix: p.SQL.TablePrefix,
		},
		Log: log,
	}
}

// MetricsConfig selects the metrics backend: "", "prometheus" or "datadog".
type MetricsConfig struct {
	Backend        string `yaml:"backend"`
	PushgatewayURL string `yaml:"pushgateway_url"`
	DatadogAddr    string `yaml:"datadog_addr" default:"127.0.0.1:8125"`
	Job            string `yaml:"job" default:"reportmerge"`
}

// ServerConfig configures the upload UI.
type ServerConfig struct {
	Addr          string        `yaml:"addr" default:":8080"`
	MaxUploadSize int64         `yaml:"max_upload_size" default:"67108864"`
	SessionTTL    time.Duration `yaml:"session_ttl" default:"2h"`
}

// envOverrides maps environment variables onto config fields.
var envOverrides = map[string]func(*Config, string){
	"REPORTMERGE_LOG_LEVEL":          func(c *Config, v string) { c.Logging = v },
	"REPORTMERGE_PROFILE":            func(c *Config, v string) { c.Profile = v },
	"REPORTMERGE_PUBLISH_KIND":       func(c *Config, v string) { c.Publish.Kind = v },
	"REPORTMERGE_SQL_KIND":           func(c *Config, v string) { c.Publish.SQL.Kind = v },
	"REPORTMERGE_SQL_DSN":            func(c *Config, v string) { c.Publish.SQL.DSN = v },
	"REPORTMERGE_SHEETS_CREDENTIALS": func(c *Config, v string) { c.Publish.Sheets.CredentialsFile = v },
	"REPORTMERGE_PUSHGATEWAY_URL":    func(c *Config, v string) { c.Metrics.PushgatewayURL = v },
	"REPORTMERGE_DATADOG_ADDR":       func(c *Config, v string) { c.Metrics.DatadogAddr = v },
	"REPORTMERGE_SERVER_ADDR":        func(c *Config, v string) { c.Server.Addr = v },
}

// ApplyEnv overrides fields from lookup, normally os.LookupEnv. Empty values
// are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	for key, set := range envOverrides {
		if v, ok := lookup(key); ok && v != "" {
			set(c, v)
		}
	}
}

// Default returns a config holding only default values.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("config: defaults: %w", err)
	}
	return cfg, nil
}

// Load reads path, applies defaults and environment overrides. An empty
// path reads DefaultPath and tolerates its absence.
func Load(path string) (*Config, error) {
	optional := path == ""
	if optional {
		path = DefaultPath
	}

	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path) //nolint:gosec // user-provided config path
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case optional && errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("config: read: %w", err)
	}

	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}
