package config

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"reportmerge/internal/datasource/httpds"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks startup.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but does not block.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes one finding. Path is the dotted YAML path, for example
// "publish.sql.dsn".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

var (
	publishKinds = []string{"sheets", "xlsx", "sql"}
	sqlKinds     = []string{"sqlite", "postgres", "mssql"}
	metricKinds  = []string{"prometheus", "datadog"}
)

// ValidateConfig lints c without mutating it.
func ValidateConfig(c Config) []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, path, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if _, err := logrus.ParseLevel(c.Logging); err != nil {
		add(SeverityError, "logging", "unknown log level %q", c.Logging)
	}
	if strings.TrimSpace(c.Profile) == "" {
		add(SeverityError, "profile", "profile must not be empty")
	}

	if c.CSV.Comma != "" && utf8.RuneCountInString(c.CSV.Comma) != 1 {
		add(SeverityError, "csv.comma", "delimiter must be a single character, got %q", c.CSV.Comma)
	}
	if c.HTTP.MaxRetries < 0 {
		add(SeverityError, "http.max_retries", "must be >= 0")
	}
	for path, loc := range map[string]string{"inputs.xtm": c.Inputs.XTM, "inputs.tos": c.Inputs.TOS, "inputs.edit": c.Inputs.EDIT} {
		if httpds.IsURL(loc) && !strings.HasPrefix(loc, "https://") {
			add(SeverityWarning, path, "input is fetched over plain http")
		}
	}

	issues = append(issues, validatePublish(c.Publish)...)
	issues = append(issues, validateMetrics(c.Metrics)...)

	if strings.TrimSpace(c.Server.Addr) == "" {
		add(SeverityWarning, "server.addr", "empty address; serve will listen on :http")
	}
	if c.Server.MaxUploadSize <= 0 {
		add(SeverityError, "server.max_upload_size", "must be > 0")
	}

	slices.SortStableFunc(issues, func(a, b Issue) int { return strings.Compare(a.Path, b.Path) })
	return issues
}

func validatePublish(p PublishConfig) []Issue {
	var issues []Issue
	switch p.Kind {
	case "":
	case "sheets":
		if p.Sheets.CredentialsFile == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "publish.sheets.credentials_file",
				Message:  "no credentials file; application default credentials will be used",
			})
		}
	case "xlsx":
		if p.XLSX.Dir == "" && p.XLSX.Path == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: "publish.xlsx", Message: "dir or path is required"})
		}
	case "sql":
		if !slices.Contains(sqlKinds, p.SQL.Kind) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "publish.sql.kind",
				Message:  fmt.Sprintf("unknown database kind %q; expected one of %s", p.SQL.Kind, strings.Join(sqlKinds, ", ")),
			})
		}
		if strings.TrimSpace(p.SQL.DSN) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: "publish.sql.dsn", Message: "dsn must not be empty"})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "publish.kind",
			Message:  fmt.Sprintf("unknown publish kind %q; expected one of %s", p.Kind, strings.Join(publishKinds, ", ")),
		})
	}
	return issues
}

func validateMetrics(m MetricsConfig) []Issue {
	var issues []Issue
	switch m.Backend {
	case "", "none":
		return nil
	case "prometheus":
		if m.PushgatewayURL == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: "metrics.pushgateway_url", Message: "prometheus backend requires a pushgateway url"})
		}
	case "datadog":
		if m.DatadogAddr == "" {
			issues = append(issues, Issue{Severity: SeverityError, Path: "metrics.datadog_addr", Message: "datadog backend requires an agent address"})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; expected one of %s", m.Backend, strings.Join(metricKinds, ", ")),
		})
	}
	if strings.TrimSpace(m.Job) == "" {
		issues = append(issues, Issue{Severity: SeverityWarning, Path: "metrics.job", Message: "job is empty; series will carry no job label"})
	}
	return issues
}

// Errors returns the error-severity issues.
func Errors(issues []Issue) []Issue {
	var out []Issue
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			out = append(out, iss)
		}
	}
	return out
}
