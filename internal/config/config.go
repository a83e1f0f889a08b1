package config

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

const (
	DefaultTargetDir      = "~/code-blacksite"
	DefaultConcurrency    = 8
	DefaultOrgConcurrency = 4
	DefaultLayout         = "flat"
)

type Config struct {
	// MAINTAINER NOTE: If you add/change/remove config fields, keep the CLI
	// flags in internal/cli/sync.go in sync.
	Auth    Auth
	Mirror  Mirror
	Output  Output
	Runtime Runtime
}

type Auth struct {
	// Token is the GitHub access token (see --token). Empty falls back to
	// GITHUB_TOKEN, then to gh CLI auth.
	Token string

	// APIURL is a GitHub Enterprise Server REST base URL (see --api-url).
	// Empty means github.com.
	APIURL string
}

type Mirror struct {
	// TargetDir is the directory mirrors are kept in (see --target).
	// A leading ~ is expanded and the result made absolute by Validate.
	TargetDir string

	// Layout selects the on-disk layout (see --layout).
	// Allowed values: flat, owner.
	Layout string

	// DryRun enumerates and prints the plan without invoking git (see --dry-run).
	DryRun bool
}

type Output struct {
	// NoColor disables colored console output (see --no-color).
	NoColor bool

	// NoConsole suppresses the console sink (see --no-console).
	// Use with --emit/--out for machine-readable output only.
	NoConsole bool

	// Out writes structured output to this path (see --out).
	Out string

	// OutFormat selects the format for --out (see --out-format).
	// Allowed values: json, ndjson. If empty, it is inferred from the --out file extension.
	OutFormat string

	// Emit writes an additional structured event stream to stdout (see --emit).
	// Allowed values: json, ndjson.
	Emit []string
}

type Runtime struct {
	// Concurrency caps concurrent clone/update operations (see --concurrency).
	// Must be >= 1.
	Concurrency int

	// OrgConcurrency caps how many organizations are enumerated at once
	// (see --org-concurrency). Must be >= 1.
	OrgConcurrency int

	// Verbose prints every GitHub API call and git invocation to stderr.
	Verbose bool
}

func New() *Config {
	return &Config{
		Mirror: Mirror{
			TargetDir: DefaultTargetDir,
			Layout:    DefaultLayout,
		},
		Runtime: Runtime{
			Concurrency:    DefaultConcurrency,
			OrgConcurrency: DefaultOrgConcurrency,
		},
	}
}

func (c *Config) Validate() error {
	c.Auth.Token = strings.TrimSpace(c.Auth.Token)

	c.Auth.APIURL = strings.TrimSpace(c.Auth.APIURL)
	if c.Auth.APIURL != "" {
		u, err := url.Parse(c.Auth.APIURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.Newf("invalid --api-url value %q: expected an http(s) URL", c.Auth.APIURL)
		}
	}

	target, err := normalizeTargetDir(c.Mirror.TargetDir)
	if err != nil {
		return errors.Wrap(err, "invalid --target value")
	}
	c.Mirror.TargetDir = target

	c.Mirror.Layout = normalizeEnumValue(c.Mirror.Layout)
	if c.Mirror.Layout == "" {
		c.Mirror.Layout = DefaultLayout
	}
	if c.Mirror.Layout != "flat" && c.Mirror.Layout != "owner" {
		return errors.Newf("unsupported --layout: %s (must be one of: flat, owner)", c.Mirror.Layout)
	}

	for i, emit := range c.Output.Emit {
		v := normalizeEnumValue(emit)
		if v != "json" && v != "ndjson" {
			return errors.Newf("unsupported --emit value: %q (must be one of: json, ndjson)", emit)
		}
		c.Output.Emit[i] = v
	}

	c.Output.Out = strings.TrimSpace(c.Output.Out)
	if c.Output.Out != "" {
		c.Output.OutFormat = normalizeEnumValue(c.Output.OutFormat)
		if c.Output.OutFormat == "" {
			ext := strings.ToLower(filepath.Ext(c.Output.Out))
			switch ext {
			case ".json":
				c.Output.OutFormat = "json"
			case ".ndjson", ".jsonl":
				c.Output.OutFormat = "ndjson"
			case "":
				return errors.New("cannot infer output format from file extension (missing extension); use --out-format")
			default:
				return errors.Newf("cannot infer output format from file extension %q; use --out-format", ext)
			}
		} else if c.Output.OutFormat != "json" && c.Output.OutFormat != "ndjson" {
			return errors.Newf("unsupported --out-format: %s (must be one of: json, ndjson)", c.Output.OutFormat)
		}
	}

	if c.Runtime.Concurrency <= 0 {
		return errors.New("--concurrency must be >= 1")
	}
	if c.Runtime.OrgConcurrency <= 0 {
		return errors.New("--org-concurrency must be >= 1")
	}

	return nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func normalizeTargetDir(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("target directory is empty")
	}
	if raw == "~" || strings.HasPrefix(raw, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "resolve home directory")
		}
		raw = filepath.Join(home, strings.TrimPrefix(raw, "~"))
	}
	abs, err := filepath.Abs(raw)
	if err != nil {
		return "", errors.Wrapf(err, "resolve %q", raw)
	}
	return abs, nil
}
