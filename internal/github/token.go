package github

import (
	"context"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

type AuthTokenSource string

const (
	AuthTokenSourceFlag     AuthTokenSource = "flag:--token"
	AuthTokenSourceEnv      AuthTokenSource = "env:GITHUB_TOKEN"
	AuthTokenSourceGitHubCL AuthTokenSource = "gh"
)

const defaultHost = "github.com"

// ResolveAuthToken resolves a GitHub access token for host (empty means
// github.com).
//
// Precedence:
//  1. provided (if non-empty)
//  2. GITHUB_TOKEN env var
//  3. GitHub CLI: `gh auth token -h <host>`
//
// It never prints the token.
func ResolveAuthToken(ctx context.Context, provided, host string) (token string, source AuthTokenSource, err error) {
	if tok := strings.TrimSpace(provided); tok != "" {
		return tok, AuthTokenSourceFlag, nil
	}

	if env := strings.TrimSpace(os.Getenv("GITHUB_TOKEN")); env != "" {
		return env, AuthTokenSourceEnv, nil
	}

	if host == "" {
		host = defaultHost
	}
	tok, ok, err := tokenFromGitHubCLI(ctx, host)
	if err != nil {
		return "", "", err
	}
	if ok {
		return tok, AuthTokenSourceGitHubCL, nil
	}
	return "", "", nil
}

// HostFromAPIURL returns the hostname gh knows an API base URL by. Empty or
// unparsable input maps to github.com.
func HostFromAPIURL(apiURL string) string {
	apiURL = strings.TrimSpace(apiURL)
	if apiURL == "" {
		return defaultHost
	}
	u, err := url.Parse(apiURL)
	if err != nil || u.Hostname() == "" {
		return defaultHost
	}
	host := strings.ToLower(u.Hostname())
	if host == "api.github.com" {
		return defaultHost
	}
	return host
}

func tokenFromGitHubCLI(ctx context.Context, host string) (token string, ok bool, err error) {
	if _, lookErr := exec.LookPath("gh"); lookErr != nil {
		return "", false, nil
	}

	// Bounded so a broken gh config or credential helper cannot stall the run
	// before enumeration even starts.
	cmdCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}

	cmd := exec.CommandContext(cmdCtx, "gh", "auth", "token", "-h", host)
	env := os.Environ()
	filteredEnv := env[:0]
	for _, entry := range env {
		if strings.HasPrefix(entry, "GH_PAGER=") {
			continue
		}
		filteredEnv = append(filteredEnv, entry)
	}
	cmd.Env = append(filteredEnv, "GH_PAGER=cat")
	out, runErr := cmd.CombinedOutput()
	if runErr != nil {
		if cmdCtx.Err() != nil {
			return "", false, cmdCtx.Err()
		}
		// gh present but not logged in for this host: no token. The raw output
		// is dropped on purpose so nothing sensitive reaches the terminal.
		return "", false, nil
	}

	tok := strings.TrimSpace(string(out))
	if tok == "" {
		return "", false, nil
	}
	if strings.ContainsAny(tok, " \t\n\r") {
		return "", false, errors.New("invalid token returned by gh: contains whitespace")
	}

	return tok, true, nil
}
