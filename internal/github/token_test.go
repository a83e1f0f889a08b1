package github

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestResolveAuthToken(t *testing.T) {
	t.Run("flag token wins", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "env-token")
		t.Setenv("PATH", t.TempDir())

		tok, src, err := ResolveAuthToken(context.Background(), " explicit ", "")
		if err != nil {
			t.Fatalf("ResolveAuthToken error: %v", err)
		}
		if tok != "explicit" {
			t.Fatalf("want explicit, got %q", tok)
		}
		if src != AuthTokenSourceFlag {
			t.Fatalf("want %q, got %q", AuthTokenSourceFlag, src)
		}
	})

	t.Run("env token used", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "env-token")
		t.Setenv("PATH", t.TempDir())

		tok, src, err := ResolveAuthToken(context.Background(), "", "")
		if err != nil {
			t.Fatalf("ResolveAuthToken error: %v", err)
		}
		if tok != "env-token" {
			t.Fatalf("want env-token, got %q", tok)
		}
		if src != AuthTokenSourceEnv {
			t.Fatalf("want %q, got %q", AuthTokenSourceEnv, src)
		}
	})

	t.Run("gh token used when env empty", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("test uses a shell script gh stub")
		}

		tmp := t.TempDir()
		ghPath := filepath.Join(tmp, "gh")
		if err := os.WriteFile(ghPath, []byte("#!/bin/sh\necho gh-token\n"), 0o755); err != nil {
			t.Fatalf("WriteFile gh stub failed: %v", err)
		}

		t.Setenv("GITHUB_TOKEN", "")
		t.Setenv("PATH", tmp)

		tok, src, err := ResolveAuthToken(context.Background(), "", "")
		if err != nil {
			t.Fatalf("ResolveAuthToken error: %v", err)
		}
		if tok != "gh-token" {
			t.Fatalf("want gh-token, got %q", tok)
		}
		if src != AuthTokenSourceGitHubCL {
			t.Fatalf("want %q, got %q", AuthTokenSourceGitHubCL, src)
		}
	})

	t.Run("gh queried for enterprise host", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("test uses a shell script gh stub")
		}

		tmp := t.TempDir()
		ghPath := filepath.Join(tmp, "gh")
		// Only answers for the enterprise host.
		script := "#!/bin/sh\nif [ \"$4\" = \"ghe.example.com\" ]; then echo ghe-token; else exit 1; fi\n"
		if err := os.WriteFile(ghPath, []byte(script), 0o755); err != nil {
			t.Fatalf("WriteFile gh stub failed: %v", err)
		}

		t.Setenv("GITHUB_TOKEN", "")
		t.Setenv("PATH", tmp)

		tok, _, err := ResolveAuthToken(context.Background(), "", "ghe.example.com")
		if err != nil {
			t.Fatalf("ResolveAuthToken error: %v", err)
		}
		if tok != "ghe-token" {
			t.Fatalf("want ghe-token, got %q", tok)
		}

		tok, _, err = ResolveAuthToken(context.Background(), "", "")
		if err != nil {
			t.Fatalf("ResolveAuthToken error: %v", err)
		}
		if tok != "" {
			t.Fatalf("want empty token for github.com, got %q", tok)
		}
	})

	t.Run("empty when neither env nor gh", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")
		t.Setenv("PATH", t.TempDir())

		tok, src, err := ResolveAuthToken(context.Background(), "", "")
		if err != nil {
			t.Fatalf("ResolveAuthToken error: %v", err)
		}
		if tok != "" {
			t.Fatalf("want empty token, got %q", tok)
		}
		if src != "" {
			t.Fatalf("want empty source, got %q", src)
		}
	})

	t.Run("gh invalid token output returns error", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("test uses a shell script gh stub")
		}

		tmp := t.TempDir()
		ghPath := filepath.Join(tmp, "gh")
		if err := os.WriteFile(ghPath, []byte("#!/bin/sh\nprintf 'line1\\nline2\\n'\n"), 0o755); err != nil {
			t.Fatalf("WriteFile gh stub failed: %v", err)
		}

		t.Setenv("GITHUB_TOKEN", "")
		t.Setenv("PATH", tmp)

		_, _, err := ResolveAuthToken(context.Background(), "", "")
		if err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("context canceled propagates error when using gh", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("test uses a shell script gh stub")
		}

		tmp := t.TempDir()
		ghPath := filepath.Join(tmp, "gh")
		if err := os.WriteFile(ghPath, []byte("#!/bin/sh\necho gh-token\n"), 0o755); err != nil {
			t.Fatalf("WriteFile gh stub failed: %v", err)
		}

		t.Setenv("GITHUB_TOKEN", "")
		t.Setenv("PATH", tmp)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, _, err := ResolveAuthToken(ctx, "", "")
		if err == nil {
			t.Fatalf("expected error")
		}
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})
}

func TestHostFromAPIURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "github.com"},
		{"https://api.github.com/", "github.com"},
		{"https://ghe.example.com/api/v3/", "ghe.example.com"},
		{"https://GHE.Example.com/api/v3", "ghe.example.com"},
		{"::not a url", "github.com"},
	}
	for _, tt := range tests {
		if got := HostFromAPIURL(tt.in); got != tt.want {
			t.Errorf("HostFromAPIURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
