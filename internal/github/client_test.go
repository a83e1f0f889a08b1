package github

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewClient(t *testing.T) {
	ctx := context.Background()
	client, err := NewClient(ctx, "test-token")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.Client == nil || client.HTTP == nil {
		t.Fatal("expected REST and HTTP clients to be initialized")
	}
	if got := client.Client.BaseURL.String(); got != "https://api.github.com/" {
		t.Fatalf("unexpected default base URL: %s", got)
	}

	// No token still yields a usable (unauthenticated) client.
	client, err = NewClient(ctx, "")
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.Client == nil {
		t.Error("expected client to be initialized even without token")
	}
}

func TestNewClient_NilContextReturnsError(t *testing.T) {
	var nilCtx context.Context
	_, err := NewClient(nilCtx, "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "ctx is nil") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewClient_WithAPIURL(t *testing.T) {
	client, err := NewClient(context.Background(), "tok", WithAPIURL("https://ghe.example.com/api/v3/"))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if got := client.Client.BaseURL.String(); got != "https://ghe.example.com/api/v3/" {
		t.Fatalf("unexpected enterprise base URL: %s", got)
	}
}

func TestNewClient_WithVerbose_LogsAndAuthHeader(t *testing.T) {
	ctx := context.Background()

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	t.Cleanup(server.Close)

	t.Run("unauthenticated still logs", func(t *testing.T) {
		gotAuth = ""
		var buf bytes.Buffer
		c, err := NewClient(ctx, "", WithVerbose(true, &buf), WithAPIURL(server.URL+"/api/v3/"))
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		if _, err := DoGraphQL[struct{}](ctx, c, GraphQLRequest{Query: "{ viewer { login } }"}); err != nil {
			t.Fatalf("DoGraphQL: %v", err)
		}
		if !strings.Contains(buf.String(), "[verbose] github api: POST") {
			t.Fatalf("expected verbose log, got: %q", buf.String())
		}
		if gotAuth != "" {
			t.Fatalf("expected no Authorization header, got %q", gotAuth)
		}
	})

	t.Run("authenticated sends bearer token", func(t *testing.T) {
		gotAuth = ""
		var buf bytes.Buffer
		c, err := NewClient(ctx, "test-token", WithVerbose(true, &buf), WithAPIURL(server.URL+"/api/v3/"))
		if err != nil {
			t.Fatalf("NewClient failed: %v", err)
		}
		if _, err := DoGraphQL[struct{}](ctx, c, GraphQLRequest{Query: "{ viewer { login } }"}); err != nil {
			t.Fatalf("DoGraphQL: %v", err)
		}
		if gotAuth != "Bearer test-token" {
			t.Fatalf("expected bearer Authorization header, got %q", gotAuth)
		}
	})
}
