package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
)

type GraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type GraphQLError struct {
	Message string `json:"message"`
}

type GraphQLResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []GraphQLError `json:"errors"`
}

// QueryError reports a failed GraphQL round trip. StatusCode is set when the
// server answered with a non-2xx status; Messages is set when the payload
// carried an API-level error list. Err holds transport or decode failures.
type QueryError struct {
	StatusCode int
	Messages   []string
	Err        error
}

func (e *QueryError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("graphql: http %d", e.StatusCode)
	case len(e.Messages) > 0:
		return "graphql: " + strings.Join(e.Messages, "; ")
	case e.Err != nil:
		return "graphql: " + e.Err.Error()
	default:
		return "graphql: query failed"
	}
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func graphqlEndpoint(base *url.URL) (*url.URL, error) {
	if base == nil {
		return nil, errors.New("graphql: base url is nil")
	}

	u := *base
	u.RawQuery = ""
	u.Fragment = ""

	// GitHub.com REST base: https://api.github.com/
	// GitHub.com GraphQL:   https://api.github.com/graphql
	//
	// GHES REST base is typically: https://<host>/api/v3/
	// GHES GraphQL:               https://<host>/api/graphql
	path := strings.TrimSuffix(u.Path, "/")
	if strings.HasSuffix(path, "/api/v3") {
		u.Path = "/api/graphql"
		return &u, nil
	}

	u.Path = "/graphql"
	return &u, nil
}

// DoGraphQL executes a GraphQL POST against the GitHub API using the same
// underlying transport as the REST client (auth, verbose logging, etc.).
//
// Every failure after the request is built is returned as *QueryError.
func DoGraphQL[T any](ctx context.Context, c *Client, req GraphQLRequest) (T, error) {
	var zero T
	if ctx == nil {
		return zero, errors.New("graphql: ctx is nil")
	}
	if c == nil || c.Client == nil {
		return zero, errors.New("graphql: client is nil")
	}
	if c.HTTP == nil {
		return zero, errors.New("graphql: http client is nil")
	}

	endpoint, err := graphqlEndpoint(c.Client.BaseURL)
	if err != nil {
		return zero, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return zero, errors.Wrap(err, "graphql: marshal request")
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return zero, errors.Wrap(err, "graphql: build request")
	}
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("Accept", "application/json")

	hresp, err := c.HTTP.Do(hreq)
	if err != nil {
		return zero, &QueryError{Err: errors.Wrap(err, "do request")}
	}
	defer func() { _ = hresp.Body.Close() }()

	if hresp.StatusCode < 200 || hresp.StatusCode >= 300 {
		return zero, &QueryError{StatusCode: hresp.StatusCode}
	}

	var out GraphQLResponse[T]
	if err := json.NewDecoder(hresp.Body).Decode(&out); err != nil {
		return zero, &QueryError{Err: errors.Wrap(err, "decode response")}
	}

	if len(out.Errors) > 0 {
		msgs := make([]string, 0, len(out.Errors))
		for _, e := range out.Errors {
			msgs = append(msgs, e.Message)
		}
		return zero, &QueryError{Messages: msgs}
	}

	return out.Data, nil
}
