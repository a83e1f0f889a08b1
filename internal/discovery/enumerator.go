package discovery

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	gh "ghmirror/internal/github"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

const (
	defaultPageSize       = 100
	defaultOrgConcurrency = 4
)

// Enumerator lists every repository the authenticated user can reach: the
// viewer's own/collaborator/org-member repositories plus the repositories of
// each organization the viewer belongs to.
type Enumerator struct {
	client         *gh.Client
	pageSize       int
	orgConcurrency int
	log            io.Writer
	logMu          sync.Mutex
}

type Option func(*Enumerator)

// WithPageSize overrides the GraphQL page size (1..100).
func WithPageSize(n int) Option {
	return func(e *Enumerator) {
		if n > 0 && n <= 100 {
			e.pageSize = n
		}
	}
}

// WithOrgConcurrency bounds how many organization streams are walked at once.
func WithOrgConcurrency(n int) Option {
	return func(e *Enumerator) {
		if n > 0 {
			e.orgConcurrency = n
		}
	}
}

// WithLog enables verbose per-page diagnostics on w.
func WithLog(w io.Writer) Option {
	return func(e *Enumerator) {
		e.log = w
	}
}

func NewEnumerator(client *gh.Client, opts ...Option) (*Enumerator, error) {
	if client == nil {
		return nil, errors.New("discovery: github client is nil")
	}
	e := &Enumerator{
		client:         client,
		pageSize:       defaultPageSize,
		orgConcurrency: defaultOrgConcurrency,
	}
	for _, apply := range opts {
		if apply != nil {
			apply(e)
		}
	}
	return e, nil
}

// Enumerate walks all collections and returns the deduplicated inventory.
//
// Any failed page fails the whole call with a *github.QueryError and no
// partial inventory. An inventory with zero repositories is not an error.
//
// Organizations are read from the first page only (up to 100); memberships
// beyond that are not visited.
func (e *Enumerator) Enumerate(ctx context.Context) (*Inventory, error) {
	if ctx == nil {
		return nil, errors.New("discovery: ctx is nil")
	}

	var viewer string
	personal, err := Paginate(ctx, func(ctx context.Context, cursor string) (Page[repoNode], error) {
		data, err := gh.DoGraphQL[viewerReposData](ctx, e.client, gh.GraphQLRequest{
			Query:     viewerReposQuery,
			Variables: e.vars(cursor, nil),
		})
		if err != nil {
			return Page[repoNode]{}, errors.Wrap(err, "list viewer repositories")
		}
		if viewer == "" {
			viewer = data.Viewer.Login
		}
		page := data.Viewer.Repositories.page()
		e.logf("viewer page after %q: %d repositories", cursor, len(page.Nodes))
		return page, nil
	})
	if err != nil {
		return nil, err
	}

	orgs, err := e.listOrganizations(ctx)
	if err != nil {
		return nil, err
	}

	perOrg := make([][]repoNode, len(orgs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.orgConcurrency)
	for i, login := range orgs {
		g.Go(func() error {
			nodes, err := e.listOrgRepositories(gctx, login)
			if err != nil {
				return err
			}
			perOrg[i] = nodes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pool := make([]repoNode, 0, len(personal))
	pool = append(pool, personal...)
	for _, nodes := range perOrg {
		pool = append(pool, nodes...)
	}

	return &Inventory{
		Viewer:        viewer,
		Organizations: orgs,
		Repositories:  dedupe(pool),
	}, nil
}

func (e *Enumerator) listOrganizations(ctx context.Context) ([]string, error) {
	data, err := gh.DoGraphQL[viewerOrgsData](ctx, e.client, gh.GraphQLRequest{
		Query:     viewerOrgsQuery,
		Variables: map[string]any{"first": 100},
	})
	if err != nil {
		return nil, errors.Wrap(err, "list organizations")
	}

	orgs := make([]string, 0, len(data.Viewer.Organizations.Nodes))
	for _, n := range data.Viewer.Organizations.Nodes {
		if login := strings.TrimSpace(n.Login); login != "" {
			orgs = append(orgs, login)
		}
	}
	e.logf("viewer %s belongs to %d organizations", data.Viewer.Login, len(orgs))
	return orgs, nil
}

// listOrgRepositories walks a single organization's repositories. The login
// is sent with every page and checked against the response, so one stream can
// never consume another organization's pages.
func (e *Enumerator) listOrgRepositories(ctx context.Context, login string) ([]repoNode, error) {
	return Paginate(ctx, func(ctx context.Context, cursor string) (Page[repoNode], error) {
		data, err := gh.DoGraphQL[orgReposData](ctx, e.client, gh.GraphQLRequest{
			Query:     orgReposQuery,
			Variables: e.vars(cursor, map[string]any{"login": login}),
		})
		if err != nil {
			return Page[repoNode]{}, errors.Wrapf(err, "list repositories of organization %s", login)
		}
		if data.Organization == nil {
			return Page[repoNode]{}, &gh.QueryError{Err: errors.Newf("organization %s not found", login)}
		}
		if !strings.EqualFold(data.Organization.Login, login) {
			return Page[repoNode]{}, &gh.QueryError{
				Err: errors.Newf("requested organization %s, got page for %s", login, data.Organization.Login),
			}
		}
		page := data.Organization.Repositories.page()
		e.logf("org %s page after %q: %d repositories", login, cursor, len(page.Nodes))
		return page, nil
	})
}

func (e *Enumerator) vars(cursor string, extra map[string]any) map[string]any {
	v := map[string]any{"first": e.pageSize}
	if cursor != "" {
		v["cursor"] = cursor
	}
	for k, val := range extra {
		v[k] = val
	}
	return v
}

func (e *Enumerator) logf(format string, args ...any) {
	if e.log == nil {
		return
	}
	e.logMu.Lock()
	defer e.logMu.Unlock()
	_, _ = fmt.Fprintf(e.log, "[verbose] discovery: "+format+"\n", args...)
}

// dedupe keeps one repository per FullName (last seen wins) and sorts the
// result by FullName.
func dedupe(nodes []repoNode) []Repository {
	byName := make(map[string]Repository, len(nodes))
	for _, n := range nodes {
		r := n.toRepository()
		if r.FullName == "" {
			continue
		}
		byName[r.FullName] = r
	}

	out := make([]Repository, 0, len(byName))
	for _, r := range byName {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out
}
