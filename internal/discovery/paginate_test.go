package discovery

import (
	"context"
	"errors"
	"strconv"
	"testing"
)

// pagedSource serves sizes[i] nodes on page i, chaining cursors "c1", "c2", ...
type pagedSource struct {
	sizes   []int
	failAt  int // 1-based page index that fails; 0 = never
	calls   int
	cursors []string
}

var errPage = errors.New("page failed")

func (s *pagedSource) fetch(_ context.Context, cursor string) (Page[int], error) {
	s.calls++
	s.cursors = append(s.cursors, cursor)
	idx := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor[1:])
		if err != nil {
			return Page[int]{}, err
		}
		idx = n
	}
	if s.failAt == idx+1 {
		return Page[int]{}, errPage
	}
	nodes := make([]int, s.sizes[idx])
	for i := range nodes {
		nodes[i] = idx*1000 + i
	}
	p := Page[int]{Nodes: nodes}
	if idx+1 < len(s.sizes) {
		p.HasNextPage = true
		p.EndCursor = "c" + strconv.Itoa(idx+1)
	}
	return p, nil
}

func TestPaginate_IssuesExactlyKRequests(t *testing.T) {
	tests := []struct {
		name  string
		sizes []int
	}{
		{name: "single empty page", sizes: []int{0}},
		{name: "single page", sizes: []int{7}},
		{name: "uneven pages", sizes: []int{3, 100, 1, 42}},
		{name: "empty middle page", sizes: []int{2, 0, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &pagedSource{sizes: tt.sizes}
			got, err := Paginate(context.Background(), src.fetch)
			if err != nil {
				t.Fatalf("Paginate: %v", err)
			}
			if src.calls != len(tt.sizes) {
				t.Fatalf("want %d requests, got %d", len(tt.sizes), src.calls)
			}
			total := 0
			for _, n := range tt.sizes {
				total += n
			}
			if len(got) != total {
				t.Fatalf("want %d nodes, got %d", total, len(got))
			}
			if src.cursors[0] != "" {
				t.Fatalf("first request must carry an empty cursor, got %q", src.cursors[0])
			}
		})
	}
}

func TestPaginate_FailedPageReturnsNoNodes(t *testing.T) {
	src := &pagedSource{sizes: []int{5, 5, 5, 5}, failAt: 3}
	got, err := Paginate(context.Background(), src.fetch)
	if !errors.Is(err, errPage) {
		t.Fatalf("want errPage, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected no partial nodes, got %d", len(got))
	}
	if src.calls != 3 {
		t.Fatalf("expected walk to stop at failing page, got %d calls", src.calls)
	}
}

func TestPaginate_StalledCursorIsError(t *testing.T) {
	calls := 0
	_, err := Paginate(context.Background(), func(context.Context, string) (Page[int], error) {
		calls++
		return Page[int]{Nodes: []int{1}, HasNextPage: true}, nil
	})
	if err == nil {
		t.Fatal("expected error for missing end cursor")
	}
	if calls != 1 {
		t.Fatalf("expected a single request, got %d", calls)
	}
}

func TestPaginate_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &pagedSource{sizes: []int{1}}
	_, err := Paginate(ctx, src.fetch)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if src.calls != 0 {
		t.Fatalf("expected no requests, got %d", src.calls)
	}
}

func TestPaginate_NilFetch(t *testing.T) {
	if _, err := Paginate[int](context.Background(), nil); err == nil {
		t.Fatal("expected error")
	}
}
