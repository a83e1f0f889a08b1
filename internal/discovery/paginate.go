package discovery

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Page is one page of a cursor-paginated collection.
type Page[N any] struct {
	Nodes       []N
	HasNextPage bool
	EndCursor   string
}

// PageFunc fetches the page that starts after cursor. The first call receives
// an empty cursor.
type PageFunc[N any] func(ctx context.Context, cursor string) (Page[N], error)

// Paginate walks a collection until a page reports HasNextPage=false and
// returns every node in page order. Page size is never assumed. Any page error
// aborts the walk and no nodes are returned.
func Paginate[N any](ctx context.Context, fetch PageFunc[N]) ([]N, error) {
	if fetch == nil {
		return nil, errors.New("paginate: fetch is nil")
	}

	var (
		out    []N
		cursor string
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := fetch(ctx, cursor)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Nodes...)
		if !page.HasNextPage {
			return out, nil
		}
		// A server that claims more pages without a cursor would loop forever.
		if page.EndCursor == "" || page.EndCursor == cursor {
			return nil, errors.Newf("paginate: hasNextPage set but cursor did not advance (cursor %q)", cursor)
		}
		cursor = page.EndCursor
	}
}
