package client

import (
	"context"

	"github.com/pkg/errors"
)

// Cursor sentinels used by the paged CLOB endpoints. Cursors are opaque
// base64 tokens; only these two values carry meaning to the client.
const (
	InitialCursor = "MA=="
	EndCursor     = "LTE="
)

// pageFunc fetches one page for a cursor and returns its items plus the
// cursor of the next page.
type pageFunc[T any] func(ctx context.Context, cursor string) ([]T, string, error)

// fetchAllPages walks a cursor-paged endpoint iteratively from InitialCursor
// until EndCursor, concatenating items in order. A server handing back a
// cursor that was already visited would loop forever, so revisits abort with
// an error. Any page failure aborts the walk, partial results are dropped.
func fetchAllPages[T any](ctx context.Context, fetch pageFunc[T]) ([]T, error) {
	var all []T
	seen := map[string]struct{}{}
	cursor := InitialCursor

	for cursor != EndCursor {
		if _, ok := seen[cursor]; ok {
			return nil, errors.Errorf("pagination cursor %q revisited", cursor)
		}
		seen[cursor] = struct{}{}

		items, next, err := fetch(ctx, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)

		if next == "" {
			break
		}
		cursor = next
	}
	return all, nil
}

// offsetPageFunc fetches one offset/limit page and returns its items.
type offsetPageFunc[T any] func(ctx context.Context, limit, offset int) ([]T, error)

// fetchAllOffset walks an offset/limit endpoint until a page comes back
// shorter than the requested limit.
func fetchAllOffset[T any](ctx context.Context, limit int, fetch offsetPageFunc[T]) ([]T, error) {
	var all []T
	for offset := 0; ; offset += limit {
		items, err := fetch(ctx, limit, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) < limit {
			return all, nil
		}
	}
}

// orDefaultCursor substitutes InitialCursor for an empty cursor argument.
func orDefaultCursor(cursor string) string {
	if cursor == "" {
		return InitialCursor
	}
	return cursor
}
