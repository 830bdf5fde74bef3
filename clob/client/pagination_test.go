package client

import (
	"context"
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchAllPages(t *testing.T) {
	// three pages of 500, 500 and 120 items
	pages := map[string]struct {
		count int
		next  string
	}{
		InitialCursor: {count: 500, next: "NTAw"},
		"NTAw":        {count: 500, next: "MTAwMA=="},
		"MTAwMA==":    {count: 120, next: EndCursor},
	}

	calls := 0
	items, err := fetchAllPages(context.Background(), func(_ context.Context, cursor string) ([]int, string, error) {
		calls++
		page, ok := pages[cursor]
		require.Truef(t, ok, "unexpected cursor %q", cursor)
		out := make([]int, page.count)
		return out, page.next, nil
	})
	require.NoError(t, err)
	assert.Len(t, items, 1120)
	assert.Equal(t, 3, calls)
}

func TestFetchAllPagesPreservesOrder(t *testing.T) {
	items, err := fetchAllPages(context.Background(), func(_ context.Context, cursor string) ([]string, string, error) {
		switch cursor {
		case InitialCursor:
			return []string{"a", "b"}, "second", nil
		case "second":
			return []string{"c"}, EndCursor, nil
		default:
			return nil, "", fmt.Errorf("unexpected cursor %q", cursor)
		}
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, items)
}

func TestFetchAllPagesAbortsOnCursorRevisit(t *testing.T) {
	calls := 0
	_, err := fetchAllPages(context.Background(), func(_ context.Context, cursor string) ([]int, string, error) {
		calls++
		// a misbehaving server that always hands back the same cursor
		return []int{1}, "loop", nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "revisited")
	assert.Equal(t, 2, calls)
}

func TestFetchAllPagesDropsPartialResultsOnError(t *testing.T) {
	boom := errors.New("page 2 failed")
	items, err := fetchAllPages(context.Background(), func(_ context.Context, cursor string) ([]int, string, error) {
		if cursor == InitialCursor {
			return []int{1, 2, 3}, "second", nil
		}
		return nil, "", boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, items)
}

func TestFetchAllOffset(t *testing.T) {
	total := 1120
	limit := 500
	calls := 0
	items, err := fetchAllOffset(context.Background(), limit, func(_ context.Context, limit, offset int) ([]int, error) {
		calls++
		remaining := total - offset
		if remaining <= 0 {
			return nil, nil
		}
		n := limit
		if remaining < n {
			n = remaining
		}
		return make([]int, n), nil
	})
	require.NoError(t, err)
	assert.Len(t, items, total)
	assert.Equal(t, 3, calls, "a short page must terminate the walk")
}

func TestFetchAllOffsetEmpty(t *testing.T) {
	items, err := fetchAllOffset(context.Background(), 500, func(_ context.Context, limit, offset int) ([]int, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestOrDefaultCursor(t *testing.T) {
	assert.Equal(t, InitialCursor, orDefaultCursor(""))
	assert.Equal(t, "abc", orDefaultCursor("abc"))
}
