package pagination

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/microsoft/vscode-pull-request-github-sub005/internal/errors"
	"github.com/microsoft/vscode-pull-request-github-sub005/internal/forge"
)

// fakeSource serves a fixed set of pages and records every page request.
type fakeSource struct {
	id     string
	pages  [][]forge.PullRequest
	failOn map[int]error
	calls  []int
}

func (f *fakeSource) ID() string { return f.id }

func (f *fakeSource) FetchPage(_ context.Context, _ string, page int) (*forge.Page, error) {
	f.calls = append(f.calls, page)

	if err := f.failOn[page]; err != nil {
		return nil, err
	}

	if page < 1 || page > len(f.pages) {
		return &forge.Page{}, nil
	}

	return &forge.Page{
		Items:        f.pages[page-1],
		HasMorePages: page < len(f.pages),
	}, nil
}

// newFakeSource builds a source with pageCount pages of perPage items each,
// titled "<id>:<n>" so item identity is checkable across sources.
func newFakeSource(id string, pageCount, perPage int) *fakeSource {
	src := &fakeSource{id: id, failOn: map[int]error{}}
	n := 0
	for p := 0; p < pageCount; p++ {
		var page []forge.PullRequest
		for i := 0; i < perPage; i++ {
			n++
			page = append(page, forge.PullRequest{Title: fmt.Sprintf("%s:%d", id, n)})
		}
		src.pages = append(src.pages, page)
	}
	return src
}

func titles(items []forge.PullRequest) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Title
	}
	return out
}

func TestFetchValidation(t *testing.T) {
	c := NewCoordinator(NewCursorStore(), nil)
	ctx := context.Background()

	_, err := c.Fetch(ctx, "", ModeInitialize, nil)
	require.Error(t, err)

	_, err = c.Fetch(ctx, "all", Mode(99), nil)
	require.ErrorIs(t, err, appErrors.ErrUnknownFetchMode)
}

func TestFetchNoSources(t *testing.T) {
	c := NewCoordinator(NewCursorStore(), nil)

	result, err := c.Fetch(context.Background(), "all", ModeInitialize, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.False(t, result.HasMorePages)
	assert.False(t, result.HasUnsearchedSources)
}

func TestInitializeFetchesOnePageFromFirstSource(t *testing.T) {
	s1 := newFakeSource("s1", 3, 2)
	s2 := newFakeSource("s2", 2, 2)
	c := NewCoordinator(NewCursorStore(), nil)

	result, err := c.Fetch(context.Background(), "all", ModeInitialize, []Source{s1, s2})
	require.NoError(t, err)

	assert.Equal(t, []string{"s1:1", "s1:2"}, titles(result.Items))
	assert.True(t, result.HasMorePages)
	assert.True(t, result.HasUnsearchedSources, "second source was never queried")
	assert.Equal(t, []int{1}, s1.calls)
	assert.Empty(t, s2.calls)

	// Baseline recorded as one page
	total, ok := c.Store().Progress("all")
	require.True(t, ok)
	assert.Equal(t, 1, total)
}

func TestInitializeSkipsEmptyFirstSource(t *testing.T) {
	s1 := newFakeSource("s1", 0, 0)
	s2 := newFakeSource("s2", 1, 2)
	c := NewCoordinator(NewCursorStore(), nil)

	result, err := c.Fetch(context.Background(), "all", ModeInitialize, []Source{s1, s2})
	require.NoError(t, err)

	assert.Equal(t, []string{"s2:1", "s2:2"}, titles(result.Items))
	assert.False(t, result.HasUnsearchedSources)
}

func TestInitializeGivesExhaustedSourcesOneChance(t *testing.T) {
	s1 := newFakeSource("s1", 1, 1)
	store := NewCursorStore()
	// A stale exhausted flag with an untouched cursor must not block the
	// degenerate initialize pass.
	store.Update(Cursor{Key: CursorKey{SourceID: "s1", QueryID: "all"}, HasMore: HasMoreNo})

	c := NewCoordinator(store, nil)

	result, err := c.Fetch(context.Background(), "all", ModeInitialize, []Source{s1})
	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
	assert.Equal(t, []int{1}, s1.calls)
}

func TestNextPageAdvancesExactlyOneSource(t *testing.T) {
	s1 := newFakeSource("s1", 2, 2)
	s2 := newFakeSource("s2", 2, 2)
	c := NewCoordinator(NewCursorStore(), nil)
	ctx := context.Background()

	_, err := c.Fetch(ctx, "all", ModeInitialize, []Source{s1, s2})
	require.NoError(t, err)

	result, err := c.Fetch(ctx, "all", ModeNextPage, []Source{s1, s2})
	require.NoError(t, err)

	assert.Equal(t, []string{"s1:3", "s1:4"}, titles(result.Items))
	assert.Equal(t, []int{1, 2}, s1.calls)
	assert.Empty(t, s2.calls, "nextPage advances exactly one source")
}

func TestNextPageSkipsExhaustedSources(t *testing.T) {
	s1 := newFakeSource("s1", 1, 1)
	s2 := newFakeSource("s2", 1, 1)
	c := NewCoordinator(NewCursorStore(), nil)
	ctx := context.Background()

	_, err := c.Fetch(ctx, "all", ModeInitialize, []Source{s1, s2})
	require.NoError(t, err)

	// s1 is exhausted after its single page; nextPage must move to s2
	result, err := c.Fetch(ctx, "all", ModeNextPage, []Source{s1, s2})
	require.NoError(t, err)

	assert.Equal(t, []string{"s2:1"}, titles(result.Items))
	assert.Equal(t, []int{1}, s1.calls, "exhausted source is not re-queried")
}

// Pagination completeness: repeatedly calling nextPage until everything is
// exhausted yields the union of all items exactly once each.
func TestPaginationCompleteness(t *testing.T) {
	ctx := context.Background()

	sources := []Source{
		newFakeSource("s1", 3, 2),
		newFakeSource("s2", 2, 3),
		newFakeSource("s3", 1, 4),
	}
	c := NewCoordinator(NewCursorStore(), nil)

	var all []string

	result, err := c.Fetch(ctx, "all", ModeInitialize, sources)
	require.NoError(t, err)
	all = append(all, titles(result.Items)...)

	for i := 0; i < 50; i++ {
		result, err = c.Fetch(ctx, "all", ModeNextPage, sources)
		require.NoError(t, err)

		if len(result.Items) == 0 {
			break
		}
		all = append(all, titles(result.Items)...)
	}

	// 3*2 + 2*3 + 1*4 = 16 items, no duplicates, no omissions
	require.Len(t, all, 16)

	seen := make(map[string]bool, len(all))
	for _, title := range all {
		assert.False(t, seen[title], "item %s returned twice", title)
		seen[title] = true
	}
	for _, id := range []string{"s1", "s2", "s3"} {
		assert.True(t, seen[id+":1"], "first item of %s missing", id)
	}
}

// Restore equivalence: a fresh coordinator sharing persisted cursor state
// returns the same item set the original sequence of calls produced.
func TestRestoreEquivalence(t *testing.T) {
	ctx := context.Background()

	build := func() []Source {
		return []Source{
			newFakeSource("s1", 3, 2),
			newFakeSource("s2", 2, 2),
		}
	}

	original := NewCoordinator(NewCursorStore(), nil)
	sources := build()

	var seen []string

	result, err := original.Fetch(ctx, "all", ModeInitialize, sources)
	require.NoError(t, err)
	seen = append(seen, titles(result.Items)...)

	for i := 0; i < 3; i++ {
		result, err = original.Fetch(ctx, "all", ModeNextPage, sources)
		require.NoError(t, err)
		seen = append(seen, titles(result.Items)...)
	}

	// Persist and rebuild in a fresh process
	cursors, progress := original.Store().Snapshot()
	freshStore := NewCursorStore()
	freshStore.Hydrate(cursors, progress)

	restored := NewCoordinator(freshStore, nil)
	restoredResult, err := restored.Fetch(ctx, "all", ModeRestore, build())
	require.NoError(t, err)

	assert.ElementsMatch(t, seen, titles(restoredResult.Items))
}

func TestRestoreClampsShrunkenSource(t *testing.T) {
	ctx := context.Background()

	// Cursor claims three pages were seen, but the source now has one.
	s1 := newFakeSource("s1", 1, 2)

	store := NewCursorStore()
	store.Update(Cursor{Key: CursorKey{SourceID: "s1", QueryID: "all"}, Page: 3, HasMore: HasMoreYes})
	store.SetProgressIfUnset("all", 4)

	c := NewCoordinator(store, nil)

	result, err := c.Fetch(ctx, "all", ModeRestore, []Source{s1})
	require.NoError(t, err)

	assert.Equal(t, []string{"s1:1", "s1:2"}, titles(result.Items), "restore returns what the source still has")
	assert.Equal(t, []int{1}, s1.calls, "walking stops once the source reports no more pages")

	cur := store.Get("s1", "all")
	assert.Equal(t, 3, cur.Page, "recorded page number stays monotonic")
	assert.Equal(t, HasMoreNo, cur.HasMore, "source is clamped to exhausted")
}

func TestFirstSourceFailurePropagates(t *testing.T) {
	s1 := newFakeSource("s1", 2, 2)
	s1.failOn[1] = appErrors.ErrTest
	s2 := newFakeSource("s2", 2, 2)

	c := NewCoordinator(NewCursorStore(), nil)

	_, err := c.Fetch(context.Background(), "all", ModeInitialize, []Source{s1, s2})
	require.ErrorIs(t, err, appErrors.ErrSourceFetchFailed)
	assert.Empty(t, s2.calls, "failure before any item stops the call")
}

func TestLaterFailureMarksSourceExhausted(t *testing.T) {
	ctx := context.Background()

	s1 := newFakeSource("s1", 3, 2)
	s1.failOn[2] = appErrors.ErrTest

	store := NewCursorStore()
	store.Update(Cursor{Key: CursorKey{SourceID: "s1", QueryID: "all"}, Page: 3, HasMore: HasMoreYes})
	store.SetProgressIfUnset("all", 3)

	c := NewCoordinator(store, nil)

	result, err := c.Fetch(ctx, "all", ModeRestore, []Source{s1})
	require.NoError(t, err, "failure after items were returned is swallowed")

	assert.Equal(t, []string{"s1:1", "s1:2"}, titles(result.Items))
	assert.Equal(t, HasMoreNo, store.Get("s1", "all").HasMore, "failing source is marked exhausted")
}

func TestAllSourcesEmptyReturnsEmptyPage(t *testing.T) {
	s1 := newFakeSource("s1", 0, 0)
	s2 := newFakeSource("s2", 0, 0)

	c := NewCoordinator(NewCursorStore(), nil)

	result, err := c.Fetch(context.Background(), "all", ModeInitialize, []Source{s1, s2})
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.False(t, result.HasMorePages)
	assert.False(t, result.HasUnsearchedSources)
}

func TestIndependentQueriesTrackSeparateCursors(t *testing.T) {
	ctx := context.Background()
	s1 := newFakeSource("s1", 3, 1)
	c := NewCoordinator(NewCursorStore(), nil)

	_, err := c.Fetch(ctx, "all", ModeInitialize, []Source{s1})
	require.NoError(t, err)
	_, err = c.Fetch(ctx, "mine", ModeInitialize, []Source{s1})
	require.NoError(t, err)

	assert.Equal(t, 1, c.Store().Get("s1", "all").Page)
	assert.Equal(t, 1, c.Store().Get("s1", "mine").Page)
	assert.Equal(t, []int{1, 1}, s1.calls, "each query paginates the source independently")
}

func TestRepoSourceID(t *testing.T) {
	src := NewRepoSource(forge.NewMockClient(), "acme", "widget", nil)
	assert.Equal(t, "acme/widget", src.ID())
}
