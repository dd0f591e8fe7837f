package pagination

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	appErrors "github.com/microsoft/vscode-pull-request-github-sub005/internal/errors"
	"github.com/microsoft/vscode-pull-request-github-sub005/internal/forge"
	"github.com/microsoft/vscode-pull-request-github-sub005/internal/logging"
)

// Source is one independently-paginated remote repository contributing pull
// requests to a logical query. Page numbering starts at 1.
type Source interface {
	// ID returns a stable identifier, unique among the sources of a query
	ID() string

	// FetchPage returns one page of results for the query
	FetchPage(ctx context.Context, queryID string, page int) (*forge.Page, error)
}

// Mode selects the access pattern of a Fetch call.
type Mode int

const (
	// ModeInitialize loads the first logical page of a fresh query
	ModeInitialize Mode = iota

	// ModeNextPage advances exactly one source's cursor by one page
	ModeNextPage

	// ModeRestore re-fetches all previously seen pages after a reload
	ModeRestore
)

// String names the mode for logging.
func (m Mode) String() string {
	switch m {
	case ModeInitialize:
		return "initialize"
	case ModeNextPage:
		return "nextPage"
	case ModeRestore:
		return "restore"
	default:
		return "invalid"
	}
}

// Result is one merged logical page.
type Result struct {
	// Items holds the merged pull requests in source order
	Items []forge.PullRequest

	// HasMorePages reports whether any queried source has pages left
	HasMorePages bool

	// HasUnsearchedSources reports whether sources after the stopping
	// point were never queried in this call
	HasUnsearchedSources bool
}

// Coordinator merges paginated results across sources and tracks cursors.
//
// Fetch calls for the same query id are collapsed through a singleflight
// group, so concurrent identical calls share one execution instead of
// racing on cursor state. Calls for different query ids run independently.
type Coordinator struct {
	store  *CursorStore
	logger *logrus.Logger
	group  singleflight.Group
}

// NewCoordinator creates a coordinator over the given cursor store.
func NewCoordinator(store *CursorStore, logger *logrus.Logger) *Coordinator {
	return &Coordinator{
		store:  store,
		logger: logger,
	}
}

// Store exposes the underlying cursor store, e.g. for persistence.
func (c *Coordinator) Store() *CursorStore {
	return c.store
}

// Fetch returns the next merged logical page for a query.
//
// Iteration order over sources is the order supplied by the caller. The
// call stops as soon as at least one item has been accumulated and either
// the mode is ModeNextPage or the pages fetched this call have caught up
// with the recorded fetch progress for the query.
func (c *Coordinator) Fetch(ctx context.Context, queryID string, mode Mode, sources []Source) (*Result, error) {
	if queryID == "" {
		return nil, appErrors.EmptyFieldError("query id")
	}

	switch mode {
	case ModeInitialize, ModeNextPage, ModeRestore:
	default:
		return nil, fmt.Errorf("%w: %d", appErrors.ErrUnknownFetchMode, int(mode))
	}

	v, err, _ := c.group.Do(queryID, func() (interface{}, error) {
		return c.fetch(ctx, queryID, mode, sources)
	})
	if err != nil {
		return nil, err
	}

	return v.(*Result), nil
}

//nolint:gocognit // the stop rule spans modes and is clearer in one place
func (c *Coordinator) fetch(ctx context.Context, queryID string, mode Mode, sources []Source) (*Result, error) {
	result := &Result{}
	if len(sources) == 0 {
		return result, nil
	}

	prevTotal, hasBaseline := c.store.Progress(queryID)

	// Degenerate initialize: every cursor still at page 0. Pretend one
	// page was previously fetched so the restore walk below fetches
	// exactly one page from the first source that yields items, and do
	// not skip exhausted sources (every source gets one chance at page 1).
	degenerate := mode == ModeInitialize || (mode == ModeRestore && c.allUntouched(queryID, sources))
	if mode != ModeNextPage && (!hasBaseline || prevTotal < 1) {
		prevTotal = 1
	}

	pagesFetched := 0
	anySuccess := false
	stopIdx := -1
	lastQueriedIdx := -1

	for i, src := range sources {
		cur := c.store.Get(src.ID(), queryID)

		// Exhausted sources are never advanced, but in restore mode a
		// source with recorded pages is still replayed so the item set
		// the caller previously saw comes back complete.
		if cur.HasMore == HasMoreNo && !degenerate && (mode == ModeNextPage || cur.Page == 0) {
			continue
		}

		if mode == ModeNextPage {
			page := cur.Page + 1
			lastQueriedIdx = i

			pageData, err := src.FetchPage(ctx, queryID, page)
			if err != nil {
				if failErr := c.handleFetchError(err, src.ID(), queryID, page, anySuccess || len(result.Items) > 0); failErr != nil {
					return nil, failErr
				}
				continue
			}

			anySuccess = true
			pagesFetched++
			c.store.Update(Cursor{Key: cur.Key, Page: page, HasMore: boolToHasMore(pageData.HasMorePages)})
			c.store.AddProgress(queryID, 1)
			result.Items = append(result.Items, pageData.Items...)

			// Stop rule: at least one item accumulated is enough in
			// nextPage mode. An empty page falls through to the next
			// source so the caller always gets a real page when one
			// exists anywhere.
			if len(result.Items) > 0 {
				stopIdx = i
				break
			}

			continue
		}

		// Initialize/restore: re-fetch pages 1..cursor sequentially.
		upTo := cur.Page
		if upTo < 1 {
			upTo = 1
		}

		stopped := false
		for page := 1; page <= upTo; page++ {
			lastQueriedIdx = i

			pageData, err := src.FetchPage(ctx, queryID, page)
			if err != nil {
				if failErr := c.handleFetchError(err, src.ID(), queryID, page, anySuccess || len(result.Items) > 0); failErr != nil {
					return nil, failErr
				}
				break
			}

			anySuccess = true
			pagesFetched++
			result.Items = append(result.Items, pageData.Items...)

			newCur := cur
			if page >= newCur.Page {
				newCur.Page = page
				newCur.HasMore = boolToHasMore(pageData.HasMorePages)
			} else if !pageData.HasMorePages {
				// The source shrank below the recorded frontier
				// (items deleted upstream). Clamp it to exhausted;
				// the page number itself stays monotonic.
				newCur.HasMore = HasMoreNo
			}
			c.store.Update(newCur)
			cur = newCur

			if len(result.Items) > 0 && pagesFetched >= prevTotal {
				stopIdx = i
				stopped = true
				break
			}

			if !pageData.HasMorePages {
				break
			}
		}

		if stopped {
			break
		}
	}

	// No source yielded any items: an empty page, not an error, with both
	// flags down.
	if len(result.Items) == 0 {
		return &Result{}, nil
	}

	// First successful stop in initialize/restore mode records the
	// baseline, but never overwrites an existing one.
	if mode != ModeNextPage && !hasBaseline {
		c.store.SetProgressIfUnset(queryID, pagesFetched)
	}

	result.HasUnsearchedSources = stopIdx >= 0 && stopIdx < len(sources)-1
	result.HasMorePages = c.anyQueriedHasMore(queryID, sources, lastQueriedIdx)

	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{
			logging.StandardFields.Component:    logging.ComponentNames.Pagination,
			logging.StandardFields.QueryID:      queryID,
			logging.StandardFields.Operation:    mode.String(),
			logging.StandardFields.PagesFetched: pagesFetched,
			logging.StandardFields.ItemCount:    len(result.Items),
		}).Debug("Fetched logical page")
	}

	return result, nil
}

// handleFetchError propagates a failure only when literally nothing has
// been listed yet; afterwards the failing source is marked exhausted so one
// broken remote cannot block pagination across the others.
func (c *Coordinator) handleFetchError(err error, sourceID, queryID string, page int, itemsReturned bool) error {
	if !itemsReturned {
		return fmt.Errorf("%w: source %s, page %d: %w", appErrors.ErrSourceFetchFailed, sourceID, page, err)
	}

	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{
			logging.StandardFields.Component: logging.ComponentNames.Pagination,
			logging.StandardFields.SourceID:  sourceID,
			logging.StandardFields.QueryID:   queryID,
			logging.StandardFields.Page:      page,
			logging.StandardFields.Error:     err.Error(),
		}).Warn("Source fetch failed after items were returned; marking source exhausted")
	}

	c.store.Update(Cursor{
		Key:     CursorKey{SourceID: sourceID, QueryID: queryID},
		HasMore: HasMoreNo,
	})

	return nil
}

// allUntouched reports whether every source's cursor is still at page 0.
func (c *Coordinator) allUntouched(queryID string, sources []Source) bool {
	for _, src := range sources {
		if c.store.Get(src.ID(), queryID).Page > 0 {
			return false
		}
	}
	return true
}

// anyQueriedHasMore reports whether any source queried this call still has
// pages left according to its cursor.
func (c *Coordinator) anyQueriedHasMore(queryID string, sources []Source, lastQueriedIdx int) bool {
	for i, src := range sources {
		if i > lastQueriedIdx {
			break
		}
		if c.store.Get(src.ID(), queryID).HasMore == HasMoreYes {
			return true
		}
	}
	return false
}
