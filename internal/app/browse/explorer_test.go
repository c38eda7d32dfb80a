package browse

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/John-Robertt/MCV/internal/aggregate"
	"github.com/John-Robertt/MCV/internal/domain"
	"github.com/John-Robertt/MCV/internal/filter"
	"github.com/John-Robertt/MCV/internal/tmdb"
	"github.com/John-Robertt/MCV/internal/window"
)

type fakeSource struct {
	mu   sync.Mutex
	cols map[string]domain.Collection
	errs map[string]error
}

func (f *fakeSource) FetchCollection(_ context.Context, id string) (domain.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errs[id]; err != nil {
		return domain.Collection{}, err
	}
	if c, ok := f.cols[id]; ok {
		return c, nil
	}
	return domain.Collection{}, &tmdb.Error{Kind: tmdb.KindRemoteRejected, Status: 404, Message: tmdb.MsgFetchFailed}
}

func (f *fakeSource) setErr(id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.errs, id)
		return
	}
	f.errs[id] = err
}

func movies(n int, year string) []domain.Movie {
	out := make([]domain.Movie, n)
	for i := range out {
		out[i] = domain.Movie{
			ID:          int64(1000 + i),
			Title:       fmt.Sprintf("Film %02d", i),
			ReleaseDate: year + "-05-01",
			Popularity:  float64(100 - i),
		}
	}
	return out
}

var testLayout = window.Layout{ItemHeight: 220, ViewportHeight: 660, Overscan: 3}

func newExplorer(t *testing.T) (*Explorer, *fakeSource) {
	t.Helper()
	src := &fakeSource{
		cols: map[string]domain.Collection{
			"10": {ID: 10, Name: "Saga", Overview: "A saga.", Parts: movies(20, "1999")},
			"30": {ID: 30, Name: "Pair", Parts: []domain.Movie{
				{ID: 1, Title: "Alpha", ReleaseDate: "2010-01-01", Popularity: 5},
				{ID: 2, Title: "Beta", ReleaseDate: "2012-01-01", Popularity: 9},
			}},
		},
		errs: map[string]error{
			"20": &tmdb.Error{Kind: tmdb.KindRemoteRejected, Status: 404, Message: "The resource you requested could not be found."},
		},
	}
	sess := aggregate.NewSession(src, aggregate.Options{Concurrency: 2, Logger: zaptest.NewLogger(t)})
	t.Cleanup(sess.Close)
	e := New(sess, Options{
		Layout:     testLayout,
		Pool:       []string{"10", "20", "30"},
		Categories: []domain.Category{{ID: "20", Label: "Broken Saga"}},
		IntN:       func(int) int { return 2 },
		Logger:     zaptest.NewLogger(t),
	})
	return e, src
}

func TestExplorer_LoadAll(t *testing.T) {
	e, _ := newExplorer(t)
	require.NoError(t, e.LoadAll(context.Background()))

	p := e.Page()
	assert.Equal(t, "ALL", e.Key())
	assert.Equal(t, aggregate.PoolName, p.Name)
	assert.Empty(t, p.Err)
	assert.Equal(t, 22, p.Total)
	assert.Len(t, p.Movies, 22)
	assert.Equal(t, []string{"2012", "2010", "1999"}, p.Years)
	assert.Equal(t, window.Range{Start: 0, End: 6}, p.Frame.Range)

	res, ok := e.Result()
	require.True(t, ok)
	require.Len(t, res.View.Failed, 1)
	assert.Equal(t, "20", res.View.Failed[0].ID)
}

func TestExplorer_SingleFailureShowsMessage(t *testing.T) {
	e, _ := newExplorer(t)
	require.NoError(t, e.LoadCollection(context.Background(), "20"))

	p := e.Page()
	assert.Equal(t, "The resource you requested could not be found.", p.Err)
	assert.Equal(t, "Broken Saga", p.Name)
	assert.Empty(t, p.Movies)
	assert.True(t, p.Frame.Empty)
}

func TestExplorer_RetryAfterFailure(t *testing.T) {
	e, src := newExplorer(t)
	ctx := context.Background()

	require.ErrorIs(t, e.Retry(ctx), aggregate.ErrEmptyTarget)

	require.NoError(t, e.LoadCollection(ctx, "20"))
	require.NotEmpty(t, e.Page().Err)

	src.setErr("20", nil)
	src.mu.Lock()
	src.cols["20"] = domain.Collection{ID: 20, Name: "Fixed", Parts: movies(2, "2001")}
	src.mu.Unlock()

	require.NoError(t, e.Retry(ctx))
	p := e.Page()
	assert.Empty(t, p.Err)
	assert.Equal(t, "Fixed", p.Name)
	assert.Len(t, p.Movies, 2)
}

func TestExplorer_HeaderCollapsesOnForwardScroll(t *testing.T) {
	e, _ := newExplorer(t)
	require.NoError(t, e.LoadCollection(context.Background(), "10"))
	require.False(t, e.HeaderHidden())

	e.Scroller().ScrollTo(80)
	assert.False(t, e.HeaderHidden(), "未超过阈值不应折叠")

	e.ScrollItems(1)
	assert.True(t, e.HeaderHidden())

	e.ToggleHeader()
	assert.False(t, e.HeaderHidden())

	// 向上滚动不会重新折叠。
	e.ScrollItems(-1)
	assert.False(t, e.HeaderHidden())
}

func TestExplorer_FilterClampsOffset(t *testing.T) {
	e, _ := newExplorer(t)
	require.NoError(t, e.LoadCollection(context.Background(), "10"))

	e.ScrollPages(3)
	require.Equal(t, 3*660, e.Scroller().Offset())

	e.SetSearch("film 0")
	p := e.Page()
	assert.Len(t, p.Movies, 10)
	assert.Equal(t, 10*220-660, p.Frame.Offset)
	assert.Equal(t, 20, p.Total)

	e.SetYear("2000")
	assert.True(t, e.Page().Frame.Empty)

	e.SetYear("ALL")
	assert.Equal(t, filter.AllYears, e.Filter().Year)
	assert.Len(t, e.Filtered(), 10)
}

func TestExplorer_NewLoadResetsScroll(t *testing.T) {
	e, _ := newExplorer(t)
	ctx := context.Background()
	require.NoError(t, e.LoadCollection(ctx, "10"))
	e.ScrollPages(2)
	require.NotZero(t, e.Scroller().Offset())

	require.NoError(t, e.LoadAll(ctx))
	assert.Zero(t, e.Scroller().Offset())
}

func TestExplorer_Shuffle(t *testing.T) {
	e, _ := newExplorer(t)
	id, err := e.Shuffle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "30", id)
	assert.Equal(t, "30", e.Key())

	p := e.Page()
	require.Len(t, p.Movies, 2)
	assert.Equal(t, "Beta", p.Movies[0].Title)
}

func TestExplorer_LoadCollectionBlank(t *testing.T) {
	e, _ := newExplorer(t)
	assert.ErrorIs(t, e.LoadCollection(context.Background(), "  "), aggregate.ErrEmptyTarget)
	_, ok := e.Result()
	assert.False(t, ok)
}

func TestExec(t *testing.T) {
	e, _ := newExplorer(t)
	ctx := context.Background()

	require.NoError(t, e.Exec(ctx, "c 10\n"))
	assert.Equal(t, "10", e.Key())

	require.NoError(t, e.Exec(ctx, "j"))
	assert.Equal(t, 220, e.Scroller().Offset())
	require.NoError(t, e.Exec(ctx, "J"))
	assert.Equal(t, 880, e.Scroller().Offset())
	require.NoError(t, e.Exec(ctx, "K"))
	require.NoError(t, e.Exec(ctx, "k"))
	assert.Equal(t, 0, e.Scroller().Offset())

	require.NoError(t, e.Exec(ctx, "/Film 1"))
	assert.Len(t, e.Filtered(), 10)
	require.NoError(t, e.Exec(ctx, "/"))
	assert.Len(t, e.Filtered(), 20)

	require.NoError(t, e.Exec(ctx, "y 1999"))
	assert.Equal(t, "1999", e.Filter().Year)
	require.NoError(t, e.Exec(ctx, "y all"))
	assert.Equal(t, filter.AllYears, e.Filter().Year)

	// 前面的 j 已经触发自动折叠，h 把头部切回显示。
	require.True(t, e.HeaderHidden())
	require.NoError(t, e.Exec(ctx, "h"))
	assert.False(t, e.HeaderHidden())

	require.NoError(t, e.Exec(ctx, "a"))
	assert.Equal(t, "ALL", e.Key())
	require.NoError(t, e.Exec(ctx, "s"))
	assert.Equal(t, "30", e.Key())
	require.NoError(t, e.Exec(ctx, "r"))
	require.NoError(t, e.Exec(ctx, "   "))

	assert.ErrorIs(t, e.Exec(ctx, "c"), ErrUnknownCommand)
	assert.ErrorIs(t, e.Exec(ctx, "zz"), ErrUnknownCommand)
	assert.ErrorIs(t, e.Exec(ctx, "q"), ErrQuit)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "", ErrorMessage(nil))
	assert.Equal(t, MsgSyncFailed, ErrorMessage(fmt.Errorf("%w: %w", aggregate.ErrAllFailed, errors.New("x"))))
	assert.Equal(t, tmdb.MsgUnreachable, ErrorMessage(fmt.Errorf("wrap: %w", &tmdb.Error{Kind: tmdb.KindUnreachable, Message: tmdb.MsgUnreachable})))
	assert.Equal(t, "boom", ErrorMessage(errors.New("boom")))
}
