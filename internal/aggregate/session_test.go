package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/MCV/internal/domain"
)

func TestSession_ErrorClearsMovies(t *testing.T) {
	src := &stubSource{
		cols: map[string]domain.Collection{"10": {Name: "ok", Parts: []domain.Movie{mv(1, 1)}}},
		errs: map[string]error{"404": errors.New("not found")},
	}
	s := NewSession(src, Options{})

	res, err := s.Load(context.Background(), domain.Single("10"))
	require.NoError(t, err)
	require.NoError(t, res.Err)
	assert.Len(t, res.View.Movies, 1)

	res, err = s.Load(context.Background(), domain.Single("404"))
	require.NoError(t, err)
	require.Error(t, res.Err)
	assert.Equal(t, "not found", res.Err.Error())
	assert.Empty(t, res.View.Movies)

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, res.Seq, cur.Seq)
	assert.Equal(t, "not found", cur.Err.Error())
}

func TestSession_StaleLoadIsDiscarded(t *testing.T) {
	src := &stubSource{
		cols: map[string]domain.Collection{
			"slow": {Name: "slow", Parts: []domain.Movie{mv(1, 1)}},
			"fast": {Name: "fast", Parts: []domain.Movie{mv(2, 2)}},
		},
		delay: map[string]time.Duration{"slow": 5 * time.Second},
	}
	s := NewSession(src, Options{})

	type out struct {
		res Result
		err error
	}
	slowCh := make(chan out, 1)
	go func() {
		r, e := s.Load(context.Background(), domain.Single("slow"))
		slowCh <- out{r, e}
	}()

	// 等待慢查询真正发出。
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)

	fast, err := s.Load(context.Background(), domain.Single("fast"))
	require.NoError(t, err)
	assert.Equal(t, "fast", fast.View.Name)

	select {
	case o := <-slowCh:
		assert.ErrorIs(t, o.err, ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatalf("慢查询未被取消")
	}

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "fast", cur.View.Name)
	assert.Greater(t, cur.Seq, uint64(1))
}

func TestSession_Retry(t *testing.T) {
	src := &stubSource{cols: map[string]domain.Collection{"10": {Name: "x"}}}
	s := NewSession(src, Options{})

	_, err := s.Retry(context.Background())
	assert.ErrorIs(t, err, ErrEmptyTarget)

	_, err = s.Load(context.Background(), domain.Single("10"))
	require.NoError(t, err)
	res, err := s.Retry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.Seq)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestSession_CloseCancelsInFlight(t *testing.T) {
	src := &stubSource{
		cols:  map[string]domain.Collection{"slow": {}},
		delay: map[string]time.Duration{"slow": 5 * time.Second},
	}
	s := NewSession(src, Options{})

	done := make(chan Result, 1)
	go func() {
		r, _ := s.Load(context.Background(), domain.Single("slow"))
		done <- r
	}()
	require.Eventually(t, func() bool { return src.calls.Load() == 1 }, time.Second, time.Millisecond)

	s.Close()
	select {
	case r := <-done:
		assert.ErrorIs(t, r.Err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatalf("Close 未取消进行中的查询")
	}
}
