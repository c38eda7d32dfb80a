package aggregate

import (
	"context"
	"errors"
	"sync"

	"github.com/John-Robertt/MCV/internal/domain"
)

// ErrSuperseded 表示该次 Load 在完成前已被更新的 Load 取代，结果被丢弃。
var ErrSuperseded = errors.New("aggregate: query superseded")

// Result 是一次查询的不可变结果。Err 非 nil 时 View.Movies 为空。
type Result struct {
	Seq    uint64
	Target domain.Target
	View   domain.AggregateView
	Err    error
}

// Session 持有“当前查询”的状态，保证旧查询不会覆盖新查询的结果。
//
// 每次 Load 分配递增的序号并取消上一次仍在进行的 Load；只有序号仍为最新的结果才会发布。
type Session struct {
	src  Source
	opts Options

	mu      sync.Mutex
	seq     uint64
	cancel  context.CancelFunc
	last    domain.Target
	current Result
	has     bool
}

func NewSession(src Source, opts Options) *Session {
	return &Session{src: src, opts: opts}
}

// Load 执行一次查询。返回的 error 只可能是 ErrSuperseded；获取失败记录在 Result.Err 中。
func (s *Session) Load(ctx context.Context, target domain.Target) (Result, error) {
	lctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	s.seq++
	seq := s.seq
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.last = target
	s.mu.Unlock()

	view, err := Aggregate(lctx, s.src, target, s.opts)
	res := Result{Seq: seq, Target: target, View: view, Err: err}
	if err != nil {
		res.View = domain.AggregateView{Movies: []domain.Movie{}, Failed: view.Failed}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return Result{}, ErrSuperseded
	}
	s.cancel = nil
	s.current = res
	s.has = true
	return res, nil
}

// Retry 以最近一次请求的目标重新 Load（无论其是否成功）。
func (s *Session) Retry(ctx context.Context) (Result, error) {
	s.mu.Lock()
	target := s.last
	s.mu.Unlock()
	if len(target.IDs) == 0 {
		return Result{}, ErrEmptyTarget
	}
	return s.Load(ctx, target)
}

// Current 返回最近一次发布的结果。
func (s *Session) Current() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.has
}

// Close 取消仍在进行的 Load。
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
