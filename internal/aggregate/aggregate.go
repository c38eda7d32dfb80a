package aggregate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/John-Robertt/MCV/internal/domain"
)

const (
	DefaultConcurrency = 8

	PoolName = "All Global Collections"
)

var (
	// ErrEmptyTarget 表示目标里没有任何 collection id。
	ErrEmptyTarget = errors.New("aggregate: empty target")
	// ErrAllFailed 表示 pool 模式下所有 collection 都获取失败。
	ErrAllFailed = errors.New("aggregate: all collections failed")
)

// Source 是 collection 数据源（tmdb.Client 实现该接口；测试用 stub）。
//
// 约束：FetchCollection 必须并发安全；失败时返回的 error.Error() 即面向用户的消息。
type Source interface {
	FetchCollection(ctx context.Context, id string) (domain.Collection, error)
}

// Options 控制 fan-out 与可观测性。零值可用。
type Options struct {
	Concurrency int
	Logger      *zap.Logger
	Observer    Observer
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Aggregate 按 target 获取 collection，并产出去重 + 排序后的 AggregateView。
//
// - 单 collection：任何失败直接返回（不返回部分结果）
// - pool：单个失败被吸收，只有全部失败时返回 ErrAllFailed
func Aggregate(ctx context.Context, src Source, target domain.Target, opts Options) (domain.AggregateView, error) {
	ids := make([]string, 0, len(target.IDs))
	for _, id := range target.IDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return domain.AggregateView{}, ErrEmptyTarget
	}
	if !target.Pool {
		return single(ctx, src, ids[0], opts)
	}
	return pool(ctx, src, ids, opts)
}

func single(ctx context.Context, src Source, id string, opts Options) (domain.AggregateView, error) {
	if opts.Observer != nil {
		opts.Observer.OnFetchStart(1)
	}
	started := time.Now()
	col, err := src.FetchCollection(ctx, id)
	if opts.Observer != nil {
		opts.Observer.OnFetchDone(1, 1, id, err, time.Since(started))
	}
	if err != nil {
		opts.logger().Warn("collection fetch failed", zap.String("id", id), zap.Error(err))
		return domain.AggregateView{}, err
	}

	movies := append([]domain.Movie(nil), col.Parts...)
	SortByPopularity(movies)
	return domain.AggregateView{
		Name:      col.Name,
		Overview:  col.Overview,
		Movies:    movies,
		Requested: 1,
		Loaded:    1,
		Failed:    []domain.FailedFetch{},
	}, nil
}

// FetchResult 是 fan-out 中单个 collection 的结果（Err 与 Collection 二选一）。
type FetchResult struct {
	ID         string
	Collection domain.Collection
	Err        error
}

func pool(ctx context.Context, src Source, ids []string, opts Options) (domain.AggregateView, error) {
	results := FetchAll(ctx, src, ids, opts)
	if err := ctx.Err(); err != nil {
		return domain.AggregateView{}, err
	}

	view := domain.AggregateView{
		Name:      PoolName,
		Requested: len(ids),
		Failed:    []domain.FailedFetch{},
	}
	var lastErr error
	for _, r := range results {
		if r.Err != nil {
			lastErr = r.Err
			view.Failed = append(view.Failed, domain.FailedFetch{ID: r.ID, Msg: r.Err.Error()})
			continue
		}
		view.Loaded++
	}
	if view.Loaded == 0 {
		view.Movies = []domain.Movie{}
		return view, fmt.Errorf("%w: %w", ErrAllFailed, lastErr)
	}

	view.Movies = Merge(results)
	view.Overview = fmt.Sprintf("Combined view of %d movies from across all curated collections.", len(view.Movies))
	return view, nil
}

// FetchAll 以有界并发获取全部 id。每个 goroutine 只写 results 中属于自己的下标，
// 因此返回的切片顺序与 ids 一致，与完成顺序无关。
func FetchAll(ctx context.Context, src Source, ids []string, opts Options) []FetchResult {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	log := opts.logger()
	obs := opts.Observer
	if obs != nil {
		obs.OnFetchStart(len(ids))
	}

	results := make([]FetchResult, len(ids))
	var done atomic.Int64

	var g errgroup.Group
	g.SetLimit(limit)
	for i, id := range ids {
		g.Go(func() error {
			started := time.Now()
			col, err := src.FetchCollection(ctx, id)
			results[i] = FetchResult{ID: id, Collection: col, Err: err}
			if err != nil {
				// 单个失败只记录，不中断其它请求。
				log.Info("collection fetch absorbed", zap.String("id", id), zap.Error(err))
			}
			if obs != nil {
				obs.OnFetchDone(int(done.Add(1)), len(ids), id, err, time.Since(started))
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Merge 扁平化成功结果、按影片 id 去重并按热度降序排序。
//
// 去重规则：同一 id 以请求顺序中最后出现的那份数据为准，但保留首次出现的位置
// （决定热度相同时的相对顺序）。
func Merge(results []FetchResult) []domain.Movie {
	n := 0
	for _, r := range results {
		if r.Err == nil {
			n += len(r.Collection.Parts)
		}
	}

	index := make(map[int64]int, n)
	out := make([]domain.Movie, 0, n)
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		for _, m := range r.Collection.Parts {
			if i, ok := index[m.ID]; ok {
				out[i] = m
				continue
			}
			index[m.ID] = len(out)
			out = append(out, m)
		}
	}
	SortByPopularity(out)
	return out
}

// SortByPopularity 按 Popularity 降序稳定排序（原地）。
func SortByPopularity(movies []domain.Movie) {
	sort.SliceStable(movies, func(i, j int) bool {
		return movies[i].Popularity > movies[j].Popularity
	})
}
