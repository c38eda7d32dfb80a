// Package browse 是交互式浏览的状态机：查询会话 -> 筛选 -> 窗口滚动 -> 一帧 view.Page。
//
// 约束：Explorer 非并发安全，由单一交互循环串行驱动。
package browse

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"

	"go.uber.org/zap"

	"github.com/John-Robertt/MCV/internal/aggregate"
	"github.com/John-Robertt/MCV/internal/domain"
	"github.com/John-Robertt/MCV/internal/filter"
	"github.com/John-Robertt/MCV/internal/tmdb"
	"github.com/John-Robertt/MCV/internal/view"
	"github.com/John-Robertt/MCV/internal/window"
)

const (
	// HeaderCollapseOffset：向前滚动超过该偏移（px）时自动折叠头部。
	HeaderCollapseOffset = 100

	// MsgSyncFailed 是没有更具体消息时的兜底错误文案。
	MsgSyncFailed = "Failed to sync with TMDB server."
)

// Options 配置 Explorer。零值字段使用默认值。
type Options struct {
	Layout     window.Layout
	Pool       []string
	Categories []domain.Category

	// IntN 用于 Shuffle 取随机下标；nil 时使用 math/rand/v2。
	IntN   func(n int) int
	Logger *zap.Logger
}

// Explorer 持有当前查询结果、筛选条件、滚动位置与头部折叠状态。
type Explorer struct {
	sess *aggregate.Session
	opts Options
	log  *zap.Logger

	key    string
	result aggregate.Result
	loaded bool

	filter   filter.State
	filtered []domain.Movie
	years    []string

	scroller     *window.Scroller
	headerHidden bool
}

func New(sess *aggregate.Session, o Options) *Explorer {
	if o.Layout.ItemHeight <= 0 {
		o.Layout.ItemHeight = 220
	}
	if o.Layout.ViewportHeight <= 0 {
		o.Layout.ViewportHeight = 3 * o.Layout.ItemHeight
	}
	if o.Pool == nil {
		o.Pool = domain.DefaultPool()
	}
	if o.Categories == nil {
		o.Categories = domain.DefaultCategories
	}
	if o.IntN == nil {
		o.IntN = rand.IntN
	}
	log := o.Logger
	if log == nil {
		log = zap.NewNop()
	}

	e := &Explorer{
		sess:     sess,
		opts:     o,
		log:      log,
		filter:   filter.State{Year: filter.AllYears},
		filtered: []domain.Movie{},
		scroller: window.NewScroller(o.Layout, 0),
	}
	e.scroller.OnScroll(func(ev window.ScrollEvent) {
		if ev.Direction == window.Forward && ev.Offset > HeaderCollapseOffset {
			e.headerHidden = true
		}
	})
	return e
}

// Key 返回当前目标标识："ALL" 或 collection id。
func (e *Explorer) Key() string { return e.key }

// Result 返回最近一次发布的查询结果。
func (e *Explorer) Result() (aggregate.Result, bool) { return e.result, e.loaded }

func (e *Explorer) Filter() filter.State       { return e.filter }
func (e *Explorer) Filtered() []domain.Movie   { return e.filtered }
func (e *Explorer) Scroller() *window.Scroller { return e.scroller }
func (e *Explorer) HeaderHidden() bool         { return e.headerHidden }

// LoadAll 加载整个 pool。
func (e *Explorer) LoadAll(ctx context.Context) error {
	return e.load(ctx, "ALL", domain.PoolOf(e.opts.Pool))
}

// LoadCollection 加载单个 collection；空白 id 被忽略并返回 aggregate.ErrEmptyTarget。
func (e *Explorer) LoadCollection(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return aggregate.ErrEmptyTarget
	}
	return e.load(ctx, id, domain.Single(id))
}

// Shuffle 从 pool 中随机挑一个 id 作为单 collection 加载，返回选中的 id。
func (e *Explorer) Shuffle(ctx context.Context) (string, error) {
	if len(e.opts.Pool) == 0 {
		return "", aggregate.ErrEmptyTarget
	}
	id := e.opts.Pool[e.opts.IntN(len(e.opts.Pool))]
	return id, e.LoadCollection(ctx, id)
}

// Retry 重新执行最近一次查询。
func (e *Explorer) Retry(ctx context.Context) error {
	res, err := e.sess.Retry(ctx)
	if err != nil {
		return err
	}
	e.apply(res)
	return nil
}

func (e *Explorer) load(ctx context.Context, key string, t domain.Target) error {
	e.key = key
	res, err := e.sess.Load(ctx, t)
	if err != nil {
		return err
	}
	e.apply(res)
	return nil
}

func (e *Explorer) apply(res aggregate.Result) {
	e.result = res
	e.loaded = true
	e.years = filter.Years(res.View.Movies)
	if res.Err != nil {
		e.log.Warn("collection sync failed", zap.String("target", res.Target.Key()), zap.Uint64("seq", res.Seq), zap.Error(res.Err))
	}
	e.refilter()
	// 新数据集从顶部开始。
	e.scroller.ScrollTo(0)
}

func (e *Explorer) refilter() {
	e.filtered = e.filter.Apply(e.result.View.Movies)
	e.scroller.SetCount(len(e.filtered))
}

// SetSearch 更新标题搜索；滚动偏移被截断到新列表的合法范围。
func (e *Explorer) SetSearch(s string) {
	e.filter.Search = s
	e.refilter()
}

// SetYear 更新年份筛选；"all"/空串 归一为 filter.AllYears。
func (e *Explorer) SetYear(y string) {
	if filter.IsAllYears(y) {
		y = filter.AllYears
	}
	e.filter.Year = strings.TrimSpace(y)
	e.refilter()
}

// ScrollItems 按条目数滚动（负数向上）。
func (e *Explorer) ScrollItems(n int) window.Diff {
	return e.scroller.ScrollBy(n * e.opts.Layout.ItemHeight)
}

// ScrollPages 按视口高度滚动。
func (e *Explorer) ScrollPages(n int) window.Diff {
	return e.scroller.ScrollBy(n * e.opts.Layout.ViewportHeight)
}

func (e *Explorer) ToggleHeader() { e.headerHidden = !e.headerHidden }

// Page 构造当前一帧的渲染输入。
func (e *Explorer) Page() view.Page {
	v := e.result.View
	p := view.Page{
		Name:         v.Name,
		Overview:     v.Overview,
		HeaderHidden: e.headerHidden,
		Search:       e.filter.Search,
		Year:         e.filter.Year,
		Years:        e.years,
		Total:        len(v.Movies),
		Movies:       e.filtered,
		Frame:        e.scroller.Frame(),
	}
	if e.result.Err != nil {
		p.Err = ErrorMessage(e.result.Err)
		if p.Name == "" {
			p.Name = domain.LabelFor(e.opts.Categories, e.key)
		}
	}
	return p
}

// ErrorMessage 把查询错误映射为面向用户的文案。
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, aggregate.ErrAllFailed) {
		return MsgSyncFailed
	}
	var te *tmdb.Error
	if errors.As(err, &te) && te.Message != "" {
		return te.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return MsgSyncFailed
}
