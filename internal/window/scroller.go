package window

// Direction 是滚动方向。
type Direction int

const (
	Forward Direction = iota + 1
	Backward
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return "none"
	}
}

// ScrollEvent 在每次偏移变化后发给订阅者；如何响应由调用方决定。
type ScrollEvent struct {
	Offset    int
	Direction Direction
}

// EmptyText 是空列表时渲染的占位文本。
const EmptyText = "No movies found in this collection."

// Item 是一帧中的单个已渲染条目。
type Item struct {
	Slot  int `json:"slot"`
	Index int `json:"index"`
	Top   int `json:"top"`
}

// Frame 是某一滚动位置的渲染快照。
type Frame struct {
	Count       int    `json:"count"`
	Offset      int    `json:"offset"`
	TotalHeight int    `json:"total_height"`
	ItemHeight  int    `json:"item_height"`
	Viewport    int    `json:"viewport_height"`
	Range       Range  `json:"range"`
	Visible     Range  `json:"visible"`
	Items       []Item `json:"items"`
	Empty       bool   `json:"empty"`
}

// Scroller 维护滚动偏移、渲染区间与槽位池。
//
// 非并发安全：调用方（单一 UI 循环）负责串行化访问。
type Scroller struct {
	layout Layout
	count  int
	offset int
	rng    Range
	pool   *Pool

	listeners []func(ScrollEvent)
}

func NewScroller(l Layout, count int) *Scroller {
	s := &Scroller{
		layout: l,
		pool:   NewPool(l.Capacity()),
	}
	s.SetCount(count)
	return s
}

// OnScroll 订阅滚动事件。
func (s *Scroller) OnScroll(fn func(ScrollEvent)) {
	if fn != nil {
		s.listeners = append(s.listeners, fn)
	}
}

func (s *Scroller) Layout() Layout { return s.layout }
func (s *Scroller) Count() int     { return s.count }
func (s *Scroller) Offset() int    { return s.offset }
func (s *Scroller) Range() Range   { return s.rng }
func (s *Scroller) Pool() *Pool    { return s.pool }

// SetCount 在数据集变化（重新查询/筛选）后调用：偏移被截断到新的合法范围，槽位重新分配。
func (s *Scroller) SetCount(n int) Diff {
	if n < 0 {
		n = 0
	}
	s.count = n
	if max := s.layout.MaxOffset(n); s.offset > max {
		s.offset = max
	}
	s.pool.Reset()
	s.rng = s.layout.Range(n, s.offset)
	return s.pool.Assign(s.rng)
}

// ScrollTo 移动到 offset（截断到 [0, MaxOffset]）。偏移不变时不发事件。
func (s *Scroller) ScrollTo(offset int) Diff {
	if offset < 0 {
		offset = 0
	}
	if max := s.layout.MaxOffset(s.count); offset > max {
		offset = max
	}
	if offset == s.offset {
		return Diff{}
	}

	dir := Forward
	if offset < s.offset {
		dir = Backward
	}
	s.offset = offset

	var d Diff
	if r := s.layout.Range(s.count, offset); r != s.rng {
		s.rng = r
		d = s.pool.Assign(r)
	} else {
		d.Kept = r.Len()
	}

	ev := ScrollEvent{Offset: offset, Direction: dir}
	for _, fn := range s.listeners {
		fn(ev)
	}
	return d
}

// ScrollBy 相对滚动。
func (s *Scroller) ScrollBy(delta int) Diff {
	return s.ScrollTo(s.offset + delta)
}

// ScrollToIndex 让第 i 个条目出现在视口顶部（受 MaxOffset 限制）。
func (s *Scroller) ScrollToIndex(i int) Diff {
	return s.ScrollTo(i * s.layout.ItemHeight)
}

// Frame 返回当前渲染快照。
func (s *Scroller) Frame() Frame {
	f := Frame{
		Count:       s.count,
		Offset:      s.offset,
		TotalHeight: s.layout.TotalHeight(s.count),
		ItemHeight:  s.layout.ItemHeight,
		Viewport:    s.layout.ViewportHeight,
		Range:       s.rng,
		Visible:     s.layout.Visible(s.count, s.offset),
		Items:       []Item{},
		Empty:       s.count == 0,
	}
	for _, sl := range s.pool.Slots() {
		f.Items = append(f.Items, Item{Slot: sl.ID, Index: sl.Index, Top: sl.Index * s.layout.ItemHeight})
	}
	return f
}
