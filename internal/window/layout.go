// Package window 计算长列表的可见窗口，并用固定数量的槽位承载可见条目。
//
// 只有窗口内（含 overscan）的条目会被渲染；其余条目只贡献总高度 n*ItemHeight，
// 以保持滚动条比例正确。
package window

// Layout 描述定高列表的几何参数（单位：像素）。
type Layout struct {
	ItemHeight     int
	ViewportHeight int
	Overscan       int
}

// Range 是半开区间 [Start, End) 的条目下标。
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r Range) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

func (r Range) Contains(i int) bool { return i >= r.Start && i < r.End }

// TotalHeight 返回 n 个条目的总可滚动高度。
func (l Layout) TotalHeight(n int) int {
	if n <= 0 || l.ItemHeight <= 0 {
		return 0
	}
	return n * l.ItemHeight
}

// MaxOffset 返回最大滚动偏移（内容不足一屏时为 0）。
func (l Layout) MaxOffset(n int) int {
	m := l.TotalHeight(n) - l.ViewportHeight
	if m < 0 {
		return 0
	}
	return m
}

// Visible 返回与 [offset, offset+ViewportHeight) 有交集的最小条目区间（不含 overscan）。
func (l Layout) Visible(n, offset int) Range {
	if n <= 0 || l.ItemHeight <= 0 || l.ViewportHeight <= 0 {
		return Range{}
	}
	if offset < 0 {
		offset = 0
	}
	h := l.ItemHeight
	first := offset / h
	last := (offset + l.ViewportHeight + h - 1) / h // 向上取整，exclusive
	return clamp(Range{Start: first, End: last}, n)
}

// Range 返回需要渲染的条目区间：可见区间两侧各扩展 Overscan 个，并截断到 [0, n)。
func (l Layout) Range(n, offset int) Range {
	v := l.Visible(n, offset)
	if v.Len() == 0 {
		return v
	}
	over := l.Overscan
	if over < 0 {
		over = 0
	}
	return clamp(Range{Start: v.Start - over, End: v.End + over}, n)
}

// Capacity 返回任意滚动位置下渲染区间的最大长度，也就是槽位池的大小。
func (l Layout) Capacity() int {
	if l.ItemHeight <= 0 || l.ViewportHeight <= 0 {
		return 0
	}
	over := l.Overscan
	if over < 0 {
		over = 0
	}
	// 偏移不对齐时，可见区间最多跨 ceil(V/H)+1 个条目。
	return (l.ViewportHeight+l.ItemHeight-1)/l.ItemHeight + 1 + 2*over
}

func clamp(r Range, n int) Range {
	if r.Start < 0 {
		r.Start = 0
	}
	if r.End > n {
		r.End = n
	}
	if r.Start > r.End {
		r.Start = r.End
	}
	return r
}
