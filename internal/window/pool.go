package window

import "sort"

// Free 表示槽位当前未承载任何条目。
const Free = -1

// Slot 是一个可复用的渲染位置。
type Slot struct {
	ID    int `json:"slot"`
	Index int `json:"index"`
}

// Diff 描述一次重新分配的结果。
type Diff struct {
	Kept       int // 槽位保留原条目
	Reassigned int // 槽位换上新条目（包括原本空闲的槽位）
	Cleared    int // 槽位释放为空闲
	Grown      int // 容量不足时新增的槽位（布局不变时恒为 0）
}

// Changed 报告本次分配是否改变了任何槽位。
func (d Diff) Changed() bool { return d.Reassigned > 0 || d.Cleared > 0 || d.Grown > 0 }

// Pool 是固定大小的槽位池。Assign 按位置保留的方式重新分配：
// 仍在新区间内的条目留在原槽位，只有离开区间的槽位才换上新进入的条目。
type Pool struct {
	slots []int // slot id -> item index（Free 表示空闲）
}

func NewPool(capacity int) *Pool {
	if capacity < 0 {
		capacity = 0
	}
	slots := make([]int, capacity)
	for i := range slots {
		slots[i] = Free
	}
	return &Pool{slots: slots}
}

func (p *Pool) Cap() int { return len(p.slots) }

// Assign 让槽位恰好承载 r 内的全部条目。
func (p *Pool) Assign(r Range) Diff {
	var d Diff
	if need := r.Len() - len(p.slots); need > 0 {
		for i := 0; i < need; i++ {
			p.slots = append(p.slots, Free)
		}
		d.Grown = need
	}

	placed := make(map[int]bool, r.Len())
	var free []int
	for id, idx := range p.slots {
		if idx != Free && r.Contains(idx) && !placed[idx] {
			placed[idx] = true
			d.Kept++
			continue
		}
		free = append(free, id)
	}

	next := 0
	for idx := r.Start; idx < r.End; idx++ {
		if placed[idx] {
			continue
		}
		id := free[next]
		next++
		p.slots[id] = idx
		d.Reassigned++
	}

	for _, id := range free[next:] {
		if p.slots[id] != Free {
			p.slots[id] = Free
			d.Cleared++
		}
	}
	return d
}

// Reset 释放全部槽位（数据源整体替换时使用）。
func (p *Pool) Reset() {
	for i := range p.slots {
		p.slots[i] = Free
	}
}

// Slots 返回被占用的槽位，按条目下标升序（即渲染顺序）。
func (p *Pool) Slots() []Slot {
	out := make([]Slot, 0, len(p.slots))
	for id, idx := range p.slots {
		if idx != Free {
			out = append(out, Slot{ID: id, Index: idx})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// SlotOf 返回承载 index 的槽位 id。
func (p *Pool) SlotOf(index int) (int, bool) {
	for id, idx := range p.slots {
		if idx == index {
			return id, true
		}
	}
	return 0, false
}
