package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScroller_EmitsEventsAndRecycles(t *testing.T) {
	s := NewScroller(cardLayout, 1000)
	var events []ScrollEvent
	s.OnScroll(func(ev ScrollEvent) { events = append(events, ev) })

	f := s.Frame()
	assert.Equal(t, Range{Start: 0, End: 6}, f.Range)
	assert.Len(t, f.Items, 6)
	capBefore := s.Pool().Cap()

	d := s.ScrollTo(2200)
	assert.Equal(t, Range{Start: 7, End: 16}, s.Range())
	assert.Equal(t, 9, d.Reassigned)
	assert.Equal(t, 0, d.Grown)

	s.ScrollBy(-220)
	require.Len(t, events, 2)
	assert.Equal(t, ScrollEvent{Offset: 2200, Direction: Forward}, events[0])
	assert.Equal(t, ScrollEvent{Offset: 1980, Direction: Backward}, events[1])
	assert.Equal(t, "backward", events[1].Direction.String())

	// 偏移不变：不发事件。
	s.ScrollTo(1980)
	assert.Len(t, events, 2)

	// 槽位数量在整个滚动过程中保持不变。
	for off := 0; off < 50000; off += 37 {
		d := s.ScrollTo(off)
		require.Equal(t, 0, d.Grown)
	}
	assert.Equal(t, capBefore, s.Pool().Cap())
}

func TestScroller_SmallScrollKeepsRange(t *testing.T) {
	s := NewScroller(cardLayout, 1000)
	s.ScrollTo(2201)
	assert.Equal(t, Range{Start: 7, End: 17}, s.Range())

	d := s.ScrollTo(2210)
	assert.False(t, d.Changed())
	assert.Equal(t, 10, d.Kept)
}

func TestScroller_ClampsOffset(t *testing.T) {
	s := NewScroller(cardLayout, 10)
	s.ScrollTo(-50)
	assert.Equal(t, 0, s.Offset())

	s.ScrollTo(1 << 30)
	assert.Equal(t, cardLayout.MaxOffset(10), s.Offset())

	f := s.Frame()
	assert.Equal(t, 10, f.Range.End)
	last := f.Items[len(f.Items)-1]
	assert.Equal(t, 9, last.Index)
	assert.Equal(t, 9*220, last.Top)
}

func TestScroller_SetCountClampsAndResets(t *testing.T) {
	s := NewScroller(cardLayout, 1000)
	s.ScrollTo(100000)

	s.SetCount(5)
	assert.Equal(t, 0, s.Offset())
	assert.Equal(t, Range{Start: 0, End: 5}, s.Range())
	assert.Len(t, s.Frame().Items, 5)
}

func TestScroller_EmptyFrame(t *testing.T) {
	s := NewScroller(cardLayout, 0)
	f := s.Frame()
	assert.True(t, f.Empty)
	assert.Empty(t, f.Items)
	assert.Equal(t, 0, f.TotalHeight)

	d := s.ScrollBy(500)
	assert.Equal(t, Diff{}, d)
}

func TestScroller_ScrollToIndex(t *testing.T) {
	s := NewScroller(cardLayout, 100)
	s.ScrollToIndex(20)
	assert.Equal(t, 4400, s.Offset())
	assert.Equal(t, Range{Start: 20, End: 23}, s.Frame().Visible)
}
