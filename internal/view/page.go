// Package view 把一帧窗口快照渲染为终端文本或 HTML。
package view

import (
	"fmt"
	"strings"

	"github.com/John-Robertt/MCV/internal/domain"
	"github.com/John-Robertt/MCV/internal/window"
)

const (
	UnknownReleaseDate = "Unknown Release Date"
	NoOverview         = "No overview available."
	ErrorTitle         = "Collection Sync Error"
)

// Page 是渲染一屏所需的全部输入。Movies 是筛选后的序列，Frame 的下标指向它。
type Page struct {
	Name         string
	Overview     string
	HeaderHidden bool

	Search string
	Year   string
	Years  []string

	Total  int // 筛选前的影片数
	Movies []domain.Movie
	Frame  window.Frame

	Err string
}

// Images 决定海报 URL 的拼接与降级。Broken 中的 poster_path 视为加载失败。
type Images struct {
	BaseURL  string
	Fallback string
	Broken   map[string]bool
}

func (im Images) URL(m domain.Movie) string {
	if m.PosterPath != "" && im.Broken[m.PosterPath] {
		return im.Fallback
	}
	return domain.PosterURL(im.BaseURL, im.Fallback, m.PosterPath)
}

// Card 是单部影片的展示字段（两种渲染器共用）。
type Card struct {
	Index    int
	Slot     int
	Top      int
	Title    string
	Date     string
	Rating   string
	Overview string
	Poster   string
	Visible  bool
}

// Cards 把帧中的槽位映射为展示卡片（按下标升序）。
func Cards(p Page, im Images) []Card {
	out := make([]Card, 0, len(p.Frame.Items))
	for _, it := range p.Frame.Items {
		if it.Index < 0 || it.Index >= len(p.Movies) {
			continue
		}
		m := p.Movies[it.Index]
		c := Card{
			Index:    it.Index,
			Slot:     it.Slot,
			Top:      it.Top,
			Title:    m.Title,
			Date:     formatDate(m.ReleaseDate),
			Overview: strings.TrimSpace(m.Overview),
			Poster:   im.URL(m),
			Visible:  p.Frame.Visible.Contains(it.Index),
		}
		if v, ok := m.Rating(); ok {
			c.Rating = fmt.Sprintf("%.1f", v)
		}
		if c.Overview == "" {
			c.Overview = NoOverview
		}
		out = append(out, c)
	}
	return out
}

func formatDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return UnknownReleaseDate
	}
	return s
}
