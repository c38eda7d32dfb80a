package main

import (
	"github.com/John-Robertt/MCV/internal/aggregate"
	"github.com/John-Robertt/MCV/internal/domain"
	"github.com/John-Robertt/MCV/internal/view"
	"github.com/John-Robertt/MCV/internal/window"
)

// frameDoc 是 show 在非 TTY 下输出的 JSON 文档。
type frameDoc struct {
	Target   string `json:"target"`
	Name     string `json:"name"`
	Overview string `json:"overview"`
	Error    string `json:"error,omitempty"`

	Search string   `json:"search"`
	Year   string   `json:"year"`
	Years  []string `json:"years"`

	Total     int                  `json:"total"`
	Matched   int                  `json:"matched"`
	Requested int                  `json:"requested"`
	Loaded    int                  `json:"loaded"`
	Failed    []domain.FailedFetch `json:"failed"`

	Frame  window.Frame `json:"frame"`
	Movies []movieDoc   `json:"movies"`
}

// movieDoc 是窗口内一个已渲染槽位的影片。
type movieDoc struct {
	Index   int  `json:"index"`
	Slot    int  `json:"slot"`
	Top     int  `json:"top"`
	Visible bool `json:"visible"`

	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	ReleaseDate string   `json:"release_date"`
	Overview    string   `json:"overview"`
	Poster      string   `json:"poster"`
	Popularity  float64  `json:"popularity"`
	VoteAverage *float64 `json:"vote_average,omitempty"`
}

func newFrameDoc(key string, res aggregate.Result, p view.Page, im view.Images) frameDoc {
	d := frameDoc{
		Target:    key,
		Name:      p.Name,
		Overview:  p.Overview,
		Error:     p.Err,
		Search:    p.Search,
		Year:      p.Year,
		Years:     p.Years,
		Total:     p.Total,
		Matched:   len(p.Movies),
		Requested: res.View.Requested,
		Loaded:    res.View.Loaded,
		Failed:    res.View.Failed,
		Frame:     p.Frame,
		Movies:    []movieDoc{},
	}
	if d.Years == nil {
		d.Years = []string{}
	}
	if d.Failed == nil {
		d.Failed = []domain.FailedFetch{}
	}
	for _, c := range view.Cards(p, im) {
		m := p.Movies[c.Index]
		d.Movies = append(d.Movies, movieDoc{
			Index:       c.Index,
			Slot:        c.Slot,
			Top:         c.Top,
			Visible:     c.Visible,
			ID:          m.ID,
			Title:       m.Title,
			ReleaseDate: m.ReleaseDate,
			Overview:    m.Overview,
			Poster:      c.Poster,
			Popularity:  m.Popularity,
			VoteAverage: m.VoteAverage,
		})
	}
	return d
}
