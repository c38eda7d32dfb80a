package domain

import "strings"

// Movie 是 TMDB collection parts 中的单部影片（只保留展示所需字段）。
//
// 约束：
// - ID 在单次响应内唯一；跨 collection 合并时由 aggregate 负责全局去重
// - ReleaseDate 保留原始文本（可能为空，也可能只有年份/年月）
// - VoteAverage 为可选值：nil 表示上游未提供，区别于 0 分
type Movie struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	ReleaseDate string   `json:"release_date,omitempty"`
	Overview    string   `json:"overview,omitempty"`
	PosterPath  string   `json:"poster_path,omitempty"`
	Popularity  float64  `json:"popularity"`
	VoteAverage *float64 `json:"vote_average,omitempty"`
}

// Year 返回发行日期的 4 位年份前缀；日期缺失或不足 4 位时返回空串。
func (m Movie) Year() string {
	d := strings.TrimSpace(m.ReleaseDate)
	if len(d) < 4 {
		return ""
	}
	return d[:4]
}

// Rating 返回评分与是否存在。
func (m Movie) Rating() (float64, bool) {
	if m.VoteAverage == nil {
		return 0, false
	}
	return *m.VoteAverage, true
}
