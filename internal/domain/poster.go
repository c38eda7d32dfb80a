package domain

import "strings"

const (
	DefaultImageBaseURL     = "https://image.tmdb.org/t/p/w200"
	DefaultFallbackImageURL = "https://via.placeholder.com/200x300?text=No+Poster"
)

// PosterURL 把 poster_path 拼接到图片 CDN 前缀；缺失时返回 fallback。
func PosterURL(imageBase, fallback, posterPath string) string {
	p := strings.TrimSpace(posterPath)
	if p == "" {
		return fallback
	}
	base := strings.TrimRight(imageBase, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return base + p
}
