// Package filter 实现纯客户端的标题搜索与年份筛选。
package filter

import (
	"sort"
	"strings"

	"github.com/John-Robertt/MCV/internal/domain"
)

// AllYears 是“不过滤年份”的哨兵值。"all"（不区分大小写）与空串等价。
const AllYears = "All Years"

// State 是当前的筛选条件（只属于视图，不会发给数据源）。
type State struct {
	Search string
	Year   string
}

// IsAllYears 判断 year 是否为“全部年份”。
func IsAllYears(year string) bool {
	y := strings.TrimSpace(year)
	return y == "" || y == AllYears || strings.EqualFold(y, "all")
}

// Apply 返回同时满足标题与年份条件的新切片；输入切片不被修改。
//
// - 标题：不区分大小写的子串匹配；search 为空匹配全部
// - 年份：release_date 文本必须以 year 开头；无发行日期的影片不匹配具体年份
func Apply(movies []domain.Movie, search, year string) []domain.Movie {
	needle := strings.ToLower(search)
	allYears := IsAllYears(year)
	year = strings.TrimSpace(year)

	out := make([]domain.Movie, 0, len(movies))
	for _, m := range movies {
		if needle != "" && !strings.Contains(strings.ToLower(m.Title), needle) {
			continue
		}
		if !allYears && (m.ReleaseDate == "" || !strings.HasPrefix(m.ReleaseDate, year)) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Apply 是 State 的便捷形式。
func (s State) Apply(movies []domain.Movie) []domain.Movie {
	return Apply(movies, s.Search, s.Year)
}

// Years 返回影片中出现过的年份（去重，按年份降序），用于构建年份菜单。
func Years(movies []domain.Movie) []string {
	seen := make(map[string]struct{}, len(movies))
	out := make([]string, 0, 16)
	for _, m := range movies {
		y := m.Year()
		if y == "" {
			continue
		}
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		out = append(out, y)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}
