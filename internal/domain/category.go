package domain

// Category 是预置的 collection 快捷入口。
type Category struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// DefaultCategories 是内置的精选 collection 列表（TMDB collection id）。
var DefaultCategories = []Category{
	{ID: "10", Label: "Star Wars"},
	{ID: "263", Label: "The Dark Knight"},
	{ID: "131292", Label: "Captain America"},
	{ID: "86311", Label: "The Avengers"},
	{ID: "1241", Label: "Harry Potter"},
	{ID: "529845", Label: "John Wick"},
	{ID: "119", Label: "Lord of the Rings"},
	{ID: "230", Label: "The Godfather"},
	{ID: "9485", Label: "Fast & Furious"},
	{ID: "328", Label: "Jurassic Park"},
	{ID: "8522", Label: "Mission: Impossible"},
	{ID: "115575", Label: "Spider-Man"},
	{ID: "374365", Label: "Toy Story"},
	{ID: "8354", Label: "Ice Age"},
	{ID: "9715", Label: "Rocky"},
	{ID: "420", Label: "James Bond"},
	{ID: "748", Label: "X-Men"},
	{ID: "121938", Label: "Iron Man"},
	{ID: "1575", Label: "Hunger Games"},
	{ID: "435259", Label: "Frozen"},
}

var extraPoolIDs = []string{
	"1241", "131", "386", "263", "1219", "295", "8091", "9715", "230", "9485",
	"2578", "115570", "115575", "115576", "131295", "131292", "528", "8354",
	"435259", "1575", "1733", "2151", "8522", "328", "420", "529845",
}

// DefaultPool 返回 "ALL" 模式使用的 collection id 列表：分类 id 在前，额外 id 在后。
// 列表中允许出现重复 id；影片级去重由 aggregate 完成。
func DefaultPool() []string {
	out := make([]string, 0, len(DefaultCategories)+len(extraPoolIDs))
	for _, c := range DefaultCategories {
		out = append(out, c.ID)
	}
	return append(out, extraPoolIDs...)
}

// LabelFor 返回 id 对应的分类名称（未知 id 返回空串）。
func LabelFor(categories []Category, id string) string {
	for _, c := range categories {
		if c.ID == id {
			return c.Label
		}
	}
	return ""
}
