package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/MCV/internal/domain"
)

func sample() []domain.Movie {
	return []domain.Movie{
		{ID: 1, Title: "Spider-Man", ReleaseDate: "2002-05-01"},
		{ID: 2, Title: "Iron Man", ReleaseDate: "2008-04-30"},
		{ID: 3, Title: "Batman Begins", ReleaseDate: "2005-06-10"},
		{ID: 4, Title: "Iron Man 2", ReleaseDate: "2010-04-28"},
		{ID: 5, Title: "Untitled Iron Man Project"},
	}
}

func titles(ms []domain.Movie) []string {
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Title)
	}
	return out
}

func TestApply_SearchCaseInsensitive(t *testing.T) {
	ms := sample()[:3]
	assert.Equal(t, []string{"Spider-Man", "Iron Man", "Batman Begins"}, titles(Apply(ms, "man", AllYears)))
	assert.Equal(t, []string{"Spider-Man", "Iron Man", "Batman Begins"}, titles(Apply(ms, "MAN", AllYears)))
	assert.Empty(t, Apply(ms, "Avengers", AllYears))
}

func TestApply_EmptyFilterIsIdentity(t *testing.T) {
	ms := sample()
	got := Apply(ms, "", "All Years")
	assert.Equal(t, ms, got)

	// 返回新切片：修改结果不影响输入。
	got[0].Title = "changed"
	assert.Equal(t, "Spider-Man", ms[0].Title)
}

func TestApply_Year(t *testing.T) {
	ms := sample()
	assert.Equal(t, []string{"Iron Man"}, titles(Apply(ms, "", "2008")))
	assert.Equal(t, []string{"Iron Man 2"}, titles(Apply(ms, "iron", "2010")))
	assert.Empty(t, Apply(ms, "", "1999"))

	// 无发行日期的影片不匹配具体年份，但匹配全部年份。
	assert.NotContains(t, titles(Apply(ms, "untitled", "2008")), "Untitled Iron Man Project")
	assert.Equal(t, []string{"Untitled Iron Man Project"}, titles(Apply(ms, "untitled", "all")))
}

func TestApply_Idempotent(t *testing.T) {
	ms := sample()
	a := Apply(ms, "iron", "All Years")
	b := Apply(ms, "iron", "All Years")
	assert.Equal(t, a, b)
	assert.Equal(t, a, Apply(a, "iron", "All Years"))
}

func TestIsAllYears(t *testing.T) {
	for _, y := range []string{"", " ", "All Years", "all", "ALL"} {
		assert.True(t, IsAllYears(y), y)
	}
	assert.False(t, IsAllYears("2008"))
}

func TestState_Apply(t *testing.T) {
	s := State{Search: "bat", Year: "2005"}
	require.Len(t, s.Apply(sample()), 1)
}

func TestYears(t *testing.T) {
	ms := append(sample(), domain.Movie{ID: 6, Title: "x", ReleaseDate: "2008-01-01"})
	assert.Equal(t, []string{"2010", "2008", "2005", "2002"}, Years(ms))
	assert.Empty(t, Years(nil))
}
