package view

import (
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/muesli/reflow/wordwrap"

	"github.com/John-Robertt/MCV/internal/filter"
	"github.com/John-Robertt/MCV/internal/window"
)

// Text 渲染终端视图。Plain=true 时不输出任何 ANSI 样式（非 TTY/测试）。
type Text struct {
	Plain bool
	Width int

	// OverviewLines 限制每张卡片的简介行数（<=0 时为 2）。
	OverviewLines int
}

type textStyles struct {
	title, muted, accent, err func(string) string
}

func (t Text) styles() textStyles {
	if t.Plain {
		id := func(s string) string { return s }
		return textStyles{title: id, muted: id, accent: id, err: id}
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e2e8f0"))
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	accent := lipgloss.NewStyle().Foreground(lipgloss.Color("#fbbf24"))
	errS := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f87171"))
	return textStyles{
		title:  func(s string) string { return title.Render(s) },
		muted:  func(s string) string { return muted.Render(s) },
		accent: func(s string) string { return accent.Render(s) },
		err:    func(s string) string { return errS.Render(s) },
	}
}

// Render 写出一屏：头部（可折叠）、窗口内可见卡片、状态行。
func (t Text) Render(w io.Writer, p Page, im Images) error {
	st := t.styles()
	width := t.Width
	if width <= 0 {
		width = 80
	}
	lines := t.OverviewLines
	if lines <= 0 {
		lines = 2
	}

	var b strings.Builder
	if !p.HeaderHidden {
		name := p.Name
		if name == "" {
			name = "Exploring..."
		}
		fmt.Fprintf(&b, "%s\n", st.title("Movie Explorer | "+name))
		if p.Overview != "" && p.Err == "" {
			fmt.Fprintf(&b, "%s\n", st.muted(wordwrap.String(p.Overview, width)))
		}
		fmt.Fprintf(&b, "%s\n", st.muted(filterLine(p)))
		b.WriteString(strings.Repeat("─", min(width, 60)) + "\n")
	}

	switch {
	case p.Err != "":
		fmt.Fprintf(&b, "%s\n%s\n%s\n", st.err(ErrorTitle), p.Err, st.muted("输入 r 重试"))
	case p.Frame.Empty:
		fmt.Fprintf(&b, "%s\n", st.muted(window.EmptyText))
	default:
		for _, c := range Cards(p, im) {
			if !c.Visible {
				continue
			}
			head := fmt.Sprintf("%4d. %s", c.Index+1, st.title(c.Title))
			meta := c.Date
			if c.Rating != "" {
				meta += "  " + st.accent("★ "+c.Rating)
			}
			fmt.Fprintf(&b, "%s  %s\n", head, st.muted(meta))
			for _, l := range clampLines(wordwrap.String(c.Overview, width-6), lines) {
				fmt.Fprintf(&b, "      %s\n", l)
			}
		}
	}

	if p.Err == "" && !p.Frame.Empty {
		f := p.Frame
		fmt.Fprintf(&b, "%s\n", st.muted(fmt.Sprintf(
			"[%d-%d / %d] rendered=%d-%d offset=%d/%d",
			f.Visible.Start+1, f.Visible.End, f.Count, f.Range.Start+1, f.Range.End, f.Offset, f.TotalHeight,
		)))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func filterLine(p Page) string {
	year := p.Year
	if filter.IsAllYears(year) {
		year = filter.AllYears
	}
	s := fmt.Sprintf("search=%q year=%s movies=%d/%d", p.Search, year, len(p.Movies), p.Total)
	if len(p.Years) > 0 {
		s += " years=" + strings.Join(p.Years, ",")
	}
	return s
}

func clampLines(s string, n int) []string {
	ls := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(ls) <= n {
		return ls
	}
	ls = ls[:n]
	ls[n-1] = strings.TrimRight(ls[n-1], " ") + "..."
	return ls
}
