package view

import (
	"html/template"
	"io"

	"github.com/John-Robertt/MCV/internal/window"
)

// HTML 渲染静态 HTML：外层视口固定高度，内部 spacer 撑开总高度，
// 只有槽位中的条目以绝对定位输出，与浏览器端虚拟列表的 DOM 结构一致。
type HTML struct{}

type htmlData struct {
	Page
	Cards     []Card
	EmptyText string
	ErrTitle  string
	Fallback  string
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Movie Explorer{{if .Name}} - {{.Name}}{{end}}</title>
<style>
body{margin:0;font-family:system-ui,sans-serif;background:#0f172a;color:#e2e8f0}
.viewport{overflow-y:auto;position:relative}
.spacer{position:relative;width:100%}
.movie-card-wrapper{position:absolute;left:0;width:100%;box-sizing:border-box;padding:8px}
.movie-card{display:flex;gap:12px;height:100%}
.movie-poster{width:120px;height:180px;object-fit:cover;border-radius:6px}
.movie-overview{color:#94a3b8;overflow:hidden}
.empty-state{text-align:center;padding:2rem;color:#94a3b8}
header.collapsed{display:none}
</style>
</head>
<body>
<header class="{{if .HeaderHidden}}collapsed{{end}}">
<h1 class="main-title">Movie Explorer</h1>
<p class="collection-status">{{if .Name}}{{.Name}}{{else}}Exploring...{{end}}</p>
{{if and .Overview (not .Err)}}<div class="collection-overview"><p>{{.Overview}}</p></div>{{end}}
<div class="filter-group" data-search="{{.Search}}" data-year="{{.Year}}">
<select class="filter-select"><option>All Years</option>{{range .Years}}<option value="{{.}}">{{.}}</option>{{end}}</select>
</div>
</header>
<main class="content-area">
{{- if .Err}}
<div class="error-container"><h2>{{.ErrTitle}}</h2><p>{{.Err}}</p></div>
{{- else if .Frame.Empty}}
<div class="empty-state">{{.EmptyText}}</div>
{{- else}}
<div class="viewport" style="height:{{.Frame.Viewport}}px" data-offset="{{.Frame.Offset}}" data-count="{{.Frame.Count}}">
<div class="spacer" style="height:{{.Frame.TotalHeight}}px">
{{- range .Cards}}
<div class="movie-card-wrapper" data-slot="{{.Slot}}" data-index="{{.Index}}" style="top:{{.Top}}px;height:{{$.Frame.ItemHeight}}px">
<div class="movie-card">
<img class="movie-poster" src="{{.Poster}}" alt="{{.Title}}" loading="lazy" data-fallback="{{$.Fallback}}" onerror="this.onerror=null;this.src=this.dataset.fallback">
<div class="movie-info">
<h3 class="movie-title" title="{{.Title}}">{{.Title}}</h3>
<div class="movie-metadata"><span class="movie-date">{{.Date}}</span>{{if .Rating}}<span class="movie-rating">★ {{.Rating}}</span>{{end}}</div>
<p class="movie-overview">{{.Overview}}</p>
</div>
</div>
</div>
{{- end}}
</div>
</div>
{{- end}}
</main>
</body>
</html>
`))

// Render 写出完整 HTML 文档。
func (HTML) Render(w io.Writer, p Page, im Images) error {
	return pageTmpl.Execute(w, htmlData{
		Page:      p,
		Cards:     Cards(p, im),
		EmptyText: window.EmptyText,
		ErrTitle:  ErrorTitle,
		Fallback:  im.Fallback,
	})
}
