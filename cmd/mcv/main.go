package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/John-Robertt/MCV/internal/aggregate"
	"github.com/John-Robertt/MCV/internal/app/browse"
	"github.com/John-Robertt/MCV/internal/config"
	"github.com/John-Robertt/MCV/internal/domain"
	"github.com/John-Robertt/MCV/internal/infra/fsx"
	"github.com/John-Robertt/MCV/internal/infra/httpx"
	"github.com/John-Robertt/MCV/internal/infra/imgx"
	"github.com/John-Robertt/MCV/internal/tmdb"
	"github.com/John-Robertt/MCV/internal/view"
	"github.com/John-Robertt/MCV/internal/window"
)

// cli 聚合进程级依赖，测试可以注入内存版本。
type cli struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	stdoutTTY bool
	stderrTTY bool

	getwd   func() (string, error)
	environ map[string]string
}

func main() {
	c := cli{
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		stdoutTTY: isTTY(os.Stdout),
		stderrTTY: isTTY(os.Stderr),
		getwd:     os.Getwd,
		environ:   env.ToMap(os.Environ()),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := c.run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func (c cli) run(ctx context.Context, args []string) int {
	if len(args) == 0 || isHelp(args[0]) {
		fmt.Fprint(c.stdout, usage)
		return 0
	}

	var fs flagSet
	switch args[0] {
	case "show":
		fs = showFlags
	case "browse":
		fs = browseFlags
	case "search":
		fs = searchFlags
	case "export":
		fs = exportFlags
	default:
		fmt.Fprintf(c.stderr, "未知命令：%q\n\n", args[0])
		fmt.Fprint(c.stderr, usage)
		return 2
	}

	name, rest := args[0], args[1:]
	for _, a := range rest {
		if isHelp(a) {
			fmt.Fprint(c.stdout, commandUsage(name))
			return 0
		}
	}
	ca, err := parseArgs(rest, fs)
	if err != nil {
		fmt.Fprintf(c.stderr, "参数错误：%v\n\n", err)
		fmt.Fprint(c.stderr, commandUsage(name))
		return 2
	}
	if name == "search" && strings.TrimSpace(strings.Join(ca.Positional, " ")) == "" {
		fmt.Fprintf(c.stderr, "参数错误：search 需要查询文本\n\n")
		fmt.Fprint(c.stderr, commandUsage(name))
		return 2
	}

	rt, code := c.setup(ca)
	if rt == nil {
		return code
	}
	defer rt.close()

	switch name {
	case "show":
		return c.show(ctx, rt, ca)
	case "browse":
		return c.browse(ctx, rt, ca)
	case "search":
		return c.search(ctx, rt, strings.Join(ca.Positional, " "))
	default:
		return c.export(ctx, rt, ca)
	}
}

// runtime 是一次命令执行期间共享的依赖。
type runtime struct {
	cwd      string
	eff      config.EffectiveConfig
	log      *zap.Logger
	client   *tmdb.Client
	progress *progressUI
}

func (rt *runtime) close() {
	if rt.progress != nil {
		rt.progress.close()
	}
	_ = rt.log.Sync()
}

func (rt *runtime) images() view.Images {
	return view.Images{BaseURL: rt.eff.ImageBaseURL, Fallback: rt.eff.FallbackImageURL}
}

func (c cli) setup(ca cmdArgs) (*runtime, int) {
	cwd, err := c.getwd()
	if err != nil {
		fmt.Fprintf(c.stderr, "读取当前目录失败：%v\n", err)
		return nil, 1
	}

	eff, err := config.LoadEffectiveFrom(cwd, config.CLIArgs{
		ConfigPath:        ca.ConfigPath,
		Language:          ca.Language,
		LanguageSet:       ca.LanguageSet,
		ViewportHeight:    ca.Viewport,
		ViewportHeightSet: ca.ViewportSet,
	}, c.environ)
	if err != nil {
		fmt.Fprintf(c.stderr, "配置错误：%v\n", err)
		if config.Code(err) == config.ErrCodeMissingAPIKey {
			fmt.Fprintln(c.stderr, "请先设置 TMDB_API_KEY（https://www.themoviedb.org/settings/api）")
		}
		return nil, 1
	}

	log := newLogger(c.stderr, ca.Verbose)
	hc, err := httpx.NewAPIClient(httpx.Options{
		ProxyURL:          eff.ProxyURL,
		Timeout:           eff.Timeout,
		RequestsPerSecond: eff.RequestsPerSecond,
	})
	if err != nil {
		fmt.Fprintf(c.stderr, "初始化 HTTP client 失败：%v\n", err)
		return nil, 1
	}

	rt := &runtime{
		cwd:    cwd,
		eff:    eff,
		log:    log,
		client: tmdb.New(eff.APIBaseURL, eff.APIKey, eff.Language, hc, log),
	}
	// 进度只在交互终端启用，且只写 stderr。
	if c.stderrTTY {
		rt.progress = newProgressUI(c.stderr)
		rt.progress.printConfig(eff)
	}
	return rt, 0
}

// newLogger：默认 JSON + warn 级别；--verbose 时为 console + debug。
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	if verbose {
		enc := zap.NewDevelopmentEncoderConfig()
		return zap.New(zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), zapcore.DebugLevel))
	}
	enc := zap.NewProductionEncoderConfig()
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	return zap.New(zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(w), zapcore.WarnLevel))
}

func (c cli) newExplorer(rt *runtime) *browse.Explorer {
	opts := aggregate.Options{Concurrency: rt.eff.Concurrency, Logger: rt.log}
	if rt.progress != nil {
		opts.Observer = rt.progress
	}
	sess := aggregate.NewSession(rt.client, opts)
	return browse.New(sess, browse.Options{
		Layout: window.Layout{
			ItemHeight:     rt.eff.ItemHeight,
			ViewportHeight: rt.eff.ViewportHeight,
			Overscan:       rt.eff.Overscan,
		},
		Pool:       rt.eff.Pool,
		Categories: rt.eff.Categories,
		Logger:     rt.log,
	})
}

// load 按选择参数执行首次查询，然后应用筛选与初始偏移。
func load(ctx context.Context, ex *browse.Explorer, ca cmdArgs) error {
	var err error
	switch {
	case ca.Collection != "":
		err = ex.LoadCollection(ctx, ca.Collection)
	case ca.Random:
		_, err = ex.Shuffle(ctx)
	default:
		err = ex.LoadAll(ctx)
	}
	if err != nil {
		return err
	}
	if ca.Search != "" {
		ex.SetSearch(ca.Search)
	}
	if ca.Year != "" {
		ex.SetYear(ca.Year)
	}
	if ca.OffsetSet {
		ex.Scroller().ScrollTo(ca.Offset)
	}
	return nil
}

func (c cli) show(ctx context.Context, rt *runtime, ca cmdArgs) int {
	ex := c.newExplorer(rt)
	if err := load(ctx, ex, ca); err != nil {
		fmt.Fprintf(c.stderr, "查询失败：%v\n", err)
		return 1
	}

	p := ex.Page()
	if c.stdoutTTY {
		if err := (view.Text{Width: 100}).Render(c.stdout, p, rt.images()); err != nil {
			fmt.Fprintf(c.stderr, "输出失败：%v\n", err)
			return 1
		}
	} else {
		// stdout 非 TTY：只输出一个 JSON 文档，诊断信息走 stderr。
		res, _ := ex.Result()
		enc := json.NewEncoder(c.stdout)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(newFrameDoc(ex.Key(), res, p, rt.images())); err != nil {
			fmt.Fprintf(c.stderr, "输出失败：%v\n", err)
			return 1
		}
	}

	if p.Err != "" {
		fmt.Fprintf(c.stderr, "%s: %s\n", view.ErrorTitle, p.Err)
		return 1
	}
	return 0
}

func (c cli) browse(ctx context.Context, rt *runtime, ca cmdArgs) int {
	ex := c.newExplorer(rt)
	if err := load(ctx, ex, ca); err != nil {
		fmt.Fprintf(c.stderr, "查询失败：%v\n", err)
		return 1
	}

	text := view.Text{Plain: !c.stdoutTTY, Width: 100}
	render := func() {
		if err := text.Render(c.stdout, ex.Page(), rt.images()); err != nil {
			fmt.Fprintf(c.stderr, "输出失败：%v\n", err)
		}
	}
	render()

	sc := bufio.NewScanner(c.stdin)
	for {
		if c.stdoutTTY {
			fmt.Fprint(c.stdout, "> ")
		}
		if !sc.Scan() {
			break
		}
		line := sc.Text()
		if t := strings.TrimSpace(line); t == "?" || t == "help" {
			fmt.Fprintln(c.stdout, browse.Help)
			continue
		}

		err := ex.Exec(ctx, line)
		if errors.Is(err, browse.ErrQuit) {
			return 0
		}
		if err != nil {
			fmt.Fprintf(c.stderr, "%v\n", err)
			if ctx.Err() != nil {
				return 1
			}
			continue
		}
		render()
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintf(c.stderr, "读取输入失败：%v\n", err)
		return 1
	}
	return 0
}

func (c cli) search(ctx context.Context, rt *runtime, query string) int {
	refs, err := rt.client.SearchCollections(ctx, query)
	if err != nil {
		fmt.Fprintf(c.stderr, "搜索失败：%v\n", err)
		return 1
	}

	if !c.stdoutTTY {
		enc := json.NewEncoder(c.stdout)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(refs); err != nil {
			fmt.Fprintf(c.stderr, "输出失败：%v\n", err)
			return 1
		}
		return 0
	}

	if len(refs) == 0 {
		fmt.Fprintf(c.stderr, "未找到匹配 %q 的 collection\n", query)
		return 0
	}
	for _, r := range refs {
		label := domain.LabelFor(rt.eff.Categories, fmt.Sprint(r.ID))
		if label != "" {
			label = " [" + label + "]"
		}
		fmt.Fprintf(c.stdout, "%d\t%s%s\n", r.ID, r.Name, label)
	}
	return 0
}

func (c cli) export(ctx context.Context, rt *runtime, ca cmdArgs) int {
	ex := c.newExplorer(rt)
	if err := load(ctx, ex, ca); err != nil {
		fmt.Fprintf(c.stderr, "查询失败：%v\n", err)
		return 1
	}

	p := ex.Page()
	im := rt.images()
	if ca.CheckPosters {
		im.Broken = c.probePosters(ctx, rt, p)
	}

	var buf bytes.Buffer
	if err := (view.HTML{}).Render(&buf, p, im); err != nil {
		fmt.Fprintf(c.stderr, "渲染 HTML 失败：%v\n", err)
		return 1
	}

	out := ca.Out
	if !filepath.IsAbs(out) {
		out = filepath.Join(rt.cwd, out)
	}
	if err := fsx.WriteFile(out, buf.Bytes(), fsx.WriteOptions{Overwrite: ca.Force}); err != nil {
		fmt.Fprintf(c.stderr, "写入失败：%v\n", err)
		if errors.Is(err, os.ErrExist) {
			fmt.Fprintln(c.stderr, "使用 --force 覆盖已存在的文件")
		}
		return 1
	}
	fmt.Fprintf(c.stderr, "exported: %s (items=%d broken_posters=%d)\n", out, len(p.Frame.Items), len(im.Broken))

	if p.Err != "" {
		fmt.Fprintf(c.stderr, "%s: %s\n", view.ErrorTitle, p.Err)
		return 1
	}
	return 0
}

// probePosters 只探测当前窗口内会被渲染的海报。
func (c cli) probePosters(ctx context.Context, rt *runtime, p view.Page) map[string]bool {
	hc, err := httpx.NewImageClient(rt.eff.Timeout)
	if err != nil {
		rt.log.Warn("image client init failed", zap.Error(err))
		return nil
	}
	paths := make([]string, 0, len(p.Frame.Items))
	for _, it := range p.Frame.Items {
		if it.Index >= 0 && it.Index < len(p.Movies) {
			paths = append(paths, p.Movies[it.Index].PosterPath)
		}
	}
	broken := imgx.Broken(ctx, hc, paths, func(path string) string {
		return domain.PosterURL(rt.eff.ImageBaseURL, rt.eff.FallbackImageURL, path)
	}, rt.eff.Concurrency)
	for path := range broken {
		rt.log.Info("poster fallback", zap.String("poster_path", path))
	}
	return broken
}

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
