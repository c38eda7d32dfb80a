// Package imgx 探测海报图片是否可用：下载并解析图片头，失败即视为需要降级到占位图。
package imgx

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // TMDB 海报通常是 JPEG
	_ "image/png"  // 占位图等可能是 PNG
	"io"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"
)

// maxHeaderBytes 只读取这么多字节用于解析图片头。
const maxHeaderBytes = 64 << 10

var ErrNotImage = errors.New("不是可识别的图片")

// Probe 请求 url 并解析图片尺寸。非 2xx、空响应或无法识别的格式都返回错误。
func Probe(ctx context.Context, client *http.Client, url string) (image.Config, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return image.Config{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return image.Config{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return image.Config{}, fmt.Errorf("poster %s: http %d", url, resp.StatusCode)
	}

	cfg, _, err := image.DecodeConfig(io.LimitReader(resp.Body, maxHeaderBytes))
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return image.Config{}, fmt.Errorf("%w: 尺寸无效 %dx%d", ErrNotImage, cfg.Width, cfg.Height)
	}
	return cfg, nil
}

// Broken 并发探测一组 poster_path（已去重、跳过空值），返回加载失败的集合。
// urlFor 负责把 poster_path 拼成完整 URL。ctx 取消时未探测的条目不计入结果。
func Broken(ctx context.Context, client *http.Client, paths []string, urlFor func(string) string, concurrency int) map[string]bool {
	if concurrency <= 0 {
		concurrency = 4
	}
	seen := make(map[string]bool, len(paths))
	var uniq []string
	for _, p := range paths {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		uniq = append(uniq, p)
	}

	var (
		mu  sync.Mutex
		out = map[string]bool{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, p := range uniq {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			if _, err := Probe(gctx, client, urlFor(p)); err != nil && gctx.Err() == nil {
				mu.Lock()
				out[p] = true
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
