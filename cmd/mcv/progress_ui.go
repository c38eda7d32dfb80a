package main

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/MCV/internal/aggregate"
	"github.com/John-Robertt/MCV/internal/config"
)

var _ aggregate.Observer = (*progressUI)(nil)

// progressUI 是交互终端上的 fan-out 进度输出，只写 stderr。
//
// 长时间没有 collection 完成时，ticker 定期补一行进度。
type progressUI struct {
	w io.Writer

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time

	total int
	done  int
	ok    int
	fail  int

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{
		w:                  w,
		keepaliveThreshold: 4 * time.Second,
		tickerInterval:     time.Second,
	}
}

// printConfig 在首次查询前输出生效配置。
func (p *progressUI) printConfig(eff config.EffectiveConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "[%s] mcv\n", time.Now().Format("15:04:05"))
	fmt.Fprintln(p.w, "配置（生效）:")
	fmt.Fprintf(p.w, "  api: %s (language=%s)\n", truncate(eff.APIBaseURL, 120), eff.Language)
	fmt.Fprintf(p.w, "  concurrency: %d\n", eff.Concurrency)
	fmt.Fprintf(p.w, "  rate: %s\n", formatRate(eff.RequestsPerSecond))
	fmt.Fprintf(p.w, "  proxy: %s\n", formatProxy(eff.ProxyURL))
	fmt.Fprintf(p.w, "  window: item=%dpx viewport=%dpx overscan=%d\n", eff.ItemHeight, eff.ViewportHeight, eff.Overscan)
	fmt.Fprintf(p.w, "  pool: %d ids\n\n", len(eff.Pool))
	p.lastPrinted = time.Now()
}

func (p *progressUI) OnFetchStart(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopTickerLocked()
	p.startedAt = time.Now()
	p.total = total
	p.done, p.ok, p.fail = 0, 0, 0

	if total > 1 {
		fmt.Fprintf(p.w, "获取: collections=%d\n", total)
		p.startTickerLocked()
	}
	p.lastPrinted = time.Now()
}

func (p *progressUI) OnFetchDone(idx, total int, id string, err error, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = idx
	p.total = total
	if err != nil {
		p.fail++
		fmt.Fprintf(p.w, "[%d/%d] %s FAIL: %s (%s)\n", idx, total, id, truncate(err.Error(), 160), formatShortDuration(dur))
	} else {
		p.ok++
		fmt.Fprintf(p.w, "[%d/%d] %s OK (%s)\n", idx, total, id, formatShortDuration(dur))
	}
	p.lastPrinted = time.Now()

	// 最后一条完成后停止 ticker，避免结束后又冒出 keepalive。
	if p.done >= p.total {
		p.stopTickerLocked()
	}
}

// close 停止 ticker（进程退出前调用）。
func (p *progressUI) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopTickerLocked()
}

func (p *progressUI) stopTickerLocked() {
	if p.tickerStarted {
		close(p.stopCh)
		p.tickerStarted = false
	}
}

func (p *progressUI) startTickerLocked() {
	stop := make(chan struct{})
	p.stopCh = stop
	p.tickerStarted = true

	interval := p.tickerInterval
	if interval <= 0 {
		interval = time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 4 * time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				p.mu.Lock()
				if p.total > 0 && p.done < p.total && time.Since(p.lastPrinted) > threshold {
					fmt.Fprintln(p.w, p.progressLineLocked())
					p.lastPrinted = time.Now()
				}
				p.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

func (p *progressUI) progressLineLocked() string {
	return fmt.Sprintf("进度: done=%d/%d ok=%d fail=%d elapsed=%s",
		p.done, p.total, p.ok, p.fail, formatElapsed(time.Since(p.startedAt)),
	)
}

func formatRate(rps float64) string {
	if rps <= 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%g req/s", rps)
}

func formatProxy(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "off"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "on (" + truncate(raw, 120) + ")"
	}
	auth := "off"
	if u.User != nil {
		auth = "on"
	}
	return fmt.Sprintf("on (%s://%s, auth=%s)", u.Scheme, u.Host, auth)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, (sec%3600)/60, sec%60)
}
