package httpx

import (
	"errors"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 20 * time.Second
	defaultUserAgent = "mcv/1.0 (+https://github.com/John-Robertt/MCV)"
)

// Transport 把“UA + 代理 + 限速 + 有界重试”固化为统一策略。
//
// tmdb 客户端只负责“拼 URL + 解析 JSON + 错误归类”，不关心网络策略细节。
type Transport struct {
	Base *http.Transport

	// Limiter 非 nil 时，每次尝试前都要先拿到令牌（ctx 取消则放弃）。
	Limiter *rate.Limiter

	UserAgent string

	// RetryMax 表示最大重试次数（不含首次尝试）。TMDB 默认 0：重试策略属于调用方。
	RetryMax int

	// DisableKeepAlives 决定是否对 Request 设置 Close=true。
	DisableKeepAlives bool
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	// 只对“可重放”的请求做重试：GET/HEAD 且无 body。
	canRetry := (req.Method == http.MethodGet || req.Method == http.MethodHead) && req.Body == nil
	max := t.RetryMax
	if max < 0 || !canRetry {
		max = 0
	}

	var lastErr error
	for attempt := 0; attempt <= max; attempt++ {
		if t.Limiter != nil {
			if err := t.Limiter.Wait(req.Context()); err != nil {
				return nil, err
			}
		}

		r := req.Clone(req.Context())
		if r.Header.Get("User-Agent") == "" && t.UserAgent != "" {
			r.Header.Set("User-Agent", t.UserAgent)
		}
		if t.DisableKeepAlives {
			r.Close = true
		}

		resp, err := t.Base.RoundTrip(r)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if req.Context().Err() != nil {
			// ctx 已取消：不再重试，直接返回最后错误。
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// Options 描述一个 client 的网络策略。零值即“直连、不限速、不重试、默认超时”。
type Options struct {
	ProxyURL          string
	Timeout           time.Duration
	RequestsPerSecond float64
	RetryMax          int
}

// NewAPIClient 构造访问 TMDB API 的 HTTP client。
//
// 规则：
// - ProxyURL 非空：走代理，且禁用 keep-alive
// - RequestsPerSecond > 0：所有请求共享同一个令牌桶
// - 总超时由 Timeout 控制（<=0 时用默认 20s）
func NewAPIClient(o Options) (*http.Client, error) {
	return newClient(o)
}

// NewImageClient 构造用于海报探测的 HTTP client：直连、不限速。
func NewImageClient(timeout time.Duration) (*http.Client, error) {
	return newClient(Options{Timeout: timeout})
}

func newClient(o Options) (*http.Client, error) {
	base := &http.Transport{
		Proxy:                 nil,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		MaxIdleConnsPerHost:   8,
	}

	disableKeepAlives := false
	if p := strings.TrimSpace(o.ProxyURL); p != "" {
		u, err := url.Parse(p)
		if err != nil {
			return nil, err
		}
		base.Proxy = http.ProxyURL(u)
		base.DisableKeepAlives = true
		disableKeepAlives = true
	}

	tr := &Transport{
		Base:              base,
		Limiter:           newLimiter(o.RequestsPerSecond),
		UserAgent:         defaultUserAgent,
		RetryMax:          o.RetryMax,
		DisableKeepAlives: disableKeepAlives,
	}

	timeout := o.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Transport: tr,
		Timeout:   timeout,
	}, nil
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	burst := int(math.Ceil(rps))
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
