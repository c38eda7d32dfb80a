package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/John-Robertt/MCV/internal/domain"
)

const (
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
	// ErrCodeMissingAPIKey 表示环境变量中没有 TMDB_API_KEY。
	ErrCodeMissingAPIKey = "config_missing_api_key"
)

const (
	FileName = "mcv.json"

	DefaultAPIBaseURL        = "https://api.themoviedb.org/3"
	DefaultLanguage          = "en-US"
	DefaultConcurrency       = 8
	DefaultRequestsPerSecond = 20
	DefaultTimeout           = 20 * time.Second
	DefaultItemHeight        = 220
	DefaultViewportHeight    = 660
	DefaultOverscan          = 3
)

// CLIArgs 只包含 CLI 暴露的配置项，并保留“是否显式指定”的信息。
type CLIArgs struct {
	ConfigPath string

	Language    string
	LanguageSet bool

	ViewportHeight    int
	ViewportHeightSet bool
}

// FileConfig 对应 mcv.json 的解析结构。指针字段用于区分“未配置”与零值。
type FileConfig struct {
	APIBaseURL        string            `json:"api_base_url"`
	Language          string            `json:"language"`
	ImageBaseURL      string            `json:"image_base_url"`
	FallbackImageURL  string            `json:"fallback_image_url"`
	Concurrency       int               `json:"concurrency"`
	RequestsPerSecond *float64          `json:"requests_per_second"`
	TimeoutSeconds    int               `json:"timeout_seconds"`
	Proxy             *ProxyConfig      `json:"proxy"`
	ItemHeight        int               `json:"item_height"`
	ViewportHeight    int               `json:"viewport_height"`
	Overscan          *int              `json:"overscan"`
	Pool              []string          `json:"pool"`
	Categories        []domain.Category `json:"categories"`
}

type ProxyConfig struct {
	URL string `json:"url"`
}

// EnvConfig 是从环境变量读取的部分。API key 只允许来自环境，不写入配置文件。
type EnvConfig struct {
	APIKey   string `env:"TMDB_API_KEY"`
	Language string `env:"MCV_LANGUAGE"`
	ProxyURL string `env:"MCV_PROXY_URL"`
}

// EffectiveConfig 是合并并规范化后的最终配置（实现层直接消费，不再做二次默认/优先级判断）。
type EffectiveConfig struct {
	APIKey     string
	APIBaseURL string
	Language   string

	ImageBaseURL     string
	FallbackImageURL string

	Concurrency       int
	RequestsPerSecond float64
	Timeout           time.Duration
	ProxyURL          string

	ItemHeight     int
	ViewportHeight int
	Overscan       int

	Pool       []string
	Categories []domain.Category
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeMissingAPIKey:
		return fmt.Sprintf("%s：未设置环境变量 TMDB_API_KEY", e.Code)
	case ErrCodeInvalid:
		if e.Path == "" {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffectiveFrom 读取配置文件与环境变量（environ 通常来自 env.ToMap(os.Environ())），并与 CLI 参数合并为最终配置。
//
// 发现规则：
// 1) CLI 提供 --config：该文件必须存在
// 2) 否则尝试读取 <cwd>/mcv.json（可选）
//
// 覆盖优先级：CLI > 环境变量 > 配置文件 > 内置默认。
func LoadEffectiveFrom(cwd string, cli CLIArgs, environ map[string]string) (EffectiveConfig, error) {
	cfgPath := strings.TrimSpace(cli.ConfigPath)
	required := cfgPath != ""
	if !required {
		cfgPath = filepath.Join(cwd, FileName)
	} else if !filepath.IsAbs(cfgPath) {
		cfgPath = filepath.Join(cwd, cfgPath)
	}

	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if required && !exists {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: os.ErrNotExist}
	}

	var ec EnvConfig
	if err := env.ParseWithOptions(&ec, env.Options{Environment: environ}); err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Err: err}
	}

	return merge(cli, ec, fc, cfgPath)
}

func merge(cli CLIArgs, ec EnvConfig, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	invalid := func(format string, args ...any) error {
		return &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: fmt.Errorf(format, args...)}
	}

	apiKey := strings.TrimSpace(ec.APIKey)
	if apiKey == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingAPIKey}
	}

	apiBase, err := httpURL("api_base_url", fc.APIBaseURL, DefaultAPIBaseURL)
	if err != nil {
		return EffectiveConfig{}, invalid("%v", err)
	}
	imageBase, err := httpURL("image_base_url", fc.ImageBaseURL, domain.DefaultImageBaseURL)
	if err != nil {
		return EffectiveConfig{}, invalid("%v", err)
	}
	fallback, err := httpURL("fallback_image_url", fc.FallbackImageURL, domain.DefaultFallbackImageURL)
	if err != nil {
		return EffectiveConfig{}, invalid("%v", err)
	}

	// language：CLI > env > config > 默认
	language := DefaultLanguage
	switch {
	case cli.LanguageSet:
		language = strings.TrimSpace(cli.Language)
	case strings.TrimSpace(ec.Language) != "":
		language = strings.TrimSpace(ec.Language)
	case strings.TrimSpace(fc.Language) != "":
		language = strings.TrimSpace(fc.Language)
	}
	if language == "" {
		return EffectiveConfig{}, invalid("language 不能为空")
	}

	concurrency := fc.Concurrency
	if concurrency == 0 {
		concurrency = DefaultConcurrency
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > 32 {
		concurrency = 32
	}

	rps := float64(DefaultRequestsPerSecond)
	if fc.RequestsPerSecond != nil {
		rps = *fc.RequestsPerSecond
	}
	if rps < 0 {
		return EffectiveConfig{}, invalid("requests_per_second 不能为负数：%v", rps)
	}

	timeout := DefaultTimeout
	if fc.TimeoutSeconds < 0 {
		return EffectiveConfig{}, invalid("timeout_seconds 不能为负数：%d", fc.TimeoutSeconds)
	}
	if fc.TimeoutSeconds > 0 {
		timeout = time.Duration(fc.TimeoutSeconds) * time.Second
	}

	// proxy：env > config
	proxyURL := ""
	if fc.Proxy != nil {
		proxyURL = strings.TrimSpace(fc.Proxy.URL)
	}
	if v := strings.TrimSpace(ec.ProxyURL); v != "" {
		proxyURL = v
	}
	if proxyURL != "" {
		if _, err := url.Parse(proxyURL); err != nil {
			return EffectiveConfig{}, invalid("proxy.url 无效：%w", err)
		}
	}

	itemHeight := fc.ItemHeight
	if itemHeight == 0 {
		itemHeight = DefaultItemHeight
	}
	if itemHeight < 0 {
		return EffectiveConfig{}, invalid("item_height 必须为正数：%d", itemHeight)
	}

	viewportHeight := fc.ViewportHeight
	if viewportHeight == 0 {
		viewportHeight = DefaultViewportHeight
	}
	if cli.ViewportHeightSet {
		viewportHeight = cli.ViewportHeight
	}
	if viewportHeight <= 0 {
		return EffectiveConfig{}, invalid("viewport_height 必须为正数：%d", viewportHeight)
	}

	overscan := DefaultOverscan
	if fc.Overscan != nil {
		overscan = *fc.Overscan
	}
	if overscan < 0 {
		return EffectiveConfig{}, invalid("overscan 不能为负数：%d", overscan)
	}

	pool := cleanIDs(fc.Pool)
	if len(pool) == 0 {
		pool = domain.DefaultPool()
	}

	categories := make([]domain.Category, 0, len(fc.Categories))
	for _, c := range fc.Categories {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			return EffectiveConfig{}, invalid("categories 中存在空 id（label=%q）", c.Label)
		}
		categories = append(categories, domain.Category{ID: id, Label: strings.TrimSpace(c.Label)})
	}
	if len(categories) == 0 {
		categories = append(categories, domain.DefaultCategories...)
	}

	return EffectiveConfig{
		APIKey:            apiKey,
		APIBaseURL:        apiBase,
		Language:          language,
		ImageBaseURL:      imageBase,
		FallbackImageURL:  fallback,
		Concurrency:       concurrency,
		RequestsPerSecond: rps,
		Timeout:           timeout,
		ProxyURL:          proxyURL,
		ItemHeight:        itemHeight,
		ViewportHeight:    viewportHeight,
		Overscan:          overscan,
		Pool:              pool,
		Categories:        categories,
	}, nil
}

// httpURL 校验 http/https 绝对 URL；raw 为空时返回默认值。
func httpURL(field, raw, def string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%s 无效：%q", field, raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%s 必须是 http/https：%q", field, raw)
	}
	return strings.TrimRight(raw, "/"), nil
}

func cleanIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// readFileConfig 读取并解析 JSON 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
