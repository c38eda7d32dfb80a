package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/John-Robertt/MCV/internal/domain"
)

var testEnv = map[string]string{"TMDB_API_KEY": "k"}

func TestLoadEffective_MissingAPIKey(t *testing.T) {
	cwd := t.TempDir()

	_, err := LoadEffectiveFrom(cwd, CLIArgs{}, map[string]string{})
	if Code(err) != ErrCodeMissingAPIKey {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeMissingAPIKey, err, Code(err))
	}
}

func TestLoadEffective_DefaultsWithoutFile(t *testing.T) {
	cwd := t.TempDir()

	eff, err := LoadEffectiveFrom(cwd, CLIArgs{}, testEnv)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.APIKey != "k" {
		t.Fatalf("期望 api key=k，实际=%q", eff.APIKey)
	}
	if eff.APIBaseURL != DefaultAPIBaseURL || eff.Language != DefaultLanguage {
		t.Fatalf("默认值不符合预期：%+v", eff)
	}
	if eff.ItemHeight != 220 || eff.ViewportHeight != 660 || eff.Overscan != 3 {
		t.Fatalf("窗口默认值不符合预期：%+v", eff)
	}
	if eff.Timeout != 20*time.Second {
		t.Fatalf("期望 timeout=20s，实际=%v", eff.Timeout)
	}
	if len(eff.Pool) != len(domain.DefaultPool()) {
		t.Fatalf("期望默认 pool，实际 %d 个", len(eff.Pool))
	}
	if len(eff.Categories) != len(domain.DefaultCategories) {
		t.Fatalf("期望默认 categories，实际 %d 个", len(eff.Categories))
	}
}

func TestLoadEffective_LanguageMergeOrder(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte(`{"language":"fr-FR"}`))

	eff, err := LoadEffectiveFrom(cwd, CLIArgs{}, testEnv)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Language != "fr-FR" {
		t.Fatalf("期望 language=fr-FR，实际=%q", eff.Language)
	}

	// 环境变量覆盖配置文件。
	eff, err = LoadEffectiveFrom(cwd, CLIArgs{}, map[string]string{"TMDB_API_KEY": "k", "MCV_LANGUAGE": "de-DE"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Language != "de-DE" {
		t.Fatalf("期望 language=de-DE，实际=%q", eff.Language)
	}

	// CLI 覆盖环境变量。
	eff, err = LoadEffectiveFrom(cwd, CLIArgs{Language: "ja-JP", LanguageSet: true}, map[string]string{"TMDB_API_KEY": "k", "MCV_LANGUAGE": "de-DE"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Language != "ja-JP" {
		t.Fatalf("期望 language=ja-JP，实际=%q", eff.Language)
	}
}

func TestLoadEffective_ExplicitConfigMustExist(t *testing.T) {
	cwd := t.TempDir()

	_, err := LoadEffectiveFrom(cwd, CLIArgs{ConfigPath: "nope.json"}, testEnv)
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
	}
}

func TestLoadEffective_InvalidJSON(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte(`{`))

	_, err := LoadEffectiveFrom(cwd, CLIArgs{}, testEnv)
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
	}
}

func TestLoadEffective_InvalidBaseURL(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte(`{"api_base_url":"ftp://x"}`))

	_, err := LoadEffectiveFrom(cwd, CLIArgs{}, testEnv)
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
	}
}

func TestLoadEffective_ConcurrencyClamped(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte(`{"concurrency":100}`))

	eff, err := LoadEffectiveFrom(cwd, CLIArgs{}, testEnv)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Concurrency != 32 {
		t.Fatalf("期望 concurrency=32，实际=%d", eff.Concurrency)
	}
}

func TestLoadEffective_OverscanZeroAllowed(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte(`{"overscan":0,"requests_per_second":0}`))

	eff, err := LoadEffectiveFrom(cwd, CLIArgs{}, testEnv)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Overscan != 0 {
		t.Fatalf("期望 overscan=0，实际=%d", eff.Overscan)
	}
	if eff.RequestsPerSecond != 0 {
		t.Fatalf("期望 requests_per_second=0（不限速），实际=%v", eff.RequestsPerSecond)
	}
}

func TestLoadEffective_ViewportCLIOverride(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte(`{"viewport_height":440}`))

	eff, err := LoadEffectiveFrom(cwd, CLIArgs{ViewportHeight: 880, ViewportHeightSet: true}, testEnv)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.ViewportHeight != 880 {
		t.Fatalf("期望 viewport_height=880，实际=%d", eff.ViewportHeight)
	}

	_, err = LoadEffectiveFrom(cwd, CLIArgs{ViewportHeight: 0, ViewportHeightSet: true}, testEnv)
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v", ErrCodeInvalid, err)
	}
}

func TestLoadEffective_PoolAndProxyFromEnv(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte(`{"pool":[" 10 ","","263"],"proxy":{"url":"http://a:1"}}`))

	eff, err := LoadEffectiveFrom(cwd, CLIArgs{}, map[string]string{"TMDB_API_KEY": "k", "MCV_PROXY_URL": "http://b:2"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if len(eff.Pool) != 2 || eff.Pool[0] != "10" || eff.Pool[1] != "263" {
		t.Fatalf("pool 规范化不符合预期：%v", eff.Pool)
	}
	if eff.ProxyURL != "http://b:2" {
		t.Fatalf("期望环境变量代理覆盖配置，实际=%q", eff.ProxyURL)
	}
}

func TestLoadEffective_EmptyCategoryID(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte(`{"categories":[{"id":"","label":"x"}]}`))

	_, err := LoadEffectiveFrom(cwd, CLIArgs{}, testEnv)
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v", ErrCodeInvalid, err)
	}
}

func writeFile(t *testing.T, path string, b []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("创建目录失败：%v", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("写入文件失败：%v", err)
	}
}
