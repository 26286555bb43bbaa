package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfigFile 写入临时配置文件（测试辅助）
func writeConfigFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewDefaults(t *testing.T) {
	loader, err := New(nil)
	require.NoError(t, err)
	require.NotNil(t, loader)
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "config.yaml", `
orchestrator:
  fallback_records: 5
  warm_cache:
    ttl: 5m
upstream:
  base_url: "http://listing-api:8080"
`)

	loader, err := New(&Config{Paths: []string{dir}})
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	assert.Equal(t, "http://listing-api:8080", loader.Get("upstream.base_url"))

	var sub struct {
		FallbackRecords int `mapstructure:"fallback_records"`
	}
	require.NoError(t, loader.UnmarshalKey("orchestrator", &sub))
	assert.Equal(t, 5, sub.FallbackRecords)
}

func TestLoadMissingFileIsNotFatal(t *testing.T) {
	loader, err := New(&Config{Paths: []string{t.TempDir()}})
	require.NoError(t, err)

	// 没有配置文件时 Load 不报错，后续仍可通过环境变量取值
	require.NoError(t, loader.Load(context.Background()))
}

func TestEnvOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "config.yaml", `
upstream:
  base_url: "http://from-file"
`)

	t.Setenv("BULWARK_UPSTREAM_BASE_URL", "http://from-env")

	loader, err := New(&Config{Paths: []string{dir}})
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	assert.Equal(t, "http://from-env", loader.Get("upstream.base_url"))
}

func TestUnmarshalWhole(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "config.yaml", `
log:
  level: "debug"
  format: "json"
`)

	loader, err := New(&Config{Paths: []string{dir}})
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	var cfg struct {
		Log struct {
			Level  string `mapstructure:"level"`
			Format string `mapstructure:"format"`
		} `mapstructure:"log"`
	}
	require.NoError(t, loader.Unmarshal(&cfg))
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestWatchCancel(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "config.yaml", "app:\n  debug: false\n")

	loader, err := New(&Config{Paths: []string{dir}})
	require.NoError(t, err)
	require.NoError(t, loader.Load(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := loader.Watch(ctx, "app.debug")
	require.NoError(t, err)

	cancel()

	// 取消后通道最终被关闭
	_, open := <-ch
	assert.False(t, open, "watch channel should be closed after cancel")
}
