package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// TestNewDisabled 测试禁用状态返回 noop Meter
func TestNewDisabled(t *testing.T) {
	meter, err := New(&Config{Enabled: false})
	if err != nil {
		t.Fatalf("New should not fail for disabled config: %v", err)
	}

	ctx := context.Background()
	counter, err := meter.Counter("test_total", "test")
	if err != nil {
		t.Fatalf("noop Counter should not fail: %v", err)
	}
	counter.Inc(ctx)
	counter.Add(ctx, 5, L("k", "v"))

	gauge, _ := meter.Gauge("test_gauge", "test")
	gauge.Set(ctx, 1)
	gauge.Inc(ctx)
	gauge.Dec(ctx)

	histogram, _ := meter.Histogram("test_seconds", "test", WithUnit("s"))
	histogram.Record(ctx, 0.1)

	if err := meter.Shutdown(ctx); err != nil {
		t.Errorf("noop Shutdown should not fail: %v", err)
	}
}

// TestNewNilConfig 测试 nil 配置
func TestNewNilConfig(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatal("New with nil config should return error")
	}
}

// TestNewEnabled 测试启用状态的完整指标链路
func TestNewEnabled(t *testing.T) {
	meter, err := New(&Config{
		Enabled:     true,
		ServiceName: "metrics-test",
		Version:     "v0.0.1",
		// Port 为 0，不启动 HTTP 服务器
	})
	if err != nil {
		t.Fatalf("New should not fail: %v", err)
	}
	defer meter.Shutdown(context.Background())

	ctx := context.Background()

	counter, err := meter.Counter("search_requests_total", "查询请求总数")
	if err != nil {
		t.Fatalf("Counter creation failed: %v", err)
	}
	counter.Inc(ctx, L("source", "primary"))
	counter.Add(ctx, 3, L("source", "warm_cache"))

	gauge, err := meter.Gauge("cache_entries", "缓存条目数")
	if err != nil {
		t.Fatalf("Gauge creation failed: %v", err)
	}
	gauge.Set(ctx, 10, L("tier", "warm"))
	gauge.Inc(ctx, L("tier", "warm"))
	gauge.Dec(ctx, L("tier", "warm"))

	histogram, err := meter.Histogram("upstream_duration_seconds", "上游调用耗时", WithUnit("s"))
	if err != nil {
		t.Fatalf("Histogram creation failed: %v", err)
	}
	histogram.Record(ctx, 0.235, L("result", "success"))
}

// TestLabelKey 测试标签键生成
func TestLabelKey(t *testing.T) {
	if got := labelKey(nil); got != "" {
		t.Errorf("empty labels should produce empty key, got %q", got)
	}
	got := labelKey([]Label{L("a", "1"), L("b", "2")})
	if got != "a=1|b=2" {
		t.Errorf("unexpected label key: %q", got)
	}
}

// TestGinMiddleware 测试 Gin 中间件记录请求
func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// 禁用态的 noop Meter 足以覆盖中间件路径，
	// 避免与 TestNewEnabled 在默认 Prometheus 注册表上重复注册
	meter, err := New(&Config{Enabled: false})
	if err != nil {
		t.Fatalf("New should not fail: %v", err)
	}

	router := gin.New()
	router.Use(GinMiddleware(meter, "gin-test"))
	router.GET("/api/search", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("unexpected status: %d", w.Code)
	}

	// 未命中路由也应安全通过中间件
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("unexpected status for unmatched route: %d", w.Code)
	}
}

// TestGinMiddlewareNilMeter 测试 nil Meter 退化为直通
func TestGinMiddlewareNilMeter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(GinMiddleware(nil, "x"))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusOK {
		t.Errorf("unexpected status: %d", w.Code)
	}
}
