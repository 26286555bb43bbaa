package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ceyewan/bulwark/xerrors"
)

// UpstreamClient 上游数据源抽象
//
// 超时与提供方错误都以普通 error 返回，编排器不区分失败子类，
// 任何失败都触发同一条降级链路。
type UpstreamClient interface {
	// Search 执行上游查询，返回记录集与总命中数
	Search(ctx context.Context, location string, filters map[string]any, limit int) ([]Record, int, error)
}

// HTTPUpstreamConfig HTTP 上游配置
type HTTPUpstreamConfig struct {
	// BaseURL 上游服务地址，如 http://listings.internal:8080
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Timeout 单次请求超时（默认：10s）
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// httpUpstream 基于 HTTP 的上游客户端实现
type httpUpstream struct {
	baseURL string
	client  *http.Client
}

// upstreamResponse 上游响应体
type upstreamResponse struct {
	Records    []Record `json:"records"`
	TotalFound int      `json:"total_found"`
}

// NewHTTPUpstream 创建 HTTP 上游客户端
//
// 请求形如 GET {base_url}/search?location=...&limit=...，过滤条件
// 逐个展开为查询参数。非 2xx 响应与传输错误均返回 error。
func NewHTTPUpstream(cfg *HTTPUpstreamConfig) (UpstreamClient, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, xerrors.New("orchestrator: upstream base url is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &httpUpstream{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (u *httpUpstream) Search(ctx context.Context, location string, filters map[string]any, limit int) ([]Record, int, error) {
	params := url.Values{}
	params.Set("location", location)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	for k, v := range filters {
		params.Set(k, fmt.Sprintf("%v", v))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, xerrors.Wrap(err, "build upstream request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, 0, xerrors.Wrap(err, "upstream request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, 0, xerrors.New("orchestrator: upstream returned " + resp.Status)
	}

	var body upstreamResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, 0, xerrors.Wrap(err, "decode upstream response")
	}
	return body.Records, body.TotalFound, nil
}
