package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/RecoveryAshes/phishfinder/internal/models"
	"github.com/RecoveryAshes/phishfinder/internal/utils"
)

// feedEntry 情报源中的一条记录,只关心url字段
type feedEntry struct {
	URL string `json:"url"`
}

// RemoteSource 远程JSON情报源
// 响应体为对象数组,每个对象至少包含url字段
type RemoteSource struct {
	feedURL        string
	client         *http.Client
	headerProvider models.HeaderProvider
}

// NewRemoteSource 创建远程来源
// timeout 作用于建连和等待响应头,大文件的读取不受限制
func NewRemoteSource(feedURL string, timeout time.Duration, headerProvider models.HeaderProvider) *RemoteSource {
	transport := utils.NewTransport(timeout)
	transport.TLSClientConfig = nil

	return &RemoteSource{
		feedURL:        feedURL,
		client:         &http.Client{Transport: transport},
		headerProvider: headerProvider,
	}
}

// Name 实现 Source 接口
func (s *RemoteSource) Name() string {
	return s.feedURL
}

// Seeds 下载并流式解析情报源
func (s *RemoteSource) Seeds(ctx context.Context) ([]string, error) {
	utils.Infof("📡 正在解析情报源 %s, 可能需要一分钟...", s.feedURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, &models.FatalStartupError{Reason: "无效的情报源地址", Cause: err}
	}
	if s.headerProvider != nil {
		headers, err := s.headerProvider.GetHeaders()
		if err != nil {
			return nil, &models.FatalStartupError{Reason: "获取HTTP头部失败", Cause: err}
		}
		if headers != nil {
			req.Header = headers
		}
	}
	req.Header.Del("Accept-Encoding")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &models.FatalStartupError{
			Reason: "连接情报源失败,请稍后重试",
			Cause:  &models.TransportError{URL: s.feedURL, Cause: err},
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &models.FatalStartupError{
			Reason: "情报源返回错误状态",
			Cause:  &models.HTTPError{URL: s.feedURL, StatusCode: resp.StatusCode},
		}
	}

	urls, err := decodeFeed(resp.Body)
	if err != nil {
		return nil, &models.FatalStartupError{Reason: "解析情报源失败", Cause: err}
	}

	utils.Infof("✅ 情报源解析完成: %d 个URL", len(urls))
	return urls, nil
}

// decodeFeed 逐条解码JSON数组,不把整个文档读入内存
func decodeFeed(r io.Reader) ([]string, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("读取JSON失败: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("JSON顶层应为数组, 实际为 %v", tok)
	}

	urls := make([]string, 0)
	for n := 1; dec.More(); n++ {
		var entry feedEntry
		if err := dec.Decode(&entry); err != nil {
			return nil, fmt.Errorf("解码第%d条记录失败: %w", n, err)
		}

		u := strings.TrimSpace(entry.URL)
		if unescaped, err := url.PathUnescape(u); err == nil {
			u = strings.TrimSpace(unescaped)
		}
		if u == "" {
			continue
		}
		urls = append(urls, u)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("JSON数组未正确结束: %w", err)
	}
	return urls, nil
}
