package probers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/RecoveryAshes/phishfinder/internal/models"
	"github.com/gocolly/colly/v2"
)

// GuessProber 压缩包猜测器
// 很多钓鱼工具包以目录同名的zip上传到父目录,用HEAD请求探测它是否存在
type GuessProber struct {
	collector      *colly.Collector
	headerProvider models.HeaderProvider
}

// NewGuessProber 创建猜测器
func NewGuessProber(timeout time.Duration, headerProvider models.HeaderProvider) *GuessProber {
	return &GuessProber{
		collector:      newCollector(timeout),
		headerProvider: headerProvider,
	}
}

// GuessURL 由候选目录推导压缩包URL
//
//	https://h/a/b/ -> https://h/a/b.zip
//
// 候选目录没有路径段(主机根目录)时返回 false
func GuessURL(candidate string) (string, bool) {
	parsed, err := url.Parse(candidate)
	if err != nil || strings.Trim(parsed.Path, "/") == "" {
		return "", false
	}

	trimmed := strings.TrimSuffix(candidate, "/")
	if trimmed == "" || strings.HasSuffix(trimmed, "/") {
		return "", false
	}
	return trimmed + ".zip", true
}

// Guess 对候选目录做一次压缩包猜测
func (g *GuessProber) Guess(candidate string) models.GuessResult {
	zipURL, ok := GuessURL(candidate)
	if !ok {
		return models.GuessResult{Kind: models.GuessSkipped}
	}

	result := models.GuessResult{URL: zipURL}

	res, err := fetch(g.collector, http.MethodHead, zipURL, g.headerProvider)
	if err != nil {
		result.Kind = models.GuessError
		result.Err = &models.TransportError{URL: zipURL, Cause: err}
		return result
	}

	result.ContentType = res.Headers.Get("Content-Type")
	if result.ContentType == "" || !strings.Contains(strings.ToLower(result.ContentType), "zip") {
		result.Kind = models.GuessNotZip
		result.Err = &models.ContentError{URL: zipURL, ContentType: result.ContentType}
		return result
	}

	result.Kind = models.GuessZipFound
	return result
}
