package probers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/RecoveryAshes/phishfinder/internal/models"
	"github.com/RecoveryAshes/phishfinder/internal/utils"
	"github.com/gocolly/colly/v2"
)

// ListingMarker 目录列表页面的唯一判定依据
const ListingMarker = "Index of"

// DirectoryProber 目录探测器(使用Colly)
// 对候选目录发送GET请求,判断是否开启了目录列表
type DirectoryProber struct {
	collector      *colly.Collector
	headerProvider models.HeaderProvider
}

// NewDirectoryProber 创建目录探测器
func NewDirectoryProber(timeout time.Duration, headerProvider models.HeaderProvider) *DirectoryProber {
	utils.Debugf("目录探测器: 超时=%s, 重定向已禁用", timeout)
	return &DirectoryProber{
		collector:      newCollector(timeout),
		headerProvider: headerProvider,
	}
}

// Probe 探测一个候选目录
// 不写文件也不写记录日志,结果完全由返回值表达
func (p *DirectoryProber) Probe(target string) models.ProbeResult {
	result := models.ProbeResult{URL: target}

	res, err := fetch(p.collector, http.MethodGet, target, p.headerProvider)
	if err != nil {
		result.Kind = models.ProbeError
		result.Err = &models.TransportError{URL: target, Cause: err}
		return result
	}

	result.StatusCode = res.StatusCode
	if !isSuccess(res.StatusCode) {
		result.Kind = models.ProbeNotOK
		result.Err = &models.HTTPError{URL: target, StatusCode: res.StatusCode}
		return result
	}

	body, err := decompressBody(res.Headers.Get("Content-Encoding"), res.Body)
	if err != nil {
		utils.Warnf("解压响应失败 [%s]: %v", target, err)
		body = res.Body
	}

	if bytes.Contains(body, []byte(ListingMarker)) {
		result.Kind = models.ProbeListing
		result.Body = body
		return result
	}

	result.Kind = models.ProbeNoListing
	return result
}

// isSuccess 状态码小于400即视为成功
// 重定向已禁用,3xx说明目录本身可达
func isSuccess(statusCode int) bool {
	return statusCode > 0 && statusCode < http.StatusBadRequest
}
