package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/RecoveryAshes/phishfinder/internal/config"
	"github.com/RecoveryAshes/phishfinder/internal/models"
)

// ValidateFlags 验证命令行参数覆盖后的配置
func ValidateFlags(inputFile string, cfg *config.Config) error {
	if inputFile == "" {
		if err := models.ValidateURL(cfg.Feed.URL); err != nil {
			return fmt.Errorf("无效的情报源地址: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("参数无效: %w", err)
	}

	return nil
}

// NormalizeURL 规范化URL
// 没有协议时默认使用http, 钓鱼站点常见于未配置证书的主机
func NormalizeURL(urlStr string) (string, error) {
	urlStr = strings.TrimSpace(urlStr)
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return "", err
	}

	if parsed.Scheme == "" {
		urlStr = "http://" + urlStr
		parsed, err = url.Parse(urlStr)
		if err != nil {
			return "", err
		}
	}

	return parsed.String(), nil
}
