package utils

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// NewTransport 创建探测和下载共用的HTTP传输层
// 超时作用于建连、TLS握手和等待响应头,不限制响应体的读取时长
func NewTransport(timeout time.Duration) *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		// 钓鱼站点普遍使用自签名或过期证书
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true,
		},
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       30 * time.Second,
	}
}

// NoRedirect 禁止跟随重定向,直接返回3xx响应
func NoRedirect(req *http.Request, via []*http.Request) error {
	return http.ErrUseLastResponse
}
