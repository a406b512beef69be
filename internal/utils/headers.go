package utils

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/RecoveryAshes/phishfinder/internal/models"
)

// MaxHeaderValueLength 单个请求头值的上限(字节)
const MaxHeaderValueLength = 8 << 10

var (
	// 由 net/http 自己维护的头部
	managedHeaders = map[string]struct{}{
		"host":              {},
		"content-length":    {},
		"transfer-encoding": {},
		"connection":        {},
	}

	// 名称含这些片段的头部在日志里打码
	secretHints = []string{"authorization", "cookie", "token", "key", "secret", "password", "credential"}

	tokenChars = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
	printable  = regexp.MustCompile(`^[\x20-\x7E\t]*$`)
)

// ValidateHeader 校验一个自定义请求头
// 名称只允许字母数字和连字符,值只允许可打印ASCII
func ValidateHeader(name, value string) error {
	bad := func(field, reason, hint string) error {
		return &models.ValidationError{Field: field, HeaderName: name, Reason: reason, Suggestion: hint}
	}

	if _, ok := managedHeaders[strings.ToLower(name)]; ok {
		return bad("name", "该头部由HTTP客户端维护", fmt.Sprintf("从配置和 -H 参数中去掉 %s", name))
	}
	if !tokenChars.MatchString(name) {
		return bad("name", "名称为空或含有字母数字连字符以外的字符", "")
	}
	if n := len(value); n > MaxHeaderValueLength {
		return bad("value", fmt.Sprintf("长度 %d 超过上限 %d", n, MaxHeaderValueLength), "")
	}
	if !printable.MatchString(value) {
		return bad("value", "含有控制字符或非ASCII字符", "去掉换行等不可见字符")
	}
	return nil
}

// ValidateHeaders 逐个校验,遇到第一个错误即返回
func ValidateHeaders(h http.Header) error {
	for name, values := range h {
		for _, v := range values {
			if err := ValidateHeader(name, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func isSecret(name string) bool {
	lower := strings.ToLower(name)
	for _, hint := range secretHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// RedactHeaders 生成可以写进日志的头部视图
// 每个头部只取第一个值,敏感值只保留首尾4个字符
func RedactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if len(values) == 0 {
			continue
		}
		v := values[0]
		switch {
		case !isSecret(name):
			out[name] = v
		case strings.HasPrefix(v, "Bearer "):
			out[name] = "Bearer ***"
		case len(v) > 8:
			out[name] = v[:4] + "***" + v[len(v)-4:]
		default:
			out[name] = "***"
		}
	}
	return out
}
