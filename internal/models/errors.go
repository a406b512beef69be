package models

import "fmt"

// TransportError 连接或超时失败
type TransportError struct {
	URL   string
	Cause error
}

// Error 实现error接口
func (e *TransportError) Error() string {
	return fmt.Sprintf("连接失败 [%s]: %v", e.URL, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// HTTPError 非成功的HTTP状态码
type HTTPError struct {
	URL        string
	StatusCode int
}

// Error 实现error接口
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d [%s]", e.StatusCode, e.URL)
}

// ContentError HEAD猜测时Content-Type缺失或不符合预期
type ContentError struct {
	URL         string
	ContentType string
}

// Error 实现error接口
func (e *ContentError) Error() string {
	if e.ContentType == "" {
		return fmt.Sprintf("缺少Content-Type [%s]", e.URL)
	}
	return fmt.Sprintf("非压缩包Content-Type [%s]: %s", e.URL, e.ContentType)
}

// FatalStartupError 启动阶段的致命错误(本地文件不存在、情报源不可达等)
// 出现该错误时整个进程退出
type FatalStartupError struct {
	Reason string
	Cause  error
}

// Error 实现error接口
func (e *FatalStartupError) Error() string {
	if e.Cause == nil {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *FatalStartupError) Unwrap() error {
	return e.Cause
}

// ConfigError 配置文件错误
// 表示配置文件解析失败
type ConfigError struct {
	// FilePath 配置文件路径
	FilePath string

	// Cause 底层错误 (如viper.ConfigParseError)
	Cause error
}

// Error 实现error接口
func (e *ConfigError) Error() string {
	return fmt.Sprintf("配置文件错误 [%s]: %v", e.FilePath, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// ValidationError 单个请求头未通过校验
// Field 取值 "name" 或 "value"
type ValidationError struct {
	Field      string
	HeaderName string
	Reason     string
	Suggestion string
}

func (e *ValidationError) Error() string {
	if e.Suggestion == "" {
		return fmt.Sprintf("请求头 %q 的%s无效: %s", e.HeaderName, fieldLabel(e.Field), e.Reason)
	}
	return fmt.Sprintf("请求头 %q 的%s无效: %s, %s", e.HeaderName, fieldLabel(e.Field), e.Reason, e.Suggestion)
}

func fieldLabel(field string) string {
	if field == "value" {
		return "值"
	}
	return "名称"
}
