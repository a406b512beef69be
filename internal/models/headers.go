package models

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// HeaderProvider 每次请求前由探测器、下载器和情报源调用
// 返回值为合并后的头部副本,调用方可以随意修改
type HeaderProvider interface {
	GetHeaders() (http.Header, error)
}

// CliHeaders 重复的 -H "Name: Value" 参数
type CliHeaders []string

// Parse 按出现顺序解析,同名头部以最后一次为准
// 只在第一个冒号处切分,值中的冒号原样保留
func (ch CliHeaders) Parse() (http.Header, error) {
	h := make(http.Header, len(ch))
	for i, raw := range ch {
		before, after, ok := strings.Cut(raw, ":")
		name := strings.TrimSpace(before)
		switch {
		case !ok:
			return nil, fmt.Errorf("--header 第%d项 %q: %w", i+1, raw, errMissingColon)
		case name == "":
			return nil, fmt.Errorf("--header 第%d项 %q: %w", i+1, raw, errEmptyName)
		}
		h.Set(name, strings.TrimSpace(after))
	}
	return h, nil
}

var (
	errMissingColon = errors.New("缺少冒号, 格式应为 'Name: Value'")
	errEmptyName    = errors.New("头部名称为空")
)
