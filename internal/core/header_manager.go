package core

import (
	"fmt"
	"net/http"

	"github.com/RecoveryAshes/phishfinder/internal/models"
	"github.com/RecoveryAshes/phishfinder/internal/utils"
)

// DefaultUserAgent 桌面版Chrome的UA,部分钓鱼页面会拦截非浏览器访问
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) " +
	"Chrome/120.0.0.0 Safari/537.36"

type headerLayer struct {
	source string
	h      http.Header
}

// HeaderManager 合并三层请求头: 内置默认值、配置文件 http.headers、命令行 -H
// 后面的层覆盖前面的同名头部
type HeaderManager struct {
	layers []headerLayer
	cached http.Header
}

var _ models.HeaderProvider = (*HeaderManager)(nil)

// NewHeaderManager 解析命令行头部并组装三层
// 这里只做格式解析,合法性校验在 Validate 或首次 GetHeaders 时进行
func NewHeaderManager(configHeaders map[string]string, cliHeaders []string) (*HeaderManager, error) {
	cli, err := models.CliHeaders(cliHeaders).Parse()
	if err != nil {
		return nil, err
	}

	fromConfig := http.Header{}
	for k, v := range configHeaders {
		fromConfig.Set(k, v)
	}

	return &HeaderManager{layers: []headerLayer{
		{"默认", http.Header{
			"User-Agent":      {DefaultUserAgent},
			"Accept":          {"*/*"},
			"Accept-Encoding": {"gzip, deflate, br"},
		}},
		{"配置文件", fromConfig},
		{"命令行", cli},
	}}, nil
}

// Validate 按层校验,错误信息带上出错的层
func (hm *HeaderManager) Validate() error {
	for _, l := range hm.layers {
		if err := utils.ValidateHeaders(l.h); err != nil {
			return fmt.Errorf("%s头部: %w", l.source, err)
		}
	}
	return nil
}

// Merged 合并结果,每次返回新的 map
func (hm *HeaderManager) Merged() http.Header {
	out := http.Header{}
	for _, l := range hm.layers {
		for k, vs := range l.h {
			out[k] = append([]string(nil), vs...)
		}
	}
	return out
}

// Redacted 用于日志输出
func (hm *HeaderManager) Redacted() map[string]string {
	return utils.RedactHeaders(hm.Merged())
}

// GetHeaders 首次调用时校验并缓存,之后返回缓存的副本
func (hm *HeaderManager) GetHeaders() (http.Header, error) {
	if hm.cached == nil {
		if err := hm.Validate(); err != nil {
			return nil, err
		}
		hm.cached = hm.Merged()
		utils.Debugf("🧾 请求头: %v", hm.Redacted())
	}
	return hm.cached.Clone(), nil
}
