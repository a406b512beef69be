package models

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

// ValidateURL 检查种子URL能否遍历: 必须是 http(s) 且带主机名
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	switch {
	case err != nil:
		return fmt.Errorf("无法解析URL: %w", err)
	case u.Scheme != "http" && u.Scheme != "https":
		return fmt.Errorf("不支持的协议 %q, 仅接受 http/https", u.Scheme)
	case u.Hostname() == "":
		return errors.New("URL缺少主机名")
	}
	return nil
}

// NewRunID 本次运行的标识,写入日志的 run_id 字段
func NewRunID() string {
	return uuid.NewString()
}
