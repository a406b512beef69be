package core

import (
	"net/http"
	"strings"
	"testing"

	"github.com/RecoveryAshes/phishfinder/internal/utils"
)

func TestHeaderManager_Merged(t *testing.T) {
	t.Run("默认头部存在", func(t *testing.T) {
		hm, err := NewHeaderManager(nil, nil)
		if err != nil {
			t.Fatalf("创建HeaderManager失败: %v", err)
		}
		if hm.Merged().Get("User-Agent") != DefaultUserAgent {
			t.Error("期望默认User-Agent存在")
		}
	})

	t.Run("优先级: 默认 < 配置 < 命令行", func(t *testing.T) {
		hm, err := NewHeaderManager(
			map[string]string{"user-agent": "ConfigBot/1.0", "x-from-config": "yes"},
			[]string{"User-Agent: CliBot/1.0"},
		)
		if err != nil {
			t.Fatalf("创建HeaderManager失败: %v", err)
		}

		headers := hm.Merged()
		if ua := headers.Get("User-Agent"); ua != "CliBot/1.0" {
			t.Errorf("期望命令行覆盖User-Agent, 实际='%s'", ua)
		}
		if headers.Get("X-From-Config") != "yes" {
			t.Error("配置文件头部丢失")
		}
		if headers.Get("Accept") != "*/*" {
			t.Error("默认Accept丢失")
		}
	})

	t.Run("命令行格式错误", func(t *testing.T) {
		if _, err := NewHeaderManager(nil, []string{"NoColon"}); err == nil {
			t.Error("期望返回格式错误")
		}
	})
}

func TestHeaderManager_GetHeaders(t *testing.T) {
	t.Run("禁止头部被拒绝", func(t *testing.T) {
		hm, err := NewHeaderManager(map[string]string{"Host": "evil.example"}, nil)
		if err != nil {
			t.Fatalf("创建HeaderManager失败: %v", err)
		}
		_, err = hm.GetHeaders()
		if err == nil {
			t.Fatal("期望Host头部验证失败")
		}
		if !strings.Contains(err.Error(), "配置文件") {
			t.Errorf("错误信息应指出来源层, 实际: %v", err)
		}
	})

	t.Run("返回副本", func(t *testing.T) {
		hm, err := NewHeaderManager(nil, []string{"X-Test: 1"})
		if err != nil {
			t.Fatal(err)
		}
		first, err := hm.GetHeaders()
		if err != nil {
			t.Fatal(err)
		}
		first.Set("X-Test", "changed")

		second, _ := hm.GetHeaders()
		if second.Get("X-Test") != "1" {
			t.Error("修改返回值不应影响内部状态")
		}
	})

	t.Run("敏感头部脱敏", func(t *testing.T) {
		hm, err := NewHeaderManager(nil, []string{"Authorization: Bearer secret-token-12345"})
		if err != nil {
			t.Fatal(err)
		}
		if got := hm.Redacted()["Authorization"]; got != "Bearer ***" {
			t.Errorf("Authorization应脱敏, 实际='%s'", got)
		}
	})
}

// TestHeaderManager_EdgeCases 测试命令行头部的边缘情况
func TestHeaderManager_EdgeCases(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantErr   bool
		wantName  string
		wantValue string
	}{
		{"值中包含冒号", "X-URL: https://example.com:8080/path", false, "X-Url", "https://example.com:8080/path"},
		{"多个冒号按第一个分割", "Authorization: Bearer: token", false, "Authorization", "Bearer: token"},
		{"空值", "X-Empty:", false, "X-Empty", ""},
		{"值包含中文字符", "X-Chinese: 测试中文", true, "", ""},
		{"值包含emoji", "X-Emoji: test 😀", true, "", ""},
		{"名称包含空格", "X Bad: 1", true, "", ""},
		{"禁止头部不区分大小写", "content-length: 10", true, "", ""},
		{"超过最大长度", "X-Long: " + strings.Repeat("a", utils.MaxHeaderValueLength+1), true, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hm, err := NewHeaderManager(nil, []string{tt.header})
			if err == nil {
				var headers http.Header
				headers, err = hm.GetHeaders()
				if err == nil && headers.Get(tt.wantName) != tt.wantValue {
					t.Errorf("%s = '%s', 期望 '%s'", tt.wantName, headers.Get(tt.wantName), tt.wantValue)
				}
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}
