package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/RecoveryAshes/phishfinder/internal/config"
)

// TestNormalizeURL 测试URL规范化
func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://evil.example/a/b", "https://evil.example/a/b"},
		{"evil.example/a/b", "http://evil.example/a/b"},
		{"  http://evil.example/  ", "http://evil.example/"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeURL(tt.input)
			if err != nil {
				t.Fatalf("NormalizeURL失败: %v", err)
			}
			if got != tt.want {
				t.Errorf("NormalizeURL(%q) = %s, 期望 %s", tt.input, got, tt.want)
			}
		})
	}
}

// TestValidateFlags 测试参数验证
func TestValidateFlags(t *testing.T) {
	load := func(t *testing.T) *config.Config {
		t.Helper()
		cfg, err := config.Load("")
		if err != nil {
			t.Fatal(err)
		}
		return cfg
	}

	t.Run("默认配置", func(t *testing.T) {
		if err := ValidateFlags("", load(t)); err != nil {
			t.Errorf("默认配置应通过验证: %v", err)
		}
	})

	t.Run("无效的情报源", func(t *testing.T) {
		cfg := load(t)
		cfg.Feed.URL = "file:///etc/passwd"
		if err := ValidateFlags("", cfg); err == nil {
			t.Error("期望返回错误")
		}
		// 使用本地文件时不检查情报源
		if err := ValidateFlags("urls.txt", cfg); err != nil {
			t.Errorf("使用本地文件时不应检查情报源: %v", err)
		}
	})

	t.Run("超时为负数", func(t *testing.T) {
		cfg := load(t)
		cfg.Probe.Timeout = -time.Second
		if err := ValidateFlags("urls.txt", cfg); err == nil {
			t.Error("期望返回错误")
		}
	})
}

// TestCandidatesCommand 测试 candidates 子命令
func TestCandidatesCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"candidates", "evil.example/kit/login.php"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("执行失败: %v", err)
	}

	want := []string{
		"http://evil.example/kit/login.php/\thttp://evil.example/kit/login.php.zip",
		"http://evil.example/kit/\thttp://evil.example/kit.zip",
		"http://evil.example/\t-",
	}
	got := strings.Split(strings.TrimSpace(out.String()), "\n")
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("输出:\n%s\n期望:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

// TestInitConfigCommand 测试 init-config 子命令
func TestInitConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "config.yaml")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"init-config", path})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("执行失败: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("配置文件未生成: %v", err)
	}

	if _, err := config.Load(path); err != nil {
		t.Errorf("生成的配置文件无法加载: %v", err)
	}

	// 再次执行且未指定 --force
	rootCmd.SetArgs([]string{"init-config", path})
	if err := rootCmd.Execute(); err == nil {
		t.Error("文件已存在时应返回错误")
	}
}

// TestBuildLogConfig 测试未配置的轮转参数回落到默认值
func TestBuildLogConfig(t *testing.T) {
	got := buildLogConfig(config.LoggingConfig{Level: "debug"})
	if got.Level != "debug" || got.LogDir != "logs" || got.MaxSize != 10 || got.MaxBackups != 3 {
		t.Errorf("应保留默认轮转参数, 得到 %+v", got)
	}

	got = buildLogConfig(config.LoggingConfig{
		LogDir:   "/tmp/pf",
		Rotation: config.RotationConfig{MaxSize: 50, MaxBackups: 1, MaxAge: 7},
	})
	if got.Level != "info" || got.LogDir != "/tmp/pf" || got.MaxSize != 50 || got.MaxAge != 7 || got.Compress {
		t.Errorf("配置值应覆盖默认值, 得到 %+v", got)
	}
}
