package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RecoveryAshes/phishfinder/internal/models"
	"github.com/spf13/viper"
)

const (
	// DefaultConfigFile init-config 默认写入位置
	DefaultConfigFile = "configs/config.yaml"

	// MaxConfigFileSize 超过该大小的配置文件直接拒绝
	MaxConfigFileSize = 1 * 1024 * 1024

	// DefaultFeedURL 默认情报源
	DefaultFeedURL = "http://data.phishtank.com/data/online-valid.json"
)

//go:embed config_template.yaml
var defaultTemplate string

// Config phishfinder 的全部配置, 对应 config.yaml 的顶层各节
type Config struct {
	Probe    ProbeConfig    `mapstructure:"probe"`
	Download DownloadConfig `mapstructure:"download"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Output   OutputConfig   `mapstructure:"output"`
	Batch    BatchConfig    `mapstructure:"batch"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ProbeConfig 探测配置
type ProbeConfig struct {
	Timeout  time.Duration `mapstructure:"timeout"`
	GuessZip bool          `mapstructure:"guess_zip"`
}

// DownloadConfig 下载配置
type DownloadConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	ChunkSize     int           `mapstructure:"chunk_size"`
	MinFreeDiskMB int           `mapstructure:"min_free_disk_mb"`
	Progress      string        `mapstructure:"progress"` // auto | always | never
}

// FeedConfig 远程情报源配置
type FeedConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// OutputConfig 记录日志和制品目录的位置
type OutputConfig struct {
	BaseDir       string `mapstructure:"base_dir"`
	OpenDirsLog   string `mapstructure:"open_dirs_log"`
	KitsLog       string `mapstructure:"kits_log"`
	KitsDir       string `mapstructure:"kits_dir"`
	RecordMaxSize int    `mapstructure:"record_max_size"`
}

// BatchConfig 批量处理配置
type BatchConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

// HTTPConfig 请求头配置
type HTTPConfig struct {
	Headers map[string]string `mapstructure:"headers"`
}

// LoggingConfig 运行日志(不含记录日志)
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 运行日志的 lumberjack 轮转参数
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// Load 加载配置文件
// configPath 为空时依次搜索 ./configs, . 和 ~/.phishfinder, 找不到则使用默认值
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		if err := validateFileSize(configPath); err != nil {
			return nil, err
		}
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".phishfinder"))
		}
	}

	v.SetEnvPrefix("PHISHFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &models.ConfigError{FilePath: configPath, Cause: err}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, &models.ConfigError{
			FilePath: v.ConfigFileUsed(),
			Cause:    fmt.Errorf("无法映射到配置结构: %w", err),
		}
	}

	if config.HTTP.Headers == nil {
		config.HTTP.Headers = make(map[string]string)
	}

	if err := config.Validate(); err != nil {
		return nil, &models.ConfigError{FilePath: v.ConfigFileUsed(), Cause: err}
	}

	return &config, nil
}

// setDefaults 与 config_template.yaml 保持一致
func setDefaults(v *viper.Viper) {
	v.SetDefault("probe.timeout", 3*time.Second)
	v.SetDefault("probe.guess_zip", true)

	v.SetDefault("download.timeout", 5*time.Second)
	v.SetDefault("download.chunk_size", 1024)
	v.SetDefault("download.min_free_disk_mb", 100)
	v.SetDefault("download.progress", "auto")

	v.SetDefault("feed.url", DefaultFeedURL)
	v.SetDefault("feed.timeout", 30*time.Second)

	v.SetDefault("output.base_dir", "output")
	v.SetDefault("output.open_dirs_log", "open_dirs.log")
	v.SetDefault("output.kits_log", "kits.log")
	v.SetDefault("output.kits_dir", "kits")
	v.SetDefault("output.record_max_size", 100)

	v.SetDefault("batch.delay", time.Duration(0))

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)
}

// Validate 检查取值范围, 在命令行覆盖之后也会再调用一次
func (c *Config) Validate() error {
	if c.Probe.Timeout <= 0 {
		return fmt.Errorf("probe.timeout 必须大于0")
	}
	if c.Download.Timeout <= 0 {
		return fmt.Errorf("download.timeout 必须大于0")
	}
	if c.Download.ChunkSize < 1 || c.Download.ChunkSize > 1024*1024 {
		return fmt.Errorf("download.chunk_size 必须在1-1048576之间,当前值: %d", c.Download.ChunkSize)
	}
	switch c.Download.Progress {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("无效的download.progress: %s (有效值: auto, always, never)", c.Download.Progress)
	}
	if c.Feed.Timeout <= 0 {
		return fmt.Errorf("feed.timeout 必须大于0")
	}
	if c.Output.BaseDir == "" || c.Output.KitsDir == "" {
		return fmt.Errorf("output.base_dir 和 output.kits_dir 不能为空")
	}
	if c.Batch.Delay < 0 {
		return fmt.Errorf("batch.delay 不能为负数")
	}
	return nil
}

// KitsPath 制品保存目录
func (c *Config) KitsPath() string {
	return filepath.Join(c.Output.BaseDir, c.Output.KitsDir)
}

// validateFileSize 验证配置文件大小是否在限制内
func validateFileSize(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &models.ConfigError{FilePath: path, Cause: err}
	}
	if info.Size() > MaxConfigFileSize {
		return &models.ConfigError{
			FilePath: path,
			Cause:    fmt.Errorf("配置文件过大: %d 字节 (最大 %d 字节)", info.Size(), MaxConfigFileSize),
		}
	}
	return nil
}

// WriteTemplate 写出默认配置模板
// 文件已存在且未指定force时返回错误
func WriteTemplate(path string, force bool) error {
	if path == "" {
		path = DefaultConfigFile
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("配置文件已存在 [%s], 使用 --force 覆盖", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("无法创建配置目录 [%s]: %w", dir, err)
	}

	if err := os.WriteFile(path, []byte(defaultTemplate), 0644); err != nil {
		return fmt.Errorf("无法生成配置文件 [%s]: %w", path, err)
	}
	return nil
}
