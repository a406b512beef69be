package utils

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	mainLogName  = "phishfinder.log"
	errorLogName = "phishfinder_error.log"
)

// Logger 全局日志器
var Logger zerolog.Logger

// LogConfig 运行日志配置
// 轮转参数直接交给 lumberjack,单位与其一致
type LogConfig struct {
	Level      string
	LogDir     string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // 天
	Compress   bool
	NoColor    bool
	RunID      string // 非空时作为 run_id 字段附加到每条日志
}

// DefaultLogConfig 默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:      "info",
		LogDir:     "logs",
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
}

// rotating 在日志目录下创建一个轮转文件
func (c LogConfig) rotating(name string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(c.LogDir, name),
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge,
		Compress:   c.Compress,
	}
}

// parseLevel 无法识别的级别按 info 处理
func parseLevel(s string) zerolog.Level {
	if s == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// InitLogger 初始化日志系统
// 日志同时输出到控制台和主日志文件,error 及以上级别另写一份到错误日志
func InitLogger(cfg LogConfig) error {
	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		return err
	}

	lvl := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(lvl)

	sinks := zerolog.MultiLevelWriter(
		zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339, NoColor: cfg.NoColor},
		cfg.rotating(mainLogName),
		&LevelGate{Out: cfg.rotating(errorLogName), Min: zerolog.ErrorLevel},
	)

	builder := zerolog.New(sinks).With().Timestamp()
	if cfg.RunID != "" {
		builder = builder.Str("run_id", cfg.RunID)
	}
	Logger = builder.Logger()
	log.Logger = Logger

	Logger.Debug().Stringer("level", lvl).Str("log_dir", cfg.LogDir).Msg("📝 日志系统就绪")
	return nil
}

// LevelGate 只放行不低于 Min 的日志
// 不带级别的 Write 调用一律丢弃
type LevelGate struct {
	Out io.Writer
	Min zerolog.Level
}

func (g *LevelGate) Write(p []byte) (int, error) {
	return len(p), nil
}

// WriteLevel 实现 zerolog.LevelWriter
func (g *LevelGate) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l == zerolog.NoLevel || l < g.Min {
		return len(p), nil
	}
	return g.Out.Write(p)
}

func Info(msg string)                   { Logger.Info().Msg(msg) }
func Infof(format string, args ...any)  { Logger.Info().Msgf(format, args...) }
func Warn(msg string)                   { Logger.Warn().Msg(msg) }
func Warnf(format string, args ...any)  { Logger.Warn().Msgf(format, args...) }
func Debug(msg string)                  { Logger.Debug().Msg(msg) }
func Debugf(format string, args ...any) { Logger.Debug().Msgf(format, args...) }

// Error 带错误对象的错误日志
func Error(err error, msg string) {
	Logger.Error().Err(err).Msg(msg)
}
