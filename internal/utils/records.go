package utils

import (
	"fmt"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// RecordLogConfig 记录日志配置
type RecordLogConfig struct {
	Dir          string // 输出根目录
	OpenDirsFile string // 开放目录日志文件名
	KitsFile     string // 下载记录日志文件名
	MaxSize      int    // 单个文件最大大小(MB),超过后轮转
}

// RecordLog 只追加的记录日志
// 每行格式: 时间戳<TAB>URL
// 轮转后的旧文件全部保留,不压缩也不删除
type RecordLog struct {
	openDirs *lumberjack.Logger
	kits     *lumberjack.Logger
}

// NewRecordLog 创建记录日志,文件和目录在首次写入时创建
func NewRecordLog(config RecordLogConfig) *RecordLog {
	return &RecordLog{
		openDirs: newRecordWriter(filepath.Join(config.Dir, config.OpenDirsFile), config.MaxSize),
		kits:     newRecordWriter(filepath.Join(config.Dir, config.KitsFile), config.MaxSize),
	}
}

func newRecordWriter(filename string, maxSize int) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    maxSize,
		MaxBackups: 0,
		MaxAge:     0,
		Compress:   false,
	}
}

// FormatRecord 格式化一行记录
func FormatRecord(timestamp, url string) string {
	return timestamp + "\t" + url + "\n"
}

// AppendOpenDir 记录一个开放目录
func (r *RecordLog) AppendOpenDir(timestamp, url string) error {
	if _, err := r.openDirs.Write([]byte(FormatRecord(timestamp, url))); err != nil {
		return fmt.Errorf("写入开放目录日志失败: %w", err)
	}
	return nil
}

// AppendKit 记录一次下载尝试
func (r *RecordLog) AppendKit(timestamp, url string) error {
	if _, err := r.kits.Write([]byte(FormatRecord(timestamp, url))); err != nil {
		return fmt.Errorf("写入下载记录日志失败: %w", err)
	}
	return nil
}

// Close 关闭底层文件
func (r *RecordLog) Close() error {
	errOpen := r.openDirs.Close()
	errKits := r.kits.Close()
	if errOpen != nil {
		return errOpen
	}
	return errKits
}
