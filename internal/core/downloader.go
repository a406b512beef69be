package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/RecoveryAshes/phishfinder/internal/models"
	"github.com/RecoveryAshes/phishfinder/internal/utils"
)

const (
	// TimestampLayout 文件名前缀和记录日志使用的固定宽度时间戳
	TimestampLayout = "20060102-150405"

	// DefaultChunkSize 默认分块大小(字节)
	DefaultChunkSize = 1024

	// fallbackName URL中取不到文件名时使用
	fallbackName = "artifact"
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// RecordSink 记录日志的写入端
type RecordSink interface {
	AppendOpenDir(timestamp, url string) error
	AppendKit(timestamp, url string) error
}

// DownloaderOptions 下载器配置
type DownloaderOptions struct {
	KitsDir      string        // 制品保存目录
	Timeout      time.Duration // 建连和等待响应头的超时
	ChunkSize    int           // 流式写入的分块大小
	ShowProgress bool          // 是否显示进度条
	ProgressOut  io.Writer     // 进度条输出,默认 os.Stderr
	DiskGuard    *utils.DiskGuard
}

// Downloader 制品下载器
// 同一URL紧邻的重复下载由 DownloadSlot 跳过
type Downloader struct {
	opts           DownloaderOptions
	client         *http.Client
	records        RecordSink
	headerProvider models.HeaderProvider

	now func() time.Time
}

// NewDownloader 创建下载器
func NewDownloader(opts DownloaderOptions, records RecordSink, headerProvider models.HeaderProvider) *Downloader {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.ProgressOut == nil {
		opts.ProgressOut = os.Stderr
	}

	return &Downloader{
		opts: opts,
		client: &http.Client{
			Transport:     utils.NewTransport(opts.Timeout),
			CheckRedirect: utils.NoRedirect,
		},
		records:        records,
		headerProvider: headerProvider,
		now:            time.Now,
	}
}

// Download 下载一个制品
// 执行流程:
//  1. 与上一次下载的URL相同则跳过,不发请求
//  2. 记录本次URL
//  3. 生成 时间戳-文件名 形式的本地路径
//  4. 写入下载记录日志
//  5. 检查磁盘空间后发起GET请求,按块写入文件
//
// 失败只影响本次下载,不重试
func (d *Downloader) Download(ctx context.Context, target string, slot *DownloadSlot) (models.DownloadResult, error) {
	if target == slot.Last() {
		utils.Infof("⏭️  已下载,跳过: %s", target)
		return models.DownloadResult{Status: models.DownloadSkipped}, nil
	}
	slot.Mark(target)

	startTime := time.Now()
	timestamp := d.now().Format(TimestampLayout)
	localFile := uniquePath(d.opts.KitsDir, timestamp+"-"+artifactBaseName(target))

	result := models.DownloadResult{
		Status: models.DownloadFailed,
		Record: models.ArtifactRecord{
			Timestamp: timestamp,
			SourceURL: target,
			LocalFile: localFile,
		},
	}

	if d.records != nil {
		if err := d.records.AppendKit(timestamp, target); err != nil {
			utils.Warnf("写入下载记录失败: %v", err)
		}
	}

	if err := d.opts.DiskGuard.Check(d.opts.KitsDir); err != nil {
		return result, err
	}

	utils.Infof("📥 开始下载: %s", target)

	written, err := d.fetch(ctx, target, localFile)
	result.Bytes = written
	result.Duration = time.Since(startTime)
	if err != nil {
		return result, err
	}

	result.Status = models.DownloadSaved
	utils.Infof("✅ 下载完成: %s -> %s (%d bytes, %.2fs)", target, localFile, written, result.Duration.Seconds())
	return result, nil
}

// fetch 发起请求并把响应体流式写入文件
func (d *Downloader) fetch(ctx context.Context, target, localFile string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, &models.TransportError{URL: target, Cause: err}
	}
	if d.headerProvider != nil {
		headers, err := d.headerProvider.GetHeaders()
		if err != nil {
			return 0, fmt.Errorf("获取HTTP头部失败: %w", err)
		}
		if headers != nil {
			req.Header = headers
		}
	}
	// 交给Transport协商gzip并透明解压
	req.Header.Del("Accept-Encoding")

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, &models.TransportError{URL: target, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return 0, &models.HTTPError{URL: target, StatusCode: resp.StatusCode}
	}

	if err := os.MkdirAll(filepath.Dir(localFile), 0755); err != nil {
		return 0, fmt.Errorf("创建目录失败: %w", err)
	}

	file, err := os.Create(localFile)
	if err != nil {
		return 0, fmt.Errorf("创建文件失败: %w", err)
	}

	var out io.Writer = file
	if d.opts.ShowProgress {
		bar := utils.NewDownloadBar(resp.ContentLength, filepath.Base(localFile), d.opts.ProgressOut)
		defer bar.Close()
		out = io.MultiWriter(file, bar)
	}

	written, copyErr := copyChunks(out, resp.Body, d.opts.ChunkSize)
	closeErr := file.Close()

	if copyErr != nil || closeErr != nil {
		os.Remove(localFile)
		if copyErr != nil {
			return written, &models.TransportError{URL: target, Cause: copyErr}
		}
		return written, fmt.Errorf("写入文件失败: %w", closeErr)
	}
	return written, nil
}

// copyChunks 按固定大小分块读取,每块直接写入目标
func copyChunks(dst io.Writer, src io.Reader, chunkSize int) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return written, err
			}
			written += int64(n)
		}
		if errors.Is(readErr, io.EOF) {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}

// artifactBaseName 取URL路径的最后一段作为文件名,并替换不安全字符
func artifactBaseName(target string) string {
	name := ""
	if parsed, err := url.Parse(target); err == nil {
		name = path.Base(parsed.Path)
	}

	name = unsafeNameChars.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, ".")
	if strings.Trim(name, "_") == "" {
		return fallbackName
	}
	return name
}

// uniquePath 文件已存在时追加 _N 后缀
func uniquePath(dir, name string) string {
	candidate := filepath.Join(dir, name)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; fileExists(candidate); i++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, i, ext))
	}
	return candidate
}

func fileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
