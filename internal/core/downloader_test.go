package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RecoveryAshes/phishfinder/internal/models"
	"github.com/RecoveryAshes/phishfinder/internal/utils"
)

// memorySink 内存中的记录日志
type memorySink struct {
	openDirs []string
	kits     []string
}

func (m *memorySink) AppendOpenDir(timestamp, url string) error {
	m.openDirs = append(m.openDirs, url)
	return nil
}

func (m *memorySink) AppendKit(timestamp, url string) error {
	m.kits = append(m.kits, timestamp+"\t"+url)
	return nil
}

var fixedTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestDownloader(t *testing.T, opts DownloaderOptions) (*Downloader, *memorySink) {
	t.Helper()
	if opts.KitsDir == "" {
		opts.KitsDir = filepath.Join(t.TempDir(), "kits")
	}
	if opts.Timeout == 0 {
		opts.Timeout = 2 * time.Second
	}
	sink := &memorySink{}
	d := NewDownloader(opts, sink, nil)
	d.now = func() time.Time { return fixedTime }
	return d, sink
}

// TestDownloader_Download 测试正常下载
func TestDownloader_Download(t *testing.T) {
	payload := bytes.Repeat([]byte("PK\x03\x04phishing-kit"), 500)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/zip")
		w.Write(payload)
	}))
	defer srv.Close()

	d, sink := newTestDownloader(t, DownloaderOptions{ChunkSize: 7})
	result, err := d.Download(context.Background(), srv.URL+"/kit/archive.zip", NewDownloadSlot())
	if err != nil {
		t.Fatalf("下载失败: %v", err)
	}

	if result.Status != models.DownloadSaved {
		t.Errorf("Status = %s, 期望 saved", result.Status)
	}
	if result.Bytes != int64(len(payload)) {
		t.Errorf("Bytes = %d, 期望 %d", result.Bytes, len(payload))
	}

	wantName := "20240102-030405-archive.zip"
	if filepath.Base(result.Record.LocalFile) != wantName {
		t.Errorf("文件名 = %s, 期望 %s", filepath.Base(result.Record.LocalFile), wantName)
	}

	got, err := os.ReadFile(result.Record.LocalFile)
	if err != nil {
		t.Fatalf("读取文件失败: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("文件内容与响应不一致")
	}

	if len(sink.kits) != 1 || sink.kits[0] != "20240102-030405\t"+srv.URL+"/kit/archive.zip" {
		t.Errorf("下载记录 = %v", sink.kits)
	}
}

// TestDownloader_SkipRepeat 测试连续两次相同URL只传输一次
func TestDownloader_SkipRepeat(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		io.WriteString(w, "victim@example.com:hunter2\n")
	}))
	defer srv.Close()

	d, sink := newTestDownloader(t, DownloaderOptions{})
	slot := NewDownloadSlot()
	target := srv.URL + "/dump/log.txt"

	first, err := d.Download(context.Background(), target, slot)
	if err != nil || first.Status != models.DownloadSaved {
		t.Fatalf("第一次下载: status=%s err=%v", first.Status, err)
	}

	second, err := d.Download(context.Background(), target, slot)
	if err != nil {
		t.Fatalf("第二次下载返回错误: %v", err)
	}
	if second.Status != models.DownloadSkipped {
		t.Errorf("第二次 Status = %s, 期望 skipped", second.Status)
	}

	if hits.Load() != 1 {
		t.Errorf("服务端收到 %d 次请求, 期望 1", hits.Load())
	}
	if len(sink.kits) != 1 {
		t.Errorf("下载记录 %d 条, 期望 1", len(sink.kits))
	}
	if slot.Last() != target {
		t.Errorf("slot.Last() = %s", slot.Last())
	}
}

// TestDownloader_NonAdjacentRepeat 测试非紧邻的重复URL会再次下载
func TestDownloader_NonAdjacentRepeat(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		io.WriteString(w, "data")
	}))
	defer srv.Close()

	d, _ := newTestDownloader(t, DownloaderOptions{})
	slot := NewDownloadSlot()
	for _, p := range []string{"/a.zip", "/b.zip", "/a.zip"} {
		if _, err := d.Download(context.Background(), srv.URL+p, slot); err != nil {
			t.Fatalf("下载 %s 失败: %v", p, err)
		}
	}

	if hits.Load() != 3 {
		t.Errorf("服务端收到 %d 次请求, 期望 3", hits.Load())
	}
}

// TestDownloader_FilenameCollision 测试同一秒内同名文件追加后缀
func TestDownloader_FilenameCollision(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, r.URL.Path)
	}))
	defer srv.Close()

	d, _ := newTestDownloader(t, DownloaderOptions{})
	slot := NewDownloadSlot()

	first, err := d.Download(context.Background(), srv.URL+"/one/kit.zip", slot)
	if err != nil {
		t.Fatal(err)
	}
	second, err := d.Download(context.Background(), srv.URL+"/two/kit.zip", slot)
	if err != nil {
		t.Fatal(err)
	}

	if filepath.Base(first.Record.LocalFile) != "20240102-030405-kit.zip" {
		t.Errorf("第一个文件 = %s", first.Record.LocalFile)
	}
	if filepath.Base(second.Record.LocalFile) != "20240102-030405-kit_1.zip" {
		t.Errorf("第二个文件 = %s", second.Record.LocalFile)
	}
}

// TestDownloader_HTTPError 测试非成功状态码
func TestDownloader_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	d, sink := newTestDownloader(t, DownloaderOptions{})
	result, err := d.Download(context.Background(), srv.URL+"/missing.zip", NewDownloadSlot())

	var httpErr *models.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusNotFound {
		t.Fatalf("期望 *models.HTTPError(404), 实际 %v", err)
	}
	if result.Status != models.DownloadFailed {
		t.Errorf("Status = %s, 期望 failed", result.Status)
	}
	if fileExists(result.Record.LocalFile) {
		t.Error("失败的下载不应留下文件")
	}
	// 下载记录在传输前写入
	if len(sink.kits) != 1 {
		t.Errorf("下载记录 %d 条, 期望 1", len(sink.kits))
	}
}

// TestDownloader_NoRedirect 测试不跟随重定向
func TestDownloader_NoRedirect(t *testing.T) {
	var followed atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/moved.zip", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/real.zip", http.StatusFound)
	})
	mux.HandleFunc("/real.zip", func(w http.ResponseWriter, r *http.Request) {
		followed.Store(true)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	d, _ := newTestDownloader(t, DownloaderOptions{})
	d.Download(context.Background(), srv.URL+"/moved.zip", NewDownloadSlot())

	if followed.Load() {
		t.Error("不应跟随重定向")
	}
}

// TestDownloader_DiskGuard 测试磁盘空间不足时不发请求
func TestDownloader_DiskGuard(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	guard := &utils.DiskGuard{MinFreeBytes: 1 << 62}
	d, _ := newTestDownloader(t, DownloaderOptions{DiskGuard: guard})

	result, err := d.Download(context.Background(), srv.URL+"/kit.zip", NewDownloadSlot())
	if err == nil || !strings.Contains(err.Error(), "磁盘剩余空间不足") {
		t.Errorf("期望磁盘空间错误, 实际 %v", err)
	}
	if result.Status != models.DownloadFailed {
		t.Errorf("Status = %s", result.Status)
	}
	if hits.Load() != 0 {
		t.Error("磁盘空间不足时不应发送请求")
	}
}

// TestDownloader_Progress 测试进度条输出
func TestDownloader_Progress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(bytes.Repeat([]byte("x"), 1000))
	}))
	defer srv.Close()

	var out bytes.Buffer
	d, _ := newTestDownloader(t, DownloaderOptions{ShowProgress: true, ProgressOut: &out})
	if _, err := d.Download(context.Background(), srv.URL+"/big.exe", NewDownloadSlot()); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(out.String(), "big.exe") {
		t.Errorf("进度条输出应包含文件名, 实际: %q", out.String())
	}
}

// TestArtifactBaseName 测试本地文件名生成
func TestArtifactBaseName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://h/kit/archive.zip", "archive.zip"},
		{"https://h/my%20kit.zip", "my_kit.zip"},
		{"https://h/.htaccess.txt", "htaccess.txt"},
		{"https://h/a.zip?dl=1", "a.zip"},
		{"https://h/", "artifact"},
		{"https://h", "artifact"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := artifactBaseName(tt.url); got != tt.want {
				t.Errorf("artifactBaseName(%s) = %s, 期望 %s", tt.url, got, tt.want)
			}
		})
	}
}

// TestCopyChunks 测试分块写入
func TestCopyChunks(t *testing.T) {
	src := strings.NewReader("0123456789abcdef")
	var dst chunkRecorder

	n, err := copyChunks(&dst, src, 4)
	if err != nil {
		t.Fatal(err)
	}
	if n != 16 {
		t.Errorf("n = %d, 期望 16", n)
	}
	for i, size := range dst.sizes {
		if size > 4 {
			t.Errorf("第%d块大小 %d 超过分块大小", i, size)
		}
	}
	if dst.buf.String() != "0123456789abcdef" {
		t.Errorf("内容 = %s", dst.buf.String())
	}
}

type chunkRecorder struct {
	buf   bytes.Buffer
	sizes []int
}

func (c *chunkRecorder) Write(p []byte) (int, error) {
	c.sizes = append(c.sizes, len(p))
	return c.buf.Write(p)
}

// TestDownloadSlot 测试下载槽
func TestDownloadSlot(t *testing.T) {
	slot := NewDownloadSlot()
	if slot.Last() != "" {
		t.Error("新建的下载槽应为空")
	}
	slot.Mark("https://h/a.zip")
	slot.Mark("https://h/b.zip")
	if slot.Last() != "https://h/b.zip" {
		t.Errorf("Last() = %s", slot.Last())
	}

	var nilSlot *DownloadSlot
	nilSlot.Mark("x")
	if nilSlot.Last() != "" {
		t.Error("nil下载槽应返回空字符串")
	}
}
