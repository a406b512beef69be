package models

import (
	"strings"
	"time"
)

// ArtifactKind 制品类型
type ArtifactKind string

const (
	KindKit        ArtifactKind = "kit"         // 钓鱼工具包压缩包
	KindVictimList ArtifactKind = "victim-list" // 受害者数据文本
	KindMalware    ArtifactKind = "malware"     // 可执行文件
)

// ArtifactSuffixes 后缀到制品类型的映射,按顺序匹配
var ArtifactSuffixes = []struct {
	Suffix string
	Kind   ArtifactKind
}{
	{".zip", KindKit},
	{".txt", KindVictimList},
	{".exe", KindMalware},
}

// ClassifyArtifact 按绝对URL的结尾分类,区分大小写
// 查询串和片段都算在内: "dl.php?f=kit.zip" 是压缩包, "x.zip#top" 不是
func ClassifyArtifact(absURL string) (ArtifactKind, bool) {
	for _, s := range ArtifactSuffixes {
		if strings.HasSuffix(absURL, s.Suffix) {
			return s.Kind, true
		}
	}
	return "", false
}

// ArtifactLink 目录列表中值得下载的链接
type ArtifactLink struct {
	Kind ArtifactKind `json:"kind"`
	URL  string       `json:"url"`  // 已解析的绝对URL
	Text string       `json:"text"` // 锚点可见文本
}

// ArtifactRecord 下载记录,只追加不修改
type ArtifactRecord struct {
	Timestamp string `json:"timestamp"`  // 固定宽度时间戳
	SourceURL string `json:"source_url"` // 制品URL
	LocalFile string `json:"local_file"` // 本地保存路径
}

// DownloadStatus 下载结果状态
type DownloadStatus string

const (
	DownloadSaved   DownloadStatus = "saved"   // 已保存
	DownloadSkipped DownloadStatus = "skipped" // 与上一次下载相同,已跳过
	DownloadFailed  DownloadStatus = "failed"  // 传输失败
)

// DownloadResult 单次下载结果
type DownloadResult struct {
	Status   DownloadStatus
	Record   ArtifactRecord
	Bytes    int64
	Duration time.Duration
}
