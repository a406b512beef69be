package core

// DownloadSlot 最近一次尝试下载的URL
// 只保存一个值,用于跳过紧邻的重复下载; 非并发安全,只能在单个goroutine中使用
type DownloadSlot struct {
	last string
}

// NewDownloadSlot 创建空的下载槽
func NewDownloadSlot() *DownloadSlot {
	return &DownloadSlot{}
}

// Last 返回最近一次尝试下载的URL
func (s *DownloadSlot) Last() string {
	if s == nil {
		return ""
	}
	return s.last
}

// Mark 覆盖记录的URL
func (s *DownloadSlot) Mark(url string) {
	if s == nil {
		return
	}
	s.last = url
}
