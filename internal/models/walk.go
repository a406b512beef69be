package models

// Candidate 一个待探测的祖先目录
type Candidate struct {
	// URL 以斜杠结尾的目录URL
	URL string

	// Depth 保留的路径段数量
	//   - len(segments): 种子URL的完整路径
	//   - 0: 主机根目录
	Depth int
}

// StopReason 路径遍历结束原因
type StopReason string

const (
	StopCompleted StopReason = "completed" // 所有祖先目录均已探测
	StopTransport StopReason = "transport" // 传输层错误,提前中止
	StopHTTP      StopReason = "http"      // 非成功状态码,提前中止
	StopCancelled StopReason = "cancelled" // 收到中断信号
	StopInvalid   StopReason = "invalid"   // 种子URL无法解析
)

// WalkReport 单个种子的遍历报告
type WalkReport struct {
	Seed       string
	Probed     []string // 按顺序已探测的候选目录
	Listings   []string // 发现目录列表的候选目录
	Stop       StopReason
	StopErr    error
	Guessed    int // 命中的压缩包猜测数
	Found      int // 目录列表中识别出的制品数
	Downloaded int
	Skipped    int
	Failed     int
	Bytes      int64
}

// HuntStats 整次运行的统计
type HuntStats struct {
	RunID           string  `json:"run_id"`
	TotalSeeds      int     `json:"total_seeds"`
	WalkedSeeds     int     `json:"walked_seeds"`
	AbortedSeeds    int     `json:"aborted_seeds"`
	ProbedDirs      int     `json:"probed_dirs"`
	OpenDirs        int     `json:"open_dirs"`
	GuessHits       int     `json:"guess_hits"`
	ArtifactsFound  int     `json:"artifacts_found"`
	Downloaded      int     `json:"downloaded"`
	SkippedRepeats  int     `json:"skipped_repeats"`
	FailedDownloads int     `json:"failed_downloads"`
	TotalBytes      int64   `json:"total_bytes"`
	Duration        float64 `json:"duration"` // 秒
}

// Add 累加单个种子的遍历结果
func (s *HuntStats) Add(r WalkReport) {
	s.WalkedSeeds++
	if r.Stop == StopTransport || r.Stop == StopHTTP {
		s.AbortedSeeds++
	}
	s.ProbedDirs += len(r.Probed)
	s.OpenDirs += len(r.Listings)
	s.GuessHits += r.Guessed
	s.ArtifactsFound += r.Found
	s.Downloaded += r.Downloaded
	s.SkippedRepeats += r.Skipped
	s.FailedDownloads += r.Failed
	s.TotalBytes += r.Bytes
}
