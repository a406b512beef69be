package models

// ProbeKind 目录探测结果分类
type ProbeKind int

const (
	ProbeError     ProbeKind = iota // 传输层错误
	ProbeNotOK                      // 非成功状态码
	ProbeNoListing                  // 成功但不是目录列表
	ProbeListing                    // 成功且开启了目录列表
)

// String 返回可读名称
func (k ProbeKind) String() string {
	switch k {
	case ProbeError:
		return "error"
	case ProbeNotOK:
		return "not-ok"
	case ProbeNoListing:
		return "no-listing"
	case ProbeListing:
		return "listing"
	default:
		return "unknown"
	}
}

// ProbeResult 一次目录探测的结果
type ProbeResult struct {
	Kind       ProbeKind
	URL        string
	StatusCode int
	Body       []byte // 仅 ProbeListing 时有值
	Err        error  // ProbeError 时为 *TransportError, ProbeNotOK 时为 *HTTPError
}

// GuessKind 压缩包猜测结果分类
type GuessKind int

const (
	GuessSkipped  GuessKind = iota // 候选目录没有可变换的路径段,未发请求
	GuessError                     // 传输层错误
	GuessNotZip                    // Content-Type缺失或不含zip
	GuessZipFound                  // 命中压缩包
)

// String 返回可读名称
func (k GuessKind) String() string {
	switch k {
	case GuessSkipped:
		return "skipped"
	case GuessError:
		return "error"
	case GuessNotZip:
		return "not-zip"
	case GuessZipFound:
		return "zip-found"
	default:
		return "unknown"
	}
}

// GuessResult 一次压缩包猜测的结果
type GuessResult struct {
	Kind        GuessKind
	URL         string // 推导出的 .zip URL, 跳过时为空
	ContentType string
	Err         error
}
