package utils

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// NewDownloadBar 单个制品的字节进度条
// 服务端没有给出 Content-Length 时 size 为 -1,进度条只显示已下载字节数
func NewDownloadBar(size int64, name string, out io.Writer) *progressbar.ProgressBar {
	opts := []progressbar.Option{
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("📦 " + name),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionThrottle(200 * time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(out) }),
	}
	if size > 0 {
		opts = append(opts,
			progressbar.OptionSetWidth(30),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer: "#", SaucerPadding: ".", BarStart: "|", BarEnd: "|",
			}),
		)
	} else {
		opts = append(opts, progressbar.OptionSpinnerType(14))
	}
	return progressbar.NewOptions64(size, opts...)
}
