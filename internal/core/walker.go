package core

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/RecoveryAshes/phishfinder/internal/models"
	"github.com/RecoveryAshes/phishfinder/internal/probers"
	"github.com/RecoveryAshes/phishfinder/internal/utils"
)

// Prober 目录探测
type Prober interface {
	Probe(target string) models.ProbeResult
}

// Guesser 压缩包猜测
type Guesser interface {
	Guess(candidate string) models.GuessResult
}

// ArtifactFetcher 制品下载
type ArtifactFetcher interface {
	Download(ctx context.Context, target string, slot *DownloadSlot) (models.DownloadResult, error)
}

// Walker 路径遍历器
// 从种子URL的完整路径开始,逐级向上探测每个祖先目录
type Walker struct {
	prober     Prober
	guesser    Guesser // 为nil时不做压缩包猜测
	downloader ArtifactFetcher
	records    RecordSink

	now func() time.Time
}

// NewWalker 创建路径遍历器
func NewWalker(prober Prober, guesser Guesser, downloader ArtifactFetcher, records RecordSink) *Walker {
	return &Walker{
		prober:     prober,
		guesser:    guesser,
		downloader: downloader,
		records:    records,
		now:        time.Now,
	}
}

// Candidates 按从深到浅的顺序列出种子URL的所有祖先目录
//
//	https://h/a/b/c -> https://h/a/b/c/, https://h/a/b/, https://h/a/, https://h/
//
// 空路径段被忽略,查询参数和片段被丢弃
func Candidates(seed string) ([]models.Candidate, error) {
	if err := models.ValidateURL(seed); err != nil {
		return nil, err
	}
	parsed, err := url.Parse(seed)
	if err != nil {
		return nil, fmt.Errorf("解析URL失败: %w", err)
	}

	var segments []string
	for _, seg := range strings.Split(parsed.EscapedPath(), "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}

	root := parsed.Scheme + "://" + parsed.Host + "/"
	candidates := make([]models.Candidate, 0, len(segments)+1)
	for n := len(segments); n >= 0; n-- {
		dir := root
		if n > 0 {
			dir += strings.Join(segments[:n], "/") + "/"
		}
		candidates = append(candidates, models.Candidate{URL: dir, Depth: n})
	}
	return candidates, nil
}

// Walk 遍历一个种子URL
// 对每个候选目录先做压缩包猜测再探测目录; 传输错误或非成功状态码立即中止,
// 发现目录列表时下载其中的制品后继续向上
func (w *Walker) Walk(ctx context.Context, seed string, slot *DownloadSlot) models.WalkReport {
	report := models.WalkReport{Seed: seed, Stop: models.StopCompleted}

	candidates, err := Candidates(seed)
	if err != nil {
		utils.Warnf("跳过无效URL [%s]: %v", seed, err)
		report.Stop = models.StopInvalid
		report.StopErr = err
		return report
	}

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			report.Stop = models.StopCancelled
			report.StopErr = err
			return report
		}

		if w.guesser != nil {
			w.guess(ctx, candidate.URL, slot, &report)
		}

		result := w.prober.Probe(candidate.URL)
		report.Probed = append(report.Probed, candidate.URL)

		switch result.Kind {
		case models.ProbeError:
			utils.Debugf("探测失败,中止遍历 [%s]: %v", candidate.URL, result.Err)
			report.Stop = models.StopTransport
			report.StopErr = result.Err
			return report

		case models.ProbeNotOK:
			utils.Debugf("状态码 %d,中止遍历 [%s]", result.StatusCode, candidate.URL)
			report.Stop = models.StopHTTP
			report.StopErr = result.Err
			return report

		case models.ProbeListing:
			utils.Infof("📂 发现开放目录: %s", candidate.URL)
			w.harvest(ctx, result, slot, &report)

		default:
			utils.Debugf("无目录列表: %s", candidate.URL)
		}
	}

	return report
}

// guess 猜测压缩包,命中后立即下载
func (w *Walker) guess(ctx context.Context, candidate string, slot *DownloadSlot, report *models.WalkReport) {
	g := w.guesser.Guess(candidate)
	switch g.Kind {
	case models.GuessZipFound:
		utils.Infof("🎯 猜中压缩包: %s (%s)", g.URL, g.ContentType)
		report.Guessed++
		w.download(ctx, g.URL, slot, report)
	case models.GuessError:
		utils.Debugf("压缩包猜测失败 [%s]: %v", g.URL, g.Err)
	}
}

// harvest 记录开放目录并下载其中的制品
func (w *Walker) harvest(ctx context.Context, result models.ProbeResult, slot *DownloadSlot, report *models.WalkReport) {
	report.Listings = append(report.Listings, result.URL)

	if w.records != nil {
		if err := w.records.AppendOpenDir(w.now().Format(TimestampLayout), result.URL); err != nil {
			utils.Warnf("写入开放目录日志失败: %v", err)
		}
	}

	links, err := probers.FilterLinks(result.Body, result.URL)
	if err != nil {
		utils.Warnf("%v", err)
		return
	}

	for link := range links {
		if ctx.Err() != nil {
			return
		}
		utils.Infof("🔗 发现制品 [%s]: %s", link.Kind, link.URL)
		report.Found++
		w.download(ctx, link.URL, slot, report)
	}
}

// download 下载并更新统计,失败只记录日志
func (w *Walker) download(ctx context.Context, target string, slot *DownloadSlot, report *models.WalkReport) {
	res, err := w.downloader.Download(ctx, target, slot)
	switch {
	case err != nil:
		report.Failed++
		if errors.Is(err, context.Canceled) {
			utils.Warnf("下载已取消: %s", target)
			return
		}
		utils.Error(err, "❌ 下载失败: "+target)
	case res.Status == models.DownloadSkipped:
		report.Skipped++
	default:
		report.Downloaded++
		report.Bytes += res.Bytes
	}
}
