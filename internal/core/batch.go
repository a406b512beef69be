package core

import (
	"context"
	"time"

	"github.com/RecoveryAshes/phishfinder/internal/models"
	"github.com/RecoveryAshes/phishfinder/internal/utils"
)

// SeedWalker 单个种子的遍历
type SeedWalker interface {
	Walk(ctx context.Context, seed string, slot *DownloadSlot) models.WalkReport
}

// BatchHunter 批量处理种子URL
// 种子按顺序逐个遍历,整次运行共用一个下载槽
type BatchHunter struct {
	walker     SeedWalker
	batchDelay time.Duration
	runID      string
}

// BatchSummary 批量处理摘要
type BatchSummary struct {
	Stats     models.HuntStats
	Reports   []models.WalkReport
	Cancelled bool
}

// NewBatchHunter 创建批量处理器
func NewBatchHunter(walker SeedWalker, batchDelay time.Duration, runID string) *BatchHunter {
	return &BatchHunter{
		walker:     walker,
		batchDelay: batchDelay,
		runID:      runID,
	}
}

// Hunt 批量遍历种子URL
// ctx 取消后当前种子遍历结束即返回
func (bh *BatchHunter) Hunt(ctx context.Context, seeds []string) *BatchSummary {
	utils.Infof("🚀 开始批量探测: %d个URL", len(seeds))

	summary := &BatchSummary{
		Stats:   models.HuntStats{RunID: bh.runID, TotalSeeds: len(seeds)},
		Reports: make([]models.WalkReport, 0, len(seeds)),
	}

	slot := NewDownloadSlot()
	startTime := time.Now()

	for i, seed := range seeds {
		if ctx.Err() != nil {
			summary.Cancelled = true
			break
		}

		utils.Infof("==================== [%d/%d] ====================", i+1, len(seeds))
		utils.Infof("目标URL: %s", seed)

		report := bh.walker.Walk(ctx, seed, slot)
		summary.Reports = append(summary.Reports, report)
		summary.Stats.Add(report)

		if report.Stop == models.StopCancelled {
			summary.Cancelled = true
			break
		}

		// 批量延迟(最后一个URL不需要延迟)
		if i < len(seeds)-1 && bh.batchDelay > 0 {
			utils.Debugf("等待 %s 后处理下一个URL...", bh.batchDelay)
			select {
			case <-ctx.Done():
			case <-time.After(bh.batchDelay):
			}
		}
	}

	summary.Stats.Duration = time.Since(startTime).Seconds()

	bh.printSummary(summary)

	return summary
}

// printSummary 打印批量处理摘要
func (bh *BatchHunter) printSummary(summary *BatchSummary) {
	stats := summary.Stats
	utils.Info("==================================================")
	utils.Info("📊 批量探测摘要")
	utils.Info("==================================================")
	utils.Infof("总URL数: %d (已遍历 %d, 中止 %d)", stats.TotalSeeds, stats.WalkedSeeds, stats.AbortedSeeds)
	utils.Infof("🔍 探测目录: %d", stats.ProbedDirs)
	utils.Infof("📂 开放目录: %d", stats.OpenDirs)
	utils.Infof("🎯 猜中压缩包: %d", stats.GuessHits)
	utils.Infof("📦 下载: %d (跳过重复 %d, 失败 %d)", stats.Downloaded, stats.SkippedRepeats, stats.FailedDownloads)
	utils.Infof("📦 总大小: %.2f MB", float64(stats.TotalBytes)/(1024*1024))
	utils.Infof("⏱️  总耗时: %.2f秒", stats.Duration)
	utils.Info("==================================================")

	if summary.Cancelled {
		utils.Warn("⚠️  收到中断信号,批量探测提前结束")
	}
}
