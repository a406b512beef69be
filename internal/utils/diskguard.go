package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"
)

// DiskGuard 下载前检查磁盘剩余空间
type DiskGuard struct {
	MinFreeBytes uint64 // 0 表示不检查
}

// NewDiskGuard 创建磁盘检查器,阈值单位MB
func NewDiskGuard(minFreeMB int) *DiskGuard {
	if minFreeMB < 0 {
		minFreeMB = 0
	}
	return &DiskGuard{MinFreeBytes: uint64(minFreeMB) * 1024 * 1024}
}

// Check 检查dir所在分区的剩余空间
// dir 可以尚未创建,此时检查最近的已存在父目录
func (g *DiskGuard) Check(dir string) error {
	if g == nil || g.MinFreeBytes == 0 {
		return nil
	}

	path := existingParent(dir)
	usage, err := disk.Usage(path)
	if err != nil {
		return fmt.Errorf("获取磁盘使用情况失败 [%s]: %w", path, err)
	}

	if usage.Free < g.MinFreeBytes {
		return fmt.Errorf("磁盘剩余空间不足 [%s]: 剩余 %dMB, 需要至少 %dMB",
			path, usage.Free/1024/1024, g.MinFreeBytes/1024/1024)
	}
	return nil
}

func existingParent(dir string) string {
	path, err := filepath.Abs(dir)
	if err != nil {
		path = dir
	}
	for {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}
