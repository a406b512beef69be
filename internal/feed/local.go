package feed

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/RecoveryAshes/phishfinder/internal/models"
	"github.com/RecoveryAshes/phishfinder/internal/utils"
)

// LocalSource 本地URL列表文件,每行一个URL
type LocalSource struct {
	path string
}

// NewLocalSource 创建本地来源
func NewLocalSource(path string) *LocalSource {
	return &LocalSource{path: path}
}

// Name 实现 Source 接口
func (s *LocalSource) Name() string {
	return s.path
}

// Seeds 读取URL列表
// 跳过空行、#注释行和无效URL; 文件不存在时返回致命错误
func (s *LocalSource) Seeds(ctx context.Context) ([]string, error) {
	info, err := os.Stat(s.path)
	if err != nil || info.IsDir() {
		if err == nil {
			err = errors.New("不是普通文件")
		}
		return nil, &models.FatalStartupError{Reason: fmt.Sprintf("%s 不是有效的文件", s.path), Cause: err}
	}

	file, err := os.Open(s.path)
	if err != nil {
		return nil, &models.FatalStartupError{Reason: "打开URL文件失败", Cause: err}
	}
	defer file.Close()

	urls := make([]string, 0)
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// 跳过空行和注释行
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if err := models.ValidateURL(line); err != nil {
			utils.Warnf("跳过无效URL (行 %d): %s - %v", lineNum, line, err)
			continue
		}

		urls = append(urls, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, &models.FatalStartupError{Reason: "读取URL文件失败", Cause: err}
	}

	utils.Infof("从文件加载了 %d 个URL", len(urls))
	return urls, nil
}
