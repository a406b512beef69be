// Package feed 提供种子URL的来源: 远程威胁情报源(PhishTank JSON)和本地URL列表文件
package feed

import "context"

// Source 种子URL来源
type Source interface {
	// Seeds 返回全部种子URL; 失败时返回 *models.FatalStartupError
	Seeds(ctx context.Context) ([]string, error)

	// Name 来源名称,用于日志
	Name() string
}
