package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/RecoveryAshes/phishfinder/internal/config"
	"github.com/RecoveryAshes/phishfinder/internal/core"
	"github.com/RecoveryAshes/phishfinder/internal/feed"
	"github.com/RecoveryAshes/phishfinder/internal/models"
	"github.com/RecoveryAshes/phishfinder/internal/probers"
	"github.com/RecoveryAshes/phishfinder/internal/utils"
	"github.com/gookit/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数, 由 init 注册
var (
	// 所有子命令共用
	configFile string
	verbose    bool
	logLevel   string
	noColor    bool

	// -H 可重复
	headers        []string // 自定义HTTP请求头
	validateConfig bool     // 验证配置文件

	// 探测参数
	inputFile       string
	outputDir       string
	feedURL         string
	noGuess         bool
	probeTimeout    time.Duration
	downloadTimeout time.Duration
	progressMode    string

	// 种子之间
	batchDelay time.Duration
)

// appConfig PreRunE 中加载的配置
var appConfig *config.Config

// runID 本次运行ID
var runID string

var rootCmd = &cobra.Command{
	Use:   "phishfinder",
	Short: "钓鱼工具包发现工具",
	Long: `phishfinder - 在被入侵的站点上寻找遗留的钓鱼工具包

对每个钓鱼URL从最深的路径开始逐级向上:
  • 猜测与目录同名的 .zip 是否存在
  • 探测目录是否开启了目录列表 (Index of)
  • 下载列表中的 .zip / .txt / .exe 制品

URL来源:
  # 默认从 PhishTank 获取最新的在线钓鱼URL
  phishfinder

  # 使用本地URL列表 (每行一个URL, # 开头为注释)
  phishfinder -i urls.txt -o results

  # 自定义HTTP请求头
  phishfinder -i urls.txt -H "User-Agent: Mozilla/5.0" -H "Cookie: a=b"

  # 查看某个URL会探测哪些目录
  phishfinder candidates https://evil.example/secure/login.php

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		applyFlagOverrides(cmd, cfg)

		if err := ValidateFlags(inputFile, cfg); err != nil {
			return err
		}

		runID = models.NewRunID()

		// 日志要在读完配置后才能初始化
		logConfig := buildLogConfig(cfg.Logging)
		logConfig.NoColor = noColor
		logConfig.RunID = runID

		// 显式给出的参数优先于配置文件
		if logLevel != "" {
			logConfig.Level = logLevel
		} else if verbose {
			logConfig.Level = "debug"
		}

		if err := utils.InitLogger(logConfig); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		if verbose {
			utils.Debug("🔎 已开启 debug 日志")
		}

		appConfig = cfg
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Ctrl+C: 当前请求完成后停止遍历
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg := appConfig

		// 请求头: 默认 < 配置 < -H
		headerManager, err := core.NewHeaderManager(cfg.HTTP.Headers, headers)
		if err != nil {
			return fmt.Errorf("创建HTTP头部管理器失败: %w", err)
		}

		if validateConfig {
			return printValidatedConfig(headerManager)
		}

		if _, err := headerManager.GetHeaders(); err != nil {
			return fmt.Errorf("HTTP头部配置无效: %w", err)
		}

		var source feed.Source
		if inputFile != "" {
			source = feed.NewLocalSource(inputFile)
		} else {
			source = feed.NewRemoteSource(cfg.Feed.URL, cfg.Feed.Timeout, headerManager)
		}

		seeds, err := source.Seeds(ctx)
		if err != nil {
			return err
		}
		if len(seeds) == 0 {
			utils.Warnf("没有可处理的URL: %s", source.Name())
			return nil
		}

		records := utils.NewRecordLog(utils.RecordLogConfig{
			Dir:          cfg.Output.BaseDir,
			OpenDirsFile: cfg.Output.OpenDirsLog,
			KitsFile:     cfg.Output.KitsLog,
			MaxSize:      cfg.Output.RecordMaxSize,
		})
		defer records.Close()

		downloader := core.NewDownloader(core.DownloaderOptions{
			KitsDir:      cfg.KitsPath(),
			Timeout:      cfg.Download.Timeout,
			ChunkSize:    cfg.Download.ChunkSize,
			ShowProgress: showProgress(cfg.Download.Progress),
			DiskGuard:    utils.NewDiskGuard(cfg.Download.MinFreeDiskMB),
		}, records, headerManager)

		// 接口变量保持nil才能关闭猜测
		var guesser core.Guesser
		if cfg.Probe.GuessZip {
			guesser = probers.NewGuessProber(cfg.Probe.Timeout, headerManager)
		}

		walker := core.NewWalker(
			probers.NewDirectoryProber(cfg.Probe.Timeout, headerManager),
			guesser,
			downloader,
			records,
		)

		utils.Infof("输出目录: %s", cfg.Output.BaseDir)
		summary := core.NewBatchHunter(walker, cfg.Batch.Delay, runID).Hunt(ctx, seeds)

		printBanner(summary, cfg)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("phishfinder %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
	},
}

var candidatesCmd = &cobra.Command{
	Use:   "candidates <url>",
	Short: "列出URL的候选目录和压缩包猜测 (不发送请求)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, err := NormalizeURL(args[0])
		if err != nil {
			return fmt.Errorf("无效的URL: %w", err)
		}

		candidates, err := core.Candidates(seed)
		if err != nil {
			return fmt.Errorf("无效的URL: %w", err)
		}

		if noGuess {
			for _, c := range candidates {
				fmt.Fprintln(cmd.OutOrStdout(), c.URL)
			}
			return nil
		}
		for _, c := range candidates {
			guess, ok := probers.GuessURL(c.URL)
			if !ok {
				guess = "-"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c.URL, guess)
		}
		return nil
	},
}

var forceInit bool

var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "生成默认配置文件",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigFile
		if len(args) == 1 {
			path = args[0]
		}
		if err := config.WriteTemplate(path, forceInit); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ 已生成配置文件: %s\n", path)
		return nil
	},
}

func init() {
	// 所有子命令共用
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "关闭彩色输出")

	// 请求头
	rootCmd.Flags().StringSliceVarP(&headers, "header", "H", []string{}, "自定义HTTP头部,格式: 'Name: Value',可多次指定")
	rootCmd.Flags().BoolVar(&validateConfig, "validate-config", false, "验证配置文件和HTTP头部后退出")

	// 探测参数
	rootCmd.Flags().StringVarP(&inputFile, "input", "i", "", "本地URL列表文件 (不指定则使用远程情报源)")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "输出目录 (默认读取配置 output.base_dir)")
	rootCmd.Flags().StringVar(&feedURL, "feed-url", "", "远程情报源地址")
	rootCmd.Flags().BoolVar(&noGuess, "no-guess", false, "不猜测与目录同名的 .zip")
	rootCmd.Flags().DurationVar(&probeTimeout, "probe-timeout", 0, "目录探测超时 (如 3s)")
	rootCmd.Flags().DurationVar(&downloadTimeout, "download-timeout", 0, "下载超时 (如 5s)")
	rootCmd.Flags().StringVar(&progressMode, "progress", "", "进度条 (auto|always|never)")

	// 种子来源与节奏
	rootCmd.Flags().DurationVar(&batchDelay, "batch-delay", 0, "两个URL之间的等待时间 (如 1s)")

	candidatesCmd.Flags().BoolVar(&noGuess, "no-guess", false, "只输出候选目录")
	initConfigCmd.Flags().BoolVar(&forceInit, "force", false, "覆盖已存在的配置文件")

	// 子命令
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(candidatesCmd)
	rootCmd.AddCommand(initConfigCmd)
}

// applyFlagOverrides 显式指定的命令行参数覆盖配置文件
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output.BaseDir = outputDir
	}
	if flags.Changed("feed-url") {
		cfg.Feed.URL = feedURL
	}
	if flags.Changed("no-guess") {
		cfg.Probe.GuessZip = !noGuess
	}
	if flags.Changed("probe-timeout") {
		cfg.Probe.Timeout = probeTimeout
	}
	if flags.Changed("download-timeout") {
		cfg.Download.Timeout = downloadTimeout
	}
	if flags.Changed("progress") {
		cfg.Download.Progress = progressMode
	}
	if flags.Changed("batch-delay") {
		cfg.Batch.Delay = batchDelay
	}
}

// showProgress 根据配置和终端类型决定是否显示进度条
func showProgress(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		fd := os.Stderr.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
}

// printValidatedConfig 输出验证通过的HTTP头部(脱敏)
func printValidatedConfig(headerManager *core.HeaderManager) error {
	utils.Info("🔍 检查请求头...")
	if _, err := headerManager.GetHeaders(); err != nil {
		return fmt.Errorf("配置验证失败: %w", err)
	}

	safeHeaders := headerManager.Redacted()
	utils.Info("✅ 请求头合法")
	utils.Infof("生效的请求头共 %d 个:", len(safeHeaders))
	for name, value := range safeHeaders {
		utils.Infof("  %s: %s", name, value)
	}
	return nil
}

// printBanner 彩色输出本次运行结果
func printBanner(summary *core.BatchSummary, cfg *config.Config) {
	if noColor {
		color.Disable()
	}

	stats := summary.Stats
	fmt.Println()
	color.Cyan.Printf("运行ID: %s\n", stats.RunID)
	color.Green.Printf("[+] 开放目录: %d, 下载制品: %d\n", stats.OpenDirs, stats.Downloaded)
	if stats.FailedDownloads > 0 {
		color.Red.Printf("[!] 下载失败: %d\n", stats.FailedDownloads)
	}
	if stats.Downloaded > 0 {
		color.Yellow.Printf("[+] 制品保存在 %s\n", cfg.KitsPath())
		color.Yellow.Printf("[+] 下载记录 %s\n", filepath.Join(cfg.Output.BaseDir, cfg.Output.KitsLog))
	}
	if summary.Cancelled {
		color.Red.Println("[!] 已中断")
	}
}

// buildLogConfig 配置文件中未给出或为0的轮转参数使用默认值
func buildLogConfig(lc config.LoggingConfig) utils.LogConfig {
	out := utils.DefaultLogConfig()
	if lc.Level != "" {
		out.Level = lc.Level
	}
	if lc.LogDir != "" {
		out.LogDir = lc.LogDir
	}
	if r := lc.Rotation; r.MaxSize > 0 {
		out.MaxSize = r.MaxSize
		out.MaxBackups = r.MaxBackups
		out.MaxAge = r.MaxAge
		out.Compress = r.Compress
	}
	return out
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		utils.Error(err, "运行失败")
		var fatal *models.FatalStartupError
		if errors.As(err, &fatal) {
			color.Red.Printf("[!] %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		}
		os.Exit(1)
	}
}
