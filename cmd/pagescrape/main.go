package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/RecoveryAshes/PageScrape/internal/config"
	"github.com/RecoveryAshes/PageScrape/internal/core"
	"github.com/RecoveryAshes/PageScrape/internal/crawlers"
	"github.com/RecoveryAshes/PageScrape/internal/models"
	"github.com/RecoveryAshes/PageScrape/internal/storage"
	"github.com/RecoveryAshes/PageScrape/internal/utils"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	verbose    bool
	logLevel   string

	// HTTP头部参数
	headers        []string
	validateConfig bool

	// 抓取参数
	autoMode     bool
	noFormat     bool
	targetURL    string
	rendererKind string
	outputDir    string
)

// appConfig 在PersistentPreRunE中加载
var appConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "pagescrape",
	Short: "同域网页抓取工具",
	Long: `PageScrape - 基于无头浏览器的同域网页抓取工具

两种工作模式:
  • 交互模式(默认): 打开浏览器窗口,在浏览器中自由导航,按回车保存当前页面
  • 自动模式(--auto): 保存起始页面以及起始页面上所有同域链接指向的页面

保存格式:
  • 默认只保存页面可见文本 (.txt)
  • --no-format 保存完整HTML (_full.html)

示例:
  pagescrape --auto -u https://example.com
  pagescrape --auto --no-format -u https://example.com -H "Cookie: session=abc"
  pagescrape --renderer static --auto -u https://example.com

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		// 命令行参数覆盖配置文件
		cfg.MergeCLIFlags(logLevel, rendererKind, outputDir, autoMode)
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("配置无效: %w", err)
		}

		if err := utils.InitLogger(cfg.LogConfig()); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		if verbose {
			utils.Info("详细模式已启用")
		}

		appConfig = cfg
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Ctrl+C / SIGTERM 取消根context
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		headerManager, err := core.NewHeaderManager(appConfig.Headers, headers)
		if err != nil {
			return fmt.Errorf("创建HTTP头部管理器失败: %w", err)
		}

		if validateConfig {
			return printHeaderValidation(headerManager)
		}

		if err := ValidateFlags(targetURL, appConfig.Renderer.Kind); err != nil {
			return err
		}

		// 启动提示和交互触发共用同一个stdin reader
		stdin := bufio.NewReader(os.Stdin)
		startURL, err := resolveStartURL(stdin, os.Stdout)
		if err != nil {
			return err
		}

		return run(ctx, startURL, headerManager, stdin)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("PageScrape %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
	},
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")

	// HTTP头部参数
	rootCmd.PersistentFlags().StringSliceVarP(&headers, "header", "H", []string{}, "自定义HTTP头部,格式: 'Name: Value',可多次指定")
	rootCmd.PersistentFlags().BoolVar(&validateConfig, "validate-config", false, "验证配置文件中的HTTP头部")

	// 抓取参数
	rootCmd.Flags().BoolVar(&autoMode, "auto", false, "自动模式: 保存起始页面及其全部同域链接")
	rootCmd.Flags().BoolVar(&noFormat, "no-format", false, "保存完整HTML而不是可见文本")
	rootCmd.Flags().StringVarP(&targetURL, "url", "u", "", "起始URL (不指定时从标准输入读取)")
	rootCmd.Flags().StringVar(&rendererKind, "renderer", "", "渲染器 (browser|static)")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "输出目录")

	rootCmd.AddCommand(versionCmd)
}

// resolveStartURL 优先使用--url,否则提示用户输入
func resolveStartURL(in *bufio.Reader, out io.Writer) (string, error) {
	if targetURL != "" {
		return models.NormalizeURL(targetURL)
	}
	startURL, err := utils.PromptStartURL(in, out)
	if errors.Is(err, models.ErrNoStartURL) {
		return "", fmt.Errorf("未输入起始URL: %w", err)
	}
	return startURL, err
}

// printHeaderValidation 验证头部配置并输出脱敏后的结果
func printHeaderValidation(headerManager *core.HeaderManager) error {
	utils.Info("🔍 验证HTTP头部配置...")
	if err := headerManager.Validate(); err != nil {
		return fmt.Errorf("配置验证失败: %w", err)
	}

	safeHeaders := headerManager.GetSafeHeaders()
	utils.Info("✅ 配置验证通过!")
	utils.Infof("当前有效的HTTP头部 (%d个):", len(safeHeaders))
	for name, value := range safeHeaders {
		utils.Infof("  %s: %s", name, value)
	}
	return nil
}

// run 组装渲染器、保存器和编排器,按模式执行
func run(ctx context.Context, startURL string, headerManager *core.HeaderManager, stdin io.Reader) error {
	mode := models.ModeInteractive
	if autoMode {
		mode = models.ModeAutomatic
	}

	session, err := models.NewCrawlSession(startURL, mode, noFormat)
	if err != nil {
		return err
	}

	utils.WithSession(session.ID)
	utils.Infof("🚀 会话 %s 启动", session.ID)
	utils.Infof("起始URL: %s", startURL)
	utils.Infof("模式: %s, 内容: %s", mode, models.ModeFor(noFormat))
	utils.Infof("输出目录: %s", appConfig.Output.Dir)
	utils.Debugf("HTTP头部: %v", headerManager.GetSafeHeaders())

	renderer, err := newRenderer(ctx, headerManager)
	if err != nil {
		return err
	}
	defer func() {
		if err := renderer.Close(); err != nil {
			utils.Warnf("关闭渲染器失败: %v", err)
		}
	}()

	fs := afero.NewOsFs()
	persisterOpts := []crawlers.PersisterOption{}
	if appConfig.Output.Manifest {
		manifest, err := storage.OpenManifest(appConfig.Output.StateDir)
		if err != nil {
			utils.Warnf("打开清单数据库失败,不记录清单: %v", err)
		} else {
			defer manifest.Close()
			persisterOpts = append(persisterOpts, crawlers.WithRecorder(manifest, session.ID))
		}
	}
	persister := crawlers.NewPersister(fs, appConfig.Output.Dir, persisterOpts...)

	orchestrator := core.NewOrchestrator(session, renderer, persister, os.Stderr)
	reporter := utils.NewReporter(fs, appConfig.Output.StateDir)

	var runErr error
	if autoMode {
		runErr = orchestrator.RunAutomatic(ctx, startURL)
	} else {
		runErr = runInteractive(ctx, orchestrator, startURL, stdin, os.Stdout)
		orchestrator.Finish()
	}

	if _, err := reporter.GenerateReport(orchestrator.Session(), orchestrator.VisitedURLs(), appConfig.Output.Dir); err != nil {
		utils.Warnf("生成报告失败: %v", err)
	}
	printStats(orchestrator.Stats())

	if runErr != nil {
		return fmt.Errorf("抓取失败: %w", runErr)
	}
	utils.Info("✨ 抓取任务完成!")
	return nil
}

// newRenderer 按配置创建渲染器
func newRenderer(ctx context.Context, headerManager *core.HeaderManager) (crawlers.Renderer, error) {
	rc := appConfig.Renderer
	userAgent := rc.UserAgent
	if userAgent == "" {
		userAgent = headerManager.UserAgent()
	}

	switch rc.Kind {
	case config.RendererStatic:
		utils.Infof("🔍 使用静态渲染器 (不执行JavaScript)")
		return crawlers.NewStaticRenderer(crawlers.StaticOptions{
			UserAgent:   userAgent,
			Timeout:     rc.NavigationTimeout,
			Headers:     headerManager,
			MaxBodySize: rc.MaxBodySize,
		}), nil
	default:
		utils.Infof("🌐 启动浏览器 (无头: %v)", rc.Headless)
		renderer, err := crawlers.NewBrowserRenderer(ctx, crawlers.BrowserOptions{
			Headless:          rc.Headless,
			BrowserBin:        rc.BrowserBin,
			UserAgent:         userAgent,
			WaitTime:          rc.WaitTime,
			NavigationTimeout: rc.NavigationTimeout,
			Headers:           headerManager,
			Monitor:           crawlers.NewResourceMonitor(appConfig.Resource.MinFreeMemory),
		})
		if err != nil {
			return nil, fmt.Errorf("创建浏览器渲染器失败: %w", err)
		}
		return renderer, nil
	}
}

// printStats 输出统计结果
func printStats(stats models.SessionStats) {
	fmt.Println("\n==================================================")
	fmt.Println("📊 抓取统计")
	fmt.Println("==================================================")
	fmt.Printf("✅ 访问页面数: %d\n", stats.Visited)
	fmt.Printf("✅ 保存文件数: %d\n", stats.Persisted)
	fmt.Printf("🔗 同域候选链接: %d\n", stats.Candidates)
	fmt.Printf("⏭️  跳过重复链接: %d\n", stats.SkippedDuplicates)
	fmt.Printf("❌ 渲染失败: %d\n", stats.RenderFailures)
	fmt.Printf("❌ 保存失败: %d\n", stats.PersistFailures)
	fmt.Printf("⏱️  总耗时: %.2f秒\n", stats.Duration)
	fmt.Println("==================================================")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
