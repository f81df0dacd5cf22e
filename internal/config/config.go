package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RecoveryAshes/PageScrape/internal/models"
	"github.com/RecoveryAshes/PageScrape/internal/utils"
	"github.com/spf13/viper"
)

// 渲染器类型
const (
	RendererBrowser = "browser" // 无头浏览器(go-rod)
	RendererStatic  = "static"  // 纯HTTP(colly)
)

// Config 应用程序配置
type Config struct {
	Logging  LoggingConfig     `mapstructure:"logging"`
	Output   OutputConfig      `mapstructure:"output"`
	Renderer RendererConfig    `mapstructure:"renderer"`
	Resource ResourceConfig    `mapstructure:"resource"`
	Headers  map[string]string `mapstructure:"headers"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	Dir      string `mapstructure:"dir"`       // 页面文件目录
	StateDir string `mapstructure:"state_dir"` // 清单数据库和会话报告目录
	Manifest bool   `mapstructure:"manifest"`  // 是否记录SQLite清单
}

// RendererConfig 渲染器配置
type RendererConfig struct {
	Kind              string        `mapstructure:"kind"`
	Headless          bool          `mapstructure:"headless"`
	WaitTime          time.Duration `mapstructure:"wait_time"`          // 页面加载后的额外等待
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout"` // 0表示不限制
	BrowserBin        string        `mapstructure:"browser_bin"`        // 为空时自动查找或下载
	UserAgent         string        `mapstructure:"user_agent"`
	MaxBodySize       int           `mapstructure:"max_body_size"` // 静态渲染器响应体上限(字节),0表示不限制
}

// ResourceConfig 资源检查配置
type ResourceConfig struct {
	MinFreeMemory uint64 `mapstructure:"min_free_memory"` // MB
}

// LoadConfig 加载配置文件
// configPath为空时搜索默认位置,找不到配置文件时使用默认值
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".pagescrape"))
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, &models.ConfigError{FilePath: configPath, Cause: err}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	v.SetDefault("output.dir", "scraped_pages")
	v.SetDefault("output.state_dir", ".pagescrape")
	v.SetDefault("output.manifest", true)

	v.SetDefault("renderer.kind", RendererBrowser)
	v.SetDefault("renderer.headless", false)
	v.SetDefault("renderer.wait_time", "0s")
	v.SetDefault("renderer.navigation_timeout", "30s")
	v.SetDefault("renderer.browser_bin", "")
	v.SetDefault("renderer.user_agent", "")
	v.SetDefault("renderer.max_body_size", 0)

	v.SetDefault("resource.min_free_memory", 512)
}

// Validate 检查配置是否可用
func (c *Config) Validate() error {
	switch c.Renderer.Kind {
	case RendererBrowser, RendererStatic:
	default:
		return fmt.Errorf("未知的渲染器类型: %q (可选: %s, %s)", c.Renderer.Kind, RendererBrowser, RendererStatic)
	}
	if c.Renderer.WaitTime < 0 {
		return fmt.Errorf("renderer.wait_time 不能为负数: %s", c.Renderer.WaitTime)
	}
	if c.Renderer.NavigationTimeout < 0 {
		return fmt.Errorf("renderer.navigation_timeout 不能为负数: %s", c.Renderer.NavigationTimeout)
	}
	if c.Renderer.MaxBodySize < 0 {
		return fmt.Errorf("renderer.max_body_size 不能为负数: %d", c.Renderer.MaxBodySize)
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		return fmt.Errorf("output.dir 不能为空")
	}
	if c.Output.Manifest && strings.TrimSpace(c.Output.StateDir) == "" {
		return fmt.Errorf("启用清单时 output.state_dir 不能为空")
	}
	return nil
}

// LogConfig 转换为日志系统配置
func (c *Config) LogConfig() utils.LogConfig {
	return utils.LogConfig{
		Level:      c.Logging.Level,
		LogDir:     c.Logging.LogDir,
		MaxSize:    c.Logging.Rotation.MaxSize,
		MaxBackups: c.Logging.Rotation.MaxBackups,
		MaxAge:     c.Logging.Rotation.MaxAge,
		Compress:   c.Logging.Rotation.Compress,
	}
}

// MergeCLIFlags 合并命令行参数到配置
// 命令行参数优先于配置文件,空值表示未指定
func (c *Config) MergeCLIFlags(logLevel, renderer, outputDir string, auto bool) {
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if renderer != "" {
		c.Renderer.Kind = renderer
	}
	if outputDir != "" {
		c.Output.Dir = outputDir
	}
	// 自动模式没有用户交互,强制无头
	if auto {
		c.Renderer.Headless = true
	}
}
