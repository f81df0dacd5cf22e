package core

import (
	"fmt"
	"net/http"

	"github.com/RecoveryAshes/PageScrape/internal/crawlers"
	"github.com/RecoveryAshes/PageScrape/internal/models"
	"github.com/RecoveryAshes/PageScrape/internal/utils"
)

// HeaderManager 管理HTTP请求头部
// 优先级: 默认 < 配置文件 < 命令行
// 实现 models.HeaderProvider 接口
type HeaderManager struct {
	// defaults 系统默认头部
	defaults http.Header

	// config 配置文件中的headers段
	config http.Header

	// cli 命令行 -H 参数
	cli http.Header
}

// NewHeaderManager 创建头部管理器
// cliHeaders 格式为 "Name: Value",解析失败时返回错误
func NewHeaderManager(configHeaders map[string]string, cliHeaders []string) (*HeaderManager, error) {
	hm := &HeaderManager{
		defaults: getDefaultHeaders(),
		config:   make(http.Header),
	}

	for name, value := range configHeaders {
		hm.config.Set(name, value)
	}

	cli, err := models.CliHeaders(cliHeaders).Parse()
	if err != nil {
		return nil, err
	}
	hm.cli = cli

	return hm, nil
}

// getDefaultHeaders 返回系统默认头部
func getDefaultHeaders() http.Header {
	return http.Header{
		"User-Agent":      []string{crawlers.DefaultUserAgent},
		"Accept-Language": []string{"zh-CN,zh;q=0.9,en;q=0.8"},
		"Accept-Encoding": []string{"gzip, deflate, br"},
	}
}

// headerLayer 一个来源的头部
type headerLayer struct {
	source  string
	headers http.Header
}

// layers 按优先级从低到高返回各来源
func (hm *HeaderManager) layers() []headerLayer {
	return []headerLayer{
		{source: "默认", headers: hm.defaults},
		{source: "配置文件", headers: hm.config},
		{source: "命令行", headers: hm.cli},
	}
}

// Validate 验证所有头部的合法性
// 验证顺序: 默认 → 配置 → 命令行,返回第一个错误
func (hm *HeaderManager) Validate() error {
	for _, layer := range hm.layers() {
		if err := utils.ValidateHeaders(layer.headers); err != nil {
			utils.Errorf("%s头部验证失败: %v", layer.source, err)
			return fmt.Errorf("%s头部: %w", layer.source, err)
		}
	}
	return nil
}

// GetMergedHeaders 按优先级合并头部
func (hm *HeaderManager) GetMergedHeaders() http.Header {
	result := make(http.Header)
	for _, layer := range hm.layers() {
		for name, values := range layer.headers {
			result[name] = values
		}
	}
	return result
}

// GetSafeHeaders 返回脱敏后的头部 (用于日志)
func (hm *HeaderManager) GetSafeHeaders() map[string]string {
	return utils.RedactHeaders(hm.GetMergedHeaders())
}

// GetHeaders 实现 HeaderProvider 接口
func (hm *HeaderManager) GetHeaders() (http.Header, error) {
	if err := hm.Validate(); err != nil {
		return nil, err
	}
	return hm.GetMergedHeaders(), nil
}

// UserAgent 返回合并后的User-Agent
func (hm *HeaderManager) UserAgent() string {
	return hm.GetMergedHeaders().Get("User-Agent")
}
