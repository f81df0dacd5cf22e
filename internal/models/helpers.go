package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// ErrNoStartURL 未提供起始URL
var ErrNoStartURL = errors.New("未提供起始URL,无法开始爬取")

// ValidateURL 验证起始URL
func ValidateURL(urlStr string) error {
	if strings.TrimSpace(urlStr) == "" {
		return ErrNoStartURL
	}
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("无效的URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL必须是HTTP或HTTPS协议")
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL必须包含主机名")
	}
	return nil
}

// NormalizeURL 处理用户输入的URL: 去除空白,省略协议时补全https,再做校验
// 命令行参数、启动提示和交互触发共用
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrNoStartURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	if err := ValidateURL(raw); err != nil {
		return "", err
	}
	return raw, nil
}

// generateID 生成会话ID
func generateID() string {
	return uuid.New().String()
}
