package main

import (
	"fmt"

	"github.com/RecoveryAshes/PageScrape/internal/config"
	"github.com/RecoveryAshes/PageScrape/internal/models"
)

// ValidateFlags 验证命令行标志
func ValidateFlags(targetURL, rendererKind string) error {
	if targetURL != "" {
		if _, err := models.NormalizeURL(targetURL); err != nil {
			return fmt.Errorf("无效的目标URL: %w", err)
		}
	}

	switch rendererKind {
	case config.RendererBrowser, config.RendererStatic:
	default:
		return fmt.Errorf("无效的渲染器: %s (有效值: browser, static)", rendererKind)
	}

	return nil
}
