package crawlers

import (
	"context"

	"github.com/RecoveryAshes/PageScrape/internal/models"
)

// DefaultUserAgent 默认浏览器标识
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// Renderer 页面渲染器
// Render返回不可变快照,调用方不依赖渲染器内部的"当前页面"
type Renderer interface {
	// Render 加载URL并返回渲染结果
	Render(ctx context.Context, url string) (*models.RenderedPage, error)
	// CurrentURL 返回渲染器当前所在的URL(交互模式下用户可能自行导航)
	CurrentURL(ctx context.Context) (string, error)
	// Close 释放渲染器资源
	Close() error
}
