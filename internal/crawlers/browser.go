package crawlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/RecoveryAshes/PageScrape/internal/models"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog/log"
)

// ErrRendererClosed 渲染器已关闭
var ErrRendererClosed = errors.New("渲染器已关闭")

// stealthScript 在每个新文档加载前执行,隐藏自动化特征
const stealthScript = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined})`

// anchorScript 读取全部<a>元素的原始href属性
const anchorScript = `() => Array.from(document.querySelectorAll('a')).map(a => ({
	href: a.getAttribute('href') || '',
	present: a.hasAttribute('href'),
}))`

// BrowserOptions 浏览器渲染器配置
type BrowserOptions struct {
	Headless          bool
	BrowserBin        string        // 为空时由launcher查找或下载
	UserAgent         string        // 为空时使用DefaultUserAgent
	WaitTime          time.Duration // 页面load事件之后的额外等待
	NavigationTimeout time.Duration // 0表示不限制
	Headers           models.HeaderProvider
	Monitor           *ResourceMonitor
}

// BrowserRenderer 基于go-rod的无头浏览器渲染器
// 整个会话只使用一个标签页,所有操作由mu串行化
type BrowserRenderer struct {
	opts BrowserOptions

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	closed   bool
}

// NewBrowserRenderer 启动浏览器并打开一个标签页
func NewBrowserRenderer(ctx context.Context, opts BrowserOptions) (*BrowserRenderer, error) {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	if _, err := opts.Monitor.Check(); err != nil {
		log.Debug().Err(err).Msg("资源检查失败")
	}

	l := launcher.New().
		Context(ctx).
		Headless(opts.Headless).
		Set("no-sandbox").
		Set("start-maximized").
		Set("disable-blink-features", "AutomationControlled").
		Set("user-agent", opts.UserAgent).
		Delete("enable-automation")
	if opts.BrowserBin != "" {
		l = l.Bin(opts.BrowserBin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("启动浏览器失败: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("连接浏览器失败: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("创建标签页失败: %w", err)
	}

	r := &BrowserRenderer{
		opts:     opts,
		launcher: l,
		browser:  browser,
		page:     page,
	}
	if err := r.preparePage(); err != nil {
		_ = r.Close()
		return nil, err
	}

	log.Debug().Str("control_url", controlURL).Bool("headless", opts.Headless).Msg("浏览器已启动")
	return r, nil
}

// preparePage 设置反检测脚本、User-Agent和自定义头部
func (r *BrowserRenderer) preparePage() error {
	if _, err := r.page.EvalOnNewDocument(stealthScript); err != nil {
		return fmt.Errorf("注入反检测脚本失败: %w", err)
	}

	if err := r.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: r.opts.UserAgent}); err != nil {
		return fmt.Errorf("设置User-Agent失败: %w", err)
	}

	if r.opts.Headers == nil {
		return nil
	}
	headers, err := r.opts.Headers.GetHeaders()
	if err != nil {
		return fmt.Errorf("获取HTTP头部失败: %w", err)
	}
	if dict := extraHeaderDict(headers); len(dict) > 0 {
		if _, err := r.page.SetExtraHeaders(dict); err != nil {
			return fmt.Errorf("设置HTTP头部失败: %w", err)
		}
	}
	return nil
}

// extraHeaderDict 转换为SetExtraHeaders需要的键值交替列表
// User-Agent已由SetUserAgent覆盖,这里跳过
func extraHeaderDict(headers http.Header) []string {
	dict := make([]string, 0, len(headers)*2)
	for name, values := range headers {
		if len(values) == 0 || http.CanonicalHeaderKey(name) == "User-Agent" {
			continue
		}
		dict = append(dict, name, values[0])
	}
	return dict
}

// Render 导航到URL,等待加载后读取页面快照
func (r *BrowserRenderer) Render(ctx context.Context, url string) (*models.RenderedPage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRendererClosed
	}

	if _, err := r.opts.Monitor.Check(); err != nil {
		log.Debug().Err(err).Msg("资源检查失败")
	}

	if r.opts.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.NavigationTimeout)
		defer cancel()
	}
	page := r.page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return nil, fmt.Errorf("导航失败 [%s]: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("等待页面加载失败 [%s]: %w", url, err)
	}

	if r.opts.WaitTime > 0 {
		select {
		case <-time.After(r.opts.WaitTime):
		case <-ctx.Done():
			return nil, fmt.Errorf("等待页面渲染被中断 [%s]: %w", url, ctx.Err())
		}
	}

	return snapshot(page, url)
}

// snapshot 读取当前页面的标题、HTML、可见文本和锚点
func snapshot(page *rod.Page, url string) (*models.RenderedPage, error) {
	info, err := page.Info()
	if err != nil {
		return nil, fmt.Errorf("读取页面信息失败 [%s]: %w", url, err)
	}

	markup, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("读取页面HTML失败 [%s]: %w", url, err)
	}

	var text string
	body, err := page.Element("body")
	if err != nil {
		return nil, fmt.Errorf("查找body失败 [%s]: %w", url, err)
	}
	if text, err = body.Text(); err != nil {
		return nil, fmt.Errorf("读取页面文本失败 [%s]: %w", url, err)
	}

	result, err := page.Eval(anchorScript)
	if err != nil {
		return nil, fmt.Errorf("读取页面链接失败 [%s]: %w", url, err)
	}

	items := result.Value.Arr()
	anchors := make([]models.Anchor, 0, len(items))
	for _, item := range items {
		anchors = append(anchors, models.Anchor{
			Href:    item.Get("href").Str(),
			HasHref: item.Get("present").Bool(),
		})
	}

	return &models.RenderedPage{
		URL:         url,
		FinalURL:    info.URL,
		Title:       info.Title,
		Markup:      markup,
		VisibleText: text,
		Anchors:     anchors,
		RenderedAt:  time.Now(),
	}, nil
}

// CurrentURL 返回标签页当前URL
func (r *BrowserRenderer) CurrentURL(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return "", ErrRendererClosed
	}

	info, err := r.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("读取当前URL失败: %w", err)
	}
	return info.URL, nil
}

// Close 关闭浏览器并清理临时用户目录
func (r *BrowserRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	err := r.browser.Close()
	r.launcher.Kill()
	r.launcher.Cleanup()

	log.Debug().Msg("浏览器已关闭")
	return err
}
