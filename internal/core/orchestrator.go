package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/RecoveryAshes/PageScrape/internal/crawlers"
	"github.com/RecoveryAshes/PageScrape/internal/models"
	"github.com/RecoveryAshes/PageScrape/internal/utils"
	"github.com/rs/zerolog/log"
)

// ErrNotSeeded 交互模式下尚未加载起始页面
var ErrNotSeeded = errors.New("尚未加载起始页面")

// PagePersister 页面内容保存接口
type PagePersister interface {
	Persist(url, content string, fullMarkup bool) (string, error)
}

// Orchestrator 爬取编排器
// 每个会话一个实例,独占已访问集合和候选链接
type Orchestrator struct {
	renderer  crawlers.Renderer
	persister PagePersister
	progress  io.Writer

	visited   *crawlers.VisitedRegistry
	extractor *crawlers.LinkExtractor

	// visitMu 保证同一时间只有一次渲染
	visitMu sync.Mutex

	// mu 保护session
	mu      sync.Mutex
	session *models.CrawlSession
}

// NewOrchestrator 创建编排器
// progress为nil时不显示进度条
func NewOrchestrator(session *models.CrawlSession, renderer crawlers.Renderer, persister PagePersister, progress io.Writer) *Orchestrator {
	return &Orchestrator{
		renderer:  renderer,
		persister: persister,
		progress:  progress,
		visited:   crawlers.NewVisitedRegistry(),
		session:   session,
	}
}

// RunAutomatic 自动模式: 保存起始页面和起始页面上的全部同域链接
// 只从起始页面提取链接,二级页面上的链接不会被访问
func (o *Orchestrator) RunAutomatic(ctx context.Context, startURL string) error {
	o.visitMu.Lock()
	defer o.visitMu.Unlock()
	defer o.finish()

	if err := o.bind(startURL, models.ModeAutomatic); err != nil {
		return err
	}

	utils.Infof("🚀 开始自动爬取: %s (域名: %s)", startURL, o.extractor.Domain())

	o.setState(models.StateVisitingStart)
	o.visited.Add(startURL)
	page, _, err := o.visit(ctx, startURL)
	if page == nil {
		o.setState(models.StateDone)
		return fmt.Errorf("起始页面渲染失败: %w", err)
	}

	o.setState(models.StateExtractingLinks)
	candidates := sortedKeys(o.extractor.Extract(page.BaseURL(), page.Anchors))
	o.update(func(s *models.CrawlSession) { s.Stats.Candidates = len(candidates) })
	utils.Infof("🔍 起始页面发现 %d 个同域链接", len(candidates))

	o.setState(models.StateVisitingCandidates)
	bar := utils.NewProgressBar(len(candidates), "抓取页面", o.progress)
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			o.setState(models.StateDone)
			return fmt.Errorf("爬取被中断: %w", err)
		}

		if o.visited.Contains(candidate) {
			o.update(func(s *models.CrawlSession) { s.Stats.SkippedDuplicates++ })
			_ = bar.Add(1)
			continue
		}

		o.visited.Add(candidate)
		if _, _, err := o.visit(ctx, candidate); err != nil {
			log.Warn().Err(err).Str("url", candidate).Msg("跳过页面")
		}
		_ = bar.Add(1)
	}

	o.setState(models.StateDone)
	stats := o.Stats()
	utils.Infof("✅ 自动爬取完成: 访问 %d, 保存 %d, 失败 %d", stats.Visited, stats.Persisted, stats.RenderFailures+stats.PersistFailures)
	return nil
}

// Seed 交互模式: 加载起始页面但不保存,之后等待触发
// 渲染失败返回错误,但会话仍可触发保存
func (o *Orchestrator) Seed(ctx context.Context, startURL string) error {
	o.visitMu.Lock()
	defer o.visitMu.Unlock()

	if err := o.bind(startURL, models.ModeInteractive); err != nil {
		return err
	}

	// 起始页面加载失败时仍进入等待触发状态,用户可以在浏览器中导航或输入其他URL
	_, err := o.renderer.Render(ctx, startURL)
	o.setState(models.StateAwaitingTrigger)
	if err != nil {
		o.recordFailure(startURL, "render", err)
		return fmt.Errorf("加载起始页面失败: %w", err)
	}

	utils.Infof("🌐 已打开 %s, 导航到需要的页面后按回车保存", startURL)
	return nil
}

// VisitCurrent 保存渲染器当前所在的页面
func (o *Orchestrator) VisitCurrent(ctx context.Context) (string, error) {
	o.visitMu.Lock()
	defer o.visitMu.Unlock()

	if o.State() != models.StateAwaitingTrigger {
		return "", ErrNotSeeded
	}

	current, err := o.renderer.CurrentURL(ctx)
	if err != nil {
		return "", fmt.Errorf("获取当前页面失败: %w", err)
	}
	return o.triggeredVisit(ctx, current)
}

// Visit 保存指定URL
// 不读取也不修改已访问集合,同一URL可以多次保存
func (o *Orchestrator) Visit(ctx context.Context, url string) (string, error) {
	o.visitMu.Lock()
	defer o.visitMu.Unlock()

	if o.State() != models.StateAwaitingTrigger {
		return "", ErrNotSeeded
	}
	if err := models.ValidateURL(url); err != nil {
		return "", err
	}
	return o.triggeredVisit(ctx, url)
}

// triggeredVisit 调用方必须持有visitMu
func (o *Orchestrator) triggeredVisit(ctx context.Context, url string) (string, error) {
	o.setState(models.StateVisiting)
	defer o.setState(models.StateAwaitingTrigger)

	_, path, err := o.visit(ctx, url)
	return path, err
}

// bind 确定会话的起始URL和域名,域名在整个会话中保持不变
func (o *Orchestrator) bind(startURL string, mode models.CrawlMode) error {
	if err := models.ValidateURL(startURL); err != nil {
		return err
	}

	domain := crawlers.DomainOf(startURL)
	o.extractor = crawlers.NewLinkExtractor(domain)
	o.update(func(s *models.CrawlSession) {
		s.StartURL = startURL
		s.Domain = domain
		s.Mode = mode
		s.State = models.StateSeeded
	})
	return nil
}

// visit 渲染并保存一个页面
// 渲染失败时page为nil;保存失败时page不为nil但err不为nil
func (o *Orchestrator) visit(ctx context.Context, url string) (*models.RenderedPage, string, error) {
	var fullMarkup bool
	o.update(func(s *models.CrawlSession) {
		fullMarkup = s.FullMarkup
		s.Stats.Visited++
	})
	log.Debug().Str("url", url).Msg("访问页面")

	page, err := o.renderer.Render(ctx, url)
	if err != nil {
		o.recordFailure(url, "render", err)
		log.Error().Err(err).Str("url", url).Msg("页面渲染失败")
		return nil, "", err
	}

	content := page.Content(fullMarkup)
	path, err := o.persister.Persist(url, content, fullMarkup)
	if err != nil {
		o.recordFailure(url, "persist", err)
		log.Error().Err(err).Str("url", url).Msg("保存页面失败")
		return page, "", err
	}

	o.update(func(s *models.CrawlSession) {
		s.Stats.Persisted++
		s.Artifacts = append(s.Artifacts, models.PageRecord{
			SessionID: s.ID,
			URL:       url,
			FilePath:  path,
			Mode:      models.ModeFor(fullMarkup),
			Size:      int64(len(content)),
			SavedAt:   time.Now(),
		})
	})
	log.Info().Str("url", url).Str("path", path).Msg("💾 页面已保存")
	return page, path, nil
}

func (o *Orchestrator) recordFailure(url, stage string, err error) {
	o.update(func(s *models.CrawlSession) {
		switch stage {
		case "render":
			s.Stats.RenderFailures++
		case "persist":
			s.Stats.PersistFailures++
		}
		s.Failures = append(s.Failures, models.FailedVisit{URL: url, Stage: stage, Error: err.Error()})
	})
}

func (o *Orchestrator) update(fn func(s *models.CrawlSession)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(o.session)
}

func (o *Orchestrator) setState(state models.SessionState) {
	o.update(func(s *models.CrawlSession) { s.State = state })
}

func (o *Orchestrator) finish() {
	o.update(func(s *models.CrawlSession) { s.Finish() })
}

// Finish 结束会话(交互模式退出时调用)
func (o *Orchestrator) Finish() {
	o.visitMu.Lock()
	defer o.visitMu.Unlock()
	o.finish()
}

// State 返回当前状态
func (o *Orchestrator) State() models.SessionState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session.State
}

// Stats 返回统计快照
func (o *Orchestrator) Stats() models.SessionStats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session.Stats
}

// Session 返回会话快照
func (o *Orchestrator) Session() *models.CrawlSession {
	o.mu.Lock()
	defer o.mu.Unlock()

	snapshot := *o.session
	snapshot.Failures = append([]models.FailedVisit(nil), o.session.Failures...)
	snapshot.Artifacts = append([]models.PageRecord(nil), o.session.Artifacts...)
	return &snapshot
}

// VisitedURLs 返回已访问URL(排序后)
func (o *Orchestrator) VisitedURLs() []string {
	return o.visited.URLs()
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
