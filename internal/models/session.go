package models

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// SessionState 爬取会话状态
type SessionState string

const (
	StateIdle               SessionState = "idle"                // 空闲
	StateSeeded             SessionState = "seeded"              // 已设置起始URL
	StateVisitingStart      SessionState = "visiting_start"      // 访问起始页面
	StateExtractingLinks    SessionState = "extracting_links"    // 提取链接
	StateVisitingCandidates SessionState = "visiting_candidates" // 访问同域链接
	StateDone               SessionState = "done"                // 完成
	StateAwaitingTrigger    SessionState = "awaiting_trigger"    // 交互模式: 等待触发
	StateVisiting           SessionState = "visiting"            // 交互模式: 访问中
)

// CrawlMode 爬取模式
type CrawlMode string

const (
	ModeAutomatic   CrawlMode = "automatic"   // --auto
	ModeInteractive CrawlMode = "interactive" // 手动触发
)

// SessionStats 会话统计
type SessionStats struct {
	Visited           int     `json:"visited"`            // 已访问页面数
	Persisted         int     `json:"persisted"`          // 已保存文件数
	RenderFailures    int     `json:"render_failures"`    // 渲染失败数
	PersistFailures   int     `json:"persist_failures"`   // 保存失败数
	Candidates        int     `json:"candidates"`         // 起始页提取到的同域链接数
	SkippedDuplicates int     `json:"skipped_duplicates"` // 因已访问而跳过的链接数
	Duration          float64 `json:"duration"`           // 总耗时(秒)
}

// FailedVisit 失败的访问
type FailedVisit struct {
	URL   string `json:"url"`
	Stage string `json:"stage"` // render 或 persist
	Error string `json:"error"`
}

// CrawlSession 一次爬取会话
type CrawlSession struct {
	ID         string        `json:"id"`
	StartURL   string        `json:"start_url"`
	Domain     string        `json:"domain"`
	Mode       CrawlMode     `json:"mode"`
	FullMarkup bool          `json:"full_markup"`
	State      SessionState  `json:"state"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt *time.Time    `json:"finished_at,omitempty"`
	Stats      SessionStats  `json:"stats"`
	Failures   []FailedVisit `json:"failures,omitempty"`
	Artifacts  []PageRecord  `json:"artifacts,omitempty"`
}

// NewCrawlSession 创建新会话
// 域名只在此处根据起始URL计算一次
func NewCrawlSession(startURL string, mode CrawlMode, fullMarkup bool) (*CrawlSession, error) {
	if err := ValidateURL(startURL); err != nil {
		return nil, err
	}
	parsed, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("解析起始URL失败: %w", err)
	}

	return &CrawlSession{
		ID:         generateID(),
		StartURL:   startURL,
		Domain:     parsed.Host,
		Mode:       mode,
		FullMarkup: fullMarkup,
		State:      StateIdle,
		StartedAt:  time.Now(),
	}, nil
}

// Finish 标记会话结束并计算耗时
func (s *CrawlSession) Finish() {
	now := time.Now()
	s.FinishedAt = &now
	s.Stats.Duration = now.Sub(s.StartedAt).Seconds()
}

// ToJSON 序列化为JSON
func (s *CrawlSession) ToJSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// FromJSON 从JSON反序列化
func (s *CrawlSession) FromJSON(data []byte) error {
	return json.Unmarshal(data, s)
}
