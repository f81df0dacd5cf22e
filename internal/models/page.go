package models

import (
	"encoding/json"
	"time"
)

// ContentMode 页面内容保存模式
type ContentMode string

const (
	ContentText   ContentMode = "text"   // 仅可见文本(默认)
	ContentMarkup ContentMode = "markup" // 完整HTML (--no-format)
)

// ModeFor 根据--no-format开关返回内容模式
func ModeFor(fullMarkup bool) ContentMode {
	if fullMarkup {
		return ContentMarkup
	}
	return ContentText
}

// Anchor 渲染后页面中的一个<a>元素
type Anchor struct {
	Href    string `json:"href"`     // href属性原始值
	HasHref bool   `json:"has_href"` // 元素是否带有href属性
}

// NewAnchor 创建带href的锚点
func NewAnchor(href string) Anchor {
	return Anchor{Href: href, HasHref: true}
}

// GetHref 返回href属性,没有该属性时ok为false
func (a Anchor) GetHref() (href string, ok bool) {
	return a.Href, a.HasHref
}

// RenderedPage 渲染器返回的页面快照
// 一旦返回即不可变,编排器不依赖渲染器内部的"当前页面"状态
type RenderedPage struct {
	URL         string    `json:"url"`         // 请求的URL
	FinalURL    string    `json:"final_url"`   // 跳转后的最终URL
	Title       string    `json:"title"`       // 页面标题
	Markup      string    `json:"-"`           // 完整HTML
	VisibleText string    `json:"-"`           // body可见文本
	Anchors     []Anchor  `json:"anchors"`     // 页面中所有<a>元素
	RenderedAt  time.Time `json:"rendered_at"` // 渲染完成时间
}

// BaseURL 返回解析相对链接时使用的基准URL
func (p *RenderedPage) BaseURL() string {
	if p.FinalURL != "" {
		return p.FinalURL
	}
	return p.URL
}

// Content 按模式返回需要保存的内容
func (p *RenderedPage) Content(fullMarkup bool) string {
	if fullMarkup {
		return p.Markup
	}
	return p.VisibleText
}

// PageRecord 一次保存操作的记录
type PageRecord struct {
	SessionID string      `json:"session_id"`
	URL       string      `json:"url"`
	FilePath  string      `json:"file_path"`
	Mode      ContentMode `json:"mode"`
	Size      int64       `json:"size"`
	SavedAt   time.Time   `json:"saved_at"`
}

// ToJSON 序列化为JSON
func (r *PageRecord) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
