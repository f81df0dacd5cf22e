package models

import (
	"encoding/json"
	"time"
)

// SessionReport 会话报告
// 自动模式结束后写入 <state_dir>/reports/session_<id>.json
type SessionReport struct {
	Session     *CrawlSession `json:"session"`
	VisitedURLs []string      `json:"visited_urls"`
	OutputDir   string        `json:"output_dir"`
	GeneratedAt time.Time     `json:"generated_at"`
}

// ToJSON 序列化为JSON
func (r *SessionReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON 从JSON反序列化
func (r *SessionReport) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}
