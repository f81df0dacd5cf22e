package crawlers

import (
	"sort"
	"sync"
)

// VisitedRegistry 已访问URL集合
// 只增不减,是防止重复处理的唯一依据
type VisitedRegistry struct {
	mu   sync.RWMutex
	urls map[string]struct{}
}

// NewVisitedRegistry 创建空的已访问集合
func NewVisitedRegistry() *VisitedRegistry {
	return &VisitedRegistry{
		urls: make(map[string]struct{}),
	}
}

// Contains 检查URL是否已访问
func (r *VisitedRegistry) Contains(url string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.urls[url]
	return ok
}

// Add 标记URL为已访问,重复添加无副作用
func (r *VisitedRegistry) Add(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls[url] = struct{}{}
}

// Len 返回已访问URL数量
func (r *VisitedRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.urls)
}

// URLs 返回排序后的已访问URL快照
func (r *VisitedRegistry) URLs() []string {
	r.mu.RLock()
	urls := make([]string, 0, len(r.urls))
	for u := range r.urls {
		urls = append(urls, u)
	}
	r.mu.RUnlock()

	sort.Strings(urls)
	return urls
}
