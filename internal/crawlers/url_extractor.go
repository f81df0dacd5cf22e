package crawlers

import (
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/RecoveryAshes/PageScrape/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// LinkExtractor 同域链接提取器
// 域名在会话开始时由起始URL确定,之后不再变化
type LinkExtractor struct {
	domain string
}

// NewLinkExtractor 创建链接提取器
func NewLinkExtractor(domain string) *LinkExtractor {
	return &LinkExtractor{domain: domain}
}

// Domain 返回目标域名
func (e *LinkExtractor) Domain() string {
	return e.domain
}

// Extract 从锚点列表中提取同域的绝对URL集合
// 无href的锚点和无法解析的链接被忽略
func (e *LinkExtractor) Extract(currentURL string, anchors []models.Anchor) map[string]struct{} {
	links := make(map[string]struct{})

	for _, anchor := range anchors {
		href, ok := anchor.GetHref()
		if !ok {
			continue
		}

		resolved, err := Resolve(currentURL, href)
		if err != nil {
			if !errors.Is(err, ErrEmptyHref) {
				log.Debug().Err(err).Str("url", currentURL).Str("href", href).Msg("忽略无法解析的链接")
			}
			continue
		}

		if !isFetchable(resolved) {
			log.Debug().Str("url", resolved).Msg("忽略非HTTP链接")
			continue
		}

		if !IsSameDomain(resolved, e.domain) {
			log.Debug().Msgf("跨域链接已过滤: %s (目标域: %s)", resolved, e.domain)
			continue
		}

		links[resolved] = struct{}{}
	}

	return links
}

// isFetchable mailto:、javascript:等链接没有主机部分,需要在域名检查前排除
func isFetchable(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return parsed.Scheme == "http" || parsed.Scheme == "https"
}

// ParseAnchors 从HTML中解析全部<a>元素
// 没有href属性的元素也会返回,由Extract决定是否忽略
func ParseAnchors(r io.Reader) ([]models.Anchor, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("解析HTML失败: %w", err)
	}

	var anchors []models.Anchor
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			anchor := models.Anchor{}
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					anchor = models.NewAnchor(attr.Val)
					break
				}
			}
			anchors = append(anchors, anchor)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return anchors, nil
}
