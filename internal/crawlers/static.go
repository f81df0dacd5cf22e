package crawlers

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/RecoveryAshes/PageScrape/internal/models"
	"github.com/andybalholm/brotli"
	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog/log"
)

// ErrBodyTruncated 响应体达到MaxBodySize,页面内容不完整
var ErrBodyTruncated = errors.New("响应体超过大小上限,页面内容不完整")

// StaticOptions 静态渲染器配置
type StaticOptions struct {
	UserAgent   string
	Timeout     time.Duration // 单次请求超时,0使用colly默认值
	Headers     models.HeaderProvider
	MaxBodySize int // 响应体上限(字节),0表示不限制
}

// StaticRenderer 基于Colly的纯HTTP渲染器
// 不执行JavaScript,适用于服务端渲染的站点或无法安装Chrome的环境
type StaticRenderer struct {
	collector   *colly.Collector
	headers     models.HeaderProvider
	maxBodySize int

	mu       sync.Mutex
	current  string
	response *colly.Response
}

// NewStaticRenderer 创建静态渲染器
func NewStaticRenderer(opts StaticOptions) *StaticRenderer {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	// 同一URL在交互模式下可以被多次保存
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.UserAgent(opts.UserAgent),
	)
	if opts.Timeout > 0 {
		c.SetRequestTimeout(opts.Timeout)
	}
	// colly默认截断到10MB且不报错,截断的页面会丢失后面的链接
	c.MaxBodySize = opts.MaxBodySize

	s := &StaticRenderer{
		collector:   c,
		headers:     opts.Headers,
		maxBodySize: opts.MaxBodySize,
	}
	s.setupCallbacks()
	return s
}

// setupCallbacks 设置Colly回调
func (s *StaticRenderer) setupCallbacks() {
	s.collector.OnRequest(func(r *colly.Request) {
		if s.headers != nil {
			headers, err := s.headers.GetHeaders()
			if err != nil {
				log.Warn().Err(err).Msg("获取HTTP头部失败")
			} else {
				for name, values := range headers {
					if len(values) > 0 {
						r.Headers.Set(name, values[0])
					}
				}
			}
		}
		log.Debug().Str("url", r.URL.String()).Msg("请求页面")
	})

	s.collector.OnResponse(func(r *colly.Response) {
		s.response = r
	})
}

// Render 请求URL并解析响应
func (s *StaticRenderer) Render(ctx context.Context, url string) (*models.RenderedPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.response = nil
	if err := s.collector.Visit(url); err != nil {
		return nil, fmt.Errorf("请求页面失败 [%s]: %w", url, err)
	}
	if s.response == nil {
		return nil, fmt.Errorf("请求页面失败 [%s]: 未收到响应", url)
	}

	resp := s.response
	finalURL := resp.Request.URL.String()

	if s.maxBodySize > 0 && len(resp.Body) >= s.maxBodySize {
		log.Warn().Str("url", url).Int("max_body_size", s.maxBodySize).Msg("响应体被截断")
		return nil, fmt.Errorf("%w [%s]: 上限 %d 字节", ErrBodyTruncated, url, s.maxBodySize)
	}

	body := resp.Body
	if encoding := resp.Headers.Get("Content-Encoding"); encoding != "" {
		decompressed, err := decompressResponse(encoding, body)
		if err != nil {
			// HTTP客户端可能已经解压过
			log.Debug().Err(err).Str("url", url).Str("encoding", encoding).Msg("解压响应失败,使用原始内容")
		} else {
			body = decompressed
		}
	}

	page, err := parseStaticPage(url, finalURL, body)
	if err != nil {
		return nil, err
	}
	s.current = finalURL
	return page, nil
}

// parseStaticPage 从HTML中提取标题、可见文本和锚点
func parseStaticPage(url, finalURL string, body []byte) (*models.RenderedPage, error) {
	anchors, err := ParseAnchors(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("解析页面失败 [%s]: %w", url, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("解析页面失败 [%s]: %w", url, err)
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	doc.Find("script, style, noscript, template").Remove()

	return &models.RenderedPage{
		URL:         url,
		FinalURL:    finalURL,
		Title:       title,
		Markup:      string(body),
		VisibleText: visibleText(doc.Find("body").Text()),
		Anchors:     anchors,
		RenderedAt:  time.Now(),
	}, nil
}

// visibleText 去掉空行和每行首尾空白
func visibleText(raw string) string {
	lines := strings.Split(raw, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// CurrentURL 返回最近一次渲染的最终URL
func (s *StaticRenderer) CurrentURL(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == "" {
		return "", fmt.Errorf("尚未加载任何页面")
	}
	return s.current, nil
}

// Close 静态渲染器没有需要释放的资源
func (s *StaticRenderer) Close() error {
	return nil
}

// decompressResponse 根据Content-Encoding头部解压响应体
// 支持 gzip, deflate, br (Brotli) 三种压缩格式
func decompressResponse(contentEncoding string, body []byte) ([]byte, error) {
	var reader io.Reader
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "gzip":
		gz, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip解压失败: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fl := flate.NewReader(bytes.NewReader(body))
		defer fl.Close()
		reader = fl
	case "br":
		reader = brotli.NewReader(bytes.NewReader(body))
	case "", "identity":
		return body, nil
	default:
		log.Warn().Str("encoding", contentEncoding).Msg("未知的Content-Encoding")
		return body, nil
	}

	decompressed, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%s读取失败: %w", contentEncoding, err)
	}
	return decompressed, nil
}
