package crawlers

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrEmptyHref href为空或仅包含空白
var ErrEmptyHref = errors.New("href为空")

// Resolve 将href按标准引用解析规则转换为绝对URL
// 支持协议相对(//host/x)、路径相对(a/b, ../c)和绝对URL
func Resolve(baseURL, href string) (string, error) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", ErrEmptyHref
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("解析基准URL失败 [%s]: %w", baseURL, err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("解析链接失败 [%s]: %w", href, err)
	}

	return base.ResolveReference(ref).String(), nil
}

// DomainOf 返回URL的主机部分(含端口),无法解析时返回空字符串
func DomainOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}

// IsSameDomain 判断URL是否属于目标域名
// 没有主机部分的URL视为同域
func IsSameDomain(rawURL, domain string) bool {
	host := DomainOf(rawURL)
	return host == domain || host == ""
}
