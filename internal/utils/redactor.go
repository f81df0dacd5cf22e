package utils

import (
	"net/http"
	"strings"
)

// sensitiveKeywords 名称包含这些关键字的头部在日志中脱敏
var sensitiveKeywords = []string{"authorization", "cookie", "token", "key", "secret", "password", "credential"}

// IsSensitiveHeader 判断头部是否敏感
func IsSensitiveHeader(name string) bool {
	lower := strings.ToLower(name)
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// RedactHeaders 返回用于日志输出的头部副本,敏感值已脱敏
func RedactHeaders(headers http.Header) map[string]string {
	result := make(map[string]string, len(headers))
	for name, values := range headers {
		if len(values) == 0 {
			continue
		}
		value := values[0]
		if IsSensitiveHeader(name) {
			switch {
			case strings.HasPrefix(value, "Bearer "):
				value = "Bearer ***"
			case len(value) > 8:
				value = value[:4] + "***" + value[len(value)-4:]
			default:
				value = "***"
			}
		}
		result[name] = value
	}
	return result
}
