package models

import (
	"errors"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"有效的HTTP URL", "http://example.com", false},
		{"有效的HTTPS URL", "https://example.com", false},
		{"带路径的URL", "https://example.com/path/to/resource", false},
		{"带端口的URL", "http://localhost:8080/", false},
		{"无效的协议", "ftp://example.com", true},
		{"无效的URL", "not a url", true},
		{"空URL", "", true},
		{"仅空白", "   ", true},
		{"无协议", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL_EmptyIsNoStartURL(t *testing.T) {
	if err := ValidateURL(""); !errors.Is(err, ErrNoStartURL) {
		t.Errorf("空URL应返回ErrNoStartURL, 得到: %v", err)
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"带协议", "https://example.com/a", "https://example.com/a", false},
		{"补全https", "example.com", "https://example.com", false},
		{"补全https带路径", "same.com/docs", "https://same.com/docs", false},
		{"去除空白", "  http://example.com  ", "http://example.com", false},
		{"空字符串", "   ", "", true},
		{"不支持的协议", "file:///etc/passwd", "", true},
		{"ftp协议", "ftp://files.com", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeURL() = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := NormalizeURL(""); !errors.Is(err, ErrNoStartURL) {
		t.Errorf("空URL应返回ErrNoStartURL, 得到 %v", err)
	}
}

func TestNewCrawlSession(t *testing.T) {
	session, err := NewCrawlSession("https://same.com:8443/index.html", ModeAutomatic, true)
	if err != nil {
		t.Fatalf("NewCrawlSession() error = %v", err)
	}

	if session.ID == "" {
		t.Error("会话ID不应为空")
	}
	if session.Domain != "same.com:8443" {
		t.Errorf("Domain = %v, want %v", session.Domain, "same.com:8443")
	}
	if session.State != StateIdle {
		t.Errorf("State = %v, want %v", session.State, StateIdle)
	}
	if !session.FullMarkup {
		t.Error("FullMarkup应为true")
	}

	if _, err := NewCrawlSession("", ModeInteractive, false); !errors.Is(err, ErrNoStartURL) {
		t.Errorf("空起始URL应返回ErrNoStartURL, 得到: %v", err)
	}
}

func TestCrawlSession_Finish(t *testing.T) {
	session, err := NewCrawlSession("https://example.com", ModeAutomatic, false)
	if err != nil {
		t.Fatalf("NewCrawlSession() error = %v", err)
	}

	session.Finish()
	if session.FinishedAt == nil {
		t.Fatal("FinishedAt不应为空")
	}
	if session.Stats.Duration < 0 {
		t.Errorf("耗时不应为负数: %f", session.Stats.Duration)
	}
}

func TestCrawlSession_JSON(t *testing.T) {
	session, err := NewCrawlSession("https://example.com", ModeAutomatic, false)
	if err != nil {
		t.Fatalf("NewCrawlSession() error = %v", err)
	}
	session.Stats.Visited = 3
	session.Failures = append(session.Failures, FailedVisit{URL: "https://example.com/x", Stage: "render", Error: "timeout"})

	data, err := session.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	var decoded CrawlSession
	if err := decoded.FromJSON(data); err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}
	if decoded.ID != session.ID || decoded.Stats.Visited != 3 || len(decoded.Failures) != 1 {
		t.Errorf("反序列化结果不一致: %+v", decoded)
	}
}

func TestAnchor_GetHref(t *testing.T) {
	t.Run("带href", func(t *testing.T) {
		href, ok := NewAnchor("/a").GetHref()
		if !ok || href != "/a" {
			t.Errorf("GetHref() = (%q, %v), want (\"/a\", true)", href, ok)
		}
	})

	t.Run("无href属性", func(t *testing.T) {
		if _, ok := (Anchor{}).GetHref(); ok {
			t.Error("无href属性时ok应为false")
		}
	})

	t.Run("空href属性", func(t *testing.T) {
		href, ok := NewAnchor("").GetHref()
		if !ok || href != "" {
			t.Errorf("空href应返回(\"\", true), 得到 (%q, %v)", href, ok)
		}
	})
}

func TestRenderedPage_BaseURLAndContent(t *testing.T) {
	page := &RenderedPage{URL: "https://a.com/x", Markup: "<html></html>", VisibleText: "hello"}
	if page.BaseURL() != "https://a.com/x" {
		t.Errorf("没有FinalURL时应回退到URL, 得到 %s", page.BaseURL())
	}

	page.FinalURL = "https://a.com/y"
	if page.BaseURL() != "https://a.com/y" {
		t.Errorf("BaseURL应为FinalURL, 得到 %s", page.BaseURL())
	}

	if page.Content(true) != "<html></html>" {
		t.Error("完整模式应返回HTML")
	}
	if page.Content(false) != "hello" {
		t.Error("文本模式应返回可见文本")
	}
	if ModeFor(true) != ContentMarkup || ModeFor(false) != ContentText {
		t.Error("ModeFor映射错误")
	}
}

func TestCliHeaders_Parse(t *testing.T) {
	t.Run("正常解析并trim", func(t *testing.T) {
		headers, err := CliHeaders{"  User-Agent  :  Bot/1.0 ", "X-Token: a:b"}.Parse()
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		if headers.Get("User-Agent") != "Bot/1.0" {
			t.Errorf("User-Agent = %q", headers.Get("User-Agent"))
		}
		if headers.Get("X-Token") != "a:b" {
			t.Errorf("值中的冒号应保留, 得到 %q", headers.Get("X-Token"))
		}
	})

	t.Run("缺少冒号", func(t *testing.T) {
		if _, err := (CliHeaders{"NoColon"}).Parse(); err == nil {
			t.Error("缺少冒号应返回错误")
		}
	})

	t.Run("空名称", func(t *testing.T) {
		if _, err := (CliHeaders{": value"}).Parse(); err == nil {
			t.Error("空名称应返回错误")
		}
	})

	t.Run("nil列表", func(t *testing.T) {
		var ch CliHeaders
		headers, err := ch.Parse()
		if err != nil || len(headers) != 0 {
			t.Errorf("nil列表应返回空头部, 得到 %v, %v", headers, err)
		}
	})
}
