package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/RecoveryAshes/PageScrape/internal/crawlers"
	"github.com/RecoveryAshes/PageScrape/internal/models"
)

func TestHeaderManager_Priority(t *testing.T) {
	hm, err := NewHeaderManager(
		map[string]string{"user-agent": "ConfigBot/1.0", "x-from-config": "c"},
		[]string{"User-Agent: CliBot/2.0", "Authorization: Bearer secret-token"},
	)
	if err != nil {
		t.Fatalf("NewHeaderManager() error = %v", err)
	}

	headers, err := hm.GetHeaders()
	if err != nil {
		t.Fatalf("GetHeaders() error = %v", err)
	}

	if headers.Get("User-Agent") != "CliBot/2.0" {
		t.Errorf("命令行应覆盖配置文件, User-Agent = %q", headers.Get("User-Agent"))
	}
	if headers.Get("X-From-Config") != "c" {
		t.Errorf("配置文件头部丢失: %v", headers)
	}
	if headers.Get("Accept-Language") == "" {
		t.Error("默认头部丢失")
	}
	if hm.UserAgent() != "CliBot/2.0" {
		t.Errorf("UserAgent() = %q", hm.UserAgent())
	}

	safe := hm.GetSafeHeaders()
	if safe["Authorization"] != "Bearer ***" {
		t.Errorf("Authorization应脱敏, 得到 %q", safe["Authorization"])
	}
}

func TestHeaderManager_Defaults(t *testing.T) {
	hm, err := NewHeaderManager(nil, nil)
	if err != nil {
		t.Fatalf("NewHeaderManager() error = %v", err)
	}
	if hm.UserAgent() != crawlers.DefaultUserAgent {
		t.Errorf("默认User-Agent = %q", hm.UserAgent())
	}
}

func TestHeaderManager_Invalid(t *testing.T) {
	t.Run("命令行格式错误", func(t *testing.T) {
		if _, err := NewHeaderManager(nil, []string{"no colon"}); err == nil {
			t.Error("缺少冒号应返回错误")
		}
	})

	t.Run("配置文件包含禁止头部", func(t *testing.T) {
		hm, err := NewHeaderManager(map[string]string{"host": "evil.com"}, nil)
		if err != nil {
			t.Fatalf("NewHeaderManager() error = %v", err)
		}
		if _, err := hm.GetHeaders(); err == nil {
			t.Error("Host头部应验证失败")
		}
	})

	t.Run("命令行值含控制字符", func(t *testing.T) {
		hm, err := NewHeaderManager(nil, []string{"X-Bad: a\tb\x01"})
		if err != nil {
			t.Fatalf("NewHeaderManager() error = %v", err)
		}
		if _, err := hm.GetHeaders(); err == nil {
			t.Error("控制字符应验证失败")
		}
	})
}

func TestHeaderManager_ValidateOrder(t *testing.T) {
	hm, err := NewHeaderManager(map[string]string{"Connection": "close"}, []string{"Host: evil.com"})
	if err != nil {
		t.Fatalf("NewHeaderManager() error = %v", err)
	}

	// 配置文件和命令行都有错误时,总是先报告配置文件
	for i := 0; i < 20; i++ {
		err := hm.Validate()
		var verr *models.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("期望ValidationError, 得到 %v", err)
		}
		if verr.HeaderName != "Connection" || !strings.Contains(err.Error(), "配置文件") {
			t.Fatalf("第%d次验证应先报告配置文件头部, 得到 %v", i+1, err)
		}
	}
}
