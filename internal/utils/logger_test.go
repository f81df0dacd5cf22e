package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// newTestLogger 在临时目录初始化日志,控制台输出写入缓冲区
func newTestLogger(t *testing.T, level string) (string, *bytes.Buffer) {
	t.Helper()

	dir := t.TempDir()
	console := &bytes.Buffer{}
	config := DefaultLogConfig()
	config.Level = level
	config.LogDir = dir
	config.Compress = false
	config.Console = console

	if err := InitLogger(config); err != nil {
		t.Fatalf("初始化日志器失败: %v", err)
	}
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })
	return dir, console
}

func readLog(t *testing.T, dir, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("读取日志文件失败: %v", err)
	}
	return string(content)
}

func TestInitLogger(t *testing.T) {
	dir, console := newTestLogger(t, "debug")

	Infof("已保存 %d 个页面", 3)
	Debugf("调试信息: %s", "anchor")

	content := readLog(t, dir, MainLogFile)
	for _, want := range []string{"已保存 3 个页面", "调试信息: anchor", "日志系统初始化完成"} {
		if !strings.Contains(content, want) {
			t.Errorf("主日志缺少 %q", want)
		}
	}
	if !strings.Contains(console.String(), "已保存 3 个页面") {
		t.Error("控制台应输出信息日志")
	}
}

func TestLogLevels(t *testing.T) {
	t.Run("info级别过滤debug", func(t *testing.T) {
		dir, _ := newTestLogger(t, "info")

		Info("信息日志测试")
		Warnf("格式化警告日志: %d", 123)
		Debugf("调试日志不应写入: %v", true)

		content := readLog(t, dir, MainLogFile)
		if !strings.Contains(content, "信息日志测试") || !strings.Contains(content, "格式化警告日志: 123") {
			t.Error("主日志应包含info和warn消息")
		}
		if strings.Contains(content, "调试日志不应写入") {
			t.Error("info级别不应写入debug消息")
		}
	})

	t.Run("无效级别回退到info", func(t *testing.T) {
		newTestLogger(t, "verbose")
		if zerolog.GlobalLevel() != zerolog.InfoLevel {
			t.Errorf("GlobalLevel = %v, want info", zerolog.GlobalLevel())
		}
	})
}

func TestDefaultLogConfig(t *testing.T) {
	config := DefaultLogConfig()

	if config.Level != "info" || config.LogDir != "logs" {
		t.Errorf("默认级别/目录错误: %s %s", config.Level, config.LogDir)
	}
	if config.MaxSize != 10 || config.MaxBackups != 3 || config.MaxAge != 28 {
		t.Errorf("默认轮转参数错误: %+v", config)
	}
	if !config.Compress {
		t.Error("默认应该启用压缩")
	}
	if config.Console != nil {
		t.Error("默认控制台应为nil(使用标准输出)")
	}
}

func TestErrorLogOnlyReceivesErrors(t *testing.T) {
	dir, _ := newTestLogger(t, "info")

	Info("普通信息不应进入错误日志")
	Errorf("保存失败: %s", "磁盘已满")

	content := readLog(t, dir, ErrorLogFile)
	if !strings.Contains(content, "磁盘已满") {
		t.Error("错误日志应包含错误级别消息")
	}
	if strings.Contains(content, "普通信息不应进入错误日志") {
		t.Error("错误日志不应包含信息级别消息")
	}
}

func TestWithSession(t *testing.T) {
	dir, _ := newTestLogger(t, "info")

	WithSession("session-123")
	Info("带会话的日志")

	content := readLog(t, dir, MainLogFile)
	if !strings.Contains(content, `"session":"session-123"`) {
		t.Errorf("日志应包含session字段, 得到: %s", content)
	}
}
