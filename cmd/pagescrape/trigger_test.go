package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/RecoveryAshes/PageScrape/internal/models"
)

type fakeVisitor struct {
	mu      sync.Mutex
	current int
	visited []string
	failURL string

	seeded   string
	seedErr  error
	seedKeep bool // 加载失败后是否仍进入等待触发状态
	state    models.SessionState
}

func (f *fakeVisitor) Seed(ctx context.Context, startURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeded = startURL
	if f.seedErr == nil || f.seedKeep {
		f.state = models.StateAwaitingTrigger
	}
	return f.seedErr
}

func (f *fakeVisitor) State() models.SessionState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeVisitor) VisitCurrent(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current++
	return "out/current.txt", nil
}

func (f *fakeVisitor) Visit(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if url == f.failURL {
		return "", errors.New("net::ERR_NAME_NOT_RESOLVED")
	}
	f.visited = append(f.visited, url)
	return "out/" + url + ".txt", nil
}

func TestRunTrigger(t *testing.T) {
	visitor := &fakeVisitor{failURL: "https://bad.example"}
	in := strings.NewReader("\nexample.com/a\nhttps://bad.example\nftp://x\n\nq\n\n")
	var out bytes.Buffer

	if err := runTrigger(context.Background(), visitor, in, &out); err != nil {
		t.Fatalf("runTrigger() error = %v", err)
	}

	if visitor.current != 2 {
		t.Errorf("VisitCurrent调用次数 = %d, want 2", visitor.current)
	}
	if len(visitor.visited) != 1 || visitor.visited[0] != "https://example.com/a" {
		t.Errorf("visited = %v", visitor.visited)
	}

	output := out.String()
	if !strings.Contains(output, "✅ 已保存: out/current.txt") {
		t.Errorf("输出缺少保存结果: %s", output)
	}
	if !strings.Contains(output, "❌ 保存失败") {
		t.Errorf("输出缺少失败信息: %s", output)
	}
	if !strings.Contains(output, "❌ 无效的URL") {
		t.Errorf("输出缺少无效URL信息: %s", output)
	}
}

func TestRunTrigger_EOF(t *testing.T) {
	visitor := &fakeVisitor{}
	var out bytes.Buffer

	if err := runTrigger(context.Background(), visitor, strings.NewReader("\n"), &out); err != nil {
		t.Fatalf("EOF应正常结束: %v", err)
	}
	if visitor.current != 1 {
		t.Errorf("VisitCurrent调用次数 = %d, want 1", visitor.current)
	}
}

func TestRunTrigger_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// 一直阻塞的输入
	reader, writer := io.Pipe()
	defer writer.Close()

	if err := runTrigger(ctx, &fakeVisitor{}, reader, &bytes.Buffer{}); err != nil {
		t.Errorf("取消时应正常结束: %v", err)
	}
}

func TestInteractive_PromptAndTriggerShareInput(t *testing.T) {
	// 管道输入时起始URL和触发命令一次性到达
	in := bufio.NewReader(strings.NewReader("same.com/\n\nsame.com/a\nq\n"))
	var out bytes.Buffer

	startURL, err := resolveStartURL(in, &out)
	if err != nil {
		t.Fatalf("resolveStartURL() error = %v", err)
	}
	if startURL != "https://same.com/" {
		t.Fatalf("startURL = %q", startURL)
	}

	visitor := &fakeVisitor{}
	if err := runInteractive(context.Background(), visitor, startURL, in, &out); err != nil {
		t.Fatalf("runInteractive() error = %v", err)
	}

	if visitor.seeded != "https://same.com/" {
		t.Errorf("seeded = %q", visitor.seeded)
	}
	if visitor.current != 1 {
		t.Errorf("VisitCurrent调用次数 = %d, want 1", visitor.current)
	}
	if len(visitor.visited) != 1 || visitor.visited[0] != "https://same.com/a" {
		t.Errorf("visited = %v", visitor.visited)
	}
}

func TestRunInteractive_SeedFailure(t *testing.T) {
	t.Run("加载失败后继续等待触发", func(t *testing.T) {
		visitor := &fakeVisitor{seedErr: errors.New("加载起始页面失败: timeout"), seedKeep: true}
		var out bytes.Buffer

		if err := runInteractive(context.Background(), visitor, "https://same.com/", strings.NewReader("\nq\n"), &out); err != nil {
			t.Fatalf("runInteractive() error = %v", err)
		}
		if visitor.current != 1 {
			t.Errorf("VisitCurrent调用次数 = %d, want 1", visitor.current)
		}
		if !strings.Contains(out.String(), "加载起始页面失败") {
			t.Errorf("应输出加载失败信息: %s", out.String())
		}
	})

	t.Run("会话不可用时返回错误", func(t *testing.T) {
		visitor := &fakeVisitor{seedErr: errors.New("URL必须是HTTP或HTTPS协议")}

		if err := runInteractive(context.Background(), visitor, "ftp://same.com/", strings.NewReader("\nq\n"), io.Discard); err == nil {
			t.Fatal("应返回错误")
		}
		if visitor.current != 0 {
			t.Errorf("不应触发保存, VisitCurrent调用次数 = %d", visitor.current)
		}
	})
}
