package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/RecoveryAshes/PageScrape/internal/models"
	"github.com/RecoveryAshes/PageScrape/internal/utils"
	"golang.org/x/sync/errgroup"
)

// errQuit 用户输入q/quit
var errQuit = errors.New("用户退出")

// pageVisitor 触发器可以调用的保存操作
type pageVisitor interface {
	VisitCurrent(ctx context.Context) (string, error)
	Visit(ctx context.Context, url string) (string, error)
}

// interactiveSession 交互模式需要的编排器操作
type interactiveSession interface {
	pageVisitor
	Seed(ctx context.Context, startURL string) error
	State() models.SessionState
}

// runInteractive 加载起始页面,然后等待用户触发保存
// in与启动提示共用同一个reader,避免预读的输入丢失
func runInteractive(ctx context.Context, session interactiveSession, startURL string, in io.Reader, out io.Writer) error {
	if err := session.Seed(ctx, startURL); err != nil {
		if session.State() != models.StateAwaitingTrigger {
			return err
		}
		fmt.Fprintf(out, "❌ %v\n", err)
		fmt.Fprintln(out, "可以在浏览器中导航后按回车保存,或者输入其他URL")
	}
	return runTrigger(ctx, session, in, out)
}

// runTrigger 从in逐行读取命令:
//   - 空行: 保存浏览器当前页面
//   - URL: 打开并保存该URL
//   - q/quit: 退出
//
// 保存失败只输出错误,继续等待下一条命令
func runTrigger(ctx context.Context, visitor pageVisitor, in io.Reader, out io.Writer) error {
	g, gctx := errgroup.WithContext(ctx)
	lines := make(chan string)

	// 读取标准输入会一直阻塞,不放入errgroup
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-gctx.Done():
				return
			}
		}
	}()

	g.Go(func() error {
		fmt.Fprintln(out, "按回车保存当前页面,输入URL保存指定页面,输入q退出")
		for {
			fmt.Fprint(out, "> ")
			select {
			case <-gctx.Done():
				return gctx.Err()
			case line, ok := <-lines:
				if !ok {
					return errQuit
				}
				if err := handleCommand(gctx, visitor, strings.TrimSpace(line), out); err != nil {
					return err
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			utils.Warnf("收到中断信号,正在退出...")
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// handleCommand 处理一条命令,只有退出时返回错误
func handleCommand(ctx context.Context, visitor pageVisitor, line string, out io.Writer) error {
	var (
		path string
		err  error
	)

	switch strings.ToLower(line) {
	case "q", "quit", "exit":
		return errQuit
	case "":
		path, err = visitor.VisitCurrent(ctx)
	default:
		target, normErr := models.NormalizeURL(line)
		if normErr != nil {
			fmt.Fprintf(out, "❌ 无效的URL: %v\n", normErr)
			return nil
		}
		path, err = visitor.Visit(ctx, target)
	}

	if err != nil {
		fmt.Fprintf(out, "❌ 保存失败: %v\n", err)
		return nil
	}
	fmt.Fprintf(out, "✅ 已保存: %s\n", path)
	return nil
}
