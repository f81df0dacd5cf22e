package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/spf13/afero"
)

func main() {
	fmt.Println("==============================================")
	fmt.Println("  PageScrape 环境验证")
	fmt.Println("==============================================")
	fmt.Println()

	allOK := true

	fmt.Printf("✅ Go版本: %s\n", runtime.Version())
	fmt.Printf("✅ 操作系统: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	// 浏览器渲染器需要本地Chrome/Chromium,找不到时rod会在首次启动时下载
	if bin, found := launcher.LookPath(); found {
		fmt.Printf("✅ 浏览器: %s\n", bin)
	} else {
		fmt.Println("⚠️  未找到Chrome/Chromium - 首次启动时将自动下载,或使用 --renderer static")
	}

	fmt.Println()
	fmt.Println("检查输出目录...")
	fs := afero.NewOsFs()
	for _, dir := range []string{"scraped_pages", ".pagescrape", "logs"} {
		if err := checkWritable(fs, dir); err != nil {
			fmt.Printf("❌ %s/ 不可写: %v\n", dir, err)
			allOK = false
		} else {
			fmt.Printf("✅ %s/ 可写\n", dir)
		}
	}

	fmt.Println()
	fmt.Println("检查项目结构...")
	requiredDirs := []string{
		"cmd/pagescrape",
		"internal/config",
		"internal/core",
		"internal/crawlers",
		"internal/models",
		"internal/storage",
		"internal/utils",
		"configs",
	}
	for _, dir := range requiredDirs {
		if _, err := os.Stat(dir); err == nil {
			fmt.Printf("✅ %s/\n", dir)
		} else {
			fmt.Printf("❌ %s/ 不存在\n", dir)
			allOK = false
		}
	}

	fmt.Println()
	fmt.Println("==============================================")
	if allOK {
		fmt.Println("✅ 环境验证通过!")
		fmt.Println()
		fmt.Println("下一步:")
		fmt.Println("  1. 运行 'go build ./cmd/pagescrape' 构建项目")
		fmt.Println("  2. 运行 './pagescrape --help' 查看帮助")
		os.Exit(0)
	}
	fmt.Println("❌ 环境验证失败,请解决上述问题。")
	os.Exit(1)
}

// checkWritable 创建目录并写入一个临时文件
func checkWritable(fs afero.Fs, dir string) error {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return err
	}
	probe := filepath.Join(dir, ".write_test")
	if err := afero.WriteFile(fs, probe, []byte("ok"), 0644); err != nil {
		return err
	}
	return fs.Remove(probe)
}
