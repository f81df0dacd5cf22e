package utils

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/RecoveryAshes/PageScrape/internal/models"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
)

// Reporter 会话报告生成器
type Reporter struct {
	fs       afero.Fs
	stateDir string
}

// NewReporter 创建报告生成器
func NewReporter(fs afero.Fs, stateDir string) *Reporter {
	return &Reporter{
		fs:       fs,
		stateDir: stateDir,
	}
}

// GenerateReport 生成会话报告,返回报告文件路径
func (r *Reporter) GenerateReport(session *models.CrawlSession, visitedURLs []string, outputDir string) (string, error) {
	reportsDir := filepath.Join(r.stateDir, "reports")
	if err := r.fs.MkdirAll(reportsDir, 0755); err != nil {
		return "", fmt.Errorf("创建报告目录失败: %w", err)
	}

	report := models.SessionReport{
		Session:     session,
		VisitedURLs: visitedURLs,
		OutputDir:   outputDir,
		GeneratedAt: time.Now(),
	}

	data, err := report.ToJSON()
	if err != nil {
		return "", fmt.Errorf("序列化JSON失败: %w", err)
	}

	path := filepath.Join(reportsDir, fmt.Sprintf("session_%s.json", session.ID))
	if err := afero.WriteFile(r.fs, path, data, 0644); err != nil {
		return "", fmt.Errorf("写入报告文件失败: %w", err)
	}

	Infof("✅ 报告已生成: %s", path)
	return path, nil
}

// NewProgressBar 创建进度条
// out为nil时不显示
func NewProgressBar(max int, description string, out io.Writer) *progressbar.ProgressBar {
	if out == nil {
		out = io.Discard
	}
	return progressbar.NewOptions(max,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(out) }),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
