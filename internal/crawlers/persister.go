package crawlers

import (
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	"github.com/RecoveryAshes/PageScrape/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// timestampLayout 文件名中的时间格式: YYYY-MM-DD_HH-MM-SS
const timestampLayout = "2006-01-02_15-04-05"

// unsafeFilenameChars 文件名中不允许出现的字符
var unsafeFilenameChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// ArtifactRecorder 保存成功后的记录接口(SQLite清单)
type ArtifactRecorder interface {
	Record(record models.PageRecord) error
}

// Persister 页面内容保存器
type Persister struct {
	fs        afero.Fs
	dir       string
	now       func() time.Time
	recorder  ArtifactRecorder
	sessionID string
}

// PersisterOption 保存器选项
type PersisterOption func(*Persister)

// WithClock 指定时间源
func WithClock(now func() time.Time) PersisterOption {
	return func(p *Persister) {
		p.now = now
	}
}

// WithRecorder 保存成功后写入清单
func WithRecorder(recorder ArtifactRecorder, sessionID string) PersisterOption {
	return func(p *Persister) {
		p.recorder = recorder
		p.sessionID = sessionID
	}
}

// NewPersister 创建保存器
func NewPersister(fs afero.Fs, dir string, opts ...PersisterOption) *Persister {
	p := &Persister{
		fs:  fs,
		dir: dir,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Dir 返回输出目录
func (p *Persister) Dir() string {
	return p.dir
}

// SanitizeFilename 把URL中不能出现在文件名里的字符替换为下划线
func SanitizeFilename(rawURL string) string {
	return unsafeFilenameChars.ReplaceAllString(rawURL, "_")
}

// Filename 返回保存文件名(不含目录)
// 同一秒内保存同一URL会得到相同文件名,后写入的覆盖先写入的
func Filename(rawURL string, at time.Time, fullMarkup bool) string {
	name := SanitizeFilename(rawURL) + "_" + at.Format(timestampLayout)
	if fullMarkup {
		return name + "_full.html"
	}
	return name + ".txt"
}

// Persist 保存页面内容,返回文件路径
func (p *Persister) Persist(url, content string, fullMarkup bool) (string, error) {
	if err := p.fs.MkdirAll(p.dir, 0755); err != nil {
		return "", fmt.Errorf("创建输出目录失败 [%s]: %w", p.dir, err)
	}

	savedAt := p.now()
	path := filepath.Join(p.dir, Filename(url, savedAt, fullMarkup))

	if err := afero.WriteFile(p.fs, path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("写入文件失败 [%s]: %w", path, err)
	}

	if p.recorder != nil {
		record := models.PageRecord{
			SessionID: p.sessionID,
			URL:       url,
			FilePath:  path,
			Mode:      models.ModeFor(fullMarkup),
			Size:      int64(len(content)),
			SavedAt:   savedAt,
		}
		if err := p.recorder.Record(record); err != nil {
			log.Warn().Err(err).Str("url", url).Str("path", path).Msg("写入清单失败")
		}
	}

	return path, nil
}
