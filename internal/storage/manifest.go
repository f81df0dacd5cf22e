// Package storage 记录每次保存的页面文件,便于会话结束后查询和对账
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/RecoveryAshes/PageScrape/internal/models"
	_ "modernc.org/sqlite" // SQLite驱动
)

// ManifestFile 清单数据库文件名
const ManifestFile = "manifest.db"

const schema = `
CREATE TABLE IF NOT EXISTS artifacts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	url TEXT NOT NULL,
	file_path TEXT NOT NULL,
	mode TEXT NOT NULL,
	size INTEGER NOT NULL,
	saved_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_artifacts_session ON artifacts(session_id);
CREATE INDEX IF NOT EXISTS idx_artifacts_url ON artifacts(url);
`

// Manifest 基于SQLite的页面保存清单
type Manifest struct {
	db   *sql.DB
	path string
}

// OpenManifest 打开或创建 <stateDir>/manifest.db
func OpenManifest(stateDir string) (*Manifest, error) {
	if err := os.MkdirAll(stateDir, 0750); err != nil {
		return nil, fmt.Errorf("创建状态目录失败: %w", err)
	}

	path := filepath.Join(stateDir, ManifestFile)
	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("打开清单数据库失败: %w", err)
	}

	// SQLite只支持单个写入者
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("启用WAL失败: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("创建清单表失败: %w", err)
	}

	return &Manifest{db: db, path: path}, nil
}

// Path 返回数据库文件路径
func (m *Manifest) Path() string {
	return m.path
}

// Record 写入一条保存记录
func (m *Manifest) Record(record models.PageRecord) error {
	_, err := m.db.ExecContext(context.Background(),
		`INSERT INTO artifacts (session_id, url, file_path, mode, size, saved_at) VALUES (?, ?, ?, ?, ?, ?)`,
		record.SessionID,
		record.URL,
		record.FilePath,
		string(record.Mode),
		record.Size,
		record.SavedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("写入清单失败 [%s]: %w", record.URL, err)
	}
	return nil
}

// ListBySession 按保存顺序返回某个会话的全部记录
func (m *Manifest) ListBySession(ctx context.Context, sessionID string) ([]models.PageRecord, error) {
	rows, err := m.db.QueryContext(ctx,
		`SELECT session_id, url, file_path, mode, size, saved_at FROM artifacts WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("查询清单失败: %w", err)
	}
	defer rows.Close()

	var records []models.PageRecord
	for rows.Next() {
		var (
			record  models.PageRecord
			mode    string
			savedAt int64
		)
		if err := rows.Scan(&record.SessionID, &record.URL, &record.FilePath, &mode, &record.Size, &savedAt); err != nil {
			return nil, fmt.Errorf("读取清单记录失败: %w", err)
		}
		record.Mode = models.ContentMode(mode)
		record.SavedAt = time.Unix(0, savedAt)
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历清单记录失败: %w", err)
	}

	return records, nil
}

// Count 返回记录总数
func (m *Manifest) Count(ctx context.Context) (int, error) {
	var count int
	if err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM artifacts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("统计清单失败: %w", err)
	}
	return count, nil
}

// Close 关闭数据库连接
func (m *Manifest) Close() error {
	return m.db.Close()
}
