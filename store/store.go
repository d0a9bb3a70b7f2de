// Package store 把故事保存在本地 SQLite 数据库中，供命令行按 id 取出导出。
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/ByLCY/chronicle/story"
	"github.com/ByLCY/chronicle/store/migrations"
)

var (
	// ErrNotFound 表示指定 id 的故事不存在。
	ErrNotFound = errors.New("story not found")
	// ErrExists 表示 Create 的 id 已被占用。
	ErrExists = errors.New("story already exists")
)

// Summary 是故事列表中的一行。
type Summary struct {
	ID         string
	Title      string
	Genre      string
	Mood       string
	Pages      int
	CreatedAt  time.Time
	IsFavorite bool
}

// Store 持有一个 SQLite 连接池，可并发使用。
type Store struct {
	db *sql.DB
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Open 打开（必要时创建）path 处的数据库并执行迁移。
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("数据库路径不能为空")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}
	if err := applyMigrations(context.Background(), db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}
	return &Store{db: db}, nil
}

// Close 关闭数据库。
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put 新增或覆盖一个故事。id 为空时分配一个 UUIDv7，CreatedAt 为零时记为当前时间；
// 两者都会回写到 st 上。返回故事 id。
func (s *Store) Put(ctx context.Context, st *story.Story) (string, error) {
	return s.write(ctx, st, true)
}

// Create 与 Put 相同，但 id 已存在时返回 ErrExists。
func (s *Store) Create(ctx context.Context, st *story.Story) (string, error) {
	return s.write(ctx, st, false)
}

func (s *Store) write(ctx context.Context, st *story.Story, replace bool) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := st.Validate(); err != nil {
		return "", err
	}
	if strings.TrimSpace(st.ID) == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("生成故事 id 失败: %w", err)
		}
		st.ID = id.String()
	}
	now := time.Now()
	if st.CreatedAt == 0 {
		st.CreatedAt = toMillis(now)
	}

	cast, err := json.Marshal(nonNil(st.Cast))
	if err != nil {
		return "", fmt.Errorf("编码角色失败: %w", err)
	}
	pages, err := json.Marshal(nonNil(st.Pages))
	if err != nil {
		return "", fmt.Errorf("编码页面失败: %w", err)
	}

	query := `INSERT INTO stories (
	   id, title, genre, mood, style, plot,
	   cast_json, pages_json, page_count,
	   created_at, updated_at, is_favorite
	 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if replace {
		query += `
	 ON CONFLICT(id) DO UPDATE SET
	   title = excluded.title,
	   genre = excluded.genre,
	   mood = excluded.mood,
	   style = excluded.style,
	   plot = excluded.plot,
	   cast_json = excluded.cast_json,
	   pages_json = excluded.pages_json,
	   page_count = excluded.page_count,
	   created_at = excluded.created_at,
	   updated_at = excluded.updated_at,
	   is_favorite = excluded.is_favorite`
	}
	_, err = s.db.ExecContext(ctx, query,
		st.ID, st.Title, st.Genre, st.Mood, st.Style, st.Plot,
		string(cast), string(pages), len(st.Pages),
		st.CreatedAt, toMillis(now), st.IsFavorite,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%w: %s", ErrExists, st.ID)
		}
		return "", fmt.Errorf("保存故事失败: %w", err)
	}
	return st.ID, nil
}

// Get 按 id 读取完整的故事。
func (s *Store) Get(ctx context.Context, id string) (*story.Story, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("故事 id 不能为空")
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, genre, mood, style, plot, cast_json, pages_json, created_at, is_favorite
		   FROM stories
		  WHERE id = ?`, id)

	var (
		st          story.Story
		cast, pages string
	)
	err := row.Scan(&st.ID, &st.Title, &st.Genre, &st.Mood, &st.Style, &st.Plot, &cast, &pages, &st.CreatedAt, &st.IsFavorite)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("读取故事失败: %w", err)
	}
	if err := json.Unmarshal([]byte(cast), &st.Cast); err != nil {
		return nil, fmt.Errorf("解码故事 %s 的角色失败: %w", id, err)
	}
	if err := json.Unmarshal([]byte(pages), &st.Pages); err != nil {
		return nil, fmt.Errorf("解码故事 %s 的页面失败: %w", id, err)
	}
	return &st, nil
}

// List 按创建时间从新到旧列出全部故事。
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, genre, mood, page_count, created_at, is_favorite
		   FROM stories
		  ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("列出故事失败: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			sum     Summary
			created int64
		)
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.Genre, &sum.Mood, &sum.Pages, &created, &sum.IsFavorite); err != nil {
			return nil, fmt.Errorf("读取故事列表失败: %w", err)
		}
		sum.CreatedAt = fromMillis(created)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("读取故事列表失败: %w", err)
	}
	return out, nil
}

// Delete 删除一个故事。
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.exec(ctx, id, `DELETE FROM stories WHERE id = ?`, id)
}

// SetFavorite 设置或取消收藏。
func (s *Store) SetFavorite(ctx context.Context, id string, favorite bool) error {
	return s.exec(ctx, id, `UPDATE stories SET is_favorite = ?, updated_at = ? WHERE id = ?`,
		favorite, toMillis(time.Now()), id)
}

// exec 执行只影响一行的语句，没有匹配的行时返回 ErrNotFound。
func (s *Store) exec(ctx context.Context, id, query string, args ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("更新故事 %s 失败: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新故事 %s 失败: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") && strings.Contains(msg, "stories.id")
}
