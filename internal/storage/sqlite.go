package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"tg_scanner/internal/model"
	"tg_scanner/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database. It also stores the
// post ID counter, so it can serve as a postid.Backend.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(ctx context.Context, dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Append inserts post at the end of the collection for dayKey.
func (s *SQLite) Append(ctx context.Context, dayKey string, post model.Post) error {
	keywords, err := json.Marshal(post.MatchedKeywords)
	if err != nil {
		return fmt.Errorf("encode keywords: %w", err)
	}
	var link sql.NullString
	if post.Link != nil {
		link = sql.NullString{String: *post.Link, Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO posts (day_key, post_id, date, text, source, group_name, matched_keywords, link, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		dayKey, post.ID, post.Date, post.Text, post.Source, post.GroupName, string(keywords), link,
		time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// List returns the posts of dayKey in insertion order.
func (s *SQLite) List(ctx context.Context, dayKey string) ([]model.Post, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT post_id, date, text, source, group_name, matched_keywords, link
		 FROM posts WHERE day_key = ? ORDER BY seq`, dayKey,
	)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// Exists reports whether any post was stored for dayKey.
func (s *SQLite) Exists(ctx context.Context, dayKey string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE day_key = ?`, dayKey,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count posts: %w", err)
	}
	return count > 0, nil
}

// LoadCounter returns the persisted post ID counter, or 0 if unset.
func (s *SQLite) LoadCounter(ctx context.Context) (int64, error) {
	var last int64
	err := s.db.QueryRowContext(ctx, `SELECT last_id FROM post_counter WHERE id = 1`).Scan(&last)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load counter: %w", err)
	}
	return last, nil
}

// SaveCounter overwrites the persisted post ID counter.
func (s *SQLite) SaveCounter(ctx context.Context, last int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO post_counter (id, last_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET last_id = excluded.last_id`,
		last,
	)
	if err != nil {
		return fmt.Errorf("save counter: %w", err)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanPost(row scannable) (model.Post, error) {
	var p model.Post
	var keywords string
	var link sql.NullString
	err := row.Scan(&p.ID, &p.Date, &p.Text, &p.Source, &p.GroupName, &keywords, &link)
	if err != nil {
		return p, fmt.Errorf("scan post: %w", err)
	}
	if err := json.Unmarshal([]byte(keywords), &p.MatchedKeywords); err != nil {
		return p, fmt.Errorf("decode keywords: %w", err)
	}
	if link.Valid {
		v := link.String
		p.Link = &v
	}
	return p, nil
}
