package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"x_monitor/internal/model"
	"x_monitor/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Store backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Load reads every thread state with its replies in stored order.
func (s *SQLite) Load(ctx context.Context) (map[string]model.ThreadState, error) {
	states := make(map[string]model.ThreadState)

	rows, err := s.db.QueryContext(ctx, `SELECT tweet_id, last_checked FROM thread_states`)
	if err != nil {
		return states, fmt.Errorf("query thread states: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var tweetID, checked string
		if err := rows.Scan(&tweetID, &checked); err != nil {
			return states, fmt.Errorf("scan thread state: %w", err)
		}
		st := model.ThreadState{Replies: []model.Reply{}}
		st.LastChecked, _ = time.Parse(timeLayout, checked)
		states[model.StateKey(tweetID)] = st
	}
	if err := rows.Err(); err != nil {
		return states, fmt.Errorf("iterate thread states: %w", err)
	}

	replyRows, err := s.db.QueryContext(ctx,
		`SELECT tweet_id, author_handle, display_name, body_text, time_ago,
		        reply_count, like_count, view_count, is_question
		 FROM replies ORDER BY tweet_id, position`,
	)
	if err != nil {
		return states, fmt.Errorf("query replies: %w", err)
	}
	defer func() { _ = replyRows.Close() }()

	for replyRows.Next() {
		var tweetID string
		var r model.Reply
		var isQuestion int
		err := replyRows.Scan(&tweetID, &r.AuthorHandle, &r.DisplayName, &r.Text, &r.TimeAgo,
			&r.ReplyCount, &r.LikeCount, &r.ViewCount, &isQuestion)
		if err != nil {
			return states, fmt.Errorf("scan reply: %w", err)
		}
		r.IsQuestion = isQuestion == 1

		key := model.StateKey(tweetID)
		st := states[key]
		st.Replies = append(st.Replies, r)
		states[key] = st
	}
	if err := replyRows.Err(); err != nil {
		return states, fmt.Errorf("iterate replies: %w", err)
	}

	reclassify(states)
	return states, nil
}

// Save replaces the persisted state wholesale in one transaction.
func (s *SQLite) Save(ctx context.Context, states map[string]model.ThreadState) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM replies`); err != nil {
		return fmt.Errorf("delete replies: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM thread_states`); err != nil {
		return fmt.Errorf("delete thread states: %w", err)
	}

	for key, st := range states {
		tweetID := strings.TrimPrefix(key, "tweet_")
		checked := st.LastChecked.UTC().Format(timeLayout)

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO thread_states (tweet_id, last_checked) VALUES (?, ?)`,
			tweetID, checked,
		); err != nil {
			return fmt.Errorf("insert thread state: %w", err)
		}

		for i, r := range st.Replies {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO replies (tweet_id, position, author_handle, display_name, body_text,
				                      time_ago, reply_count, like_count, view_count, is_question)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				tweetID, i, r.AuthorHandle, r.DisplayName, r.Text,
				r.TimeAgo, r.ReplyCount, r.LikeCount, r.ViewCount, boolToInt(r.IsQuestion),
			); err != nil {
				return fmt.Errorf("insert reply: %w", err)
			}
		}
	}

	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
