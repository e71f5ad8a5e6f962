package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sakif/photofeed/internal/apperror"
	"github.com/sakif/photofeed/internal/model"
	"github.com/sakif/photofeed/internal/repository"
)

// Compile-time check that *DB implements repository.PostRepository.
var _ repository.PostRepository = (*DB)(nil)

// CreatePost inserts a new post. The ID is a fresh UUID; the timestamp is
// naive UTC taken at insert time, so feed ordering reflects real insertion
// order.
func (db *DB) CreatePost(ctx context.Context, post *model.Post) error {
	post.ID = uuid.NewString()
	post.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO posts (id, user_id, username, caption, url, file_type, file_name, media_file_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.UserID,
		post.Username,
		post.Caption,
		post.URL,
		post.FileType,
		post.FileName,
		post.MediaFileID,
		post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating post: %w", err)
	}

	return nil
}

const postColumns = `id, user_id, username, caption, url, file_type, file_name, media_file_id, created_at`

// GetPostByID retrieves a single post.
func (db *DB) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ?`, id,
	).Scan(
		&p.ID,
		&p.UserID,
		&p.Username,
		&p.Caption,
		&p.URL,
		&p.FileType,
		&p.FileName,
		&p.MediaFileID,
		&p.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}

	return &p, nil
}

// ListFeed returns every post, newest first.
//
// No pagination — the reference behavior is an unbounded feed, which is a
// known scalability limitation, not something to fix quietly here.
func (db *DB) ListFeed(ctx context.Context) ([]model.Post, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing feed: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Username, &p.Caption,
			&p.URL, &p.FileType, &p.FileName, &p.MediaFileID, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}

// DeletePost removes a post row; the ON DELETE CASCADE rules on likes and
// comments remove the dependents inside the same implicit transaction.
// Ownership is NOT checked here — the service layer does that before calling.
func (db *DB) DeletePost(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("post", id)
	}

	return nil
}
