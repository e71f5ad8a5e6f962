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

// Compile-time checks for the interaction repositories.
var (
	_ repository.LikeRepository    = (*DB)(nil)
	_ repository.CommentRepository = (*DB)(nil)
)

// CreateLike inserts a like row for the (post, user) pair.
//
// The UNIQUE (post_id, user_id) constraint is the second line of defense
// behind the service layer's explicit existence check: when two identical
// like requests race, exactly one insert commits and the other lands here in
// the conflict branch.
func (db *DB) CreateLike(ctx context.Context, like *model.Like) error {
	like.ID = uuid.NewString()
	like.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO likes (id, post_id, user_id, created_at)
		 VALUES (?, ?, ?, ?)`,
		like.ID,
		like.PostID,
		like.UserID,
		like.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "likes.post_id") {
			return apperror.ConflictMsg("you already liked this post")
		}
		// FOREIGN KEY failure means the post vanished between the service's
		// existence check and this insert.
		return fmt.Errorf("sqlite: creating like: %w", err)
	}

	return nil
}

// DeleteLike removes the like row for the (post, user) pair.
//
// "No row" is reported as a single not-found kind whether the like is absent
// or the whole post is gone — callers cannot tell the two causes apart from
// this operation alone.
func (db *DB) DeleteLike(ctx context.Context, postID, userID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM likes WHERE post_id = ? AND user_id = ?`,
		postID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting like: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFoundMsg("you haven't liked this post")
	}

	return nil
}

// CountLikes returns the number of likes on a post. There is no existence
// check on the post itself — a nonexistent post simply counts zero.
func (db *DB) CountLikes(ctx context.Context, postID string) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM likes WHERE post_id = ?`, postID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting likes for post %s: %w", postID, err)
	}
	return count, nil
}

// LikeExists reports whether the (post, user) pair has a like row.
func (db *DB) LikeExists(ctx context.Context, postID, userID string) (bool, error) {
	var exists bool
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM likes WHERE post_id = ? AND user_id = ?)`,
		postID, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking like existence: %w", err)
	}
	return exists, nil
}

// CreateComment inserts a comment with a server-assigned ID and timestamp.
// Content goes in exactly as given.
func (db *DB) CreateComment(ctx context.Context, comment *model.Comment) error {
	comment.ID = uuid.NewString()
	comment.CreatedAt = time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, post_id, user_id, username, content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.PostID,
		comment.UserID,
		comment.Username,
		comment.Content,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}

	return nil
}

// GetCommentByID retrieves a single comment (the delete path needs it for
// the author check).
func (db *DB) GetCommentByID(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, post_id, user_id, username, content, created_at
		 FROM comments WHERE id = ?`, id,
	).Scan(
		&c.ID,
		&c.PostID,
		&c.UserID,
		&c.Username,
		&c.Content,
		&c.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}

	return &c, nil
}

// ListCommentsByPost returns a post's comments, newest first. A nonexistent
// post yields an empty list, not an error.
func (db *DB) ListCommentsByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, post_id, user_id, username, content, created_at
		 FROM comments WHERE post_id = ?
		 ORDER BY created_at DESC`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for post %s: %w", postID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(
			&c.ID, &c.PostID, &c.UserID, &c.Username, &c.Content, &c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	return comments, nil
}

// DeleteComment removes a comment by ID. Authorship is checked by the
// service before this is called.
func (db *DB) DeleteComment(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("comment", id)
	}

	return nil
}
