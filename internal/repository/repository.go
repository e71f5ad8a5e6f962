// Package repository defines the storage interfaces the service layer
// programs against. The sqlite subpackage is the concrete implementation;
// tests substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/sakif/photofeed/internal/model"
)

// UserRepository stores account records.
//
// CreateUser returns a conflict error when the username or email is already
// taken. DeleteUser cascades: the user's posts go, and through them every
// like and comment hanging off those posts, plus the user's own likes and
// comments on other people's posts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByGitHubID(ctx context.Context, githubID int64) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id string) error
}

// PostRepository stores posts. DeletePost cascades the post's likes and
// comments in the same transaction; it does NOT touch the remote media
// asset — that is the service layer's job, and deliberately not
// transactional with this.
type PostRepository interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPostByID(ctx context.Context, id string) (*model.Post, error)
	ListFeed(ctx context.Context) ([]model.Post, error)
	DeletePost(ctx context.Context, id string) error
}

// LikeRepository stores the per-(post,user) like rows.
//
// CreateLike returns a conflict error when the pair already exists — the
// UNIQUE index is what resolves duplicate concurrent likes, so the mapping
// from constraint violation to conflict is part of the contract, not an
// accident.
type LikeRepository interface {
	CreateLike(ctx context.Context, like *model.Like) error
	DeleteLike(ctx context.Context, postID, userID string) error
	CountLikes(ctx context.Context, postID string) (int, error)
	LikeExists(ctx context.Context, postID, userID string) (bool, error)
}

// CommentRepository stores comments, newest first on listing.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetCommentByID(ctx context.Context, id string) (*model.Comment, error)
	ListCommentsByPost(ctx context.Context, postID string) ([]model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}
