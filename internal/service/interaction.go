package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/photofeed/internal/apperror"
	"github.com/sakif/photofeed/internal/model"
	"github.com/sakif/photofeed/internal/repository"
)

// InteractionService handles likes and comments on posts.
type InteractionService struct {
	likes    repository.LikeRepository
	comments repository.CommentRepository
	posts    repository.PostRepository
	users    repository.UserRepository
	logger   *slog.Logger
}

// NewInteractionService creates an InteractionService with all required
// dependencies.
func NewInteractionService(
	likes repository.LikeRepository,
	comments repository.CommentRepository,
	posts repository.PostRepository,
	users repository.UserRepository,
	logger *slog.Logger,
) *InteractionService {
	return &InteractionService{
		likes:    likes,
		comments: comments,
		posts:    posts,
		users:    users,
		logger:   logger,
	}
}

// Like records that a user likes a post.
//
// TWO LINES OF DEFENSE AGAINST DOUBLE LIKES:
// The existence pre-check catches the common case with a clean conflict.
// When two identical requests race past the check simultaneously, the
// UNIQUE (post_id, user_id) index decides: one insert commits, the other
// comes back as the same conflict. Either way at most one like per pair.
func (s *InteractionService) Like(ctx context.Context, postID, userID string) (*model.Like, error) {
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}

	liked, err := s.likes.LikeExists(ctx, postID, userID)
	if err != nil {
		return nil, fmt.Errorf("service/interaction: checking existing like: %w", err)
	}
	if liked {
		return nil, apperror.ConflictMsg("you already liked this post")
	}

	like := &model.Like{PostID: postID, UserID: userID}
	if err := s.likes.CreateLike(ctx, like); err != nil {
		return nil, err
	}

	s.logger.Info("post liked",
		slog.String("postID", postID),
		slog.String("userID", userID),
	)

	return like, nil
}

// Unlike removes a user's like from a post.
//
// A missing row yields a single not-found error whether the user never
// liked the post or the post itself is gone — the delete can't tell, and
// neither can the caller.
func (s *InteractionService) Unlike(ctx context.Context, postID, userID string) error {
	if err := s.likes.DeleteLike(ctx, postID, userID); err != nil {
		return err
	}

	s.logger.Info("post unliked",
		slog.String("postID", postID),
		slog.String("userID", userID),
	)

	return nil
}

// CountLikes returns the number of likes on a post. A nonexistent post has
// zero likes; there is deliberately no existence check here.
func (s *InteractionService) CountLikes(ctx context.Context, postID string) (int, error) {
	return s.likes.CountLikes(ctx, postID)
}

// HasUserLiked reports whether the user has liked the post.
//
// FAIL-OPEN: a storage error degrades to "not liked" instead of failing the
// request. This powers a heart icon on the feed — a wrong empty heart is a
// cosmetic glitch, a 500 on the whole feed is not.
func (s *InteractionService) HasUserLiked(ctx context.Context, postID, userID string) bool {
	liked, err := s.likes.LikeExists(ctx, postID, userID)
	if err != nil {
		s.logger.Error("like lookup failed, reporting not liked",
			slog.String("postID", postID),
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return false
	}
	return liked
}

// AddComment attaches a comment to a post. The author's username is
// denormalized onto the comment, same as on posts. Content is stored
// exactly as given — only fully blank comments are rejected.
func (s *InteractionService) AddComment(ctx context.Context, postID, userID, content string) (*model.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, apperror.ValidationFailed("content", "comment content is required")
	}

	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID:   postID,
		UserID:   user.ID,
		Username: user.Username,
		Content:  content,
	}

	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("service/interaction: creating comment: %w", err)
	}

	s.logger.Info("comment added",
		slog.String("commentID", comment.ID),
		slog.String("postID", postID),
		slog.String("userID", userID),
	)

	return comment, nil
}

// ListComments returns a post's comments, newest first. A nonexistent post
// yields an empty list.
func (s *InteractionService) ListComments(ctx context.Context, postID string) ([]model.Comment, error) {
	comments, err := s.comments.ListCommentsByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("service/interaction: listing comments: %w", err)
	}
	return comments, nil
}

// DeleteComment removes a comment after checking the caller wrote it.
func (s *InteractionService) DeleteComment(ctx context.Context, commentID, userID string) error {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return err
	}

	if err := ensureOwner(comment.UserID, userID, "you don't have the permission to delete this comment"); err != nil {
		return err
	}

	if err := s.comments.DeleteComment(ctx, commentID); err != nil {
		return err
	}

	s.logger.Info("comment deleted",
		slog.String("commentID", commentID),
		slog.String("userID", userID),
	)

	return nil
}
