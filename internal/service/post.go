package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/photofeed/internal/apperror"
	"github.com/sakif/photofeed/internal/media"
	"github.com/sakif/photofeed/internal/model"
	"github.com/sakif/photofeed/internal/repository"
)

// MaxCaptionLength bounds post captions.
const MaxCaptionLength = 2200

// MediaStore is the slice of the image host client the post service needs.
// media.Client satisfies it; tests inject a mock to simulate host failures
// without HTTP.
type MediaStore interface {
	Upload(ctx context.Context, fileName string, data []byte) (*media.Asset, error)
	Delete(ctx context.Context, fileID string) error
}

// PostService handles the post lifecycle: upload, feed, delete.
type PostService struct {
	posts  repository.PostRepository
	users  repository.UserRepository
	media  MediaStore
	logger *slog.Logger
}

// NewPostService creates a PostService with all required dependencies.
func NewPostService(
	posts repository.PostRepository,
	users repository.UserRepository,
	mediaStore MediaStore,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		posts:  posts,
		users:  users,
		media:  mediaStore,
		logger: logger,
	}
}

// mediaTypeFromContentType classifies the upload by its Content-Type prefix.
// Anything that is neither image/* nor video/* is rejected.
func mediaTypeFromContentType(contentType string) (string, error) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return model.MediaImage, nil
	case strings.HasPrefix(contentType, "video/"):
		return model.MediaVideo, nil
	default:
		return "", apperror.ValidationFailed("file", "only image and video files are allowed")
	}
}

// Create uploads the file to the image host and then records the post.
//
// ORDER MATTERS: remote upload first, local insert second. If the upload
// fails there is nothing to clean up. If the local insert fails after a
// successful upload we are left with an orphaned remote asset — logged, and
// tolerated, since an orphaned file is harmless while a post without a file
// is a broken feed entry.
func (s *PostService) Create(ctx context.Context, userID, caption, fileName, contentType string, data []byte) (*model.Post, error) {
	caption = strings.TrimSpace(caption)
	if len(caption) > MaxCaptionLength {
		return nil, apperror.ValidationFailed("caption",
			fmt.Sprintf("caption must be %d characters or less", MaxCaptionLength))
	}
	if fileName == "" {
		return nil, apperror.ValidationFailed("file", "a file is required")
	}
	if len(data) == 0 {
		return nil, apperror.ValidationFailed("file", "the uploaded file is empty")
	}

	fileType, err := mediaTypeFromContentType(contentType)
	if err != nil {
		return nil, err
	}

	// The username is denormalized onto the post at creation time.
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	asset, err := s.media.Upload(ctx, fileName, data)
	if err != nil {
		s.logger.Error("media upload failed",
			slog.String("userID", userID),
			slog.String("fileName", fileName),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Upstream("image host", err)
	}

	post := &model.Post{
		UserID:      user.ID,
		Username:    user.Username,
		Caption:     caption,
		URL:         asset.URL,
		FileType:    fileType,
		FileName:    asset.Name,
		MediaFileID: asset.FileID,
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		s.logger.Error("post insert failed after successful upload, remote asset orphaned",
			slog.String("userID", userID),
			slog.String("mediaFileID", asset.FileID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/post: creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("postID", post.ID),
		slog.String("userID", user.ID),
		slog.String("fileType", post.FileType),
	)

	return post, nil
}

// GetByID retrieves a single post.
func (s *PostService) GetByID(ctx context.Context, id string) (*model.Post, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "post ID is required")
	}
	return s.posts.GetPostByID(ctx, id)
}

// Feed returns every post, newest first.
func (s *PostService) Feed(ctx context.Context) ([]model.Post, error) {
	posts, err := s.posts.ListFeed(ctx)
	if err != nil {
		s.logger.Error("failed to list feed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/post: listing feed: %w", err)
	}
	return posts, nil
}

// Delete removes a post after an ownership check, in two phases:
//
//  1. Delete the remote media asset. If the host rejects it, abort with an
//     upstream error and keep the local row — the post is still fully intact
//     and the user can retry.
//  2. Delete the local row (cascading its likes and comments). A failure
//     here, after the remote delete succeeded, leaves a post whose file is
//     gone; that inconsistency is logged loudly because no retry can bring
//     the file back.
//
// Phase order is deliberate: the recoverable failure mode (remote down,
// local intact) must come first.
func (s *PostService) Delete(ctx context.Context, postID, userID string) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return err
	}

	if err := ensureOwner(post.UserID, userID, "you don't have the permission to delete this post"); err != nil {
		return err
	}

	if err := s.media.Delete(ctx, post.MediaFileID); err != nil {
		s.logger.Error("media delete failed, post kept",
			slog.String("postID", postID),
			slog.String("mediaFileID", post.MediaFileID),
			slog.String("error", err.Error()),
		)
		return apperror.Upstream("image host", err)
	}

	if err := s.posts.DeletePost(ctx, postID); err != nil {
		s.logger.Error("post row delete failed after remote asset was removed, post is now file-less",
			slog.String("postID", postID),
			slog.String("mediaFileID", post.MediaFileID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("service/post: deleting post %s: %w", postID, err)
	}

	s.logger.Info("post deleted",
		slog.String("postID", postID),
		slog.String("userID", userID),
	)

	return nil
}

// ensureOwner is the single authorization predicate for owned resources:
// only the creator may destroy. Used for posts and comments alike.
func ensureOwner(resourceOwnerID, userID, message string) error {
	if resourceOwnerID != userID {
		return apperror.Forbidden(message)
	}
	return nil
}
