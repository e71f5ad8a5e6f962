package service

// Hand-written in-memory mocks for the repository interfaces and the media
// store. The services only see the interfaces, so swapping SQLite for these
// maps is invisible to the code under test. Error fields let individual
// tests simulate failures (host down, insert failing) that a real backend
// would make awkward to trigger.

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sakif/photofeed/internal/apperror"
	"github.com/sakif/photofeed/internal/media"
	"github.com/sakif/photofeed/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// =========================================================================
// USER REPOSITORY MOCK
// =========================================================================

type mockUserRepo struct {
	users  map[string]*model.User
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Username == user.Username {
			return apperror.ConflictMsg("username is already taken")
		}
		if u.Email == user.Email {
			return apperror.ConflictMsg("email is already registered")
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *u
	return &result, nil
}

func (m *mockUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFoundMsg("user not found")
}

func (m *mockUserRepo) GetUserByGitHubID(_ context.Context, githubID int64) (*model.User, error) {
	for _, u := range m.users {
		if u.GitHubID != 0 && u.GitHubID == githubID {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFoundMsg("user not found")
}

func (m *mockUserRepo) UpdateUser(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return apperror.NotFound("user", user.ID)
	}
	user.UpdatedAt = time.Now().UTC()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) DeleteUser(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(m.users, id)
	return nil
}

// =========================================================================
// POST REPOSITORY MOCK
// =========================================================================

type mockPostRepo struct {
	posts  []*model.Post // insertion order; ListFeed reverses
	nextID int

	createErr error // injected failure for CreatePost
	deleteErr error // injected failure for DeletePost
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{}
}

func (m *mockPostRepo) CreatePost(_ context.Context, post *model.Post) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	post.ID = fmt.Sprintf("post-%d", m.nextID)
	post.CreatedAt = time.Now().UTC()
	stored := *post
	m.posts = append(m.posts, &stored)
	return nil
}

func (m *mockPostRepo) GetPostByID(_ context.Context, id string) (*model.Post, error) {
	for _, p := range m.posts {
		if p.ID == id {
			result := *p
			return &result, nil
		}
	}
	return nil, apperror.NotFound("post", id)
}

func (m *mockPostRepo) ListFeed(_ context.Context) ([]model.Post, error) {
	feed := make([]model.Post, 0, len(m.posts))
	for i := len(m.posts) - 1; i >= 0; i-- {
		feed = append(feed, *m.posts[i])
	}
	return feed, nil
}

func (m *mockPostRepo) DeletePost(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	for i, p := range m.posts {
		if p.ID == id {
			m.posts = append(m.posts[:i], m.posts[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("post", id)
}

// =========================================================================
// LIKE REPOSITORY MOCK
// =========================================================================

type mockLikeRepo struct {
	likes  map[string]*model.Like // key: postID + "/" + userID
	nextID int

	existsErr error // injected failure for LikeExists
}

func newMockLikeRepo() *mockLikeRepo {
	return &mockLikeRepo{likes: make(map[string]*model.Like)}
}

func likeKey(postID, userID string) string {
	return postID + "/" + userID
}

func (m *mockLikeRepo) CreateLike(_ context.Context, like *model.Like) error {
	key := likeKey(like.PostID, like.UserID)
	if _, ok := m.likes[key]; ok {
		return apperror.ConflictMsg("you already liked this post")
	}
	m.nextID++
	like.ID = fmt.Sprintf("like-%d", m.nextID)
	like.CreatedAt = time.Now().UTC()
	stored := *like
	m.likes[key] = &stored
	return nil
}

func (m *mockLikeRepo) DeleteLike(_ context.Context, postID, userID string) error {
	key := likeKey(postID, userID)
	if _, ok := m.likes[key]; !ok {
		return apperror.NotFoundMsg("you haven't liked this post")
	}
	delete(m.likes, key)
	return nil
}

func (m *mockLikeRepo) CountLikes(_ context.Context, postID string) (int, error) {
	count := 0
	for _, l := range m.likes {
		if l.PostID == postID {
			count++
		}
	}
	return count, nil
}

func (m *mockLikeRepo) LikeExists(_ context.Context, postID, userID string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.likes[likeKey(postID, userID)]
	return ok, nil
}

// =========================================================================
// COMMENT REPOSITORY MOCK
// =========================================================================

type mockCommentRepo struct {
	comments []*model.Comment // insertion order; listing reverses
	nextID   int
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{}
}

func (m *mockCommentRepo) CreateComment(_ context.Context, comment *model.Comment) error {
	m.nextID++
	comment.ID = fmt.Sprintf("comment-%d", m.nextID)
	comment.CreatedAt = time.Now().UTC()
	stored := *comment
	m.comments = append(m.comments, &stored)
	return nil
}

func (m *mockCommentRepo) GetCommentByID(_ context.Context, id string) (*model.Comment, error) {
	for _, c := range m.comments {
		if c.ID == id {
			result := *c
			return &result, nil
		}
	}
	return nil, apperror.NotFound("comment", id)
}

func (m *mockCommentRepo) ListCommentsByPost(_ context.Context, postID string) ([]model.Comment, error) {
	result := []model.Comment{}
	for i := len(m.comments) - 1; i >= 0; i-- {
		if m.comments[i].PostID == postID {
			result = append(result, *m.comments[i])
		}
	}
	return result, nil
}

func (m *mockCommentRepo) DeleteComment(_ context.Context, id string) error {
	for i, c := range m.comments {
		if c.ID == id {
			m.comments = append(m.comments[:i], m.comments[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("comment", id)
}

// =========================================================================
// MEDIA STORE MOCK
// =========================================================================

// mockMedia stands in for the image host client. It records calls so tests
// can assert the upload/delete phases ran (or didn't).
type mockMedia struct {
	uploads []string // file names passed to Upload
	deletes []string // file IDs passed to Delete
	nextID  int

	uploadErr error
	deleteErr error
}

func newMockMedia() *mockMedia {
	return &mockMedia{}
}

func (m *mockMedia) Upload(_ context.Context, fileName string, _ []byte) (*media.Asset, error) {
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	m.nextID++
	m.uploads = append(m.uploads, fileName)
	return &media.Asset{
		FileID: fmt.Sprintf("media-%d", m.nextID),
		Name:   fileName,
		URL:    "https://cdn.example.com/" + fileName,
	}, nil
}

func (m *mockMedia) Delete(_ context.Context, fileID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletes = append(m.deletes, fileID)
	return nil
}

// =========================================================================
// SHARED FIXTURES
// =========================================================================

// registerTestUser creates a user through the real Register path so the
// password hash is genuine (at a cheap bcrypt cost).
func registerTestUser(t *testing.T, svc *AuthService, username, email string) *model.User {
	t.Helper()
	user, err := svc.Register(context.Background(), username, email, "Sup3rSecret")
	if err != nil {
		t.Fatalf("failed to register test user %s: %v", username, err)
	}
	return user
}
