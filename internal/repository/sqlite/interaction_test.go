package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/photofeed/internal/apperror"
	"github.com/sakif/photofeed/internal/model"
)

// =========================================================================
// LIKE TESTS
// =========================================================================

func TestCreateLike(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")
	post := createTestPost(t, db, alice)

	like := &model.Like{PostID: post.ID, UserID: bob.ID}
	if err := db.CreateLike(context.Background(), like); err != nil {
		t.Fatalf("CreateLike() error = %v", err)
	}

	if like.ID == "" {
		t.Error("CreateLike() did not set like.ID")
	}

	n, err := db.CountLikes(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("CountLikes() error = %v", err)
	}
	if n != 1 {
		t.Errorf("CountLikes() = %d, want 1", n)
	}
}

// The UNIQUE (post_id, user_id) index rejects the second like of a pair.
// This is what resolves duplicate concurrent requests: one insert wins, the
// other observes the conflict.
func TestCreateLike_DuplicatePair(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")
	post := createTestPost(t, db, alice)

	mustLike(t, db, post.ID, bob.ID)

	err := db.CreateLike(context.Background(), &model.Like{PostID: post.ID, UserID: bob.ID})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("CreateLike() duplicate: error = %v, want ErrConflict", err)
	}

	// still exactly one like
	if n, _ := db.CountLikes(context.Background(), post.ID); n != 1 {
		t.Errorf("CountLikes() after duplicate = %d, want 1", n)
	}
}

// Different users liking the same post, and the same user liking different
// posts, are both fine — only the exact pair is unique.
func TestCreateLike_DistinctPairs(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")
	p1 := createTestPost(t, db, alice)
	p2 := createTestPost(t, db, alice)

	mustLike(t, db, p1.ID, alice.ID)
	mustLike(t, db, p1.ID, bob.ID)
	mustLike(t, db, p2.ID, bob.ID)

	if n, _ := db.CountLikes(context.Background(), p1.ID); n != 2 {
		t.Errorf("CountLikes(p1) = %d, want 2", n)
	}
	if n, _ := db.CountLikes(context.Background(), p2.ID); n != 1 {
		t.Errorf("CountLikes(p2) = %d, want 1", n)
	}
}

func TestDeleteLike(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")
	post := createTestPost(t, db, alice)

	mustLike(t, db, post.ID, bob.ID)

	if err := db.DeleteLike(context.Background(), post.ID, bob.ID); err != nil {
		t.Fatalf("DeleteLike() error = %v", err)
	}

	if n, _ := db.CountLikes(context.Background(), post.ID); n != 0 {
		t.Errorf("CountLikes() after unlike = %d, want 0", n)
	}

	// a second unlike finds no row
	if err := db.DeleteLike(context.Background(), post.ID, bob.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteLike() repeated: error = %v, want ErrNotFound", err)
	}
}

// Unlike on a post that never existed reports the same NotFound as unlike
// without a prior like — the two causes are indistinguishable by design.
func TestDeleteLike_NonexistentPost(t *testing.T) {
	db := newTestDB(t)
	bob := createTestUser(t, db, "bob", "bob@example.com")

	err := db.DeleteLike(context.Background(), "no-such-post", bob.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteLike() error = %v, want ErrNotFound", err)
	}
}

// A nonexistent post simply has zero likes; counting is never an error.
func TestCountLikes_NonexistentPost(t *testing.T) {
	db := newTestDB(t)

	n, err := db.CountLikes(context.Background(), "no-such-post")
	if err != nil {
		t.Fatalf("CountLikes() error = %v", err)
	}
	if n != 0 {
		t.Errorf("CountLikes() = %d, want 0", n)
	}
}

func TestLikeExists(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")
	post := createTestPost(t, db, alice)

	exists, err := db.LikeExists(context.Background(), post.ID, bob.ID)
	if err != nil {
		t.Fatalf("LikeExists() error = %v", err)
	}
	if exists {
		t.Error("LikeExists() = true before liking")
	}

	mustLike(t, db, post.ID, bob.ID)

	exists, err = db.LikeExists(context.Background(), post.ID, bob.ID)
	if err != nil {
		t.Fatalf("LikeExists() error = %v", err)
	}
	if !exists {
		t.Error("LikeExists() = false after liking")
	}
}

// =========================================================================
// COMMENT TESTS
// =========================================================================

func TestCreateComment(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice", "alice@example.com")
	post := createTestPost(t, db, alice)

	c := mustComment(t, db, post.ID, alice, "commenting on my own post")

	if c.ID == "" {
		t.Error("CreateComment() did not set comment.ID")
	}
	if c.CreatedAt.IsZero() {
		t.Error("CreateComment() did not set comment.CreatedAt")
	}

	found, err := db.GetCommentByID(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("GetCommentByID() error = %v", err)
	}
	if found.Content != "commenting on my own post" {
		t.Errorf("Content = %q, want original content", found.Content)
	}
	if found.Username != "alice" {
		t.Errorf("Username = %q, want %q", found.Username, "alice")
	}
}

func TestGetCommentByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetCommentByID(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetCommentByID() error = %v, want ErrNotFound", err)
	}
}

func TestListCommentsByPost_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")
	post := createTestPost(t, db, alice)

	mustComment(t, db, post.ID, bob, "first")
	time.Sleep(2 * time.Millisecond)
	mustComment(t, db, post.ID, alice, "second")
	time.Sleep(2 * time.Millisecond)
	mustComment(t, db, post.ID, bob, "third")

	comments, err := db.ListCommentsByPost(context.Background(), post.ID)
	if err != nil {
		t.Fatalf("ListCommentsByPost() error = %v", err)
	}
	if len(comments) != 3 {
		t.Fatalf("got %d comments, want 3", len(comments))
	}

	want := []string{"third", "second", "first"}
	for i, w := range want {
		if comments[i].Content != w {
			t.Errorf("comments[%d].Content = %q, want %q", i, comments[i].Content, w)
		}
	}
}

// A nonexistent post has an empty comment list, not an error.
func TestListCommentsByPost_NonexistentPost(t *testing.T) {
	db := newTestDB(t)

	comments, err := db.ListCommentsByPost(context.Background(), "no-such-post")
	if err != nil {
		t.Fatalf("ListCommentsByPost() error = %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("got %d comments, want 0", len(comments))
	}
}

func TestDeleteComment(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice", "alice@example.com")
	post := createTestPost(t, db, alice)
	c := mustComment(t, db, post.ID, alice, "delete me")

	if err := db.DeleteComment(context.Background(), c.ID); err != nil {
		t.Fatalf("DeleteComment() error = %v", err)
	}

	if _, err := db.GetCommentByID(context.Background(), c.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetCommentByID() after delete: error = %v, want ErrNotFound", err)
	}
}

func TestDeleteComment_NotFound(t *testing.T) {
	db := newTestDB(t)

	if err := db.DeleteComment(context.Background(), "nonexistent-id"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("DeleteComment() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// FULL INTERACTION LIFECYCLE
// =========================================================================

// End-to-end scenario across the interaction store: like, duplicate like,
// post deletion, then a stale unlike.
func TestInteractionLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")
	p1 := createTestPost(t, db, alice)

	// bob likes p1
	if err := db.CreateLike(ctx, &model.Like{PostID: p1.ID, UserID: bob.ID}); err != nil {
		t.Fatalf("like: %v", err)
	}
	if n, _ := db.CountLikes(ctx, p1.ID); n != 1 {
		t.Fatalf("CountLikes = %d, want 1", n)
	}

	// bob likes p1 again — conflict, count unchanged
	if err := db.CreateLike(ctx, &model.Like{PostID: p1.ID, UserID: bob.ID}); !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("duplicate like: error = %v, want ErrConflict", err)
	}
	if n, _ := db.CountLikes(ctx, p1.ID); n != 1 {
		t.Fatalf("CountLikes after duplicate = %d, want 1", n)
	}

	// alice deletes p1 — cascade wipes the like
	if err := db.DeletePost(ctx, p1.ID); err != nil {
		t.Fatalf("delete post: %v", err)
	}
	if n, _ := db.CountLikes(ctx, p1.ID); n != 0 {
		t.Fatalf("CountLikes after post delete = %d, want 0", n)
	}

	// bob's unlike now finds nothing
	if err := db.DeleteLike(ctx, p1.ID, bob.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("unlike after post delete: error = %v, want ErrNotFound", err)
	}
}
