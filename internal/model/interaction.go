package model

import "time"

// Like is a boolean per-(post,user) interaction record.
//
// The pair (PostID, UserID) is unique — a user may like a given post at most
// once. The database enforces this with a UNIQUE index, which also resolves
// duplicate concurrent like requests: exactly one insert wins, the other
// observes the constraint violation.
type Like struct {
	ID        string    `json:"id"         db:"id"`
	PostID    string    `json:"post_id"    db:"post_id"`
	UserID    string    `json:"user_id"    db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Comment is a user-authored text record attached to exactly one post.
// Username is denormalized at creation time, same as on Post.
// Content is stored as-is — no length cap, no profanity filter.
type Comment struct {
	ID        string    `json:"id"         db:"id"`
	PostID    string    `json:"-"          db:"post_id"`
	UserID    string    `json:"-"          db:"user_id"`
	Username  string    `json:"username"   db:"username"`
	Content   string    `json:"content"    db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
