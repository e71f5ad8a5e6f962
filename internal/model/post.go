package model

import "time"

// Media kinds stored in Post.FileType. Derived from the upload's Content-Type
// prefix: "video/*" → video, everything else → image.
const (
	MediaImage = "image"
	MediaVideo = "video"
)

// Post is a user-authored record referencing one externally hosted media
// asset. The bytes themselves never touch our database — we store the public
// URL the media host returned plus MediaFileID, the host's opaque handle we
// need later to delete the asset.
//
// UserID is immutable after creation and is the basis of every ownership
// check. Username is the denormalized author name (see model.User).
type Post struct {
	ID          string    `json:"id"         db:"id"`
	UserID      string    `json:"-"          db:"user_id"`
	Username    string    `json:"username"   db:"username"`
	Caption     string    `json:"caption"    db:"caption"`
	URL         string    `json:"url"        db:"url"`
	FileType    string    `json:"file_type"  db:"file_type"`
	FileName    string    `json:"file_name"  db:"file_name"`
	MediaFileID string    `json:"-"          db:"media_file_id"` // deletion handle, not for clients
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
