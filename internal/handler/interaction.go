package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/photofeed/internal/auth"
	"github.com/sakif/photofeed/internal/service"
)

// InteractionHandler exposes likes and comments over HTTP.
type InteractionHandler struct {
	interactions *service.InteractionService
	logger       *slog.Logger
}

// NewInteractionHandler creates an InteractionHandler.
func NewInteractionHandler(interactions *service.InteractionService, logger *slog.Logger) *InteractionHandler {
	return &InteractionHandler{
		interactions: interactions,
		logger:       logger,
	}
}

// HandleLike records a like on a post.
//
// HTTP: POST /posts/{id}/like
// Auth: required; 409 when the user already liked the post.
func (h *InteractionHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	postID, ok := pathID(r, "id")
	if !ok {
		writeInvalidID(w, "post id")
		return
	}

	if _, err := h.interactions.Like(r.Context(), postID, userID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "post liked"})
}

// HandleUnlike removes the caller's like from a post.
//
// HTTP: DELETE /posts/{id}/like
// Auth: required; 404 when there is no like to remove.
func (h *InteractionHandler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	postID, ok := pathID(r, "id")
	if !ok {
		writeInvalidID(w, "post id")
		return
	}

	if err := h.interactions.Unlike(r.Context(), postID, userID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "post unliked"})
}

// HandleLikesCount returns the like total for a post.
//
// HTTP: GET /posts/{id}/likes
// Auth: none. A nonexistent post reports zero likes.
func (h *InteractionHandler) HandleLikesCount(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(r, "id")
	if !ok {
		writeInvalidID(w, "post id")
		return
	}

	count, err := h.interactions.CountLikes(r.Context(), postID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"likes_count": count})
}

// HandleUserLike reports whether the caller has liked the post. Fails open:
// storage trouble reads as "not liked" rather than an error.
//
// HTTP: GET /posts/{id}/user-like
// Auth: required
func (h *InteractionHandler) HandleUserLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	postID, ok := pathID(r, "id")
	if !ok {
		writeInvalidID(w, "post id")
		return
	}

	liked := h.interactions.HasUserLiked(r.Context(), postID, userID)
	writeJSON(w, http.StatusOK, map[string]bool{"user_liked": liked})
}

// HandleAddComment attaches a comment to a post.
//
// HTTP: POST /posts/{id}/comment
// Auth: required
// Body: application/x-www-form-urlencoded, content=<text>
func (h *InteractionHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	postID, ok := pathID(r, "id")
	if !ok {
		writeInvalidID(w, "post id")
		return
	}

	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid form body",
		})
		return
	}

	comment, err := h.interactions.AddComment(r.Context(), postID, userID, r.PostFormValue("content"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

// HandleListComments returns a post's comments, newest first.
//
// HTTP: GET /posts/{id}/comments
// Auth: none. A nonexistent post yields an empty list.
func (h *InteractionHandler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(r, "id")
	if !ok {
		writeInvalidID(w, "post id")
		return
	}

	comments, err := h.interactions.ListComments(r.Context(), postID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

// HandleDeleteComment removes a comment (author only — even the post's
// owner has no moderation rights).
//
// HTTP: DELETE /comments/{id}
// Auth: required
func (h *InteractionHandler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	commentID, ok := pathID(r, "id")
	if !ok {
		writeInvalidID(w, "comment id")
		return
	}

	if err := h.interactions.DeleteComment(r.Context(), commentID, userID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "comment deleted"})
}
