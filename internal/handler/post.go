package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sakif/photofeed/internal/auth"
	"github.com/sakif/photofeed/internal/service"
)

// maxUploadBytes caps a single upload at 32MB — generous for photos, tight
// enough that one request can't exhaust memory.
const maxUploadBytes = 32 << 20

// PostHandler exposes the post lifecycle over HTTP: upload, feed, delete.
type PostHandler struct {
	posts  *service.PostService
	logger *slog.Logger
}

// NewPostHandler creates a PostHandler.
func NewPostHandler(posts *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		posts:  posts,
		logger: logger,
	}
}

// pathID extracts and validates a UUID path parameter. Every entity ID in
// the API is a UUIDv4; anything else is a 400 before it reaches storage.
func pathID(r *http.Request, name string) (string, bool) {
	id := chi.URLParam(r, name)
	if uuid.Validate(id) != nil {
		return "", false
	}
	return id, true
}

func writeInvalidID(w http.ResponseWriter, name string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "validation_error",
		Message: name + " must be a valid UUID",
	})
}

// HandleUpload creates a post from a multipart upload.
//
// HTTP: POST /upload
// Auth: required
// Body: multipart/form-data with fields "file" and "caption"
//
// The file bytes go to the image host first; only a successful upload
// produces a local post row.
func (h *PostHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid multipart body or file too large",
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "a file field is required",
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("upload: reading file failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "could not read the uploaded file",
		})
		return
	}

	post, err := h.posts.Create(
		r.Context(),
		userID,
		r.FormValue("caption"),
		header.Filename,
		header.Header.Get("Content-Type"),
		data,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

// HandleFeed returns every post, newest first.
//
// HTTP: GET /feed
// Auth: none — the feed is public.
func (h *PostHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.Feed(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

// HandleDelete removes a post (owner only).
//
// HTTP: DELETE /posts/{id}
// Auth: required
func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.posts.Delete(r.Context(), postID, userID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "post deleted"})
}
