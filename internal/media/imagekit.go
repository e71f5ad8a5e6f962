// Package media is the client for the external media host that stores
// uploaded files (an ImageKit-compatible API).
//
// The backend never stores file bytes itself. Uploads stream to the host,
// which hands back a public URL, a display name and a file ID; the file ID is
// the only handle we have for deleting the asset later, so it's persisted on
// the Post row.
//
// The host is a separate failure domain: every call has a bounded timeout and
// failures surface as apperror.Upstream rather than taking a request down
// with an opaque 500.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/xid"
)

// Asset is what the host returns for a stored file.
type Asset struct {
	FileID string `json:"fileId"` // opaque deletion handle
	Name   string `json:"name"`   // display name chosen by the host (unique suffix applied)
	URL    string `json:"url"`    // public URL to serve the asset from
}

// Client talks to an ImageKit-compatible media host.
//
// Authentication is HTTP basic with the private key as the username and an
// empty password, which is how ImageKit's upload and management APIs work.
type Client struct {
	uploadURL  string // e.g. https://upload.imagekit.io
	apiURL     string // e.g. https://api.imagekit.io
	privateKey string
	httpClient *http.Client
}

// clientTimeout bounds every call to the host. A hung upload should fail the
// request, not pin a handler goroutine forever.
const clientTimeout = 30 * time.Second

// New creates a media host client. uploadURL and apiURL are separate because
// ImageKit serves uploads and file management from different hosts; tests
// point both at a local httptest server.
func New(uploadURL, apiURL, privateKey string) (*Client, error) {
	if uploadURL == "" || apiURL == "" {
		return nil, fmt.Errorf("media: upload and API URLs are required")
	}
	if privateKey == "" {
		return nil, fmt.Errorf("media: private key is required")
	}
	return &Client{
		uploadURL:  strings.TrimRight(uploadURL, "/"),
		apiURL:     strings.TrimRight(apiURL, "/"),
		privateKey: privateKey,
		httpClient: &http.Client{Timeout: clientTimeout},
	}, nil
}

// Upload sends the file bytes to the host and returns the stored asset.
//
// The host is asked for a unique file name; we additionally prefix one
// ourselves (an xid) so two users uploading "cat.jpg" in the same instant
// can never collide even if the host's uniqueness is off.
func (c *Client) Upload(ctx context.Context, fileName string, data []byte) (*Asset, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("media: building upload form: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return nil, fmt.Errorf("media: writing upload form: %w", err)
	}
	if err := mw.WriteField("fileName", xid.New().String()+"_"+fileName); err != nil {
		return nil, fmt.Errorf("media: writing upload form: %w", err)
	}
	if err := mw.WriteField("useUniqueFileName", "true"); err != nil {
		return nil, fmt.Errorf("media: writing upload form: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("media: closing upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.uploadURL+"/api/v1/files/upload", &body)
	if err != nil {
		return nil, fmt.Errorf("media: building upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.SetBasicAuth(c.privateKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("media: uploading file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("media: upload returned status %d: %s",
			resp.StatusCode, snippetOf(resp.Body))
	}

	var asset Asset
	if err := json.NewDecoder(resp.Body).Decode(&asset); err != nil {
		return nil, fmt.Errorf("media: decoding upload response: %w", err)
	}
	if asset.FileID == "" {
		return nil, fmt.Errorf("media: upload response has no file ID")
	}

	return &asset, nil
}

// Delete removes a stored asset by its file ID.
//
// Deleting an ID the host no longer knows is reported as an error — the
// caller decides whether that matters (post deletion treats any host failure
// as a reason to keep the local row).
func (c *Client) Delete(ctx context.Context, fileID string) error {
	if fileID == "" {
		return fmt.Errorf("media: file ID is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		c.apiURL+"/v1/files/"+fileID, nil)
	if err != nil {
		return fmt.Errorf("media: building delete request: %w", err)
	}
	req.SetBasicAuth(c.privateKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("media: deleting file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("media: delete of %s returned status %d: %s",
			fileID, resp.StatusCode, snippetOf(resp.Body))
	}

	return nil
}

// snippetOf reads a short prefix of an error body for log context. Host error
// bodies can be arbitrarily large; we never want to buffer all of one.
func snippetOf(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 256))
	return strings.TrimSpace(string(b))
}
