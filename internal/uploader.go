package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// Uploader drives the presigned attachment flow: ask the backend to
// sign an upload target, PUT the bytes straight to it, and later ask
// for a short-lived download link by object key. The presigned URLs
// themselves carry the authorization; only the sign requests use the
// bearer credential.
type Uploader struct {
	gateway *Gateway
	client  *http.Client
}

// NewUploader creates an uploader sharing the gateway's base URL and
// session.
func NewUploader(gateway *Gateway) *Uploader {
	return &Uploader{gateway: gateway, client: &http.Client{}}
}

// Sign requests a presigned PUT target for filename.
func (u *Uploader) Sign(ctx context.Context, filename string) (uploadURL, objectKey string, err error) {
	body, err := u.gateway.do(ctx, http.MethodGet,
		u.gateway.baseURL+"/upload/sign?filename="+url.QueryEscape(filename), nil)
	if err != nil {
		return "", "", err
	}
	var resp struct {
		UploadURL  string `json:"uploadUrl"`
		ObjectName string `json:"objectName"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", &MalformedEntityError{Entity: "attachment", Reason: "sign response: " + err.Error()}
	}
	if resp.UploadURL == "" || resp.ObjectName == "" {
		return "", "", &MalformedEntityError{Entity: "attachment", Reason: "sign response missing uploadUrl or objectName"}
	}
	return resp.UploadURL, resp.ObjectName, nil
}

// SignDownload requests a fresh short-lived download link for an
// object key. The link must be used promptly; it is stale after the
// task is refetched.
func (u *Uploader) SignDownload(ctx context.Context, objectKey string) (string, error) {
	body, err := u.gateway.do(ctx, http.MethodGet,
		u.gateway.baseURL+"/upload/sign-get?objectName="+url.QueryEscape(objectKey), nil)
	if err != nil {
		return "", err
	}
	var resp struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &MalformedEntityError{Entity: "attachment", Reason: "sign-get response: " + err.Error()}
	}
	if resp.URL == "" {
		return "", &MalformedEntityError{Entity: "attachment", Reason: "sign-get response missing url"}
	}
	return resp.URL, nil
}

// Put streams the file bytes to the presigned target. No auth header:
// the signature in the URL is the authorization.
func (u *Uploader) Put(ctx context.Context, uploadURL string, r io.Reader, size int64, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, r)
	if err != nil {
		return err
	}
	if size > 0 {
		req.ContentLength = size
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := u.client.Do(req)
	if err != nil {
		return &APIError{Kind: KindUnreachable, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return classifyStatus(resp.StatusCode, fmt.Sprintf("upload rejected with status %d", resp.StatusCode))
	}
	return nil
}

// UploadFile runs the full flow for a local file and returns the
// attachment to record on a task.
func (u *Uploader) UploadFile(ctx context.Context, path string) (*Attachment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &StorageError{Op: "read", Err: err}
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, &StorageError{Op: "read", Err: err}
	}

	name := filepath.Base(path)
	uploadURL, objectKey, err := u.Sign(ctx, name)
	if err != nil {
		return nil, err
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if err := u.Put(ctx, uploadURL, f, info.Size(), contentType); err != nil {
		return nil, err
	}
	LogInfo("Uploaded %s (%d bytes) as %s", name, info.Size(), objectKey)

	return &Attachment{
		DisplayName: name,
		ObjectKey:   objectKey,
		SizeBytes:   info.Size(),
		ContentType: contentType,
	}, nil
}
