package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/chisomo-phiri/studyhub/internal/config"
)

const (
	driveUploadURL = "https://www.googleapis.com/upload/drive/v3/files"
	driveFilesURL  = "https://www.googleapis.com/drive/v3/files"
	driveScope     = "https://www.googleapis.com/auth/drive.file"
)

// DriveStore keeps objects in Google Drive. The locator is the Drive file id.
// Drive requires authenticated access the browser cannot be given, so every
// download is proxied through this service; URL always returns "".
type DriveStore struct {
	client    *http.Client
	folderID  string
	uploadURL string
	filesURL  string
}

// NewDrive builds an authenticated Drive client from a downloaded OAuth client
// file and a previously saved token file (the one-time authorize flow writes
// it).
func NewDrive(ctx context.Context, cfg config.DriveConfig) (*DriveStore, error) {
	creds, err := os.ReadFile(cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read oauth client file: %w", err)
	}
	oauthCfg, err := google.ConfigFromJSON(creds, driveScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client file: %w", err)
	}

	tokBytes, err := os.ReadFile(cfg.TokenFile)
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(tokBytes, &tok); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}

	return &DriveStore{
		client:    oauthCfg.Client(ctx, &tok),
		folderID:  cfg.FolderID,
		uploadURL: driveUploadURL,
		filesURL:  driveFilesURL,
	}, nil
}

func (d *DriveStore) Backend() string { return BackendDrive }

// Put uploads via the Drive v3 multipart endpoint: one JSON metadata part, one
// media part. The body is streamed through a pipe; the overflow tier routes
// the largest files here, so it must never sit in memory whole. The
// hierarchical key survives only as the Drive file name; the returned id is
// what gets recorded.
func (d *DriveStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	meta := map[string]any{"name": path.Base(key)}
	if d.folderID != "" {
		meta["parents"] = []string{d.folderID}
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeUploadBody(mw, meta, r, contentType))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		d.uploadURL+"?uploadType=multipart&fields=id", pr)
	if err != nil {
		pr.Close()
		return "", err
	}
	req.Header.Set("Content-Type", "multipart/related; boundary="+mw.Boundary())

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("drive upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("drive upload: status %d: %s", resp.StatusCode, msg)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("drive upload: decode response: %w", err)
	}
	return created.ID, nil
}

func writeUploadBody(mw *multipart.Writer, meta map[string]any, r io.Reader, contentType string) error {
	metaPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"application/json; charset=UTF-8"},
	})
	if err != nil {
		return err
	}
	if err := json.NewEncoder(metaPart).Encode(meta); err != nil {
		return err
	}

	mediaPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {contentType},
	})
	if err != nil {
		return err
	}
	if _, err := io.Copy(mediaPart, r); err != nil {
		return err
	}
	return mw.Close()
}

func (d *DriveStore) URL(locator string) string { return "" }

func (d *DriveStore) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		d.filesURL+"/"+locator+"?alt=media", nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("drive download: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrObjectNotFound
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("drive download: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}
