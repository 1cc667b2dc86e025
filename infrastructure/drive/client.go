package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"google.golang.org/api/drive/v3"

	"drone-detect/domain/report"
)

// DriveService defines the interface for Google Drive API operations
// This allows mocking the Google Drive API in tests
type DriveService interface {
	CreateFile(ctx context.Context, name, folderID, localPath string) (*drive.File, error)
	CreatePermission(ctx context.Context, fileID string, permission *drive.Permission) error
	GetFile(ctx context.Context, fileID, fields string) (*drive.File, error)
}

// GoogleDriveService is the production implementation using the Google Drive API
type GoogleDriveService struct {
	service *drive.Service
}

// CreateFile uploads the local file into the given folder
func (s *GoogleDriveService) CreateFile(ctx context.Context, name, folderID, localPath string) (*drive.File, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	meta := &drive.File{Name: name}
	if folderID != "" {
		meta.Parents = []string{folderID}
	}
	return s.service.Files.Create(meta).Media(f).Context(ctx).Do()
}

// CreatePermission adds a permission to the file
func (s *GoogleDriveService) CreatePermission(ctx context.Context, fileID string, permission *drive.Permission) error {
	_, err := s.service.Permissions.Create(fileID, permission).Context(ctx).Do()
	return err
}

// GetFile fetches file metadata
func (s *GoogleDriveService) GetFile(ctx context.Context, fileID, fields string) (*drive.File, error) {
	call := s.service.Files.Get(fileID).Context(ctx)
	if fields != "" {
		call = call.Fields(googleField(fields))
	}
	return call.Do()
}

// Client implements report.Uploader using the Google Drive API
type Client struct {
	driveService DriveService
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithDriveService sets a custom drive service (for testing)
func WithDriveService(svc DriveService) ClientOption {
	return func(c *Client) {
		c.driveService = svc
	}
}

// NewClient creates a new Google Drive client
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{}

	for _, opt := range opts {
		opt(c)
	}

	if c.driveService == nil {
		return nil, fmt.Errorf("no drive service configured; use NewClientWithOAuth")
	}
	return c, nil
}

// UploadFile implements report.Uploader
func (c *Client) UploadFile(ctx context.Context, path, folderID string) (*report.FileInfo, error) {
	f, err := c.driveService.CreateFile(ctx, filepath.Base(path), folderID, path)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return &report.FileInfo{ID: f.Id, Name: f.Name, WebLink: f.WebViewLink}, nil
}

// ShareFilePublicly implements report.Uploader
func (c *Client) ShareFilePublicly(ctx context.Context, fileID string) (string, error) {
	permission := &drive.Permission{Type: "anyone", Role: "reader"}
	if err := c.driveService.CreatePermission(ctx, fileID, permission); err != nil {
		return "", fmt.Errorf("failed to share file %s: %w", fileID, err)
	}

	f, err := c.driveService.GetFile(ctx, fileID, "webViewLink")
	if err != nil {
		return "", fmt.Errorf("failed to fetch share link for %s: %w", fileID, err)
	}
	return f.WebViewLink, nil
}

// Ensure Client implements report.Uploader
var _ report.Uploader = (*Client)(nil)
