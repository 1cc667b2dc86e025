package drive

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/api/drive/v3"
)

// mockDriveService implements DriveService for testing
type mockDriveService struct {
	createErr     error
	permissionErr error
	getErr        error
	created       []string
	permissions   []string
	webLink       string
}

func (m *mockDriveService) CreateFile(ctx context.Context, name, folderID, localPath string) (*drive.File, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, name)
	return &drive.File{Id: "file-1", Name: name}, nil
}

func (m *mockDriveService) CreatePermission(ctx context.Context, fileID string, permission *drive.Permission) error {
	if m.permissionErr != nil {
		return m.permissionErr
	}
	m.permissions = append(m.permissions, fileID)
	return nil
}

func (m *mockDriveService) GetFile(ctx context.Context, fileID, fields string) (*drive.File, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &drive.File{Id: fileID, WebViewLink: m.webLink}, nil
}

func TestUploadFile(t *testing.T) {
	t.Run("uploads with base name", func(t *testing.T) {
		svc := &mockDriveService{}
		client, err := NewClient(WithDriveService(svc))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		info, err := client.UploadFile(context.Background(), "/reports/2026-08-25-abc.json", "folder-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if info.ID != "file-1" {
			t.Errorf("expected file ID 'file-1', got %q", info.ID)
		}
		if len(svc.created) != 1 || svc.created[0] != "2026-08-25-abc.json" {
			t.Errorf("expected upload of base name, got %v", svc.created)
		}
	})

	t.Run("surfaces upload failure", func(t *testing.T) {
		svc := &mockDriveService{createErr: errors.New("quota exceeded")}
		client, _ := NewClient(WithDriveService(svc))
		if _, err := client.UploadFile(context.Background(), "report.json", ""); err == nil {
			t.Error("expected upload error")
		}
	})
}

func TestShareFilePublicly(t *testing.T) {
	t.Run("shares and returns link", func(t *testing.T) {
		svc := &mockDriveService{webLink: "https://drive.google.com/file/d/file-1/view"}
		client, _ := NewClient(WithDriveService(svc))

		link, err := client.ShareFilePublicly(context.Background(), "file-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if link != "https://drive.google.com/file/d/file-1/view" {
			t.Errorf("unexpected link %q", link)
		}
		if len(svc.permissions) != 1 || svc.permissions[0] != "file-1" {
			t.Errorf("expected permission on file-1, got %v", svc.permissions)
		}
	})

	t.Run("surfaces permission failure", func(t *testing.T) {
		svc := &mockDriveService{permissionErr: errors.New("forbidden")}
		client, _ := NewClient(WithDriveService(svc))
		if _, err := client.ShareFilePublicly(context.Background(), "file-1"); err == nil {
			t.Error("expected permission error")
		}
	})
}

func TestNewClientRequiresService(t *testing.T) {
	if _, err := NewClient(); err == nil {
		t.Error("expected error without a drive service")
	}
}
