package backup

import (
	"context"
	"errors"
	"os"
	"testing"

	inventorydomain "github.com/ghuser/stockledger/services/inventory/domain"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		folder string
		want   string
	}{
		{"", "inventory_full_backup.json"},
		{"nightly", "nightly/inventory_full_backup.json"},
		{"/nightly/", "nightly/inventory_full_backup.json"},
		{"a/b", "a/b/inventory_full_backup.json"},
	}
	for _, tt := range tests {
		if got := objectKey(tt.folder, models.BackupFileName); got != tt.want {
			t.Errorf("objectKey(%q) = %q, want %q", tt.folder, got, tt.want)
		}
	}
}

func TestNewMinioUploader_RequiresClientID(t *testing.T) {
	_, err := NewMinioUploader(MinioConfig{Endpoint: "localhost:9000", Bucket: "b"})
	if !errors.Is(err, inventorydomain.ErrTransport) {
		t.Fatalf("error = %v, want ErrTransport", err)
	}
}

func TestNewMinioUploader_BadEndpoint(t *testing.T) {
	_, err := NewMinioUploader(MinioConfig{Endpoint: "localhost:9000/not/a/host", Bucket: "b", AccessKeyID: "k"})
	if !errors.Is(err, inventorydomain.ErrTransport) {
		t.Fatalf("error = %v, want ErrTransport", err)
	}
}

// Integration test, skipped unless MINIO_ENDPOINT is set. Uses
// MINIO_ACCESS_KEY/MINIO_SECRET_KEY (defaults minioadmin) and MINIO_BUCKET.
func TestMinioUploaderIntegration(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("MINIO_ENDPOINT not set; skipping integration test")
	}
	cfg := MinioConfig{
		Endpoint:        endpoint,
		Bucket:          envOr("MINIO_BUCKET", "stockledger-test"),
		AccessKeyID:     envOr("MINIO_ACCESS_KEY", "minioadmin"),
		SecretAccessKey: envOr("MINIO_SECRET_KEY", "minioadmin"),
		Folder:          "it-" + models.NewID("run"),
	}
	u, err := NewMinioUploader(cfg)
	if err != nil {
		t.Fatalf("NewMinioUploader: %v", err)
	}
	ctx := context.Background()
	if err := u.EnsureBucket(ctx); err != nil {
		t.Fatalf("EnsureBucket: %v", err)
	}

	created, err := u.Upsert(ctx, models.BackupFileName, []byte(`{"inventory":[]}`))
	if err != nil || !created {
		t.Fatalf("first Upsert = %v, %v; want created", created, err)
	}
	created, err = u.Upsert(ctx, models.BackupFileName, []byte(`{"inventory":[{}]}`))
	if err != nil || created {
		t.Fatalf("second Upsert = %v, %v; want overwrite", created, err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
