package models

import "time"

// BackupFileName is the fixed object name the backup transport upserts.
const BackupFileName = "inventory_full_backup.json"

// BackupPayload is a whole-corpus snapshot taken at a single instant.
type BackupPayload struct {
	Inventory  []Item    `json:"inventory"`
	BackupDate time.Time `json:"backupDate"`
}

// BackupSettings is the persisted backup-transport configuration.
// ClientID identifies the remote storage client; FolderID, when set, is the
// destination folder inside the bucket.
type BackupSettings struct {
	ClientID string `json:"clientId"`
	FolderID string `json:"folderId,omitempty"`
}
