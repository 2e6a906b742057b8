package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/ghuser/stockledger/pkg/errhttp"
	"github.com/ghuser/stockledger/pkg/httpx"
	pkgvalidator "github.com/ghuser/stockledger/pkg/validator"
	appsvcs "github.com/ghuser/stockledger/services/inventory/application/services"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
	domainsvcs "github.com/ghuser/stockledger/services/inventory/domain/services"
)

// BackupSettingsRequest is the request body for PUT /backup/settings.
type BackupSettingsRequest struct {
	ClientID string `json:"client_id" validate:"notblank,max=128"`
	FolderID string `json:"folder_id" validate:"max=512"`
}

// BackupSettingsResponse is returned by GET and PUT /backup/settings.
type BackupSettingsResponse struct {
	ClientID string `json:"client_id"`
	FolderID string `json:"folder_id"`
}

// RestoreResponse is returned by POST /restore.
type RestoreResponse struct {
	Items int `json:"items"`
}

// BackupHandler serves the admin-only backup endpoints.
type BackupHandler struct {
	svc *appsvcs.Services
}

// NewBackupHandler returns a BackupHandler backed by the given services.
func NewBackupHandler(svc *appsvcs.Services) *BackupHandler {
	return &BackupHandler{svc: svc}
}

// Snapshot handles GET /backup/snapshot: the backup payload as a download.
func (h *BackupHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	data, err := domainsvcs.EncodeBackup(h.svc.Backup.Snapshot(r.Context()))
	if err != nil {
		errhttp.WriteError(w, r, err)
		return
	}
	httpx.Attachment(w, "application/json", models.BackupFileName, data)
}

// Run handles POST /backup: snapshot and upsert to the backup destination.
func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Backup.Run(r.Context())
	if err != nil {
		errhttp.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

// GetSettings handles GET /backup/settings.
func (h *BackupHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Backup.Settings(r.Context())
	if err != nil {
		errhttp.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, BackupSettingsResponse{ClientID: s.ClientID, FolderID: s.FolderID})
}

// PutSettings handles PUT /backup/settings.
func (h *BackupHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[BackupSettingsRequest](w, r)
	if !ok {
		return
	}
	s, err := h.svc.Backup.UpdateSettings(r.Context(), models.BackupSettings{ClientID: req.ClientID, FolderID: req.FolderID})
	if err != nil {
		errhttp.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, BackupSettingsResponse{ClientID: s.ClientID, FolderID: s.FolderID})
}

// Restore handles POST /restore: the body is a backup payload that replaces
// the whole corpus.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.JSONError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		httpx.JSONError(w, http.StatusBadRequest, "Unreadable body")
		return
	}

	payload, err := domainsvcs.DecodeBackup(data)
	if err != nil {
		errhttp.WriteError(w, r, err)
		return
	}
	n, err := h.svc.Ledger.Restore(r.Context(), payload)
	if err != nil {
		errhttp.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, RestoreResponse{Items: n})
}
