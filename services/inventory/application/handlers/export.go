package handlers

import (
	"net/http"

	"github.com/ghuser/stockledger/pkg/errhttp"
	"github.com/ghuser/stockledger/pkg/httpx"
	appsvcs "github.com/ghuser/stockledger/services/inventory/application/services"
)

// ExportHandler handles GET /export?category=&q=&format=csv|xlsx.
type ExportHandler struct {
	svc *appsvcs.Services
}

// NewExportHandler returns an ExportHandler backed by the given services.
func NewExportHandler(svc *appsvcs.Services) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// Execute streams the filtered view of one category as a file download.
func (h *ExportHandler) Execute(w http.ResponseWriter, r *http.Request) {
	cat, err := category(r)
	if err != nil {
		errhttp.WriteError(w, r, err)
		return
	}
	if err := gate(r, cat); err != nil {
		errhttp.WriteError(w, r, err)
		return
	}
	format, err := appsvcs.ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		errhttp.WriteError(w, r, err)
		return
	}

	file, err := h.svc.Export.Export(r.Context(), cat, r.URL.Query().Get("q"), format)
	if err != nil {
		errhttp.WriteError(w, r, err)
		return
	}
	httpx.Attachment(w, file.ContentType, file.Name, file.Body)
}
