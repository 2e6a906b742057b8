package handlers

import (
	"net/http"
	"slices"

	"github.com/ghuser/stockledger/pkg/auth"
	"github.com/ghuser/stockledger/pkg/errhttp"
	"github.com/ghuser/stockledger/pkg/httpx"
	appsvcs "github.com/ghuser/stockledger/services/inventory/application/services"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
	domainsvcs "github.com/ghuser/stockledger/services/inventory/domain/services"
)

// SerialCheckResponse is returned by GET /serials/check.
type SerialCheckResponse struct {
	Duplicate bool `json:"duplicate"`
	// Enforced is true when the ledger itself rejects duplicates.
	Enforced bool `json:"enforced"`
}

// SerialsResponse is returned by GET /serials.
type SerialsResponse struct {
	Serials []string `json:"serials"`
}

// SerialCheckHandler handles GET /serials/check?serial=&exclude=.
type SerialCheckHandler struct {
	svc *appsvcs.Services
}

// NewSerialCheckHandler returns a SerialCheckHandler backed by the given services.
func NewSerialCheckHandler(svc *appsvcs.Services) *SerialCheckHandler {
	return &SerialCheckHandler{svc: svc}
}

// Execute reports whether a serial number is already used by another transaction.
func (h *SerialCheckHandler) Execute(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	httpx.JSON(w, http.StatusOK, SerialCheckResponse{
		Duplicate: domainsvcs.IsDuplicateSerial(q.Get("serial"), h.svc.Ledger.Items(r.Context()), q.Get("exclude")),
		Enforced:  h.svc.StrictSerials,
	})
}

// ListSerialsHandler handles GET /serials.
type ListSerialsHandler struct {
	svc *appsvcs.Services
}

// NewListSerialsHandler returns a ListSerialsHandler backed by the given services.
func NewListSerialsHandler(svc *appsvcs.Services) *ListSerialsHandler {
	return &ListSerialsHandler{svc: svc}
}

// Execute lists the serial numbers in use on items the caller may see, sorted.
func (h *ListSerialsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	role, err := auth.RoleFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, r, err)
		return
	}
	visible := slices.DeleteFunc(h.svc.Ledger.Items(r.Context()), func(it models.Item) bool {
		return !auth.CanAccess(role, string(it.Type))
	})
	serials := domainsvcs.UsedSerials(visible)
	if serials == nil {
		serials = []string{}
	}
	httpx.JSON(w, http.StatusOK, SerialsResponse{Serials: serials})
}
