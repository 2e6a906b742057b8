package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/stockledger/pkg/errhttp"
	"github.com/ghuser/stockledger/pkg/httpx"
	pkgvalidator "github.com/ghuser/stockledger/pkg/validator"
	appsvcs "github.com/ghuser/stockledger/services/inventory/application/services"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
)

// CreateTransactionRequest is the request body for POST /items/{id}/transactions.
// A missing date means now.
type CreateTransactionRequest struct {
	Type         string     `json:"type" validate:"required,oneof=purchase consumption"`
	Quantity     int        `json:"quantity" validate:"gt=0"`
	Date         *time.Time `json:"date"`
	Remarks      string     `json:"remarks" validate:"max=2048"`
	SerialNumber string     `json:"serial_number" validate:"max=128"`
}

// UpdateTransactionRequest is the request body for
// PATCH /items/{id}/transactions/{txID}. Absent fields are left unchanged.
type UpdateTransactionRequest struct {
	Type         *string    `json:"type" validate:"omitnil,oneof=purchase consumption"`
	Quantity     *int       `json:"quantity" validate:"omitnil,gt=0"`
	Date         *time.Time `json:"date"`
	Remarks      *string    `json:"remarks" validate:"omitnil,max=2048"`
	SerialNumber *string    `json:"serial_number" validate:"omitnil,max=128"`
}

func (req UpdateTransactionRequest) patch() models.TransactionPatch {
	var txType *models.TransactionType
	if req.Type != nil {
		t := models.TransactionType(*req.Type)
		txType = &t
	}
	return models.TransactionPatch{
		Type:         txType,
		Quantity:     req.Quantity,
		Date:         req.Date,
		Remarks:      req.Remarks,
		SerialNumber: req.SerialNumber,
	}
}

// PostTransactionHandler handles POST /items/{id}/transactions.
type PostTransactionHandler struct {
	svc *appsvcs.Services
}

// NewPostTransactionHandler returns a PostTransactionHandler backed by the given services.
func NewPostTransactionHandler(svc *appsvcs.Services) *PostTransactionHandler {
	return &PostTransactionHandler{svc: svc}
}

// Execute records a purchase or a consumption.
func (h *PostTransactionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateTransactionRequest](w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := gatedItem(r, h.svc, id); err != nil {
		errhttp.WriteError(w, r, err)
		return
	}

	in := appsvcs.NewTransactionInput{
		Type:         models.TransactionType(req.Type),
		Quantity:     req.Quantity,
		Remarks:      req.Remarks,
		SerialNumber: req.SerialNumber,
	}
	if req.Date != nil {
		in.Date = *req.Date
	}

	tx, err := h.svc.Ledger.AddTransaction(r.Context(), id, in)
	if err != nil {
		errhttp.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toTransactionResponse(tx))
}

// PatchTransactionHandler handles PATCH /items/{id}/transactions/{txID}.
type PatchTransactionHandler struct {
	svc *appsvcs.Services
}

// NewPatchTransactionHandler returns a PatchTransactionHandler backed by the given services.
func NewPatchTransactionHandler(svc *appsvcs.Services) *PatchTransactionHandler {
	return &PatchTransactionHandler{svc: svc}
}

// Execute edits a movement in place.
func (h *PatchTransactionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[UpdateTransactionRequest](w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := gatedItem(r, h.svc, id); err != nil {
		errhttp.WriteError(w, r, err)
		return
	}

	tx, err := h.svc.Ledger.UpdateTransaction(r.Context(), id, chi.URLParam(r, "txID"), req.patch())
	if err != nil {
		errhttp.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toTransactionResponse(tx))
}

// DeleteTransactionHandler handles DELETE /items/{id}/transactions/{txID}.
type DeleteTransactionHandler struct {
	svc *appsvcs.Services
}

// NewDeleteTransactionHandler returns a DeleteTransactionHandler backed by the given services.
func NewDeleteTransactionHandler(svc *appsvcs.Services) *DeleteTransactionHandler {
	return &DeleteTransactionHandler{svc: svc}
}

// Execute removes a movement.
func (h *DeleteTransactionHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := gatedItem(r, h.svc, id); err != nil {
		errhttp.WriteError(w, r, err)
		return
	}
	if err := h.svc.Ledger.DeleteTransaction(r.Context(), id, chi.URLParam(r, "txID")); err != nil {
		errhttp.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
