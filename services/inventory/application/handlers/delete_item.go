package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/stockledger/pkg/auth"
	"github.com/ghuser/stockledger/pkg/errhttp"
	"github.com/ghuser/stockledger/pkg/logger"
	pkgvalidator "github.com/ghuser/stockledger/pkg/validator"
	appsvcs "github.com/ghuser/stockledger/services/inventory/application/services"
)

// DeleteItemRequest is the request body for DELETE /items/{id}. The caller
// re-enters the secret of their own role.
type DeleteItemRequest struct {
	Password string `json:"password" validate:"required"`
}

// DeleteItemHandler handles DELETE /items/{id}.
type DeleteItemHandler struct {
	svc *appsvcs.Services
	log logger.Logger
}

// NewDeleteItemHandler returns a DeleteItemHandler backed by the given services.
func NewDeleteItemHandler(svc *appsvcs.Services, log logger.Logger) *DeleteItemHandler {
	return &DeleteItemHandler{svc: svc, log: log}
}

// Execute irreversibly removes an item and its history.
func (h *DeleteItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[DeleteItemRequest](w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := gatedItem(r, h.svc, id); err != nil {
		errhttp.WriteError(w, r, err)
		return
	}
	role, err := auth.RoleFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, r, err)
		return
	}

	if err := h.svc.Ledger.DeleteItem(r.Context(), role, id, req.Password); err != nil {
		errhttp.WriteError(w, r, err)
		return
	}
	h.log.InfoContext(r.Context(), "item deleted", "item_id", id, "role", role)
	w.WriteHeader(http.StatusNoContent)
}
