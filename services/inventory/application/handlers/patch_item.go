package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/ghuser/stockledger/pkg/errhttp"
	"github.com/ghuser/stockledger/pkg/httpx"
	pkgvalidator "github.com/ghuser/stockledger/pkg/validator"
	appsvcs "github.com/ghuser/stockledger/services/inventory/application/services"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
)

// UpdateItemRequest is the request body for PATCH /items/{id}. Absent fields
// are left unchanged.
type UpdateItemRequest struct {
	Code          *string `json:"code" validate:"omitnil,max=64"`
	DrawingNumber *string `json:"drawing_number" validate:"omitnil,max=64"`
	Name          *string `json:"name" validate:"omitnil,max=255"`
	Spec          *string `json:"spec" validate:"omitnil,max=1024"`
	UnitPrice     *Price  `json:"unit_price"`
	Remarks       *string `json:"remarks" validate:"omitnil,max=2048"`
}

func (req UpdateItemRequest) patch() models.ItemPatch {
	var price *decimal.Decimal
	if req.UnitPrice != nil {
		price = &req.UnitPrice.Decimal
	}
	return models.ItemPatch{
		Code:          req.Code,
		DrawingNumber: req.DrawingNumber,
		Name:          req.Name,
		Spec:          req.Spec,
		UnitPrice:     price,
		Remarks:       req.Remarks,
	}
}

// PatchItemHandler handles PATCH /items/{id}.
type PatchItemHandler struct {
	svc *appsvcs.Services
}

// NewPatchItemHandler returns a PatchItemHandler backed by the given services.
func NewPatchItemHandler(svc *appsvcs.Services) *PatchItemHandler {
	return &PatchItemHandler{svc: svc}
}

// Execute merges the supplied fields into the item.
func (h *PatchItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[UpdateItemRequest](w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := gatedItem(r, h.svc, id); err != nil {
		errhttp.WriteError(w, r, err)
		return
	}

	item, err := h.svc.Ledger.UpdateItem(r.Context(), id, req.patch())
	if err != nil {
		errhttp.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(item, true))
}
