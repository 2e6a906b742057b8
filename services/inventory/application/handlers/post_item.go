package handlers

import (
	"net/http"

	"github.com/ghuser/stockledger/pkg/errhttp"
	"github.com/ghuser/stockledger/pkg/httpx"
	pkgvalidator "github.com/ghuser/stockledger/pkg/validator"
	appsvcs "github.com/ghuser/stockledger/services/inventory/application/services"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
)

// CreateItemRequest is the request body for POST /items.
type CreateItemRequest struct {
	Type            string `json:"type" validate:"required,oneof=part product"`
	Code            string `json:"code" validate:"max=64"`
	DrawingNumber   string `json:"drawing_number" validate:"max=64"`
	Name            string `json:"name" validate:"notblank,max=255"`
	Spec            string `json:"spec" validate:"max=1024"`
	UnitPrice       Price  `json:"unit_price"`
	Remarks         string `json:"remarks" validate:"max=2048"`
	InitialQuantity int    `json:"initial_quantity" validate:"gte=0"`
}

// PostItemHandler handles POST /items requests.
type PostItemHandler struct {
	svc *appsvcs.Services
}

// NewPostItemHandler returns a PostItemHandler backed by the given services.
func NewPostItemHandler(svc *appsvcs.Services) *PostItemHandler {
	return &PostItemHandler{svc: svc}
}

// Execute registers a new item, optionally with initial stock.
func (h *PostItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[CreateItemRequest](w, r)
	if !ok {
		return
	}

	itemType := models.ItemType(req.Type)
	if err := gate(r, itemType); err != nil {
		errhttp.WriteError(w, r, err)
		return
	}

	item, err := h.svc.Ledger.CreateItem(r.Context(), appsvcs.NewItemInput{
		Type:          itemType,
		Code:          req.Code,
		DrawingNumber: req.DrawingNumber,
		Name:          req.Name,
		Spec:          req.Spec,
		UnitPrice:     req.UnitPrice.Decimal,
		Remarks:       req.Remarks,
	}, req.InitialQuantity)
	if err != nil {
		errhttp.WriteError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toItemResponse(item, true))
}
