package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/stockledger/pkg/errhttp"
	"github.com/ghuser/stockledger/pkg/httpx"
	appsvcs "github.com/ghuser/stockledger/services/inventory/application/services"
	domainsvcs "github.com/ghuser/stockledger/services/inventory/domain/services"
)

// ListItemsResponse is returned by GET /items.
type ListItemsResponse struct {
	Items []ItemResponse `json:"items"`
}

// ListItemsHandler handles GET /items?category=&q=.
type ListItemsHandler struct {
	svc *appsvcs.Services
}

// NewListItemsHandler returns a ListItemsHandler backed by the given services.
func NewListItemsHandler(svc *appsvcs.Services) *ListItemsHandler {
	return &ListItemsHandler{svc: svc}
}

// Execute filters one category by name, code or serial number.
func (h *ListItemsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	cat, err := category(r)
	if err != nil {
		errhttp.WriteError(w, r, err)
		return
	}
	if err := gate(r, cat); err != nil {
		errhttp.WriteError(w, r, err)
		return
	}

	resp := ListItemsResponse{Items: []ItemResponse{}}
	for it := range domainsvcs.Filter(h.svc.Ledger.Items(r.Context()), cat, r.URL.Query().Get("q")) {
		resp.Items = append(resp.Items, toItemResponse(it, false))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// GetItemHandler handles GET /items/{id}.
type GetItemHandler struct {
	svc *appsvcs.Services
}

// NewGetItemHandler returns a GetItemHandler backed by the given services.
func NewGetItemHandler(svc *appsvcs.Services) *GetItemHandler {
	return &GetItemHandler{svc: svc}
}

// Execute returns one item with its full transaction history.
func (h *GetItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	it, err := gatedItem(r, h.svc, chi.URLParam(r, "id"))
	if err != nil {
		errhttp.WriteError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(it, true))
}

// DuplicatesResponse is returned by GET /items/duplicates.
type DuplicatesResponse struct {
	Code          bool `json:"code"`
	DrawingNumber bool `json:"drawing_number"`
}

// DuplicatesHandler handles GET /items/duplicates?code=&drawing_number=.
type DuplicatesHandler struct {
	svc *appsvcs.Services
}

// NewDuplicatesHandler returns a DuplicatesHandler backed by the given services.
func NewDuplicatesHandler(svc *appsvcs.Services) *DuplicatesHandler {
	return &DuplicatesHandler{svc: svc}
}

// Execute reports, field by field, whether a candidate is already registered.
// Creation re-checks authoritatively.
func (h *DuplicatesHandler) Execute(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items := h.svc.Ledger.Items(r.Context())
	httpx.JSON(w, http.StatusOK, DuplicatesResponse{
		Code:          domainsvcs.IsDuplicateCode(q.Get("code"), items),
		DrawingNumber: domainsvcs.IsDuplicateDrawingNumber(q.Get("drawing_number"), items),
	})
}
