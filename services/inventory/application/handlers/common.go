package handlers

import (
	"fmt"
	"net/http"

	"github.com/ghuser/stockledger/pkg/auth"
	inventorydomain "github.com/ghuser/stockledger/services/inventory/domain"
	"github.com/ghuser/stockledger/services/inventory/domain/models"
	appsvcs "github.com/ghuser/stockledger/services/inventory/application/services"
)

// gate returns ErrAuthorization when the caller's role may not see category.
func gate(r *http.Request, category models.ItemType) error {
	role, err := auth.RoleFromCtx(r.Context())
	if err != nil {
		return err
	}
	if !auth.CanAccess(role, string(category)) {
		return fmt.Errorf("%w: role %s cannot access %s", inventorydomain.ErrAuthorization, role, category.Label())
	}
	return nil
}

// gatedItem loads an item and checks the caller may see its category.
func gatedItem(r *http.Request, svc *appsvcs.Services, id string) (models.Item, error) {
	it, err := svc.Ledger.Item(r.Context(), id)
	if err != nil {
		return models.Item{}, err
	}
	if err := gate(r, it.Type); err != nil {
		return models.Item{}, err
	}
	return it, nil
}

// category parses the category query parameter.
func category(r *http.Request) (models.ItemType, error) {
	c, err := models.ParseItemType(r.URL.Query().Get("category"))
	if err != nil {
		return "", fmt.Errorf("%w: %w", inventorydomain.ErrValidation, err)
	}
	return c, nil
}
