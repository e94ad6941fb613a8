package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kymanga/vifaa/core/inventory"
	dummyapi "github.com/kymanga/vifaa/storage/apiclient/dummy"
)

func OpenAPI(t *testing.T) (*dummyapi.DB, *dummyapi.Service) {
	db, err := dummyapi.Open()
	if err != nil {
		t.Fatalf("OpenAPI() failed: %v", err)
	}
	return db, dummyapi.NewService(db)
}

func CreateItem(
	t *testing.T,
	db *dummyapi.DB,
	name string,
	categoryID uuid.UUID,
	kind inventory.LocationKind,
	locationID uuid.UUID,
	status inventory.Status,
	value int64,
) inventory.Item {
	item := inventory.Item{
		Name:          name,
		CategoryID:    categoryID,
		LocationKind:  kind,
		LocationID:    locationID,
		Status:        status,
		PurchaseValue: decimal.NewFromInt(value),
	}
	return db.AddItem(item)
}

// AdminContext returns a permission context that allows everything.
func AdminContext() inventory.PermissionContext {
	return inventory.PermissionContext{
		ViewerID:                     uuid.New(),
		IsAdmin:                      true,
		CanDelete:                    true,
		CanManageCategories:          true,
		CanAccessRestrictedLocations: true,
	}
}
