package main

import (
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kymanga/vifaa/core/inventory"
	dummyapi "github.com/kymanga/vifaa/storage/apiclient/dummy"
)

// newDemoAPI seeds the in-memory backend with a small school inventory so
// the CLI can be tried without a running ERP.
func newDemoAPI() inventory.API {
	db, err := dummyapi.Open()
	if err != nil {
		log.Fatalf("opening demo backend: %v", err)
	}

	db.SetPermissions(inventory.PermissionContext{
		ViewerID:            uuid.New(),
		IsAdmin:             true,
		CanDelete:           true,
		CanManageCategories: true,
	})

	furniture := db.AddCategory("Furniture")
	electronics := db.AddCategory("Electronics")
	lab := db.AddCategory("Lab Equipment")

	school := db.AddLocation("Mwangaza Primary", inventory.KindSchool)
	db.AddLocation("Tumaini Secondary", inventory.KindSchool)
	db.AddAssignee("Amina Juma", "amina.juma@example.org")
	db.AddAssignee("David Otieno", "david.otieno@example.org")

	seed := []inventory.Item{
		{Name: "Teacher desk", CategoryID: furniture.ID, LocationKind: inventory.KindSchool, LocationID: school.ID, Status: inventory.StatusAvailable, PurchaseValue: decimal.NewFromInt(120)},
		{Name: "Student chair", CategoryID: furniture.ID, LocationKind: inventory.KindSchool, LocationID: school.ID, Status: inventory.StatusAssigned, PurchaseValue: decimal.NewFromInt(15)},
		{Name: "Projector", CategoryID: electronics.ID, LocationKind: inventory.KindHeadquarters, Status: inventory.StatusAvailable, PurchaseValue: decimal.NewFromInt(450)},
		{Name: "Laptop", CategoryID: electronics.ID, LocationKind: inventory.KindSchool, LocationID: school.ID, Status: inventory.StatusDamaged, PurchaseValue: decimal.NewFromInt(600)},
		{Name: "Microscope", CategoryID: lab.ID, LocationKind: inventory.KindUnassigned, Status: inventory.StatusAvailable, PurchaseValue: decimal.NewFromInt(250)},
	}
	for _, item := range seed {
		db.AddItem(item)
	}
	return dummyapi.NewService(db)
}
