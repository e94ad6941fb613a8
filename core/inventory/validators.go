package inventory

import (
	"github.com/go-playground/validator/v10"

	"github.com/kymanga/vifaa/core"
)

var (
	locationKindTag  = "locationkind"
	locationKindText = "invalid location kind"

	itemStatusTag  = "itemstatus"
	itemStatusText = "invalid item status"
)

// register custom validators
func init() {
	_ = core.Validate.RegisterValidation(locationKindTag, locationKindValidation)
	core.RegisterCustomTranslation(locationKindTag, locationKindText)

	_ = core.Validate.RegisterValidation(itemStatusTag, itemStatusValidation)
	core.RegisterCustomTranslation(itemStatusTag, itemStatusText)
}

// Custom Validators

// locationKindValidation checks that the value is one of AllLocationKinds.
func locationKindValidation(fl validator.FieldLevel) bool {
	return LocationKind(fl.Field().String()).Valid()
}

// itemStatusValidation checks that the value is one of AllStatuses.
func itemStatusValidation(fl validator.FieldLevel) bool {
	return Status(fl.Field().String()).Valid()
}
