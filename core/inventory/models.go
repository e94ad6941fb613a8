package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kymanga/vifaa/core"
)

// LocationKind says where an item (or a filter) points to: a school site,
// the headquarters store, or nowhere yet.
type LocationKind string

const (
	KindSchool       LocationKind = "school"
	KindHeadquarters LocationKind = "headquarters"
	KindUnassigned   LocationKind = "unassigned"
)

var AllLocationKinds = []LocationKind{KindSchool, KindHeadquarters, KindUnassigned}

func (k LocationKind) Valid() bool {
	for _, known := range AllLocationKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Status is an item's lifecycle state.
type Status string

const (
	StatusAvailable Status = "available"
	StatusAssigned  Status = "assigned"
	StatusDamaged   Status = "damaged"
	StatusLost      Status = "lost"
	StatusDisposed  Status = "disposed"
)

var AllStatuses = []Status{StatusAvailable, StatusAssigned, StatusDamaged, StatusLost, StatusDisposed}

func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// LocationOption is one entry of the location filter dropdown.
type LocationOption struct {
	Name string       `json:"name"`
	Kind LocationKind `json:"kind"`
}

var (
	OptionAllSchools   = LocationOption{Name: "All Schools"}
	OptionSchool       = LocationOption{Name: "School", Kind: KindSchool}
	OptionHeadquarters = LocationOption{Name: "Headquarters", Kind: KindHeadquarters}
	OptionUnassigned   = LocationOption{Name: "Unassigned", Kind: KindUnassigned}

	allLocationOptions        = []LocationOption{OptionAllSchools, OptionSchool, OptionHeadquarters, OptionUnassigned}
	restrictedLocationOptions = []LocationOption{OptionAllSchools, OptionSchool}
)

// PermissionContext holds the server-asserted capabilities of the current
// viewer. The zero value denies everything; Loaded reports whether the
// context has actually been fetched (deny by default until then).
type PermissionContext struct {
	ViewerID                     uuid.UUID   `json:"viewer_id"`
	IsAdmin                      bool        `json:"is_admin"`
	CanDelete                    bool        `json:"can_delete"`
	CanManageCategories          bool        `json:"can_manage_categories"`
	CanAccessRestrictedLocations bool        `json:"can_access_restricted_locations"`
	AllowedLocationIDs           []uuid.UUID `json:"allowed_location_ids"`
	Loaded                       bool        `json:"-"`
}

func (pc PermissionContext) AllowsLocation(id uuid.UUID) bool {
	if pc.IsAdmin {
		return true
	}
	for _, allowed := range pc.AllowedLocationIDs {
		if allowed == id {
			return true
		}
	}
	return false
}

// Item is one inventory record, a read-mostly snapshot of the server's copy.
type Item struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	CategoryID    uuid.UUID       `json:"category_id"`
	LocationKind  LocationKind    `json:"location_kind"`
	LocationID    uuid.UUID       `json:"location_id"` // set iff LocationKind == KindSchool
	Status        Status          `json:"status"`
	PurchaseValue decimal.Decimal `json:"purchase_value"`
}

type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type Location struct {
	ID   uuid.UUID    `json:"id"`
	Name string       `json:"name"`
	Kind LocationKind `json:"kind"`
}

// Assignee is a user an item can be handed to via a transfer.
type Assignee struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// FilterState is the active item query. Zero values mean "no filter".
type FilterState struct {
	LocationKind LocationKind `json:"location_kind" validate:"omitempty,locationkind"`
	LocationID   uuid.UUID    `json:"location_id"`
	CategoryID   uuid.UUID    `json:"category_id"`
	Status       Status       `json:"status" validate:"omitempty,itemstatus"`
	Search       string       `json:"search"`
}

func (fs *FilterState) Clean() {
	fs.Search = core.CleanString(fs.Search)
	fs.normalize()
}

// normalize enforces the location invariant: a school filter is the only
// kind that may carry a location ID.
func (fs *FilterState) normalize() {
	if fs.LocationKind != KindSchool {
		fs.LocationID = uuid.Nil
	}
}

func (fs FilterState) IsEmpty() bool {
	return fs.LocationKind == "" && fs.LocationID == uuid.Nil && fs.CategoryID == uuid.Nil &&
		fs.Status == "" && fs.Search == ""
}

func (fs FilterState) Validate() error { return core.Validate.Struct(fs) }

// Scoped drops the search text, leaving the subset of the filter that scopes
// summary and export requests. Search is deliberately not part of that scope.
func (fs FilterState) Scoped() ScopedFilter {
	return ScopedFilter{
		LocationKind: fs.LocationKind,
		LocationID:   fs.LocationID,
		CategoryID:   fs.CategoryID,
		Status:       fs.Status,
	}
}

// ScopedFilter is FilterState minus the search text.
type ScopedFilter struct {
	LocationKind LocationKind `json:"location_kind"`
	LocationID   uuid.UUID    `json:"location_id"`
	CategoryID   uuid.UUID    `json:"category_id"`
	Status       Status       `json:"status"`
}

// CategoryAggregate is one per-category slice of the summary. Name may be nil
// when the backend could not resolve the category (e.g. deleted category).
type CategoryAggregate struct {
	CategoryID uuid.UUID       `json:"category_id"`
	Name       *string         `json:"name"`
	Count      int             `json:"count"`
	Value      decimal.Decimal `json:"value"`
}

// Summary holds the server-computed aggregates for the current scoped filter.
type Summary struct {
	ByStatus   map[Status]int      `json:"by_status"`
	ByCategory []CategoryAggregate `json:"by_category"`
	TotalCount int                 `json:"total_count"`
	TotalValue decimal.Decimal     `json:"total_value"`
}

// StatusCount returns the summary count for a status, 0 for unseen statuses.
func (s Summary) StatusCount(st Status) int {
	return s.ByStatus[st]
}

// Modal names the dialogs the presentation layer may open through the
// controller. The controller keeps a plain flag bag; it does not enforce
// mutual exclusion between modals.
type Modal string

const (
	ModalAdd           Modal = "add"
	ModalDetails       Modal = "details"
	ModalCategory      Modal = "category"
	ModalTransfer      Modal = "transfer"
	ModalReport        Modal = "report"
	ModalConfirmDelete Modal = "confirmDelete"
)

// ChartPoint is the {name, value} pair shape chart widgets consume.
type ChartPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}
