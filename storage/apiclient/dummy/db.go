package dummyapi

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/kymanga/vifaa/core/inventory"
)

// DB is an in-memory stand-in for the ERP backend's data, shared by the fake
// API service. Used by tests and by invctl's demo mode.
type DB struct {
	sync.RWMutex
	perm       inventory.PermissionContext
	items      map[uuid.UUID]*inventory.Item
	categories map[uuid.UUID]*inventory.Category
	locations  []inventory.Location
	assignees  []inventory.Assignee
}

func Open() (*DB, error) {
	return &DB{
		items:      make(map[uuid.UUID]*inventory.Item),
		categories: make(map[uuid.UUID]*inventory.Category),
	}, nil
}

func (db *DB) SetPermissions(perm inventory.PermissionContext) {
	db.Lock()
	defer db.Unlock()
	db.perm = perm
}

func (db *DB) AddCategory(name string) inventory.Category {
	db.Lock()
	defer db.Unlock()
	cat := inventory.Category{ID: uuid.New(), Name: name}
	db.categories[cat.ID] = &cat
	return cat
}

func (db *DB) AddLocation(name string, kind inventory.LocationKind) inventory.Location {
	db.Lock()
	defer db.Unlock()
	loc := inventory.Location{ID: uuid.New(), Name: name, Kind: kind}
	db.locations = append(db.locations, loc)
	return loc
}

func (db *DB) AddAssignee(name, email string) inventory.Assignee {
	db.Lock()
	defer db.Unlock()
	user := inventory.Assignee{ID: uuid.New(), Name: name, Email: email}
	db.assignees = append(db.assignees, user)
	return user
}

// AddItem stores an item, assigning an ID when none is set.
func (db *DB) AddItem(item inventory.Item) inventory.Item {
	db.Lock()
	defer db.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	db.items[item.ID] = &item
	return item
}

// query returns all items sorted by name for deterministic listings.
func (db *DB) query() []inventory.Item {
	items := make([]inventory.Item, 0, len(db.items))
	for _, item := range db.items {
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].ID.String() < items[j].ID.String()
	})
	return items
}
