package dummyapi

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kymanga/vifaa/core"
	"github.com/kymanga/vifaa/core/inventory"
)

// Call names, as recorded by Calls().
const (
	CallPermissions = "permissions"
	CallItems       = "items"
	CallSummary     = "summary"
	CallCategories  = "categories"
	CallLocations   = "locations"
	CallAssignees   = "assignees"
	CallDelete      = "delete"
	CallExport      = "export"
	CallCertificate = "certificate"
)

// Service is a fake inventory.API backed by an in-memory DB. Tests can
// inject per-call failures, block calls behind gates and inspect the
// recorded call order.
type Service struct {
	db *DB

	mu         sync.Mutex
	calls      []string
	errs       map[string]error
	gates      map[string]chan struct{}
	lastExport *inventory.ScopedFilter
}

var _ inventory.API = (*Service)(nil) // interface compliance check

func NewService(db *DB) *Service {
	return &Service{
		db:    db,
		errs:  make(map[string]error),
		gates: make(map[string]chan struct{}),
	}
}

// FailWith makes every subsequent `call` return err (nil clears it).
func (s *Service) FailWith(call string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.errs, call)
		return
	}
	s.errs[call] = err
}

// Gate blocks every subsequent `call` until the returned channel is closed.
func (s *Service) Gate(call string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	gate := make(chan struct{})
	s.gates[call] = gate
	return gate
}

// Calls returns the recorded call names in invocation order.
func (s *Service) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *Service) CallCount(call string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int
	for _, recorded := range s.calls {
		if recorded == call {
			count++
		}
	}
	return count
}

// LastExportFilter returns the scope of the most recent export request.
func (s *Service) LastExportFilter() *inventory.ScopedFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastExport == nil {
		return nil
	}
	filter := *s.lastExport
	return &filter
}

// begin records the call, waits on its gate and returns any injected error.
func (s *Service) begin(call string) error {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	gate := s.gates[call]
	err := s.errs[call]
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return err
}

func (s *Service) FetchPermissionContext(ctx context.Context) (inventory.PermissionContext, error) {
	if err := s.begin(CallPermissions); err != nil {
		return inventory.PermissionContext{}, err
	}
	s.db.RLock()
	defer s.db.RUnlock()
	return s.db.perm, nil
}

func (s *Service) FetchItems(ctx context.Context, filter inventory.FilterState) ([]inventory.Item, error) {
	if err := s.begin(CallItems); err != nil {
		return nil, err
	}
	s.db.RLock()
	defer s.db.RUnlock()
	return s.filtered(filter), nil
}

func (s *Service) FetchSummary(ctx context.Context, filter inventory.ScopedFilter) (inventory.Summary, error) {
	if err := s.begin(CallSummary); err != nil {
		return inventory.Summary{}, err
	}
	s.db.RLock()
	defer s.db.RUnlock()

	summary := inventory.Summary{ByStatus: make(map[inventory.Status]int)}
	byCat := make(map[uuid.UUID]*inventory.CategoryAggregate)
	var catOrder []uuid.UUID
	for _, item := range s.filtered(scopedOnly(filter)) {
		summary.TotalCount++
		summary.TotalValue = summary.TotalValue.Add(item.PurchaseValue)
		summary.ByStatus[item.Status]++

		agg, ok := byCat[item.CategoryID]
		if !ok {
			agg = &inventory.CategoryAggregate{CategoryID: item.CategoryID}
			if cat, known := s.db.categories[item.CategoryID]; known {
				name := cat.Name
				agg.Name = &name
			}
			byCat[item.CategoryID] = agg
			catOrder = append(catOrder, item.CategoryID)
		}
		agg.Count++
		agg.Value = agg.Value.Add(item.PurchaseValue)
	}
	for _, catID := range catOrder {
		summary.ByCategory = append(summary.ByCategory, *byCat[catID])
	}
	return summary, nil
}

func (s *Service) FetchCategories(ctx context.Context) ([]inventory.Category, error) {
	if err := s.begin(CallCategories); err != nil {
		return nil, err
	}
	s.db.RLock()
	defer s.db.RUnlock()
	cats := make([]inventory.Category, 0, len(s.db.categories))
	for _, cat := range s.db.categories {
		cats = append(cats, *cat)
	}
	return cats, nil
}

func (s *Service) FetchAllowedLocations(ctx context.Context) ([]inventory.Location, error) {
	if err := s.begin(CallLocations); err != nil {
		return nil, err
	}
	s.db.RLock()
	defer s.db.RUnlock()
	return append([]inventory.Location(nil), s.db.locations...), nil
}

func (s *Service) FetchAssignableUsers(ctx context.Context) ([]inventory.Assignee, error) {
	if err := s.begin(CallAssignees); err != nil {
		return nil, err
	}
	s.db.RLock()
	defer s.db.RUnlock()
	return append([]inventory.Assignee(nil), s.db.assignees...), nil
}

func (s *Service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if err := s.begin(CallDelete); err != nil {
		return err
	}
	s.db.Lock()
	defer s.db.Unlock()
	item, ok := s.db.items[id]
	if !ok {
		return core.NewAPIError(http.StatusNotFound, "item not found")
	}
	if item.Status == inventory.StatusAssigned {
		return core.NewAPIError(http.StatusBadRequest, "item is currently assigned")
	}
	delete(s.db.items, id)
	return nil
}

func (s *Service) ExportItems(ctx context.Context, filter inventory.ScopedFilter) ([]byte, error) {
	if err := s.begin(CallExport); err != nil {
		return nil, err
	}
	s.mu.Lock()
	scope := filter
	s.lastExport = &scope
	s.mu.Unlock()

	s.db.RLock()
	defer s.db.RUnlock()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"id", "name", "category", "status", "purchase_value"})
	for _, item := range s.filtered(scopedOnly(filter)) {
		var catName string
		if cat, ok := s.db.categories[item.CategoryID]; ok {
			catName = cat.Name
		}
		_ = w.Write([]string{
			item.ID.String(), item.Name, catName, string(item.Status),
			item.PurchaseValue.StringFixed(2),
		})
	}
	w.Flush()
	return buf.Bytes(), nil
}

func (s *Service) GenerateItemCertificate(ctx context.Context, id uuid.UUID) ([]byte, error) {
	if err := s.begin(CallCertificate); err != nil {
		return nil, err
	}
	s.db.RLock()
	defer s.db.RUnlock()
	item, ok := s.db.items[id]
	if !ok {
		return nil, core.NewAPIError(http.StatusNotFound, "item not found")
	}
	doc := "OWNERSHIP CERTIFICATE\n\nItem: " + item.Name + "\nRef: " + item.ID.String() +
		"\nValue: " + item.PurchaseValue.StringFixed(2) + "\n"
	return []byte(doc), nil
}

// filtered applies the filter the way the real backend does: exact matches
// on the scoped fields, case-insensitive substring match on the name for
// the search text. Caller must hold the DB read lock.
func (s *Service) filtered(filter inventory.FilterState) []inventory.Item {
	search := strings.ToLower(filter.Search)
	matched := make([]inventory.Item, 0, len(s.db.items))
	for _, item := range s.db.query() {
		if filter.LocationKind != "" && item.LocationKind != filter.LocationKind {
			continue
		}
		if filter.LocationID != uuid.Nil && item.LocationID != filter.LocationID {
			continue
		}
		if filter.CategoryID != uuid.Nil && item.CategoryID != filter.CategoryID {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(item.Name), search) {
			continue
		}
		matched = append(matched, item)
	}
	return matched
}

func scopedOnly(filter inventory.ScopedFilter) inventory.FilterState {
	return inventory.FilterState{
		LocationKind: filter.LocationKind,
		LocationID:   filter.LocationID,
		CategoryID:   filter.CategoryID,
		Status:       filter.Status,
	}
}
