package inventory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kymanga/vifaa/core"
)

// user-facing notification texts
const (
	errGenericMsg      = "something went wrong, please try again"
	errPermLoadMsg     = "could not load your permissions, some actions are disabled"
	errDeleteDeniedMsg = "you are not allowed to delete inventory items"
	errNoSelectionMsg  = "select at least one item to transfer"

	deletedMsg = "item deleted"
)

// collection names a cached dataset a mutating action may invalidate.
// Every action declares the collections it dirties; refetch serves them all.
type collection int

const (
	colItems collection = iota
	colSummary
	colCategories
)

type (
	// Loading reports which controller operations are currently in flight.
	// Certificates is keyed by item ID so concurrent certificate requests
	// for different items do not share a spinner.
	Loading struct {
		Permissions  bool
		References   bool
		Items        bool
		Summary      bool
		Delete       bool
		Export       bool
		Certificates map[uuid.UUID]bool
	}

	// Controller is the single source of truth for one inventory view:
	// permission context, filtered item list, summary, reference lists,
	// multi-select, modal flags and CRUD orchestration. One instance per
	// mounted view; collaborators are injected, nothing is ambient.
	Controller struct {
		api      API
		notifier core.Notifier
		logger   core.Logger
		alive    *core.Liveness

		mu         sync.RWMutex
		perm       PermissionContext
		filter     FilterState
		items      []Item
		summary    Summary
		categories []Category
		locations  []Location
		assignees  []Assignee
		selection  *SelectionSet
		modals     map[Modal]bool
		staged     *Item // item staged for deletion
		loading    Loading
	}
)

func NewController(api API, notifier core.Notifier, logger core.Logger) *Controller {
	return &Controller{
		api:       api,
		notifier:  notifier,
		logger:    logger,
		alive:     core.NewLiveness(),
		selection: NewSelectionSet(),
		modals:    make(map[Modal]bool),
		loading:   Loading{Certificates: make(map[uuid.UUID]bool)},
	}
}

// Close marks the consuming view as unmounted. In-flight requests run to
// completion but no longer touch state or emit notifications.
func (c *Controller) Close() {
	c.alive.Terminate()
}

// Initialize loads everything the view needs: the permission context first
// (location options and default filters depend on it), then the reference
// lists and the filtered item list + summary, fetched jointly. It returns
// once all of them settled.
func (c *Controller) Initialize(ctx context.Context) {
	c.loadPermissions(ctx)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.loadReferences(ctx)
	}()
	go func() {
		defer wg.Done()
		c.refetch(ctx, colItems, colSummary)
	}()
	wg.Wait()
}

// loadPermissions fetches the viewer's capabilities. A failed fetch still
// resolves Loaded so the view is not stuck loading; the context then denies
// everything.
func (c *Controller) loadPermissions(ctx context.Context) {
	c.setLoading(func(l *Loading) { l.Permissions = true })

	perm, err := c.api.FetchPermissionContext(ctx)
	if !c.alive.Alive() {
		return
	}
	if err != nil {
		c.logger.Error("loading permission context", errors.Wrap(err, "fetching permission context"))
		c.notifier.Notify(core.NotifyError, errPermLoadMsg)
		perm = PermissionContext{}
	}
	perm.Loaded = true

	c.mu.Lock()
	c.perm = perm
	c.loading.Permissions = false
	c.mu.Unlock()
}

// loadReferences fetches the category, location and assignee lists jointly.
// They do not depend on the filter and are not reloaded on filter changes.
func (c *Controller) loadReferences(ctx context.Context) {
	c.setLoading(func(l *Loading) { l.References = true })

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		cats, err := c.api.FetchCategories(ctx)
		c.commit(err, "loading categories", func() { c.categories = cats })
	}()
	go func() {
		defer wg.Done()
		locs, err := c.api.FetchAllowedLocations(ctx)
		c.commit(err, "loading locations", func() { c.locations = locs })
	}()
	go func() {
		defer wg.Done()
		users, err := c.api.FetchAssignableUsers(ctx)
		c.commit(err, "loading assignable users", func() { c.assignees = users })
	}()
	wg.Wait()

	c.setLoading(func(l *Loading) { l.References = false })
}

// refetch reloads the given cached collections jointly and returns once all
// of them settled.
func (c *Controller) refetch(ctx context.Context, cols ...collection) {
	var wg sync.WaitGroup
	for _, col := range cols {
		col := col
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch col {
			case colItems:
				c.fetchItems(ctx)
			case colSummary:
				c.fetchSummary(ctx)
			case colCategories:
				c.fetchCategories(ctx)
			}
		}()
	}
	wg.Wait()
}

func (c *Controller) fetchItems(ctx context.Context) {
	c.mu.Lock()
	c.loading.Items = true
	filter := c.filter
	c.mu.Unlock()

	items, err := c.api.FetchItems(ctx, filter)
	if !c.alive.Alive() {
		return
	}
	if err != nil {
		c.setLoading(func(l *Loading) { l.Items = false })
		c.fail("loading inventory items", err)
		return
	}

	c.mu.Lock()
	c.items = items
	c.selection.Clear() // a fresh list may no longer contain selected IDs
	c.loading.Items = false
	c.mu.Unlock()
}

func (c *Controller) fetchSummary(ctx context.Context) {
	c.mu.Lock()
	c.loading.Summary = true
	scoped := c.filter.Scoped()
	c.mu.Unlock()

	summary, err := c.api.FetchSummary(ctx, scoped)
	if !c.alive.Alive() {
		return
	}
	if err != nil {
		c.setLoading(func(l *Loading) { l.Summary = false })
		c.fail("loading inventory summary", err)
		return
	}

	c.mu.Lock()
	c.summary = summary
	c.loading.Summary = false
	c.mu.Unlock()
}

func (c *Controller) fetchCategories(ctx context.Context) {
	cats, err := c.api.FetchCategories(ctx)
	c.commit(err, "loading categories", func() { c.categories = cats })
}

// FilterKey names one FilterState field for UpdateFilter.
type FilterKey string

const (
	FilterLocationKind FilterKey = "location_kind"
	FilterLocationID   FilterKey = "location_id"
	FilterCategory     FilterKey = "category_id"
	FilterStatus       FilterKey = "status"
	FilterSearch       FilterKey = "search"
)

// UpdateFilter applies one filter field, clears the selection and reloads
// items + summary (reference lists are untouched). Setting the location kind
// to anything but a school clears the school ID as a side effect; callers
// never have to do that themselves.
func (c *Controller) UpdateFilter(ctx context.Context, key FilterKey, value interface{}) error {
	c.mu.Lock()
	switch key {
	case FilterLocationKind:
		kind, ok := value.(LocationKind)
		if !ok {
			c.mu.Unlock()
			return errors.Errorf("filter %q: want LocationKind, got %T", key, value)
		}
		if kind != "" && !kind.Valid() {
			c.mu.Unlock()
			return core.NewValidationError(nil, core.FieldError{Field: string(key), Error: locationKindText})
		}
		c.filter.LocationKind = kind
	case FilterLocationID:
		id, ok := value.(uuid.UUID)
		if !ok {
			c.mu.Unlock()
			return errors.Errorf("filter %q: want uuid.UUID, got %T", key, value)
		}
		c.filter.LocationID = id
	case FilterCategory:
		id, ok := value.(uuid.UUID)
		if !ok {
			c.mu.Unlock()
			return errors.Errorf("filter %q: want uuid.UUID, got %T", key, value)
		}
		c.filter.CategoryID = id
	case FilterStatus:
		status, ok := value.(Status)
		if !ok {
			c.mu.Unlock()
			return errors.Errorf("filter %q: want Status, got %T", key, value)
		}
		if status != "" && !status.Valid() {
			c.mu.Unlock()
			return core.NewValidationError(nil, core.FieldError{Field: string(key), Error: itemStatusText})
		}
		c.filter.Status = status
	case FilterSearch:
		s, ok := value.(string)
		if !ok {
			c.mu.Unlock()
			return errors.Errorf("filter %q: want string, got %T", key, value)
		}
		c.filter.Search = core.CleanString(s)
	default:
		c.mu.Unlock()
		return errors.Errorf("unknown filter key %q", key)
	}
	c.filter.normalize()
	c.selection.Clear()
	c.mu.Unlock()

	c.refetch(ctx, colItems, colSummary)
	return nil
}

// ResetFilters restores the default filter, clears the selection and reloads
// items + summary.
func (c *Controller) ResetFilters(ctx context.Context) {
	c.mu.Lock()
	c.filter = FilterState{}
	c.selection.Clear()
	c.mu.Unlock()

	c.refetch(ctx, colItems, colSummary)
}

// Selection

// ToggleItemSelection flips one item's checkbox. IDs not present in the
// loaded list are ignored, keeping the selection a subset of the list.
func (c *Controller) ToggleItemSelection(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasItem(id) {
		return
	}
	c.selection.Toggle(id)
}

// ToggleSelectAll selects every loaded item, or clears the selection when
// everything was already selected.
func (c *Controller) ToggleSelectAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) > 0 && c.selection.Len() == len(c.items) {
		c.selection.Clear()
		return
	}
	c.selection.Clear()
	for _, item := range c.items {
		c.selection.Add(item.ID)
	}
}

func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection.Clear()
}

// SelectedIDs returns the selected item IDs in selection order.
func (c *Controller) SelectedIDs() []uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selection.IDs()
}

// hasItem reports whether an item is in the loaded list. Caller must hold the lock.
func (c *Controller) hasItem(id uuid.UUID) bool {
	for _, item := range c.items {
		if item.ID == id {
			return true
		}
	}
	return false
}

// Modals

func (c *Controller) OpenModal(m Modal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modals[m] = true
}

func (c *Controller) CloseModal(m Modal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.modals, m)
}

func (c *Controller) ModalOpen(m Modal) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.modals[m]
}

// OpenTransfer opens the transfer modal, refusing with a toast when nothing
// is selected.
func (c *Controller) OpenTransfer() {
	c.mu.Lock()
	if c.selection.Len() == 0 {
		c.mu.Unlock()
		c.notifier.Notify(core.NotifyError, errNoSelectionMsg)
		return
	}
	c.modals[ModalTransfer] = true
	c.mu.Unlock()
}

// Deletion

// RequestDelete stages an item and opens the confirmation modal. Viewers
// without the delete capability are refused before any modal opens; an
// unloaded permission context denies as well.
func (c *Controller) RequestDelete(item Item) {
	c.mu.Lock()
	if !c.perm.Loaded || !c.perm.CanDelete {
		c.mu.Unlock()
		c.notifier.Notify(core.NotifyError, errDeleteDeniedMsg)
		return
	}
	staged := item
	c.staged = &staged
	c.modals[ModalConfirmDelete] = true
	c.mu.Unlock()
}

// CancelDelete closes the confirmation modal and unstages the item.
func (c *Controller) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staged = nil
	delete(c.modals, ModalConfirmDelete)
}

// ConfirmDelete deletes the staged item. The item is never removed from
// local state ahead of server confirmation; on failure the modal stays open
// and nothing is refetched. A second call while one is in flight is a no-op.
func (c *Controller) ConfirmDelete(ctx context.Context) {
	c.mu.Lock()
	if c.staged == nil || c.loading.Delete {
		c.mu.Unlock()
		return
	}
	id := c.staged.ID
	c.loading.Delete = true
	c.mu.Unlock()

	err := c.api.DeleteItem(ctx, id)
	if !c.alive.Alive() {
		return
	}
	if err != nil {
		c.setLoading(func(l *Loading) { l.Delete = false })
		c.fail("deleting inventory item", err)
		return
	}

	c.mu.Lock()
	c.staged = nil
	delete(c.modals, ModalConfirmDelete)
	c.loading.Delete = false
	c.mu.Unlock()

	c.notifier.Notify(core.NotifySuccess, deletedMsg)
	c.refetch(ctx, colItems, colSummary)
}

// Documents

// ExportCurrentView downloads the current view as a report document. The
// export is scoped to the location/category/status filters only; the search
// text is not part of the export scope, so the export can be a superset of
// the on-screen list. Returns nil on failure (the user has been notified).
func (c *Controller) ExportCurrentView(ctx context.Context) []byte {
	c.mu.Lock()
	if c.loading.Export {
		c.mu.Unlock()
		return nil
	}
	c.loading.Export = true
	scoped := c.filter.Scoped()
	c.mu.Unlock()

	doc, err := c.api.ExportItems(ctx, scoped)
	if !c.alive.Alive() {
		return nil
	}
	c.setLoading(func(l *Loading) { l.Export = false })
	if err != nil {
		c.fail("exporting inventory items", err)
		return nil
	}
	return doc
}

// PrintCertificate generates the ownership certificate for one item. The
// loading state is keyed by item ID so certificates for different items can
// be generated concurrently. Returns nil on failure or while a request for
// the same item is still running.
func (c *Controller) PrintCertificate(ctx context.Context, id uuid.UUID) []byte {
	c.mu.Lock()
	if c.loading.Certificates[id] {
		c.mu.Unlock()
		return nil
	}
	c.loading.Certificates[id] = true
	c.mu.Unlock()

	doc, err := c.api.GenerateItemCertificate(ctx, id)
	if !c.alive.Alive() {
		return nil
	}
	c.mu.Lock()
	delete(c.loading.Certificates, id)
	c.mu.Unlock()
	if err != nil {
		c.fail("generating item certificate", err)
		return nil
	}
	return doc
}

// Modal completion hooks. Each closes its modal and reloads only the
// collections the change invalidated.

func (c *Controller) CompleteTransferSuccess(ctx context.Context) {
	c.mu.Lock()
	delete(c.modals, ModalTransfer)
	c.selection.Clear()
	c.mu.Unlock()

	c.refetch(ctx, colItems, colSummary)
}

func (c *Controller) CompleteAddSuccess(ctx context.Context) {
	c.mu.Lock()
	delete(c.modals, ModalAdd)
	c.mu.Unlock()

	c.refetch(ctx, colItems, colSummary)
}

func (c *Controller) CompleteCategoryUpdate(ctx context.Context) {
	c.mu.Lock()
	delete(c.modals, ModalCategory)
	c.mu.Unlock()

	c.refetch(ctx, colCategories, colItems, colSummary)
}

// State snapshots for the presentation layer.

func (c *Controller) Permissions() PermissionContext {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.perm
}

func (c *Controller) Filter() FilterState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.filter
}

func (c *Controller) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Item(nil), c.items...)
}

func (c *Controller) Summary() Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.summary
}

func (c *Controller) Categories() []Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Category(nil), c.categories...)
}

func (c *Controller) Locations() []Location {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Location(nil), c.locations...)
}

func (c *Controller) AssignableUsers() []Assignee {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Assignee(nil), c.assignees...)
}

// StagedItem returns a copy of the item staged for deletion, nil when none is.
func (c *Controller) StagedItem() *Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.staged == nil {
		return nil
	}
	staged := *c.staged
	return &staged
}

func (c *Controller) Loading() Loading {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot := c.loading
	snapshot.Certificates = make(map[uuid.UUID]bool, len(c.loading.Certificates))
	for id, on := range c.loading.Certificates {
		snapshot.Certificates[id] = on
	}
	return snapshot
}

// internal helpers

// setLoading mutates the loading flags under lock, unless the view is gone.
func (c *Controller) setLoading(mut func(l *Loading)) {
	if !c.alive.Alive() {
		return
	}
	c.mu.Lock()
	mut(&c.loading)
	c.mu.Unlock()
}

// commit applies the result of a finished fetch, unless the view is gone.
func (c *Controller) commit(err error, op string, apply func()) {
	if !c.alive.Alive() {
		return
	}
	if err != nil {
		c.fail(op, err)
		return
	}
	c.mu.Lock()
	apply()
	c.mu.Unlock()
}

// fail converts a failed call into exactly one user notification: the
// backend's detail message verbatim when it sent one, a fixed fallback
// otherwise. The error itself goes to the logger with the viewer attached.
func (c *Controller) fail(op string, err error) {
	c.mu.RLock()
	perm := c.perm
	c.mu.RUnlock()

	msg := errGenericMsg
	if apiErr, ok := errors.Cause(err).(*core.APIError); ok && apiErr.Detail != "" {
		msg = apiErr.Detail
	}
	c.logger.Error(op, errors.Wrap(err, op), perm)
	c.notifier.Notify(core.NotifyError, msg)
}
