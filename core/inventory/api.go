package inventory

import (
	"context"

	"github.com/google/uuid"
)

type (
	// API is the remote inventory backend the controller talks to.
	// Item lists are always replaced in full, never patched incrementally.
	API interface {
		FetchPermissionContext(ctx context.Context) (PermissionContext, error)
		FetchItems(ctx context.Context, filter FilterState) ([]Item, error)
		// FetchSummary computes aggregates scoped to the non-search filters.
		FetchSummary(ctx context.Context, filter ScopedFilter) (Summary, error)
		FetchCategories(ctx context.Context) ([]Category, error)
		FetchAllowedLocations(ctx context.Context) ([]Location, error)
		FetchAssignableUsers(ctx context.Context) ([]Assignee, error)
		// DeleteItem may reject with a structured *core.APIError payload.
		DeleteItem(ctx context.Context, id uuid.UUID) error
		ExportItems(ctx context.Context, filter ScopedFilter) ([]byte, error)
		GenerateItemCertificate(ctx context.Context, id uuid.UUID) ([]byte, error)
	}
)
