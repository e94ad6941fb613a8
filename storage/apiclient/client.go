package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/kymanga/vifaa/core"
	"github.com/kymanga/vifaa/core/inventory"
)

// Client implements inventory.API against the ERP's REST backend.
type Client struct {
	baseURL string
	token   string
	rest    *rest.Client
}

var _ inventory.API = (*Client)(nil) // interface compliance check

func NewClient(conf *core.Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(conf.API.BaseURL, "/"),
		token:   conf.API.Token,
		rest:    &rest.Client{HTTPClient: &http.Client{Timeout: conf.API.Timeout}},
	}
}

func (c *Client) headers() map[string]string {
	h := map[string]string{"Accept": "application/json"}
	if c.token != "" {
		h["Authorization"] = "Bearer " + c.token
	}
	return h
}

func (c *Client) send(ctx context.Context, method rest.Method, path string, params map[string]string) (*rest.Response, error) {
	req := rest.Request{
		Method:      method,
		BaseURL:     c.baseURL + path,
		Headers:     c.headers(),
		QueryParams: params,
	}
	res, err := c.rest.SendWithContext(ctx, req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return nil, decodeAPIError(res)
	}
	return res, nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, out interface{}) error {
	res, err := c.send(ctx, rest.Get, path, params)
	if err != nil {
		return err
	}
	return errors.Wrap(json.Unmarshal([]byte(res.Body), out), "decoding "+path)
}

func (c *Client) FetchPermissionContext(ctx context.Context) (inventory.PermissionContext, error) {
	var perm inventory.PermissionContext
	if err := c.get(ctx, "/v1/inventory/permissions", nil, &perm); err != nil {
		return inventory.PermissionContext{}, err
	}
	return perm, nil
}

func (c *Client) FetchItems(ctx context.Context, filter inventory.FilterState) ([]inventory.Item, error) {
	var items []inventory.Item
	if err := c.get(ctx, "/v1/inventory/items", filterParams(filter), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) FetchSummary(ctx context.Context, filter inventory.ScopedFilter) (inventory.Summary, error) {
	var summary inventory.Summary
	if err := c.get(ctx, "/v1/inventory/summary", scopedParams(filter), &summary); err != nil {
		return inventory.Summary{}, err
	}
	return summary, nil
}

func (c *Client) FetchCategories(ctx context.Context) ([]inventory.Category, error) {
	var cats []inventory.Category
	if err := c.get(ctx, "/v1/inventory/categories", nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

func (c *Client) FetchAllowedLocations(ctx context.Context) ([]inventory.Location, error) {
	var locs []inventory.Location
	if err := c.get(ctx, "/v1/inventory/locations", nil, &locs); err != nil {
		return nil, err
	}
	return locs, nil
}

func (c *Client) FetchAssignableUsers(ctx context.Context) ([]inventory.Assignee, error) {
	var users []inventory.Assignee
	if err := c.get(ctx, "/v1/inventory/assignees", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) DeleteItem(ctx context.Context, id uuid.UUID) error {
	_, err := c.send(ctx, rest.Delete, "/v1/inventory/items/"+id.String(), nil)
	return err
}

func (c *Client) ExportItems(ctx context.Context, filter inventory.ScopedFilter) ([]byte, error) {
	res, err := c.send(ctx, rest.Get, "/v1/inventory/items/export", scopedParams(filter))
	if err != nil {
		return nil, err
	}
	return []byte(res.Body), nil
}

func (c *Client) GenerateItemCertificate(ctx context.Context, id uuid.UUID) ([]byte, error) {
	res, err := c.send(ctx, rest.Get, "/v1/inventory/items/"+id.String()+"/certificate", nil)
	if err != nil {
		return nil, err
	}
	return []byte(res.Body), nil
}

// scopedParams encodes the non-search filters; zero values are left out.
func scopedParams(f inventory.ScopedFilter) map[string]string {
	params := make(map[string]string)
	if f.LocationKind != "" {
		params["location_kind"] = string(f.LocationKind)
	}
	if f.LocationID != uuid.Nil {
		params["location_id"] = f.LocationID.String()
	}
	if f.CategoryID != uuid.Nil {
		params["category_id"] = f.CategoryID.String()
	}
	if f.Status != "" {
		params["status"] = string(f.Status)
	}
	return params
}

func filterParams(f inventory.FilterState) map[string]string {
	params := scopedParams(f.Scoped())
	if f.Search != "" {
		params["search"] = f.Search
	}
	return params
}
