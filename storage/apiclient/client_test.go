package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/kymanga/vifaa/core"
	"github.com/kymanga/vifaa/core/inventory"
)

// lastRequest captures what the fake backend saw, for assertions on headers
// and query encoding.
type lastRequest struct {
	authorization string
	accept        string
	query         map[string]string
}

func record(req *http.Request) *lastRequest {
	last := &lastRequest{
		authorization: req.Header.Get(echo.HeaderAuthorization),
		accept:        req.Header.Get("Accept"),
		query:         make(map[string]string),
	}
	for key, values := range req.URL.Query() {
		last.query[key] = values[0]
	}
	return last
}

func newTestClient(t *testing.T, e *echo.Echo) (*Client, func()) {
	t.Helper()
	srv := httptest.NewServer(e)

	conf := &core.Config{}
	conf.API.BaseURL = srv.URL + "/" // trailing slash must be tolerated
	conf.API.Token = "sekret"
	conf.API.Timeout = 5 * time.Second
	return NewClient(conf), srv.Close
}

func Test_Client_FetchItems(t *testing.T) {
	id := uuid.New()
	catID := uuid.New()
	locID := uuid.New()

	var last *lastRequest
	e := echo.New()
	e.GET("/v1/inventory/items", func(c echo.Context) error {
		last = record(c.Request())
		return c.JSON(http.StatusOK, []map[string]interface{}{{
			"id":             id,
			"name":           "Teacher desk",
			"category_id":    catID,
			"location_kind":  "school",
			"location_id":    locID,
			"status":         "available",
			"purchase_value": "120.50",
		}})
	})
	client, closeSrv := newTestClient(t, e)
	defer closeSrv()

	filter := inventory.FilterState{
		LocationKind: inventory.KindSchool,
		LocationID:   locID,
		Status:       inventory.StatusAvailable,
		Search:       "desk",
	}
	items, err := client.FetchItems(context.Background(), filter)
	assert.NoError(t, err)
	if assert.Len(t, items, 1) {
		assert.Equal(t, id, items[0].ID)
		assert.Equal(t, "Teacher desk", items[0].Name)
		assert.Equal(t, "120.50", items[0].PurchaseValue.StringFixed(2))
	}

	assert.Equal(t, "Bearer sekret", last.authorization)
	assert.Equal(t, "application/json", last.accept)
	assert.Equal(t, map[string]string{
		"location_kind": "school",
		"location_id":   locID.String(),
		"status":        "available",
		"search":        "desk",
	}, last.query)
}

func Test_Client_FetchSummary(t *testing.T) {
	var last *lastRequest
	e := echo.New()
	e.GET("/v1/inventory/summary", func(c echo.Context) error {
		last = record(c.Request())
		return c.JSON(http.StatusOK, map[string]interface{}{
			"by_status":   map[string]int{"available": 3},
			"total_count": 3,
			"total_value": "450.00",
		})
	})
	client, closeSrv := newTestClient(t, e)
	defer closeSrv()

	summary, err := client.FetchSummary(context.Background(), inventory.ScopedFilter{Status: inventory.StatusAvailable})
	assert.NoError(t, err)
	assert.Equal(t, 3, summary.TotalCount)
	assert.Equal(t, 3, summary.StatusCount(inventory.StatusAvailable))
	assert.Equal(t, "450.00", summary.TotalValue.StringFixed(2))
	assert.Equal(t, map[string]string{"status": "available"}, last.query)
}

func Test_Client_ExportItems_scope(t *testing.T) {
	var last *lastRequest
	e := echo.New()
	e.GET("/v1/inventory/items/export", func(c echo.Context) error {
		last = record(c.Request())
		return c.Blob(http.StatusOK, "text/csv", []byte("id,name\n"))
	})
	client, closeSrv := newTestClient(t, e)
	defer closeSrv()

	catID := uuid.New()
	doc, err := client.ExportItems(context.Background(), inventory.ScopedFilter{
		CategoryID: catID,
		Status:     inventory.StatusDamaged,
	})
	assert.NoError(t, err)
	assert.Equal(t, []byte("id,name\n"), doc)

	// the export scope never carries a search parameter
	assert.Equal(t, map[string]string{
		"category_id": catID.String(),
		"status":      "damaged",
	}, last.query)
	assert.NotContains(t, last.query, "search")
}

func Test_Client_DeleteItem(t *testing.T) {
	id := uuid.New()
	e := echo.New()
	e.DELETE("/v1/inventory/items/:id", func(c echo.Context) error {
		if c.Param("id") != id.String() {
			return c.JSON(http.StatusNotFound, map[string]string{"detail": "item not found"})
		}
		return c.NoContent(http.StatusNoContent)
	})
	client, closeSrv := newTestClient(t, e)
	defer closeSrv()

	assert.NoError(t, client.DeleteItem(context.Background(), id))

	err := client.DeleteItem(context.Background(), uuid.New())
	if assert.Error(t, err) {
		apiErr, ok := err.(*core.APIError)
		if assert.True(t, ok) {
			assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
			assert.Equal(t, "item not found", apiErr.Detail)
		}
	}
}

func Test_Client_DeleteItem_rejected(t *testing.T) {
	e := echo.New()
	e.DELETE("/v1/inventory/items/:id", func(c echo.Context) error {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "item is currently assigned"})
	})
	client, closeSrv := newTestClient(t, e)
	defer closeSrv()

	err := client.DeleteItem(context.Background(), uuid.New())
	if assert.Error(t, err) {
		apiErr, ok := err.(*core.APIError)
		if assert.True(t, ok) {
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, "item is currently assigned", apiErr.Detail)
		}
	}
}

func Test_Client_GenerateItemCertificate(t *testing.T) {
	id := uuid.New()
	e := echo.New()
	e.GET("/v1/inventory/items/:id/certificate", func(c echo.Context) error {
		return c.Blob(http.StatusOK, "application/pdf", []byte("%PDF-1.4 certificate"))
	})
	client, closeSrv := newTestClient(t, e)
	defer closeSrv()

	doc, err := client.GenerateItemCertificate(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 certificate"), doc)
}

func Test_Client_FetchPermissionContext(t *testing.T) {
	viewerID := uuid.New()
	e := echo.New()
	e.GET("/v1/inventory/permissions", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"viewer_id":  viewerID,
			"is_admin":   false,
			"can_delete": true,
		})
	})
	client, closeSrv := newTestClient(t, e)
	defer closeSrv()

	perm, err := client.FetchPermissionContext(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, viewerID, perm.ViewerID)
	assert.False(t, perm.IsAdmin)
	assert.True(t, perm.CanDelete)
	// Loaded is controller state, never decoded from the wire
	assert.False(t, perm.Loaded)
}

func Test_decodeAPIError(t *testing.T) {
	e := echo.New()
	e.GET("/v1/inventory/categories", func(c echo.Context) error {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "bad request",
			"errors": map[string]string{
				"status":        "invalid item status",
				"location_kind": "invalid location kind",
			},
		})
	})
	e.GET("/v1/inventory/locations", func(c echo.Context) error {
		return c.HTML(http.StatusBadGateway, "<html>oops</html>")
	})
	client, closeSrv := newTestClient(t, e)
	defer closeSrv()

	_, err := client.FetchCategories(context.Background())
	if assert.Error(t, err) {
		apiErr, ok := err.(*core.APIError)
		if assert.True(t, ok) {
			assert.Equal(t, "bad request", apiErr.Detail)
			// field errors come out sorted by field name
			assert.Equal(t, []core.FieldError{
				{Field: "location_kind", Error: "invalid location kind"},
				{Field: "status", Error: "invalid item status"},
			}, apiErr.Fields)
		}
	}

	// non-JSON bodies fall back to the bare status code
	_, err = client.FetchAllowedLocations(context.Background())
	if assert.Error(t, err) {
		apiErr, ok := err.(*core.APIError)
		if assert.True(t, ok) {
			assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
			assert.Empty(t, apiErr.Detail)
			assert.Equal(t, "Bad Gateway", apiErr.Error())
		}
	}
}

func Test_filterParams(t *testing.T) {
	// zero values are left out entirely
	assert.Empty(t, filterParams(inventory.FilterState{}))

	catID := uuid.New()
	params := filterParams(inventory.FilterState{CategoryID: catID, Search: "lamp"})
	assert.Equal(t, map[string]string{
		"category_id": catID.String(),
		"search":      "lamp",
	}, params)
}
