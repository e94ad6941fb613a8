package inventory

import "github.com/shopspring/decimal"

// Derived views: pure functions of current state, recomputed on every call,
// never cached.

// LocationOptions returns the location filter choices the viewer may use:
// the full set for admins, only the all-schools and own-school entries for
// everyone else. Recomputed per call so a late-loading permission context
// can never leave a stale option set behind.
func (c *Controller) LocationOptions() []LocationOption {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.perm.IsAdmin {
		return append([]LocationOption(nil), allLocationOptions...)
	}
	return append([]LocationOption(nil), restrictedLocationOptions...)
}

// TotalValue sums the purchase value of the currently loaded items. This is
// the on-screen page total; the server-side figure for the whole scope lives
// in Summary().TotalValue and the two are intentionally distinct.
func (c *Controller) TotalValue() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.PurchaseValue)
	}
	return total
}

// StatusCount returns the summary count for a status, 0 for unseen statuses.
func (c *Controller) StatusCount(st Status) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.summary.StatusCount(st)
}

// CategoryChartData maps the per-category aggregates into chart points,
// dropping entries whose category name the backend could not resolve.
func (c *Controller) CategoryChartData() []ChartPoint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	points := make([]ChartPoint, 0, len(c.summary.ByCategory))
	for _, agg := range c.summary.ByCategory {
		if agg.Name == nil {
			continue
		}
		points = append(points, ChartPoint{Name: *agg.Name, Value: float64(agg.Count)})
	}
	return points
}

// StatusChartData maps the per-status counts into chart points, in the
// canonical status order, skipping statuses with no items.
func (c *Controller) StatusChartData() []ChartPoint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	points := make([]ChartPoint, 0, len(AllStatuses))
	for _, st := range AllStatuses {
		if count := c.summary.ByStatus[st]; count > 0 {
			points = append(points, ChartPoint{Name: string(st), Value: float64(count)})
		}
	}
	return points
}
