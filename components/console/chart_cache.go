package console

import (
	"sync"
	"time"
)

// ChartKey identifies one rendering of a chart: its revision under a theme.
type ChartKey struct {
	Chart    string
	Revision int
	Theme    Theme
}

// RenderCache memoizes rendered chart HTML per chart.
type RenderCache interface {
	GetOrRender(key ChartKey, render func() (string, error)) (string, error)
	Evict(chart string)
}

// ChartCache keeps the latest rendering of each chart for a TTL. Revisions only
// grow, so a newer key replaces the chart's slot instead of piling up next to it.
type ChartCache struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.Mutex
	slots map[string]renderedChart
}

type renderedChart struct {
	key     ChartKey
	html    string
	expires time.Time
}

// NewChartCache builds a cache. A non-positive ttl renders every time.
func NewChartCache(ttl time.Duration) *ChartCache {
	return &ChartCache{ttl: ttl, now: time.Now, slots: make(map[string]renderedChart)}
}

// GetOrRender serves the chart's slot when it holds key and is fresh, and
// renders into the slot otherwise. Render errors leave the slot untouched.
func (c *ChartCache) GetOrRender(key ChartKey, render func() (string, error)) (string, error) {
	if c == nil || c.ttl <= 0 {
		return render()
	}
	c.mu.Lock()
	slot, ok := c.slots[key.Chart]
	c.mu.Unlock()
	if ok && slot.key == key && c.now().Before(slot.expires) {
		return slot.html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.slots[key.Chart] = renderedChart{key: key, html: html, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return html, nil
}

// Evict drops the chart's slot.
func (c *ChartCache) Evict(chart string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.slots, chart)
	c.mu.Unlock()
}

// Len reports how many charts hold a rendering, expired ones included.
func (c *ChartCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slots)
}
