package navigation

import "slices"

// CurrentZoom returns the zoom factor.
func (c *Controller) CurrentZoom() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.zoom
}

// AvailableZoomLevels returns a copy of ZoomLevels.
func (c *Controller) AvailableZoomLevels() []float64 {
	return slices.Clone(ZoomLevels)
}

// ZoomIn moves one level up. No-op at the largest level.
func (c *Controller) ZoomIn() {
	c.update(func() {
		i := slices.Index(ZoomLevels, c.zoom)
		if i >= 0 && i < len(ZoomLevels)-1 {
			c.zoom = ZoomLevels[i+1]
		}
	})
}

// ZoomOut moves one level down. No-op at the smallest level.
func (c *Controller) ZoomOut() {
	c.update(func() {
		if i := slices.Index(ZoomLevels, c.zoom); i > 0 {
			c.zoom = ZoomLevels[i-1]
		}
	})
}

// ResetZoom returns to 100%.
func (c *Controller) ResetZoom() {
	c.SetZoom(1)
}

// SetZoom snaps level to the nearest available zoom level.
func (c *Controller) SetZoom(level float64) {
	c.update(func() {
		c.zoom = nearestZoom(level)
	})
}

// FitToWindow selects the zoom that fits the slide in the viewport.
// Viewport dimensions are not tracked yet, so this resolves to 100%.
func (c *Controller) FitToWindow() {
	c.SetZoom(1)
}
