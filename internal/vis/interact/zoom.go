// Package interact handles pan and zoom of the graph view.
package interact

import (
	"gioui.org/io/pointer"
)

const (
	minZoom   = 0.1
	maxZoom   = 10
	zoomStep  = 1.1
	fitMargin = 40
)

// Camera maps world coordinates to screen pixels.
type Camera struct {
	OffsetX float32 // Pan offset in screen pixels
	OffsetY float32
	Zoom    float32 // 1.0 = 100%

	dragging     bool
	lastX, lastY float32
	fitted       bool
}

// NewCamera creates a camera that fits the graph on the first frame.
func NewCamera() *Camera {
	return &Camera{Zoom: 1}
}

// Reset makes the next Fit recompute the view.
func (c *Camera) Reset() {
	c.fitted = false
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(worldX, worldY float64) (screenX, screenY float32) {
	screenX = float32(worldX)*c.Zoom + c.OffsetX
	screenY = float32(worldY)*c.Zoom + c.OffsetY
	return
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(screenX, screenY float32) (worldX, worldY float64) {
	worldX = float64((screenX - c.OffsetX) / c.Zoom)
	worldY = float64((screenY - c.OffsetY) / c.Zoom)
	return
}

// HandleEvent pans on secondary or middle drag and zooms on scroll.
func (c *Camera) HandleEvent(ev pointer.Event) {
	switch ev.Kind {
	case pointer.Press:
		c.dragging = ev.Buttons.Contain(pointer.ButtonSecondary) || ev.Buttons.Contain(pointer.ButtonTertiary)
		c.lastX, c.lastY = ev.Position.X, ev.Position.Y
	case pointer.Drag:
		if c.dragging {
			c.Pan(ev.Position.X-c.lastX, ev.Position.Y-c.lastY)
		}
		c.lastX, c.lastY = ev.Position.X, ev.Position.Y
	case pointer.Release:
		c.dragging = false
	case pointer.Scroll:
		switch {
		case ev.Scroll.Y > 0:
			c.ZoomBy(1/zoomStep, ev.Position.X, ev.Position.Y)
		case ev.Scroll.Y < 0:
			c.ZoomBy(zoomStep, ev.Position.X, ev.Position.Y)
		}
	}
}

// Pan pans the camera by the given screen delta.
func (c *Camera) Pan(dx, dy float32) {
	c.OffsetX += dx
	c.OffsetY += dy
}

// ZoomBy zooms by a factor, keeping the world point under (centerX, centerY) fixed.
func (c *Camera) ZoomBy(factor float32, centerX, centerY float32) {
	worldX, worldY := c.ScreenToWorld(centerX, centerY)
	c.Zoom = clampZoom(c.Zoom * factor)
	newX, newY := c.WorldToScreen(worldX, worldY)
	c.OffsetX += centerX - newX
	c.OffsetY += centerY - newY
}

// CenterOn centers the camera on a world position.
func (c *Camera) CenterOn(worldX, worldY float64, screenWidth, screenHeight float32) {
	c.OffsetX = screenWidth/2 - float32(worldX)*c.Zoom
	c.OffsetY = screenHeight/2 - float32(worldY)*c.Zoom
}

// Fit fits the world bounds into the screen once after creation or Reset.
func (c *Camera) Fit(minX, minY, maxX, maxY float64, screenWidth, screenHeight float32) {
	if c.fitted || screenWidth <= 0 || screenHeight <= 0 {
		return
	}
	c.fitted = true

	c.Zoom = 1
	worldW, worldH := float32(maxX-minX), float32(maxY-minY)
	availW, availH := screenWidth-2*fitMargin, screenHeight-2*fitMargin
	switch {
	case worldW > 0 && worldH > 0:
		c.Zoom = clampZoom(min(availW/worldW, availH/worldH))
	case worldW > 0:
		c.Zoom = clampZoom(availW / worldW)
	case worldH > 0:
		c.Zoom = clampZoom(availH / worldH)
	}
	c.CenterOn((minX+maxX)/2, (minY+maxY)/2, screenWidth, screenHeight)
}

func clampZoom(z float32) float32 {
	return max(minZoom, min(z, maxZoom))
}
