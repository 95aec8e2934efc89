package renderer

import (
	"math"

	"github.com/OpenTraceLab/ringlayout/pkg/kicad/pcb"
)

// Camera maps board millimetres onto window pixels. Board and screen both
// have Y pointing down.
type Camera struct {
	// Board position shown at the middle of the window
	CenterX float64
	CenterY float64

	// Pixels per millimetre
	Zoom float64

	ScreenWidth  int
	ScreenHeight int

	// View controls, applied around the rotation center
	FlipView bool
	Rotation float64 // degrees

	RotationCenterX float64
	RotationCenterY float64
}

// Zoom limits, in pixels per millimetre
const (
	MinZoom = 0.1
	MaxZoom = 1000.0
)

// NewCamera returns a camera for a window of the given size
func NewCamera(screenWidth, screenHeight int) *Camera {
	return &Camera{
		Zoom:         10.0,
		ScreenWidth:  screenWidth,
		ScreenHeight: screenHeight,
	}
}

// WorldToScreen converts a board position to window pixels
func (c *Camera) WorldToScreen(pos pcb.Position) (float64, float64) {
	pos = c.viewTransform(pos, false)
	x := (pos.X-c.CenterX)*c.Zoom + float64(c.ScreenWidth)/2
	y := (pos.Y-c.CenterY)*c.Zoom + float64(c.ScreenHeight)/2
	return x, y
}

// ScreenToWorld converts window pixels to a board position
func (c *Camera) ScreenToWorld(screenX, screenY float64) pcb.Position {
	pos := pcb.Position{
		X: (screenX-float64(c.ScreenWidth)/2)/c.Zoom + c.CenterX,
		Y: (screenY-float64(c.ScreenHeight)/2)/c.Zoom + c.CenterY,
	}
	return c.viewTransform(pos, true)
}

// Pan moves the view by a pixel offset
func (c *Camera) Pan(deltaX, deltaY float64) {
	c.CenterX -= deltaX / c.Zoom
	c.CenterY -= deltaY / c.Zoom
}

// ZoomAt scales the view by factor, keeping the board point under the
// given pixel fixed. factor > 1 zooms in.
func (c *Camera) ZoomAt(screenX, screenY, factor float64) {
	before := c.ScreenToWorld(screenX, screenY)
	c.Zoom = min(max(c.Zoom*factor, MinZoom), MaxZoom)
	after := c.ScreenToWorld(screenX, screenY)

	c.CenterX += before.X - after.X
	c.CenterY += before.Y - after.Y
}

// Fit centers bbox and zooms so it fills 90% of the window
func (c *Camera) Fit(bbox pcb.BoundingBox) {
	width, height := bbox.Width(), bbox.Height()
	if width <= 0 || height <= 0 || c.ScreenWidth <= 0 || c.ScreenHeight <= 0 {
		return
	}

	center := bbox.Center()
	c.CenterX, c.CenterY = center.X, center.Y
	c.RotationCenterX, c.RotationCenterY = center.X, center.Y

	c.Zoom = min(float64(c.ScreenWidth)*0.9/width, float64(c.ScreenHeight)*0.9/height)
}

// UpdateScreenSize follows a window resize
func (c *Camera) UpdateScreenSize(width, height int) {
	c.ScreenWidth = width
	c.ScreenHeight = height
}

// Flip mirrors the view
func (c *Camera) Flip() {
	c.FlipView = !c.FlipView
}

// Rotate turns the view by degrees, keeping Rotation in [0, 360)
func (c *Camera) Rotate(degrees float64) {
	c.Rotation = math.Mod(c.Rotation+degrees, 360)
	if c.Rotation < 0 {
		c.Rotation += 360
	}
}

// viewTransform applies rotation then mirroring around the rotation
// center, or undoes them when inverse is set
func (c *Camera) viewTransform(pos pcb.Position, inverse bool) pcb.Position {
	x := pos.X - c.RotationCenterX
	y := pos.Y - c.RotationCenterY

	rotate := func() {
		if c.Rotation == 0 {
			return
		}
		rad := c.Rotation * math.Pi / 180
		if inverse {
			rad = -rad
		}
		sin, cos := math.Sincos(rad)
		x, y = x*cos-y*sin, x*sin+y*cos
	}

	if inverse {
		if c.FlipView {
			x = -x
		}
		rotate()
	} else {
		rotate()
		if c.FlipView {
			x = -x
		}
	}

	return pcb.Position{X: x + c.RotationCenterX, Y: y + c.RotationCenterY}
}

// VisibleBounds returns the board area inside the window
func (c *Camera) VisibleBounds() pcb.BoundingBox {
	w, h := float64(c.ScreenWidth), float64(c.ScreenHeight)
	bbox := pcb.NewBoundingBox()
	for _, corner := range [][2]float64{{0, 0}, {w, 0}, {0, h}, {w, h}} {
		bbox.Expand(c.ScreenToWorld(corner[0], corner[1]))
	}
	return bbox
}
