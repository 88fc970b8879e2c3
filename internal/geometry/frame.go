package geometry

// Frame is the persisted placement of a rectangular element: axis-aligned
// top-left position and extents, plus a rotation in degrees applied around
// the element's own center. The stored X/Y are the top-left corner *before*
// rotation; rotation is purely a display-time transform.
//
// A Frame defines a local coordinate system with its origin at the unrotated
// top-left corner. Seats are stored in this local frame so that rotating a
// section never changes any stored seat coordinate.
type Frame struct {
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Rotation float64 // degrees, clockwise on screen, not normalized
}

// Center returns the rotation anchor: the center of the unrotated box.
// Rotation happens around this point, so it is the one position that the
// rotation angle never moves.
func (f Frame) Center() (float64, float64) {
	return f.X + f.Width/2, f.Y + f.Height/2
}

// Matrix returns the local-to-world transform for this frame.
func (f Frame) Matrix() Matrix2D {
	return AnchoredRotation(f.X, f.Y, f.Rotation, f.Width/2, f.Height/2)
}

// LocalToWorld maps a point in the frame's local coordinate system to world
// coordinates, applying the frame's rotation around its center.
func (f Frame) LocalToWorld(localX, localY float64) (float64, float64) {
	return f.Matrix().TransformPoint(localX, localY)
}

// WorldToLocal is the exact inverse of LocalToWorld: it maps a world
// position (e.g. where a drag was released) back into the frame's local,
// unrotated coordinate system. For any frame and any point,
// WorldToLocal(LocalToWorld(p)) == p up to floating-point tolerance.
func (f Frame) WorldToLocal(worldX, worldY float64) (float64, float64) {
	return f.Matrix().Invert().TransformPoint(worldX, worldY)
}

// Bounds returns the world-space axis-aligned bounding box of the rotated
// frame.
func (f Frame) Bounds() Rect {
	return f.Matrix().TransformRect(Rect{Width: f.Width, Height: f.Height})
}
