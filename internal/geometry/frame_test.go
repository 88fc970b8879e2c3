package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func TestLocalToWorldRoundTrip(t *testing.T) {
	frames := []Frame{
		{X: 0, Y: 0, Width: 100, Height: 50, Rotation: 0},
		{X: 100, Y: 100, Width: 300, Height: 200, Rotation: 45},
		{X: -50, Y: 250, Width: 80, Height: 400, Rotation: -30},
		{X: 10, Y: 20, Width: 55.5, Height: 61.25, Rotation: 720.5},
		{X: 1e4, Y: -1e4, Width: 123, Height: 456, Rotation: 1234},
		{X: 0, Y: 0, Width: 50, Height: 50, Rotation: 90},
	}
	points := [][2]float64{
		{0, 0},
		{1, 1},
		{-10, 30},
		{150, 75},
		{0.25, 199.75},
	}

	for _, f := range frames {
		for _, p := range points {
			wx, wy := f.LocalToWorld(p[0], p[1])
			lx, ly := f.WorldToLocal(wx, wy)
			assert.InDelta(t, p[0], lx, tolerance, "frame %+v point %v", f, p)
			assert.InDelta(t, p[1], ly, tolerance, "frame %+v point %v", f, p)
		}
	}
}

func TestCenterIsRotationInvariant(t *testing.T) {
	for _, rotation := range []float64{0, 15, 90, 180, 359, -45, 1080} {
		f := Frame{X: 40, Y: 60, Width: 300, Height: 200, Rotation: rotation}

		wx, wy := f.LocalToWorld(f.Width/2, f.Height/2)
		cx, cy := f.Center()

		assert.InDelta(t, cx, wx, tolerance, "rotation %v", rotation)
		assert.InDelta(t, cy, wy, tolerance, "rotation %v", rotation)
		assert.InDelta(t, 40+150.0, cx, tolerance)
		assert.InDelta(t, 60+100.0, cy, tolerance)
	}
}

func TestLocalToWorldUnrotated(t *testing.T) {
	f := Frame{X: 100, Y: 200, Width: 300, Height: 100}

	wx, wy := f.LocalToWorld(30, 40)
	assert.InDelta(t, 130.0, wx, tolerance)
	assert.InDelta(t, 240.0, wy, tolerance)
}

func TestLocalToWorldQuarterTurn(t *testing.T) {
	// 90 degrees clockwise around the center (150, 100): the local origin
	// (top-left) lands at center + (rotated offset (-150, -100)) = (250, -50).
	f := Frame{X: 0, Y: 0, Width: 300, Height: 200, Rotation: 90}

	wx, wy := f.LocalToWorld(0, 0)
	assert.InDelta(t, 250.0, wx, tolerance)
	assert.InDelta(t, -50.0, wy, tolerance)
}

func TestBoundsQuarterTurnSwapsExtents(t *testing.T) {
	f := Frame{X: 100, Y: 100, Width: 300, Height: 200, Rotation: 90}

	b := f.Bounds()
	assert.InDelta(t, 200.0, b.Width, tolerance)
	assert.InDelta(t, 300.0, b.Height, tolerance)

	// Center must not move
	cx, cy := b.Center()
	assert.InDelta(t, 250.0, cx, tolerance)
	assert.InDelta(t, 200.0, cy, tolerance)
}

func TestMatrixInvertIsInverse(t *testing.T) {
	m := AnchoredRotation(12.5, -7, 33, 150, 100)
	id := m.Multiply(m.Invert())

	want := Identity()
	for i := range want {
		assert.InDelta(t, want[i], id[i], tolerance, "element %d", i)
	}
}

func TestMatrixRotateDegreesAcceptsAnyAngle(t *testing.T) {
	// 370 and 10 degrees are the same rotation; stored angles are never
	// normalized, the trig just has to agree.
	a := RotateDegrees(370)
	b := RotateDegrees(10)
	for i := range a {
		assert.InDelta(t, b[i], a[i], tolerance)
	}
}

func TestRectUnionAndContains(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	b := Rect{X: 5, Y: 5, Width: 20, Height: 2}

	u := a.Union(b)
	require.Equal(t, Rect{X: 0, Y: 0, Width: 25, Height: 10}, u)

	assert.True(t, u.Contains(24, 9))
	assert.False(t, u.Contains(26, 5))
	assert.True(t, a.Union(Rect{}).Contains(10, 10))
}

func TestTransformPointRotatesClockwise(t *testing.T) {
	// In screen coordinates (Y down), +90 degrees takes the +X axis to +Y.
	m := RotateDegrees(90)
	x, y := m.TransformPoint(1, 0)
	assert.InDelta(t, 0.0, x, tolerance)
	assert.InDelta(t, 1.0, y, tolerance)
	assert.True(t, math.Abs(m.Determinant()-1) < tolerance)
}
