package picking

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

var (
	eye      = mgl64.Vec3{0, 0, 100}
	identity = mgl64.QuatIdent()
)

func TestScreenToRayCenter(t *testing.T) {
	r := ScreenToRay(400, 300, 800, 600, eye, identity, 60)
	assert.Equal(t, eye, r.Origin)
	assertDirection(t, mgl64.Vec3{0, 0, -1}, r.Direction)
}

func TestScreenToRayEdges(t *testing.T) {
	// Top edge of a 90° frustum is 45° up.
	r := ScreenToRay(400, 0, 800, 600, eye, identity, 90)
	want := mgl64.Vec3{0, 1, -1}.Normalize()
	assertDirection(t, want, r.Direction)

	// Right edge stretches by the aspect ratio.
	r = ScreenToRay(800, 200, 800, 400, eye, identity, 90)
	want = mgl64.Vec3{2, 0, -1}.Normalize()
	assertDirection(t, want, r.Direction)
}

func TestScreenToRayFollowsOrientation(t *testing.T) {
	q := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})
	r := ScreenToRay(50, 50, 100, 100, eye, q, 60)
	assertDirection(t, mgl64.Vec3{-1, 0, 0}, r.Direction)

	// A degenerate viewport still looks forward.
	r = ScreenToRay(10, 10, 0, 0, eye, q, 60)
	assertDirection(t, mgl64.Vec3{-1, 0, 0}, r.Direction)
}

// assertDirection compares per component with an absolute tolerance.
func assertDirection(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], 1e-9, "got %v", got)
}

func TestIntersectSphere(t *testing.T) {
	r := Ray{Origin: eye, Direction: mgl64.Vec3{0, 0, -1}}

	tests := []struct {
		name   string
		center mgl64.Vec3
		radius float64
		want   float64
		hit    bool
	}{
		{"ahead", mgl64.Vec3{0, 0, 0}, 10, 90, true},
		{"grazing", mgl64.Vec3{10, 0, 0}, 10, 100, true},
		{"beside", mgl64.Vec3{20, 0, 0}, 10, 0, false},
		{"behind", mgl64.Vec3{0, 0, 200}, 10, 0, false},
		{"around the origin", mgl64.Vec3{0, 0, 100}, 10, 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := r.IntersectSphere(tt.center, tt.radius)
			assert.Equal(t, tt.hit, hit)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestPick(t *testing.T) {
	r := Ray{Origin: eye, Direction: mgl64.Vec3{0, 0, -1}}
	targets := []Target{
		{Center: mgl64.Vec3{0, 0, -500}, Radius: 50},
		{Center: mgl64.Vec3{0, 0, 0}, Radius: 5},
		{Center: mgl64.Vec3{30, 0, 0}, Radius: 1},
	}

	assert.Equal(t, 1, Pick(r, targets, 0), "nearest hit wins")
	assert.Equal(t, -1, Pick(r, targets[2:], 0))

	// Widened to ~17° the small off-axis body is reachable.
	assert.Equal(t, 0, Pick(r, targets[2:], 0.3))
	assert.Equal(t, -1, Pick(r, nil, 0.3))
}

func TestPixelAngle(t *testing.T) {
	assert.InDelta(t, math.Pi/2/1000, PixelAngle(90, 1000), 1e-12)
	assert.Zero(t, PixelAngle(90, 0))
}
