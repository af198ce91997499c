// Package picking casts rays from screen positions into the scene.
package picking

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ray is a half-line in world space with a normalized direction.
type Ray struct {
	Origin    mgl64.Vec3
	Direction mgl64.Vec3
}

// ScreenToRay returns the ray through pixel (x, y) of a w×h viewport, seen
// from a camera at pos with orientation q and a vertical field of view of
// fov degrees. Pixel coordinates grow right and down.
func ScreenToRay(x, y float64, w, h int, pos mgl64.Vec3, q mgl64.Quat, fov float64) Ray {
	if w <= 0 || h <= 0 {
		return Ray{Origin: pos, Direction: q.Rotate(mgl64.Vec3{0, 0, -1})}
	}
	ndcX := 2*x/float64(w) - 1
	ndcY := 1 - 2*y/float64(h)

	tanHalf := math.Tan(mgl64.DegToRad(fov) / 2)
	aspect := float64(w) / float64(h)
	local := mgl64.Vec3{ndcX * tanHalf * aspect, ndcY * tanHalf, -1}.Normalize()
	return Ray{Origin: pos, Direction: q.Rotate(local)}
}

// PixelAngle is the angle one pixel of a viewport h pixels tall subtends at
// a vertical field of view of fov degrees.
func PixelAngle(fov float64, h int) float64 {
	if h <= 0 {
		return 0
	}
	return mgl64.DegToRad(fov) / float64(h)
}

// IntersectSphere returns the distance along r to the first point of the
// sphere it enters. A sphere containing the origin is hit where the ray
// leaves it; spheres behind the origin are missed.
func (r Ray) IntersectSphere(center mgl64.Vec3, radius float64) (float64, bool) {
	oc := center.Sub(r.Origin)
	along := oc.Dot(r.Direction)
	d2 := oc.Dot(oc) - along*along
	r2 := radius * radius
	if d2 > r2 {
		return 0, false
	}

	half := math.Sqrt(r2 - d2)
	t := along - half
	if t < 0 {
		t = along + half
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// Target is a pickable sphere.
type Target struct {
	Center mgl64.Vec3
	Radius float64
}

// Pick returns the index of the nearest target r hits, or -1. Every target
// is widened to at least minAngle radians as seen from the ray origin, so
// bodies drawn a few pixels wide stay clickable.
func Pick(r Ray, targets []Target, minAngle float64) int {
	best, bestT := -1, math.Inf(1)
	for i, tg := range targets {
		dist := tg.Center.Sub(r.Origin).Len()
		radius := math.Max(tg.Radius, dist*math.Tan(minAngle))
		if t, ok := r.IntersectSphere(tg.Center, radius); ok && t < bestT {
			best, bestT = i, t
		}
	}
	return best
}
