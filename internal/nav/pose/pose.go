// Package pose holds the authoritative camera pose of the viewer.
//
// The pose is position, yaw, pitch and field of view. Orientation is never
// stored as source of truth: it is re-derived from yaw and pitch (yaw about
// world up first, then pitch about the local right axis) after every mutation,
// so the camera can not accumulate roll.
package pose

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Limits and defaults for a camera pose.
const (
	MinFOV = 1.0
	MaxFOV = 125.0

	MinPitch = -math.Pi / 2
	MaxPitch = math.Pi / 2

	DefaultFOV = 75.0
)

// DefaultPosition is where the camera rig starts when nothing was persisted.
var DefaultPosition = mgl64.Vec3{0, 0, 10000}

var (
	worldUp      = mgl64.Vec3{0, 1, 0}
	localRight   = mgl64.Vec3{1, 0, 0}
	localForward = mgl64.Vec3{0, 0, -1}
)

// State is a plain snapshot of a camera pose.
type State struct {
	Position mgl64.Vec3
	Yaw      float64 // radians
	Pitch    float64 // radians
	FOV      float64 // degrees
}

// DefaultState returns the start-up pose.
func DefaultState() State {
	return State{Position: DefaultPosition, FOV: DefaultFOV}
}

// Pose is the live camera pose. It is not safe for concurrent use; the
// viewer mutates it from a single loop.
type Pose struct {
	state       State
	orientation mgl64.Quat
}

// New creates a pose at the default state.
func New() *Pose {
	p := &Pose{}
	p.Apply(DefaultState())
	return p
}

// Update is the single mutation entry point. fn edits a copy of the current
// state; non-finite edits are discarded field by field, the result is clamped
// and orientation is re-derived.
func (p *Pose) Update(fn func(s *State)) {
	next := p.state
	fn(&next)

	for i := range next.Position {
		if !finite(next.Position[i]) {
			next.Position[i] = p.state.Position[i]
		}
	}
	if !finite(next.Yaw) {
		next.Yaw = p.state.Yaw
	}
	if !finite(next.Pitch) {
		next.Pitch = p.state.Pitch
	}
	if !finite(next.FOV) {
		next.FOV = p.state.FOV
	}

	next.Pitch = mgl64.Clamp(next.Pitch, MinPitch, MaxPitch)
	next.FOV = mgl64.Clamp(next.FOV, MinFOV, MaxFOV)

	p.state = next
	p.orientation = Orientation(next.Yaw, next.Pitch)
}

// Apply replaces the whole pose.
func (p *Pose) Apply(s State) {
	p.Update(func(cur *State) { *cur = s })
}

// SetPosition moves the camera rig.
func (p *Pose) SetPosition(v mgl64.Vec3) {
	p.Update(func(s *State) { s.Position = v })
}

// Translate adds d to the rig position.
func (p *Pose) Translate(d mgl64.Vec3) {
	p.Update(func(s *State) { s.Position = s.Position.Add(d) })
}

// SetAngles sets yaw and pitch.
func (p *Pose) SetAngles(yaw, pitch float64) {
	p.Update(func(s *State) {
		s.Yaw = yaw
		s.Pitch = pitch
	})
}

// Rotate adds deltas to yaw and pitch.
func (p *Pose) Rotate(dYaw, dPitch float64) {
	p.Update(func(s *State) {
		s.Yaw += dYaw
		s.Pitch += dPitch
	})
}

// SetFieldOfView sets the vertical field of view in degrees.
func (p *Pose) SetFieldOfView(deg float64) {
	p.Update(func(s *State) { s.FOV = deg })
}

// AdjustFieldOfView adds delta degrees to the field of view.
func (p *Pose) AdjustFieldOfView(delta float64) {
	p.Update(func(s *State) { s.FOV += delta })
}

// Snapshot returns a copy of the current state.
func (p *Pose) Snapshot() State { return p.state }

func (p *Pose) Position() mgl64.Vec3    { return p.state.Position }
func (p *Pose) Yaw() float64            { return p.state.Yaw }
func (p *Pose) Pitch() float64          { return p.state.Pitch }
func (p *Pose) FieldOfView() float64    { return p.state.FOV }
func (p *Pose) Orientation() mgl64.Quat { return p.orientation }
func (p *Pose) Forward() mgl64.Vec3     { return p.orientation.Rotate(localForward) }
func (p *Pose) Up() mgl64.Vec3          { return p.orientation.Rotate(worldUp) }
func (p *Pose) Right() mgl64.Vec3       { return p.orientation.Rotate(localRight) }

// Orientation derives the camera rotation for yaw and pitch.
func Orientation(yaw, pitch float64) mgl64.Quat {
	qYaw := mgl64.QuatRotate(yaw, worldUp)
	qPitch := mgl64.QuatRotate(pitch, localRight)
	return qYaw.Mul(qPitch).Normalize()
}

// AnglesFromOrientation recovers yaw and pitch from a roll-free orientation.
// Yaw comes back wrapped to (-π, π].
func AnglesFromOrientation(q mgl64.Quat) (yaw, pitch float64) {
	right := q.Rotate(localRight)
	fwd := q.Rotate(localForward)
	up := q.Rotate(worldUp)

	// The right axis never leaves the horizontal plane, so yaw survives
	// looking straight up or down.
	yaw = math.Atan2(-right.Z(), right.X())
	pitch = math.Atan2(fwd.Y(), up.Y())
	return yaw, pitch
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
