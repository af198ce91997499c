// Package urlstate persists the camera pose in a shareable location query.
//
// A pose is written as px,py,pz (2 decimals), yaw,pitch (4 decimals) and
// fov (2 decimals). Writes are rate limited and never create new history
// entries; reads happen at start-up and on every history navigation.
package urlstate

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/starview/internal/nav/pose"
)

// Query keys.
const (
	KeyPosX  = "px"
	KeyPosY  = "py"
	KeyPosZ  = "pz"
	KeyYaw   = "yaw"
	KeyPitch = "pitch"
	KeyFOV   = "fov"
)

const (
	positionDigits = 2
	angleDigits    = 4
	fovDigits      = 2
)

// Decode parses a location query into a pose. It returns nil when the query
// is empty, meaning nothing was saved. Missing or unparseable fields fall
// back to the start-up defaults.
func Decode(query string) *pose.State {
	query = strings.TrimPrefix(query, "?")
	if strings.TrimSpace(query) == "" {
		return nil
	}

	// Malformed pairs are dropped; the well-formed ones still count.
	values, _ := url.ParseQuery(query)

	def := pose.DefaultState()
	return &pose.State{
		Position: mgl64.Vec3{
			number(values, KeyPosX, def.Position.X()),
			number(values, KeyPosY, def.Position.Y()),
			number(values, KeyPosZ, def.Position.Z()),
		},
		Yaw:   number(values, KeyYaw, def.Yaw),
		Pitch: number(values, KeyPitch, def.Pitch),
		FOV:   number(values, KeyFOV, def.FOV),
	}
}

// Encode formats a pose as a location query without the leading '?'.
func Encode(s pose.State) string {
	var b strings.Builder
	pairs := []struct {
		key    string
		value  float64
		digits int
	}{
		{KeyPosX, s.Position.X(), positionDigits},
		{KeyPosY, s.Position.Y(), positionDigits},
		{KeyPosZ, s.Position.Z(), positionDigits},
		{KeyYaw, s.Yaw, angleDigits},
		{KeyPitch, s.Pitch, angleDigits},
		{KeyFOV, s.FOV, fovDigits},
	}
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.key)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(p.value, 'f', p.digits, 64))
	}
	return b.String()
}

func number(values url.Values, key string, fallback float64) float64 {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
