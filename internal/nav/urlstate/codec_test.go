package urlstate

import (
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/starview/internal/nav/pose"
)

func TestDecodeEmpty(t *testing.T) {
	for _, q := range []string{"", "?", "  "} {
		assert.Nil(t, Decode(q), "query %q", q)
	}
}

func TestDecodeFull(t *testing.T) {
	s := Decode("?px=1.50&py=-2.25&pz=300.00&yaw=0.1234&pitch=-0.5000&fov=60.00")
	require.NotNil(t, s)

	assert.Equal(t, mgl64.Vec3{1.5, -2.25, 300}, s.Position)
	assert.Equal(t, 0.1234, s.Yaw)
	assert.Equal(t, -0.5, s.Pitch)
	assert.Equal(t, 60.0, s.FOV)
}

func TestDecodeDefaults(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  pose.State
	}{
		{
			name:  "only yaw",
			query: "yaw=1.5",
			want:  pose.State{Position: mgl64.Vec3{0, 0, 10000}, Yaw: 1.5, FOV: 75},
		},
		{
			name:  "garbage values",
			query: "px=abc&py=&pz=NaN&yaw=Inf&pitch=0.2&fov=wide",
			want:  pose.State{Position: mgl64.Vec3{0, 0, 10000}, Pitch: 0.2, FOV: 75},
		},
		{
			name:  "unknown keys only",
			query: "?planet=earth",
			want:  pose.DefaultState(),
		},
		{
			name:  "explicit zero kept",
			query: "pz=0&fov=0",
			want:  pose.State{FOV: 0},
		},
		{
			name:  "malformed escape",
			query: "px=%zz&py=7",
			want:  pose.State{Position: mgl64.Vec3{0, 7, 10000}, FOV: 75},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(tt.query)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestEncodeFormat(t *testing.T) {
	s := pose.State{
		Position: mgl64.Vec3{1.234, -5, 10000},
		Yaw:      0.123456,
		Pitch:    -1,
		FOV:      75,
	}
	assert.Equal(t, "px=1.23&py=-5.00&pz=10000.00&yaw=0.1235&pitch=-1.0000&fov=75.00", Encode(s))
}

func TestDefaultPoseRoundTrip(t *testing.T) {
	got := Decode(Encode(pose.DefaultState()))
	require.NotNil(t, got)
	assert.Equal(t, pose.DefaultState(), *got)
}

func TestRoundTripWithinPrecision(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))

	for i := 0; i < 1000; i++ {
		s := pose.State{
			Position: mgl64.Vec3{
				rng.Float64()*2e7 - 1e7,
				rng.Float64()*2e5 - 1e5,
				rng.Float64()*2e7 - 1e7,
			},
			Yaw:   rng.Float64()*40 - 20,
			Pitch: rng.Float64()*3 - 1.5,
			FOV:   1 + rng.Float64()*124,
		}

		got := Decode("?" + Encode(s))
		require.NotNil(t, got)
		for axis := 0; axis < 3; axis++ {
			assert.InDelta(t, s.Position[axis], got.Position[axis], 0.005+1e-9)
		}
		assert.InDelta(t, s.Yaw, got.Yaw, 0.00005+1e-12)
		assert.InDelta(t, s.Pitch, got.Pitch, 0.00005+1e-12)
		assert.InDelta(t, s.FOV, got.FOV, 0.005+1e-9)
	}
}
