package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/starview/internal/catalog"
)

func TestWheelEvent(t *testing.T) {
	tests := []struct {
		name    string
		hovered bool
		cursor  string
		shift   bool
		over    bool
	}{
		{"canvas", true, "grab", false, false},
		{"canvas with shift", true, "auto", true, false},
		{"menu button", true, "pointer", false, true},
		{"outside the page", false, "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := wheelEvent(-120, tt.shift, tt.hovered, tt.cursor)
			assert.Equal(t, -120.0, e.DeltaY)
			assert.Equal(t, tt.shift, e.Modifier)
			assert.Equal(t, tt.over, e.OverControl)
		})
	}
}

func TestSceneEntries(t *testing.T) {
	c, err := catalog.Load(filepath.Join("..", "..", "internal", "catalog", "testdata", "solar.json"), catalog.Options{Seed: 1})
	require.NoError(t, err)

	entries := sceneEntries(c)
	require.Len(t, entries, c.Len())

	sun := entries[0].(map[string]any)
	assert.Equal(t, "Sun", sun["name"])
	assert.Equal(t, true, sun["star"])
	assert.Len(t, sun["position"], 3)

	for i, o := range c.Menu() {
		e := entries[i].(map[string]any)
		assert.Equal(t, o.Name, e["name"])
		assert.Equal(t, o.RelativeTo, e["parent"])
	}
}
