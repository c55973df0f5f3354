package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorySet(t *testing.T) {
	tests := []struct {
		name    string
		set     string
		wantLen int
		wantErr bool
	}{
		{name: "Emergency", set: "emergency", wantLen: 8},
		{name: "Commerce", set: "commerce", wantLen: 6},
		{name: "CaseInsensitive", set: " Commerce ", wantLen: 6},
		{name: "Unknown", set: "zoo", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CategorySet(tt.set)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestCategorySet_ReturnsCopy(t *testing.T) {
	first, err := CategorySet(SetEmergency)
	require.NoError(t, err)
	first[0] = "mutated"

	second, err := CategorySet(SetEmergency)
	require.NoError(t, err)
	assert.Equal(t, CategoryGovernment, second[0])
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" Police ")
	require.NoError(t, err)
	assert.Equal(t, CategoryPolice, c)

	_, err = ParseCategory("bakery")
	assert.Error(t, err)
}

func TestAllCategories_Unique(t *testing.T) {
	seen := make(map[Category]bool)
	for _, c := range AllCategories() {
		assert.False(t, seen[c], "duplicate category %s", c)
		seen[c] = true
		assert.True(t, c.Valid())
	}
	assert.Len(t, seen, 14)
}

func TestPoint_IsFinite(t *testing.T) {
	assert.True(t, Point{X: -994.5, Y: 457.6}.IsFinite())
	assert.False(t, Point{X: math.NaN(), Y: 0}.IsFinite())
	assert.False(t, Point{X: 0, Y: math.Inf(-1)}.IsFinite())
}

func TestPoint_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		p    Point
		want string
	}{
		{name: "Finite", p: Point{X: -994.5, Y: 457.6}, want: `{"x":-994.5,"y":457.6}`},
		{name: "Inf", p: Point{X: math.Inf(1), Y: 5}, want: `{"x":null,"y":5}`},
		{name: "NaN", p: Point{X: 1, Y: math.NaN()}, want: `{"x":1,"y":null}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.p)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}
