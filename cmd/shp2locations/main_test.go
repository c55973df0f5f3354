package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cctvmap/pkg/dataset"
	"cctvmap/pkg/model"
)

func writeShapefile(t *testing.T, path string) {
	t.Helper()
	w, err := shp.Create(path, shp.POINT)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{
		shp.StringField("ID", 16),
		shp.StringField("NAME", 64),
		shp.StringField("CATEGORY", 16),
	}))
	rows := []struct {
		x, y          float64
		id, name, cat string
	}{
		{-1098.4, -840.9, "police-01", "Vespucci Police Station", "police"},
		{1692.6, 3584.9, "fire-02", "Sandy Shores Fire Station", "fire"},
	}
	for _, r := range rows {
		n := int(w.Write(&shp.Point{X: r.x, Y: r.y}))
		require.NoError(t, w.WriteAttribute(n, 0, r.id))
		require.NoError(t, w.WriteAttribute(n, 1, r.name))
		require.NoError(t, w.WriteAttribute(n, 2, r.cat))
	}
	w.Close()
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "stations.shp")
	writeShapefile(t, input)

	tests := []struct {
		name   string
		output string
	}{
		{name: "YAML", output: "stations.yaml"},
		{name: "JSON", output: "stations.json"},
		{name: "GeoJSON", output: "stations.geojson"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(dir, tt.output)
			require.NoError(t, run(input, out, model.SetEmergency))

			locs, err := dataset.LoadFile(out)
			require.NoError(t, err)
			require.Len(t, locs, 2)
			assert.Equal(t, "police-01", locs[0].ID)
			assert.Equal(t, model.CategoryFire, locs[1].Category)
			assert.InDelta(t, 3584.9, locs[1].Coordinates.Y, 1e-9)
			assert.True(t, locs[1].Enabled)
		})
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "stations.shp")
	writeShapefile(t, input)

	tests := []struct {
		name   string
		input  string
		output string
		set    string
	}{
		{name: "MissingInput", input: filepath.Join(dir, "nope.shp"), output: filepath.Join(dir, "a.yaml")},
		{name: "UnknownOutputFormat", input: input, output: filepath.Join(dir, "a.csv")},
		{name: "UnknownSet", input: input, output: filepath.Join(dir, "a.yaml"), set: "aviation"},
		{name: "CategoryOutsideSet", input: input, output: filepath.Join(dir, "a.yaml"), set: model.SetCommerce},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, run(tt.input, tt.output, tt.set))
			_, err := os.Stat(tt.output)
			assert.True(t, os.IsNotExist(err))
		})
	}
}
