// Package theme maps location categories to marker colors and icons.
package theme

import (
	"fmt"

	"cctvmap/pkg/model"
)

// Style is the marker presentation of a category.
// Color is a hex RGB string; Icon is a lucide icon name used by the front-end.
type Style struct {
	Color string `json:"color"`
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

var styles = map[model.Category]Style{
	// Emergency services
	model.CategoryGovernment: {Color: "#3b82f6", Icon: "building", Label: "Government"},
	model.CategoryPolice:     {Color: "#6366f1", Icon: "building", Label: "Police"},
	model.CategoryFire:       {Color: "#ef4444", Icon: "flame-kindling", Label: "Fire"},
	model.CategoryHospital:   {Color: "#22c55e", Icon: "stethoscope", Label: "Hospital"},
	model.CategoryLifeguard:  {Color: "#f97316", Icon: "life-buoy", Label: "Lifeguard"},
	model.CategoryPrison:     {Color: "#a855f7", Icon: "lock", Label: "Prison"},
	model.CategoryImpound:    {Color: "#64748b", Icon: "truck", Label: "Impound"},
	model.CategoryEmergency:  {Color: "#f43f5e", Icon: "phone", Label: "Emergency"},

	// Commerce
	model.CategoryGas:        {Color: "#f97316", Icon: "fuel", Label: "Gas Station"},
	model.CategoryBank:       {Color: "#10b981", Icon: "banknote", Label: "Bank"},
	model.CategoryClothing:   {Color: "#8b5cf6", Icon: "shirt", Label: "Clothing"},
	model.CategoryAmmunation: {Color: "#f43f5e", Icon: "target", Label: "Ammu-Nation"},
	model.CategoryPhone:      {Color: "#0ea5e9", Icon: "smartphone", Label: "Phone Store"},
	model.CategoryOther:      {Color: "#737373", Icon: "building", Label: "Other"},
}

func init() {
	for _, c := range model.AllCategories() {
		if _, ok := styles[c]; !ok {
			panic(fmt.Sprintf("theme: no style for category %q", c))
		}
	}
}

// StyleFor returns the style of c. Every category in model.AllCategories has one;
// anything else gets a neutral style labelled with the raw value.
func StyleFor(c model.Category) Style {
	if s, ok := styles[c]; ok {
		return s
	}
	return Style{Color: "#737373", Icon: "map-pin", Label: string(c)}
}

// LegendEntry is one row of the filter bar.
type LegendEntry struct {
	Category model.Category `json:"category"`
	Style
}

// Legend returns the legend rows for set, in set order.
func Legend(set []model.Category) []LegendEntry {
	out := make([]LegendEntry, len(set))
	for i, c := range set {
		out[i] = LegendEntry{Category: c, Style: StyleFor(c)}
	}
	return out
}
