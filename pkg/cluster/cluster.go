// Package cluster groups nearby markers in display space.
package cluster

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Marker is a location projected to display coordinates.
type Marker struct {
	ID    string    `json:"id"`
	Point orb.Point `json:"point"`
}

// Cluster is a group of markers sharing a grid cell.
type Cluster struct {
	Center orb.Point `json:"center"`
	Bound  orb.Bound `json:"bound"`
	IDs    []string  `json:"ids"`
}

func (c Cluster) Count() int { return len(c.IDs) }

type cellKey struct{ x, y int64 }

// Group buckets markers into square cells of cellSize/2^zoom display units.
// Clusters are ordered by their first member, and member ids keep input order.
// A non-positive cellSize disables grouping.
func Group(markers []Marker, zoom int, cellSize float64) []Cluster {
	if len(markers) == 0 {
		return []Cluster{}
	}

	if cellSize <= 0 {
		out := make([]Cluster, 0, len(markers))
		for _, m := range markers {
			out = append(out, Cluster{Center: m.Point, Bound: m.Point.Bound(), IDs: []string{m.ID}})
		}
		return out
	}

	size := cellSize / math.Pow(2, float64(zoom))

	index := make(map[cellKey]int)
	var members []orb.MultiPoint
	var out []Cluster
	for _, m := range markers {
		key := cellKey{
			x: int64(math.Floor(m.Point.X() / size)),
			y: int64(math.Floor(m.Point.Y() / size)),
		}
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, Cluster{})
			members = append(members, nil)
		}
		out[i].IDs = append(out[i].IDs, m.ID)
		members[i] = append(members[i], m.Point)
	}

	for i := range out {
		out[i].Center, _ = planar.CentroidArea(members[i])
		out[i].Bound = members[i].Bound()
	}
	return out
}
