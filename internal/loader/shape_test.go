package loader

import (
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

// shpSquare builds a closed square ring as shapefile points. Shapefile
// winding is meaningful: clockwise marks an exterior, counter-clockwise a
// hole.
func shpSquare(cx, cy, side float64, clockwise bool) []shp.Point {
	h := side / 2
	pts := []shp.Point{
		{X: cx - h, Y: cy - h},
		{X: cx + h, Y: cy - h},
		{X: cx + h, Y: cy + h},
		{X: cx - h, Y: cy + h},
		{X: cx - h, Y: cy - h},
	}
	if clockwise {
		reverseShpPoints(pts)
	}
	return pts
}

func reverseShpPoints(pts []shp.Point) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}

func shpPolygonFromRings(rings ...[]shp.Point) *shp.Polygon {
	return (*shp.Polygon)(shp.NewPolyLine(rings))
}

func TestPolygonToMultiPolygonGroupsHoles(t *testing.T) {
	poly := shpPolygonFromRings(
		shpSquare(0, 0, 100, true),  // exterior
		shpSquare(0, 0, 50, false),  // hole in the first exterior
		shpSquare(500, 0, 40, true), // second exterior
	)

	g := polygonToMultiPolygon(poly)
	mp, ok := g.(*geom.MultiPolygon)
	require.True(t, ok)
	require.Equal(t, 2, mp.NumPolygons())
	assert.Equal(t, 2, mp.Polygon(0).NumLinearRings(), "hole attaches as interior ring")
	assert.Equal(t, 1, mp.Polygon(1).NumLinearRings())
}

func TestPolygonToMultiPolygonOrphanHoleDropped(t *testing.T) {
	poly := shpPolygonFromRings(
		shpSquare(0, 0, 50, false), // hole before any exterior
		shpSquare(0, 0, 100, true),
	)

	mp, ok := polygonToMultiPolygon(poly).(*geom.MultiPolygon)
	require.True(t, ok)
	require.Equal(t, 1, mp.NumPolygons())
	assert.Equal(t, 1, mp.Polygon(0).NumLinearRings())
}

func TestPolygonToMultiPolygonDegenerateInputs(t *testing.T) {
	assert.Nil(t, polygonToMultiPolygon(nil))
	assert.Nil(t, polygonToMultiPolygon(&shp.Polygon{}))
	// A lone hole ring yields nothing.
	assert.Nil(t, polygonToMultiPolygon(shpPolygonFromRings(shpSquare(0, 0, 50, false))))
}

func TestRingSignedAreaWinding(t *testing.T) {
	flatten := func(pts []shp.Point) []float64 {
		out := make([]float64, 0, len(pts)*2)
		for _, p := range pts {
			out = append(out, p.X, p.Y)
		}
		return out
	}

	assert.Positive(t, ringSignedArea(flatten(shpSquare(0, 0, 10, false))))
	assert.Negative(t, ringSignedArea(flatten(shpSquare(0, 0, 10, true))))
	assert.Zero(t, ringSignedArea([]float64{0, 0, 1, 1}))
}
