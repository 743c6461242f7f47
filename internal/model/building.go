package model

import (
	"encoding/json"
	"sort"
)

// BuildingRecord is one building footprint near an airport, with its
// precomputed planar area and centroid distance. Records are never mutated
// after creation: the loader's cache hands out deep copies only, so callers
// may annotate their copies freely.
type BuildingRecord struct {
	Geometry   json.RawMessage `json:"geometry"` // GeoJSON Polygon or MultiPolygon, WGS84
	AreaM2     float64         `json:"area_m2"`
	DistanceKM float64         `json:"distance_km"`
	Lat        float64         `json:"lat"` // centroid
	Lon        float64         `json:"lon"`
}

// Clone returns an independent copy of the record, including its geometry
// bytes.
func (b BuildingRecord) Clone() BuildingRecord {
	out := b
	if b.Geometry != nil {
		out.Geometry = make(json.RawMessage, len(b.Geometry))
		copy(out.Geometry, b.Geometry)
	}
	return out
}

// CloneBuildings deep-copies a building list. Returns nil for nil input.
func CloneBuildings(in []BuildingRecord) []BuildingRecord {
	if in == nil {
		return nil
	}
	out := make([]BuildingRecord, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// SortByAreaDesc sorts records by area descending. The sort is stable so
// that equal-area records keep their input order and repeated queries stay
// deterministic.
func SortByAreaDesc(buildings []BuildingRecord) {
	sort.SliceStable(buildings, func(i, j int) bool {
		return buildings[i].AreaM2 > buildings[j].AreaM2
	})
}
