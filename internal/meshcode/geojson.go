package meshcode

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Ring returns the closed outline of the box in lon/lat order, counter-clockwise
// from the south-west corner. The first and last points are equal.
func (b BoundingBox) Ring() orb.Ring {
	return orb.Ring{
		{b.MinLon, b.MinLat},
		{b.MaxLon, b.MinLat},
		{b.MaxLon, b.MaxLat},
		{b.MinLon, b.MaxLat},
		{b.MinLon, b.MinLat},
	}
}

// Bound converts the box to an orb.Bound.
func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLon, b.MinLat},
		Max: orb.Point{b.MaxLon, b.MaxLat},
	}
}

func (c Cell) Polygon() orb.Polygon {
	return orb.Polygon{c.BBox().Ring()}
}

// Feature builds a polygon feature for the cell with its code, level and
// center as properties.
func (c Cell) Feature() *geojson.Feature {
	f := geojson.NewFeature(c.Polygon())
	center := c.Center()
	f.ID = c.Code
	f.Properties["code"] = c.Code
	f.Properties["level"] = int(c.Level)
	f.Properties["center_lat"] = center.Lat
	f.Properties["center_lon"] = center.Lon
	return f
}

// FeatureCollection renders cells as polygon features. props, if non-nil, adds
// per-cell properties on top of the defaults.
func FeatureCollection(cells []Cell, props func(Cell) map[string]any) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, c := range cells {
		f := c.Feature()
		if props != nil {
			for k, v := range props(c) {
				f.Properties[k] = v
			}
		}
		fc.Append(f)
	}
	return fc
}
