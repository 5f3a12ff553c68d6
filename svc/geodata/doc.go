// Package geodata holds the map layers, the attribute filters and the
// queries derived from them.
//
// Layers are declared up front, usually from a YAML manifest, and start
// without data. LoadLayer fetches a layer's GeoJSON through its Source and
// makes it the collection FilteredFeatures and the facet queries read.
//
// Filtering keeps a feature only if all of these hold:
//
//   - the municipality set is empty or contains MUNICIPALITY
//   - the municode set is empty or contains MUNICODE
//   - SQ_MILES is a finite number
//   - SQ_MILES is within the areaMin/areaMax bounds that are set
//
// An empty facet set never filters anything out. Area bounds are text and
// are parsed on every query; a bound that is not a number matches nothing.
// The finite area check applies even with no filters set.
//
// Derived queries are recomputed on each call and never cached.
package geodata
