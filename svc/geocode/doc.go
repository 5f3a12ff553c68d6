// Package geocode resolves free-text locations through a Nominatim-style
// search API. The first result wins; its bounding box is returned so the
// map can fit the place.
package geocode
