package geodata

import "errors"

var (
	ErrLayerNotFound     = errors.New("geodata: layer not found")
	ErrDuplicateLayer    = errors.New("geodata: duplicate layer id")
	ErrEmptyLayerID      = errors.New("geodata: empty layer id")
	ErrNoSource          = errors.New("geodata: layer has no source")
	ErrFetchFailed       = errors.New("geodata: feature fetch failed")
	ErrInvalidCollection = errors.New("geodata: response is not a feature collection")
	ErrInvalidManifest   = errors.New("geodata: invalid layer manifest")
)
