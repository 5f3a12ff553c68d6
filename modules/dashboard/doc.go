// Package dashboard is the composition root of geodash. It loads the
// configuration, builds the session manager, the layer engine, the geocoder
// and the view model, and exposes them over a chi router for UI clients.
package dashboard
