package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/geodash/pkg/httpserver"
	"github.com/dmitrymomot/geodash/pkg/requestid"
	"github.com/dmitrymomot/geodash/pkg/store"
	"github.com/dmitrymomot/geodash/svc/geodata"
	"github.com/dmitrymomot/geodash/svc/session"
)

// Router exposes the dashboard state to UI clients.
func (d *Dashboard) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(httpserver.LogRequests(d.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", httpserver.HealthHandler(d.log, nil))
	r.Get("/readyz", httpserver.HealthHandler(d.log, d.checks))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/layers", func(r chi.Router) {
		r.Get("/", d.listLayers)
		r.Post("/{id}/toggle", d.toggleLayer)
		r.Post("/{id}/reload", d.reloadLayer)
	})
	r.Get("/features", d.features)
	r.Get("/facets", d.facets)
	r.Route("/filters", func(r chi.Router) {
		r.Get("/", d.getFilters)
		r.Put("/", d.setFilters)
		r.Delete("/", d.resetFilters)
	})
	r.Route("/session", func(r chi.Router) {
		r.Get("/", d.getSession)
		r.Post("/login", d.login)
		r.Post("/logout", d.logout)
		r.Post("/register", d.register)
		r.Post("/forgot-password", d.forgotPassword)
	})
	r.Get("/search", d.search)
	r.Route("/view", func(r chi.Router) {
		r.Get("/", d.getView)
		r.Post("/home", d.viewHome)
		r.Post("/table/toggle", d.toggleTable)
		r.Delete("/notice", d.dismissNotice)
	})
	return r
}

// layerView is a layer without its data, plus load state.
type layerView struct {
	geodata.Layer
	Loaded   bool `json:"loaded"`
	Features int  `json:"features"`
}

// toLayerView summarizes l.
func toLayerView(l geodata.Layer) layerView {
	return layerView{Layer: l, Loaded: l.Loaded(), Features: l.Data.Len()}
}

// listLayers handles GET /layers.
func (d *Dashboard) listLayers(w http.ResponseWriter, r *http.Request) {
	layers := d.Geo.Layers()
	out := make([]layerView, 0, len(layers))
	for _, l := range layers {
		out = append(out, toLayerView(l))
	}
	writeJSON(w, http.StatusOK, envelope{Data: out, Meta: map[string]any{"dataLoaded": d.Geo.DataLoaded()}})
}

// toggleLayer handles POST /layers/{id}/toggle.
func (d *Dashboard) toggleLayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := d.Geo.ToggleVisibility(id); err != nil {
		fail(w, err)
		return
	}
	l, _ := d.Geo.Layer(id)
	ok(w, toLayerView(l))
}

// reloadLayer handles POST /layers/{id}/reload.
func (d *Dashboard) reloadLayer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := d.Geo.LoadLayer(r.Context(), id); err != nil {
		fail(w, err)
		return
	}
	l, _ := d.Geo.Layer(id)
	ok(w, toLayerView(l))
}

// features answers data null while nothing is loaded, which clients must
// tell apart from an empty collection.
func (d *Dashboard) features(w http.ResponseWriter, r *http.Request) {
	fc := d.Geo.FilteredFeatures()
	meta := map[string]any{"dataLoaded": d.Geo.DataLoaded(), "count": fc.Len()}
	if fc == nil {
		writeJSON(w, http.StatusOK, envelope{Data: nil, Meta: meta})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Data: fc, Meta: meta})
}

// facets handles GET /facets.
func (d *Dashboard) facets(w http.ResponseWriter, r *http.Request) {
	ok(w, map[string][]string{
		"municipalities": nonNil(d.Geo.UniqueMunicipalities()),
		"municodes":      nonNil(d.Geo.UniqueMunicodes()),
	})
}

// nonNil turns a nil slice into an empty one so it encodes as [].
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// getFilters handles GET /filters.
func (d *Dashboard) getFilters(w http.ResponseWriter, r *http.Request) {
	ok(w, d.Geo.Filters())
}

// filterRequest carries only the fields to change; absent fields are kept.
type filterRequest struct {
	Municipality *[]string `json:"municipality"`
	Municode     *[]string `json:"municode"`
	AreaMin      *string   `json:"areaMin"`
	AreaMax      *string   `json:"areaMax"`
}

// patch converts the request into a patch of the present fields.
func (f filterRequest) patch() geodata.FilterPatch {
	var p geodata.FilterPatch
	if f.Municipality != nil {
		p.Municipality = store.Set(geodata.NewSet(*f.Municipality...))
	}
	if f.Municode != nil {
		p.Municode = store.Set(geodata.NewSet(*f.Municode...))
	}
	if f.AreaMin != nil {
		p.AreaMin = store.Set(*f.AreaMin)
	}
	if f.AreaMax != nil {
		p.AreaMax = store.Set(*f.AreaMax)
	}
	return p
}

// setFilters handles PUT /filters.
func (d *Dashboard) setFilters(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, err)
		return
	}
	d.Geo.SetFilters(req.patch())
	ok(w, d.Geo.Filters())
}

// resetFilters handles DELETE /filters.
func (d *Dashboard) resetFilters(w http.ResponseWriter, r *http.Request) {
	d.Geo.ResetFilters()
	ok(w, d.Geo.Filters())
}

// getSession handles GET /session.
func (d *Dashboard) getSession(w http.ResponseWriter, r *http.Request) {
	ok(w, d.Session.State())
}

// loginRequest is the body of POST /session/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// login handles POST /session/login.
func (d *Dashboard) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		fail(w, err)
		return
	}
	if err := d.Session.Login(r.Context(), req.Email, req.Password); err != nil {
		fail(w, err)
		return
	}
	ok(w, d.Session.State())
}

// register handles POST /session/register.
func (d *Dashboard) register(w http.ResponseWriter, r *http.Request) {
	var req session.Registration
	if err := decodeJSON(r, &req); err != nil {
		fail(w, err)
		return
	}
	if err := d.Session.Register(r.Context(), req); err != nil {
		fail(w, err)
		return
	}
	ok(w, d.Session.State())
}

// logout handles POST /session/logout.
func (d *Dashboard) logout(w http.ResponseWriter, r *http.Request) {
	if err := d.Session.Logout(r.Context()); err != nil {
		fail(w, err)
		return
	}
	ok(w, d.Session.State())
}

// forgotPassword handles POST /session/forgot-password.
func (d *Dashboard) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		fail(w, err)
		return
	}
	msg, err := d.Session.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		fail(w, err)
		return
	}
	ok(w, map[string]string{"message": msg})
}

// search geocodes q and moves the view to the result.
func (d *Dashboard) search(w http.ResponseWriter, r *http.Request) {
	place, err := d.Geocoder.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		fail(w, err)
		return
	}
	d.View.ShowPlace(*place)
	ok(w, place)
}

// getView handles GET /view.
func (d *Dashboard) getView(w http.ResponseWriter, r *http.Request) {
	ok(w, d.View.State())
}

// viewHome handles POST /view/home.
func (d *Dashboard) viewHome(w http.ResponseWriter, r *http.Request) {
	d.View.Home()
	ok(w, d.View.State())
}

// toggleTable handles POST /view/table/toggle.
func (d *Dashboard) toggleTable(w http.ResponseWriter, r *http.Request) {
	d.View.ToggleTable()
	ok(w, d.View.State())
}

// dismissNotice handles DELETE /view/notice.
func (d *Dashboard) dismissNotice(w http.ResponseWriter, r *http.Request) {
	d.View.DismissNotice()
	ok(w, d.View.State())
}
