package geodata_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/geodash/pkg/store"
	"github.com/dmitrymomot/geodash/svc/geodata"
)

const (
	municipalities = geodata.DefaultLayerID
	roads          = "roads"
)

func newEngine(t *testing.T, sources ...geodata.Source) *geodata.Engine {
	t.Helper()
	specs := []geodata.LayerSpec{
		{ID: municipalities, Name: "Municipalities", Visible: true},
		{ID: roads, Name: "Roads"},
	}
	for i, src := range sources {
		specs[i].Source = src
	}
	e, err := geodata.NewEngine(specs)
	require.NoError(t, err)
	return e
}

func staticSource(fc *geodata.FeatureCollection, err error) geodata.Source {
	return geodata.SourceFunc(func(context.Context) (*geodata.FeatureCollection, error) {
		return fc, err
	})
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	layers := e.Layers()
	require.Len(t, layers, 2)
	assert.Equal(t, municipalities, layers[0].ID)
	assert.Equal(t, roads, layers[1].ID)
	for _, l := range layers {
		assert.False(t, l.Loaded())
	}
	assert.False(t, e.DataLoaded())
	assert.Nil(t, e.FilteredFeatures())
	assert.True(t, e.Filters().IsEmpty())

	_, err := geodata.NewEngine([]geodata.LayerSpec{{ID: "a"}, {ID: "a"}})
	assert.ErrorIs(t, err, geodata.ErrDuplicateLayer)

	_, err = geodata.NewEngine([]geodata.LayerSpec{{Name: "no id"}})
	assert.ErrorIs(t, err, geodata.ErrEmptyLayerID)
}

func TestEngine_SetLayerData(t *testing.T) {
	t.Parallel()

	t.Run("non-empty collection sets loaded flag", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t)
		fc := collection(feature("A", "1", 1.0))

		require.NoError(t, e.SetLayerData(municipalities, fc))
		assert.True(t, e.DataLoaded())
		l, _ := e.Layer(municipalities)
		assert.Same(t, fc, l.Data)
		assert.Same(t, fc, e.State().GeoJSON)
	})

	t.Run("empty collection clears loaded flag", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t)
		require.NoError(t, e.SetLayerData(municipalities, collection(feature("A", "1", 1.0))))
		require.NoError(t, e.SetLayerData(municipalities, collection()))

		assert.False(t, e.DataLoaded())
		got := e.FilteredFeatures()
		require.NotNil(t, got)
		assert.Zero(t, got.Len())
	})

	t.Run("unknown layer is not created", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t)
		var notified int
		e.Subscribe(func(geodata.State) { notified++ })

		err := e.SetLayerData("nope", collection(feature("A", "1", 1.0)))
		assert.ErrorIs(t, err, geodata.ErrLayerNotFound)
		_, ok := e.Layer("nope")
		assert.False(t, ok)
		assert.False(t, e.DataLoaded())
		assert.Zero(t, notified)
	})

	t.Run("previous state is not mutated", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t)
		before := e.State()
		require.NoError(t, e.SetLayerData(municipalities, collection(feature("A", "1", 1.0))))
		assert.Nil(t, before.Layers[municipalities].Data)
	})
}

func TestEngine_ToggleVisibility(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	require.NoError(t, e.SetLayerData(municipalities, collection(feature("A", "1", 1.0))))
	before := e.State()

	require.NoError(t, e.ToggleVisibility(roads))
	l, _ := e.Layer(roads)
	assert.True(t, l.Visible)
	assert.Equal(t, before.Layers[municipalities], e.State().Layers[municipalities])

	require.NoError(t, e.ToggleVisibility(roads))
	l, _ = e.Layer(roads)
	assert.False(t, l.Visible)
	assert.True(t, e.DataLoaded())

	assert.ErrorIs(t, e.ToggleVisibility("nope"), geodata.ErrLayerNotFound)
}

func TestEngine_Filters(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	fc := collection(
		feature("A", "1", 3.0),
		feature("B", "2", 10.0),
		feature("A", "3", 7.0),
	)
	require.NoError(t, e.SetLayerData(municipalities, fc))
	unfiltered := names(e.FilteredFeatures())

	e.SetFilters(geodata.FilterPatch{Municipality: store.Set(geodata.NewSet("A"))})
	e.SetFilters(geodata.FilterPatch{AreaMin: store.Set("5")})
	assert.Equal(t, []string{"A"}, names(e.FilteredFeatures()))
	assert.True(t, e.Filters().Municipality.Has("A"))
	assert.Equal(t, "5", e.Filters().AreaMin)

	// Facet options ignore the active filter.
	assert.Equal(t, []string{"A", "B"}, e.UniqueMunicipalities())
	assert.Equal(t, []string{"1", "2", "3"}, e.UniqueMunicodes())

	e.ResetFilters()
	assert.True(t, e.Filters().Equal(geodata.EmptyFilters()))
	assert.Equal(t, unfiltered, names(e.FilteredFeatures()))
}

func TestEngine_LoadLayer(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		fc := collection(feature("A", "1", 1.0))
		e := newEngine(t, staticSource(fc, nil))

		require.NoError(t, e.LoadLayer(context.Background(), municipalities))
		assert.True(t, e.DataLoaded())
		assert.Equal(t, []string{"A"}, e.UniqueMunicipalities())
	})

	t.Run("failure resets layer", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		boom := errors.New("boom")
		src := geodata.SourceFunc(func(context.Context) (*geodata.FeatureCollection, error) {
			if calls.Add(1) == 1 {
				return collection(feature("A", "1", 1.0)), nil
			}
			return nil, boom
		})
		e := newEngine(t, src)
		require.NoError(t, e.LoadLayer(context.Background(), municipalities))

		err := e.LoadLayer(context.Background(), municipalities)
		assert.ErrorIs(t, err, boom)
		l, _ := e.Layer(municipalities)
		assert.False(t, l.Loaded())
		assert.False(t, e.DataLoaded())
		assert.Nil(t, e.FilteredFeatures())
	})

	t.Run("unknown or sourceless layer", func(t *testing.T) {
		t.Parallel()
		e := newEngine(t)
		assert.ErrorIs(t, e.LoadLayer(context.Background(), "nope"), geodata.ErrLayerNotFound)
		assert.ErrorIs(t, e.LoadLayer(context.Background(), roads), geodata.ErrNoSource)
	})
}

func TestEngine_LoadAll(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var roadCalls atomic.Int32
	e := newEngine(t,
		staticSource(collection(feature("A", "1", 1.0)), nil),
		geodata.SourceFunc(func(context.Context) (*geodata.FeatureCollection, error) {
			roadCalls.Add(1)
			return nil, boom
		}),
	)

	err := e.LoadAll(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), roadCalls.Load())
	l, _ := e.Layer(municipalities)
	assert.True(t, l.Loaded())
}
