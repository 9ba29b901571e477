package globe

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-globe/internal/entity"
)

const frameDT = 16 * time.Millisecond

type selectRecorder struct {
	ids []string
}

func (r *selectRecorder) record(id string) {
	r.ids = append(r.ids, id)
}

func newTestEngine(t *testing.T, cfg Config, entities ...entity.Entity) (*Engine, *selectRecorder) {
	t.Helper()
	rec := &selectRecorder{}
	e := New(cfg, WithOnSelect(rec.record))
	e.SetViewport(Viewport{Width: 80, Height: 40, CellAspect: 2})
	e.SetEntities(entities)
	return e, rec
}

// faceMarker turns the camera so the lat 0, lng 0 marker sits in the middle of the screen.
func faceMarker(e *Engine) {
	e.rig.state.Azimuth = math.Pi / 2
}

func screenOf(t *testing.T, e *Engine, id string) (float64, float64) {
	t.Helper()
	for _, m := range e.Markers() {
		if m.ID == id {
			require.True(t, m.Visible, "marker %s not visible", id)
			return m.ScreenX, m.ScreenY
		}
	}
	t.Fatalf("no marker %s", id)
	return 0, 0
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func hasKind(events []Event, k EventKind) bool {
	for _, ev := range events {
		if ev.Kind == k {
			return true
		}
	}
	return false
}

func TestEngine_EndToEndClick(t *testing.T) {
	e, rec := newTestEngine(t, DefaultConfig(),
		ent("1", 0, 0, true),
		ent("2", 90, 45, false),
	)

	markers := e.registry.Markers()
	require.Len(t, markers, 1)
	assert.Equal(t, "1", markers[0].ID)
	assert.InDelta(t, 2.1, markers[0].Position.X, 1e-12)
	assert.InDelta(t, 0, markers[0].Position.Y, 1e-12)
	assert.InDelta(t, 0, markers[0].Position.Z, 1e-12)

	faceMarker(e)
	x, y := screenOf(t, e, "1")
	assert.InDelta(t, 40, x, 1e-9)
	assert.InDelta(t, 20, y, 1e-9)

	e.Enqueue(PointerMove(x, y))
	e.Enqueue(PointerDown(x, y))
	e.Enqueue(PointerUp(x, y))
	res := e.Frame(frameDT)

	assert.Equal(t, []EventKind{EventHoverEnter, EventClick, EventSelect}, kinds(res.Events))
	assert.Equal(t, SelectionState{Kind: Selected, ID: "1"}, e.Selection())
	assert.Equal(t, []string{"1"}, rec.ids)
}

func TestEngine_EndToEndOnTheGlobeSurface(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SurfaceLift = 0
	e, rec := newTestEngine(t, cfg,
		ent("1", 0, 0, true),
		ent("2", 90, 45, false),
	)

	m, ok := e.registry.Marker("1")
	require.True(t, ok)
	assert.InDelta(t, 2, m.Position.X, 1e-12)

	faceMarker(e)
	x, y := screenOf(t, e, "1")
	e.Enqueue(PointerMove(x, y))
	e.Frame(frameDT)
	e.Enqueue(PointerDown(x, y))
	e.Frame(frameDT)
	e.Enqueue(PointerUp(x, y))
	e.Frame(frameDT)

	assert.Equal(t, SelectionState{Kind: Selected, ID: "1"}, e.Selection())
	assert.Equal(t, []string{"1"}, rec.ids)
}

func TestEngine_DragNeverClicks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Camera.RotateSpeed = 0 // keep the marker under the pointer throughout
	e, rec := newTestEngine(t, cfg, ent("1", 0, 0, true))
	faceMarker(e)
	x, y := screenOf(t, e, "1")

	var all []Event
	e.Enqueue(PointerMove(x, y))
	e.Enqueue(PointerDown(x, y))
	all = append(all, e.Frame(frameDT).Events...)

	e.Enqueue(PointerMove(x+6, y))
	all = append(all, e.Frame(frameDT).Events...)

	e.Enqueue(PointerMove(x, y))
	e.Enqueue(PointerUp(x, y))
	all = append(all, e.Frame(frameDT).Events...)

	assert.False(t, hasKind(all, EventClick))
	assert.Empty(t, rec.ids)
	assert.Equal(t, SelectionState{Kind: Hovering, ID: "1"}, e.Selection())
}

func TestEngine_DragRotatesCamera(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Camera.AutoRotate = false
	e, _ := newTestEngine(t, cfg)

	e.Enqueue(PointerMove(10, 10))
	e.Enqueue(PointerDown(10, 10))
	e.Enqueue(PointerMove(20, 10))
	e.Frame(frameDT)
	assert.InDelta(t, 2*math.Pi-10*cfg.Camera.RotateSpeed, e.Camera().Azimuth, 1e-12)

	e.Enqueue(PointerUp(20, 10))
	e.Frame(frameDT)
	assert.False(t, e.rig.Dragging())
}

func TestEngine_JitterBelowThresholdStillClicks(t *testing.T) {
	e, rec := newTestEngine(t, DefaultConfig(), ent("1", 0, 0, true))
	faceMarker(e)
	x, y := screenOf(t, e, "1")

	e.Enqueue(PointerMove(x, y))
	e.Enqueue(PointerDown(x, y))
	e.Enqueue(PointerMove(x+1, y))
	e.Enqueue(PointerMove(x, y))
	e.Enqueue(PointerUp(x, y))
	e.Frame(frameDT)

	assert.Equal(t, []string{"1"}, rec.ids)
}

func TestEngine_PointerLeaveExitsHover(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig(), ent("1", 0, 0, true))
	faceMarker(e)
	x, y := screenOf(t, e, "1")

	e.Enqueue(PointerMove(x, y))
	res := e.Frame(frameDT)
	assert.Equal(t, []Event{{Kind: EventHoverEnter, ID: "1"}}, res.Events)
	assert.Equal(t, SelectionState{Kind: Hovering, ID: "1"}, e.Selection())
	assert.True(t, e.Markers()[0].Hovered)

	e.Enqueue(PointerLeave())
	res = e.Frame(frameDT)
	assert.Equal(t, []Event{{Kind: EventHoverExit, ID: "1"}}, res.Events)
	assert.Equal(t, SelectionState{Kind: Idle}, e.Selection())
	assert.False(t, e.Markers()[0].Hovered)
}

func TestEngine_ReclickDoesNotRefire(t *testing.T) {
	e, rec := newTestEngine(t, DefaultConfig(), ent("1", 0, 0, true))
	faceMarker(e)
	x, y := screenOf(t, e, "1")

	for i := 0; i < 3; i++ {
		e.Enqueue(PointerMove(x, y))
		e.Enqueue(PointerDown(x, y))
		e.Enqueue(PointerUp(x, y))
		e.Frame(frameDT)
	}
	assert.Equal(t, []string{"1"}, rec.ids)
}

func TestEngine_RemovalForcesIdle(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig(), ent("1", 0, 0, true), ent("2", 10, 10, true))
	faceMarker(e)
	x, y := screenOf(t, e, "1")

	e.Enqueue(PointerMove(x, y))
	e.Enqueue(PointerDown(x, y))
	e.Enqueue(PointerUp(x, y))
	e.Frame(frameDT)
	require.Equal(t, SelectionState{Kind: Selected, ID: "1"}, e.Selection())

	report := e.SetEntities([]entity.Entity{ent("1", 0, 0, false), ent("2", 10, 10, true)})
	assert.Equal(t, []string{"1"}, report.Removed)
	assert.Equal(t, SelectionState{Kind: Idle}, e.Selection())

	// The pointer is still there; no stale hover exit follows.
	res := e.Frame(frameDT)
	assert.Empty(t, res.Events)
}

func TestEngine_DismissAndSelectByID(t *testing.T) {
	e, rec := newTestEngine(t, DefaultConfig(), ent("1", 0, 0, true), ent("3", 10, 10, true))

	assert.False(t, e.Dismiss())
	assert.True(t, e.SelectByID("1"))
	assert.False(t, e.SelectByID("1"))
	assert.True(t, e.SelectByID("3"))
	assert.False(t, e.SelectByID("nope"))
	assert.Equal(t, []string{"1", "3"}, rec.ids)

	assert.True(t, e.Dismiss())
	assert.Equal(t, SelectionState{Kind: Idle}, e.Selection())
}

func TestEngine_CycleSelection(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig(),
		ent("1", 0, 0, true), ent("2", 10, 10, true), ent("3", 20, 20, true))

	steps := []struct {
		step int
		want string
	}{
		{1, "1"}, {1, "2"}, {-1, "1"}, {-1, "3"}, {2, "2"},
	}
	for _, s := range steps {
		id, ok := e.CycleSelection(s.step)
		require.True(t, ok)
		assert.Equal(t, s.want, id)
	}

	empty, _ := newTestEngine(t, DefaultConfig())
	_, ok := empty.CycleSelection(1)
	assert.False(t, ok)
}

func TestEngine_ScrollThroughQueue(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())
	e.Enqueue(Scroll(100))
	e.Frame(frameDT)
	assert.Equal(t, 8.0, e.Camera().Distance)

	e.Enqueue(Scroll(-100))
	e.Frame(frameDT)
	assert.Equal(t, 3.0, e.Camera().Distance)
}

func TestEngine_MarkersView(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig(),
		ent("front", 0, 0, true),
		ent("back", 0, 180, true),
		ent("off", 0, 90, false),
	)
	faceMarker(e)
	require.True(t, e.SelectByID("back"))

	views := e.Markers()
	require.Len(t, views, 2)

	front, back := views[0], views[1]
	assert.Equal(t, "Entity front", front.Name)
	assert.True(t, front.Online)
	assert.True(t, front.Visible)
	assert.False(t, back.Visible, "far side is hidden by the globe")
	assert.True(t, back.Selected)
	assert.Equal(t, entity.Summary{Online: 2, Total: 3}, e.Summary())

	got, ok := e.Entity("off")
	assert.True(t, ok)
	assert.False(t, got.Online)
}

func TestEngine_AutoRotateAdvancesWhenIdle(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())
	e.Frame(time.Second)
	assert.InDelta(t, 2*math.Pi/120, e.Camera().Azimuth, 1e-12)

	e.SetAutoRotate(false)
	assert.False(t, e.AutoRotateEnabled())
	e.Frame(time.Second)
	assert.InDelta(t, 2*math.Pi/120, e.Camera().Azimuth, 1e-12)

	e.ResetCamera()
	assert.Equal(t, 0.0, e.Camera().Azimuth)
}

func TestEngine_SessionID(t *testing.T) {
	id := uuid.MustParse("9b2f6c1e-3f7a-4a59-9d8e-2f1b7c3d4e5f")
	e := New(DefaultConfig(), WithSessionID(id))
	assert.Equal(t, id.String(), e.SessionID())

	other := New(DefaultConfig())
	assert.NotEqual(t, e.SessionID(), other.SessionID())
}

func TestEngine_InvalidRadiusFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GlobeRadius = -3
	e := New(cfg)
	assert.Equal(t, DefaultGlobeRadius, e.Config().GlobeRadius)
}
