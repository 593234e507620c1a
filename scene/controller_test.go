package scene

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/wfunc/mahjongtable/layout"
	"github.com/wfunc/mahjongtable/render"
	"github.com/wfunc/mahjongtable/state"
)

// MockObserver is a test double for the Observer interface.
type MockObserver struct {
	Built   int
	Failed  int
	Ignored int
	Wall    int
	Hand    int
}

func (m *MockObserver) SceneBuilt(wallTiles, handTiles int) {
	m.Built++
	m.Wall = wallTiles
	m.Hand = handTiles
}

func (m *MockObserver) SceneFailed()  { m.Failed++ }
func (m *MockObserver) SceneIgnored() { m.Ignored++ }

func newTestController(t *testing.T) (*Controller, *render.Headless) {
	t.Helper()
	h := render.NewHeadless(time.Millisecond)
	t.Cleanup(h.Stop)
	return NewController(h, Options{}), h
}

func TestController_InitializeBuildsScene(t *testing.T) {
	c, h := newTestController(t)

	if c.Lifecycle() != state.Uninitialized {
		t.Fatalf("Expected %s before any event, got %s", state.Uninitialized, c.Lifecycle())
	}
	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if c.Lifecycle() != state.Initialized {
		t.Errorf("Expected %s, got %s", state.Initialized, c.Lifecycle())
	}
	if got := len(c.WallTiles()); got != layout.WallTileCount {
		t.Errorf("Expected %d wall tiles, got %d", layout.WallTileCount, got)
	}
	if got := len(c.HandTiles()); got != len(DefaultHand) {
		t.Errorf("Expected %d hand tiles, got %d", len(DefaultHand), got)
	}
	if got := len(h.Snapshot()); got != ExpectedEntities(len(DefaultHand)) {
		t.Errorf("Expected %d renderer entities, got %d", ExpectedEntities(len(DefaultHand)), got)
	}
	if h.Count(render.KindCylinder) != 1 {
		t.Errorf("Expected the dice hole cylinder, got %d cylinders", h.Count(render.KindCylinder))
	}
	if !h.Running() {
		t.Error("Render loop should be running after initialization")
	}
}

func TestController_TilesArePosedAndCastShadows(t *testing.T) {
	c, h := newTestController(t)
	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	for _, tile := range append(c.WallTiles(), c.HandTiles()...) {
		e, ok := h.Get(tile.ID)
		if !ok {
			t.Fatalf("Tile %s has no renderer entity", tile.Slot.Key())
		}
		if !e.CastsShadow {
			t.Errorf("Tile %s does not cast shadows", tile.Slot.Key())
		}
		if e.Position != tile.Pose.Position || e.Rotation != tile.Pose.Rotation() {
			t.Errorf("Tile %s posed at %v/%v, want %v/%v", tile.Slot.Key(), e.Position, e.Rotation, tile.Pose.Position, tile.Pose.Rotation())
		}
		if e.Label != tile.Slot.FaceLabel {
			t.Errorf("Tile %s label %q, want %q", tile.Slot.Key(), e.Label, tile.Slot.FaceLabel)
		}
	}
}

func TestController_InitializeTwiceIsNoop(t *testing.T) {
	c, h := newTestController(t)
	observer := &MockObserver{}
	c.SetObserver(observer)

	if err := c.Initialize(); err != nil {
		t.Fatalf("First Initialize failed: %v", err)
	}
	first := c.Context()
	if err := c.Initialize(); err != nil {
		t.Fatalf("Second Initialize should be a no-op, got: %v", err)
	}

	if c.Context() != first {
		t.Error("Second Initialize replaced the scene context")
	}
	if got := h.Count(render.KindSurface); got != 1 {
		t.Errorf("Expected one surface, got %d", got)
	}
	if got := len(h.Snapshot()); got != ExpectedEntities(len(DefaultHand)) {
		t.Errorf("Expected %d entities after two calls, got %d", ExpectedEntities(len(DefaultHand)), got)
	}
	if observer.Built != 1 || observer.Ignored != 1 {
		t.Errorf("Expected 1 build and 1 ignore, got %+v", observer)
	}
	if observer.Wall != layout.WallTileCount || observer.Hand != len(DefaultHand) {
		t.Errorf("Observer saw %d/%d tiles", observer.Wall, observer.Hand)
	}
}

func TestController_SurfaceFailureThenRetry(t *testing.T) {
	c, h := newTestController(t)
	observer := &MockObserver{}
	c.SetObserver(observer)
	h.FailSurface = 1

	err := c.Initialize()
	if !errors.Is(err, render.ErrSurfaceUnavailable) {
		t.Fatalf("Expected ErrSurfaceUnavailable, got %v", err)
	}
	if c.Lifecycle() != state.Uninitialized {
		t.Errorf("Lifecycle should remain %s after failure, got %s", state.Uninitialized, c.Lifecycle())
	}
	if len(h.Snapshot()) != 0 {
		t.Errorf("No entities should exist after a surface failure, got %d", len(h.Snapshot()))
	}
	if c.Stats().LastFailure == "" {
		t.Error("Stats should report the last failure")
	}

	if err := c.Initialize(); err != nil {
		t.Fatalf("Retry should succeed, got %v", err)
	}
	if c.Lifecycle() != state.Initialized {
		t.Errorf("Expected %s after retry, got %s", state.Initialized, c.Lifecycle())
	}
	if observer.Failed != 1 || observer.Built != 1 {
		t.Errorf("Expected 1 failure and 1 build, got %+v", observer)
	}
	if stats := c.Stats(); stats.Attempts != 2 || stats.LastFailure != "" {
		t.Errorf("Unexpected stats after retry: %+v", stats)
	}
}

func TestController_MidBuildFailureReleasesEverything(t *testing.T) {
	c, h := newTestController(t)
	h.FailAfter = 50

	if err := c.Initialize(); err == nil {
		t.Fatal("Expected the build to fail once the entity limit is reached")
	}
	if c.Lifecycle() != state.Uninitialized {
		t.Errorf("Lifecycle should remain %s, got %s", state.Uninitialized, c.Lifecycle())
	}
	if got := len(h.Snapshot()); got != 0 {
		t.Errorf("Partial scene left behind: %d entities", got)
	}
	if c.WallTiles() != nil {
		t.Error("Registry should be empty after a failed attempt")
	}

	h.FailAfter = 0
	if err := c.Initialize(); err != nil {
		t.Fatalf("Retry should succeed, got %v", err)
	}
	if got := len(h.Snapshot()); got != ExpectedEntities(len(DefaultHand)) {
		t.Errorf("Expected a single full scene of %d entities, got %d", ExpectedEntities(len(DefaultHand)), got)
	}
}

// reentrantRenderer calls back into the controller while a build is running.
type reentrantRenderer struct {
	*render.Headless
	controller *Controller
	nestedErr  error
	nested     bool
}

func (r *reentrantRenderer) CreateBox(scene render.EntityID, name string, dims render.Dimensions) (render.EntityID, error) {
	if !r.nested && r.controller != nil {
		r.nested = true
		r.nestedErr = r.controller.Initialize()
	}
	return r.Headless.CreateBox(scene, name, dims)
}

func TestController_ReentrantInitializeIsGuarded(t *testing.T) {
	h := render.NewHeadless(time.Millisecond)
	defer h.Stop()
	r := &reentrantRenderer{Headless: h}
	c := NewController(r, Options{})
	r.controller = c

	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if !r.nested {
		t.Fatal("Nested initialization was never attempted")
	}
	if r.nestedErr != nil {
		t.Errorf("Nested Initialize should be a no-op, got %v", r.nestedErr)
	}
	if got := h.Count(render.KindSurface); got != 1 {
		t.Errorf("Expected one surface, got %d", got)
	}
	if got := len(c.WallTiles()); got != layout.WallTileCount {
		t.Errorf("Expected %d wall tiles, got %d", layout.WallTileCount, got)
	}
}

func TestController_CustomHand(t *testing.T) {
	h := render.NewHeadless(time.Millisecond)
	defer h.Stop()
	labels := []string{"東", "南", "西", "北", "白", "發", "中", "一", "九", "1", "9", "●", "●", "●"}
	c := NewController(h, Options{InitialHand: labels})

	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	hand := c.HandTiles()
	if len(hand) != len(labels) {
		t.Fatalf("Expected %d hand tiles, got %d", len(labels), len(hand))
	}
	for i, tile := range hand {
		if tile.Slot.FaceLabel != labels[i] {
			t.Errorf("Hand tile %d label %q, want %q", i, tile.Slot.FaceLabel, labels[i])
		}
	}
}

func TestController_RenderLoopReadsLifecycle(t *testing.T) {
	h := render.NewHeadless(time.Millisecond)
	defer h.Stop()

	seen := make(chan state.Lifecycle, 64)
	var c *Controller
	c = NewController(h, Options{OnFrame: func() {
		select {
		case seen <- c.Lifecycle():
		default:
		}
	}})

	if err := c.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case lc := <-seen:
			if lc == state.Initialized {
				if c.Stats().Frames == 0 {
					t.Error("Frame counter did not advance")
				}
				return
			}
		case <-deadline:
			t.Fatal("Render loop never observed the initialized scene")
		}
	}
}

func TestController_FansOutToObservers(t *testing.T) {
	c, _ := newTestController(t)
	first, second := &MockObserver{}, &MockObserver{}
	c.SetObserver(Observers{first, second})

	c.Initialize()
	c.Initialize()

	for i, o := range []*MockObserver{first, second} {
		if o.Built != 1 || o.Ignored != 1 {
			t.Errorf("Observer %d: expected 1 built and 1 ignored, got %+v", i, o)
		}
		if o.Wall != layout.WallTileCount || o.Hand != len(DefaultHand) {
			t.Errorf("Observer %d: unexpected counts %+v", i, o)
		}
	}
}

func TestController_ConcurrentInitializeBuildsOnce(t *testing.T) {
	for trial := 0; trial < 20; trial++ {
		c, h := newTestController(t)

		start := make(chan struct{})
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				if err := c.Initialize(); err != nil {
					t.Errorf("Initialize failed: %v", err)
				}
			}()
		}
		close(start)
		wg.Wait()

		if c.Lifecycle() != state.Initialized {
			t.Fatalf("Trial %d: expected %s, got %s", trial, state.Initialized, c.Lifecycle())
		}
		if got := c.Stats().Attempts; got != 1 {
			t.Fatalf("Trial %d: expected 1 build attempt, got %d", trial, got)
		}
		if got := len(h.Snapshot()); got != ExpectedEntities(len(DefaultHand)) {
			t.Fatalf("Trial %d: expected %d entities, got %d", trial, ExpectedEntities(len(DefaultHand)), got)
		}
	}
}
