// render/headless.go
package render

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/wfunc/mahjongtable/timer"
)

// EntityKind 记录实体由哪个能力创建
type EntityKind string

const (
	KindSurface  EntityKind = "surface"
	KindScene    EntityKind = "scene"
	KindCamera   EntityKind = "camera"
	KindLight    EntityKind = "light"
	KindShadow   EntityKind = "shadow"
	KindBox      EntityKind = "box"
	KindCylinder EntityKind = "cylinder"
)

// Entity is the headless record of one created object.
type Entity struct {
	ID           EntityID            `json:"id"`
	Kind         EntityKind          `json:"kind"`
	Name         string              `json:"name,omitempty"`
	Parent       EntityID            `json:"parent,omitempty"`
	Box          *Dimensions         `json:"box,omitempty"`
	Cylinder     *CylinderDimensions `json:"cylinder,omitempty"`
	Material     *Material           `json:"material,omitempty"`
	Position     mgl64.Vec3          `json:"position"`
	Rotation     mgl64.Vec3          `json:"rotation"`
	Label        string              `json:"label,omitempty"`
	CastsShadow  bool                `json:"casts_shadow,omitempty"`
	LightKind    string              `json:"light_kind,omitempty"`
	ShadowSize   int                 `json:"shadow_size,omitempty"`
	ClearColor   *Color4             `json:"clear_color,omitempty"`
	CameraRadius float64             `json:"camera_radius,omitempty"`
}

// Headless 是不依赖图形 API 的渲染实现，记录所有创建请求
type Headless struct {
	entities      map[EntityID]*Entity
	nextID        EntityID
	frameInterval time.Duration
	scheduler     *timer.TimerManager
	loopID        int64
	frames        int64
	resize        []func(width, height int)
	mutex         sync.RWMutex

	// FailSurface makes the next CreateSurface calls fail while positive.
	FailSurface int
	// FailAfter, when positive, makes creation calls fail once that many
	// entities exist.
	FailAfter int
}

func NewHeadless(frameInterval time.Duration) *Headless {
	return &Headless{
		entities:      make(map[EntityID]*Entity),
		nextID:        1,
		frameInterval: frameInterval,
	}
}

func (h *Headless) create(kind EntityKind, name string, parent EntityID, init func(e *Entity)) (EntityID, error) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.FailAfter > 0 && len(h.entities) >= h.FailAfter {
		return 0, fmt.Errorf("create %s %q: entity limit of %d reached", kind, name, h.FailAfter)
	}
	if parent != 0 {
		if _, ok := h.entities[parent]; !ok {
			return 0, fmt.Errorf("create %s %q under %d: %w", kind, name, parent, ErrUnknownEntity)
		}
	}

	e := &Entity{ID: h.nextID, Kind: kind, Name: name, Parent: parent}
	if init != nil {
		init(e)
	}
	h.entities[e.ID] = e
	h.nextID++
	return e.ID, nil
}

func (h *Headless) CreateSurface() (EntityID, error) {
	h.mutex.Lock()
	if h.FailSurface > 0 {
		h.FailSurface--
		h.mutex.Unlock()
		return 0, ErrSurfaceUnavailable
	}
	h.mutex.Unlock()

	return h.create(KindSurface, "renderCanvas", 0, nil)
}

func (h *Headless) CreateScene(surface EntityID, clear Color4) (EntityID, error) {
	return h.create(KindScene, "scene", surface, func(e *Entity) { e.ClearColor = &clear })
}

func (h *Headless) CreateCamera(scene EntityID, params CameraParams) (EntityID, error) {
	return h.create(KindCamera, "camera", scene, func(e *Entity) {
		e.Position = params.Target
		e.CameraRadius = params.Radius
	})
}

func (h *Headless) CreateLight(scene EntityID, kind LightKind, params LightParams) (EntityID, error) {
	return h.create(KindLight, kind.String()+"Light", scene, func(e *Entity) {
		e.LightKind = kind.String()
		e.Position = params.Position
		e.Rotation = params.Direction
	})
}

func (h *Headless) CreateShadowCaster(light EntityID, quality ShadowQuality) (EntityID, error) {
	return h.create(KindShadow, "shadowGenerator", light, func(e *Entity) { e.ShadowSize = quality.MapSize })
}

func (h *Headless) CreateBox(scene EntityID, name string, dims Dimensions) (EntityID, error) {
	return h.create(KindBox, name, scene, func(e *Entity) { e.Box = &dims })
}

func (h *Headless) CreateCylinder(scene EntityID, name string, dims CylinderDimensions) (EntityID, error) {
	return h.create(KindCylinder, name, scene, func(e *Entity) { e.Cylinder = &dims })
}

func (h *Headless) SetMaterial(entity EntityID, material Material) error {
	return h.update(entity, func(e *Entity) { e.Material = &material })
}

func (h *Headless) SetPose(entity EntityID, position, rotation mgl64.Vec3) error {
	return h.update(entity, func(e *Entity) {
		e.Position = position
		e.Rotation = rotation
	})
}

func (h *Headless) SetLabel(entity EntityID, text string) error {
	return h.update(entity, func(e *Entity) { e.Label = text })
}

func (h *Headless) RegisterShadowCaster(shadow, entity EntityID) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if s, ok := h.entities[shadow]; !ok || s.Kind != KindShadow {
		return fmt.Errorf("shadow caster %d: %w", shadow, ErrUnknownEntity)
	}
	e, ok := h.entities[entity]
	if !ok {
		return fmt.Errorf("entity %d: %w", entity, ErrUnknownEntity)
	}
	e.CastsShadow = true
	return nil
}

func (h *Headless) update(entity EntityID, fn func(e *Entity)) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	e, ok := h.entities[entity]
	if !ok {
		return fmt.Errorf("entity %d: %w", entity, ErrUnknownEntity)
	}
	fn(e)
	return nil
}

// StartRenderLoop schedules frame on a recurring timer.
func (h *Headless) StartRenderLoop(frame func()) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.scheduler != nil {
		return ErrLoopRunning
	}
	h.scheduler = timer.NewTimerManager(h.frameInterval)
	h.loopID = h.scheduler.AddTimer(0, h.frameInterval, func() {
		h.mutex.Lock()
		h.frames++
		h.mutex.Unlock()
		frame()
	})
	return nil
}

func (h *Headless) OnResize(callback func(width, height int)) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.resize = append(h.resize, callback)
}

// Resize delivers a resize notification to registered callbacks.
func (h *Headless) Resize(width, height int) {
	h.mutex.RLock()
	callbacks := append([]func(int, int){}, h.resize...)
	h.mutex.RUnlock()

	for _, cb := range callbacks {
		cb(width, height)
	}
}

// Release drops entities left behind by an aborted build.
func (h *Headless) Release(ids ...EntityID) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, id := range ids {
		delete(h.entities, id)
	}
}

// Stop 停止渲染循环
func (h *Headless) Stop() {
	h.mutex.Lock()
	scheduler, loopID := h.scheduler, h.loopID
	h.scheduler = nil
	h.mutex.Unlock()

	if scheduler != nil {
		scheduler.RemoveTimer(loopID)
		scheduler.Stop()
	}
}

// Running reports whether a render loop was started and not stopped.
func (h *Headless) Running() bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.scheduler != nil
}

// Frames returns the number of frames rendered so far.
func (h *Headless) Frames() int64 {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.frames
}

// Count returns how many live entities of the given kind exist.
func (h *Headless) Count(kind EntityKind) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	n := 0
	for _, e := range h.entities {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Get returns a copy of an entity record.
func (h *Headless) Get(id EntityID) (Entity, bool) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	e, ok := h.entities[id]
	if !ok {
		return Entity{}, false
	}
	return *e, true
}

// Snapshot returns every live entity ordered by id.
func (h *Headless) Snapshot() []Entity {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	out := make([]Entity, 0, len(h.entities))
	for _, e := range h.entities {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
