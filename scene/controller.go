// scene/controller.go
package scene

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wfunc/mahjongtable/layout"
	"github.com/wfunc/mahjongtable/logger"
	"github.com/wfunc/mahjongtable/render"
	"github.com/wfunc/mahjongtable/state"
)

// DefaultHand 是首次建场时展示的手牌
var DefaultHand = []string{"一", "二", "三", "四", "五", "六", "七", "八", "●", "●"}

// Observer receives lifecycle outcomes; the monitor implements it.
type Observer interface {
	SceneBuilt(wallTiles, handTiles int)
	SceneFailed()
	SceneIgnored()
}

// Observers fans lifecycle outcomes out to several observers.
type Observers []Observer

func (obs Observers) SceneBuilt(wallTiles, handTiles int) {
	for _, o := range obs {
		o.SceneBuilt(wallTiles, handTiles)
	}
}

func (obs Observers) SceneFailed() {
	for _, o := range obs {
		o.SceneFailed()
	}
}

func (obs Observers) SceneIgnored() {
	for _, o := range obs {
		o.SceneIgnored()
	}
}

type Options struct {
	InitialHand []string
	Shadow      render.ShadowQuality
	ClearColor  render.Color4
	// OnFrame runs inside every render-loop frame after the frame counter
	// advances. It must only read scene state.
	OnFrame func()
}

func (o Options) withDefaults() Options {
	if o.InitialHand == nil {
		o.InitialHand = DefaultHand
	}
	if o.Shadow.MapSize == 0 {
		o.Shadow = defaultShadow
	}
	if o.ClearColor == (render.Color4{}) {
		o.ClearColor = clearColor
	}
	return o
}

// Controller 负责场景的一次性构建，以及已创建实体的登记
type Controller struct {
	renderer    render.Renderer
	machine     *state.BaseStateMachine
	opts        Options
	observer    Observer
	ctx         *SceneContext
	building    bool
	attempts    int
	lastFailure error
	frames      atomic.Int64
	mutex       sync.RWMutex
}

func NewController(r render.Renderer, opts Options) *Controller {
	c := &Controller{
		renderer: r,
		machine:  state.NewSceneMachine(),
		opts:     opts.withDefaults(),
	}
	c.machine.OnEnter(state.Initialized, func() {
		logger.Log.Infof("Scene %s initialized", c.ctx.ID)
	})
	return c
}

func (c *Controller) SetObserver(o Observer) {
	c.observer = o
}

// Lifecycle is safe to call from the render loop.
func (c *Controller) Lifecycle() state.Lifecycle {
	return c.machine.GetCurrentState()
}

// Initialize builds the scene if, and only if, it has not been built yet.
// A second call after success, or a nested call during a build, is a no-op.
// On failure the lifecycle stays Uninitialized, everything the attempt
// created is released and a later call starts over from the surface.
// Layout contract violations panic and are not recovered here.
func (c *Controller) Initialize() error {
	c.mutex.Lock()
	decision := state.Decide(c.machine.GetCurrentState(), c.building)
	if decision == state.DecisionIgnore {
		c.mutex.Unlock()
		logger.Log.Debugf("Scene initialization ignored (lifecycle %s)", c.Lifecycle())
		if c.observer != nil {
			c.observer.SceneIgnored()
		}
		return nil
	}
	c.building = true
	c.attempts++
	attempt := c.attempts
	c.mutex.Unlock()

	b := &builder{r: c.renderer, ctx: newSceneContext()}
	err := c.build(b)

	c.mutex.Lock()
	if err != nil {
		c.building = false
		c.lastFailure = err
		c.mutex.Unlock()

		b.release()
		logger.Log.Errorf("Scene initialization attempt %d failed: %v", attempt, err)
		if c.observer != nil {
			c.observer.SceneFailed()
		}
		return err
	}
	// 状态切换与 building 复位在同一把锁内完成，并发调用看不到中间状态
	c.ctx = b.ctx
	c.lastFailure = nil
	changeErr := c.machine.ChangeState(state.Initialized)
	c.building = false
	c.mutex.Unlock()

	if changeErr != nil {
		return fmt.Errorf("scene lifecycle: %w", changeErr)
	}
	if c.observer != nil {
		c.observer.SceneBuilt(len(b.ctx.Wall), len(b.ctx.Hand))
	}
	return nil
}

// build runs the construction steps in order. Any error aborts the attempt.
func (c *Controller) build(b *builder) (err error) {
	defer func() {
		// 布局契约违规的 panic 继续向上传播，这里只回收本次创建的实体
		if r := recover(); r != nil {
			b.release()
			c.mutex.Lock()
			c.building = false
			c.mutex.Unlock()
			panic(r)
		}
	}()

	start := time.Now()
	if err := b.surface(c.opts.ClearColor); err != nil {
		if !errors.Is(err, render.ErrSurfaceUnavailable) {
			err = fmt.Errorf("%w: %v", render.ErrSurfaceUnavailable, err)
		}
		return fmt.Errorf("acquire surface: %w", err)
	}
	if err := b.cameraAndLights(c.opts.Shadow); err != nil {
		return fmt.Errorf("camera and lights: %w", err)
	}
	if err := b.table(); err != nil {
		return fmt.Errorf("table: %w", err)
	}
	if err := b.walls(); err != nil {
		return fmt.Errorf("walls: %w", err)
	}
	if err := b.hand(c.opts.InitialHand); err != nil {
		return fmt.Errorf("hand: %w", err)
	}

	c.renderer.OnResize(func(width, height int) {
		logger.Log.Debugf("Surface resized to %dx%d", width, height)
	})
	if err := c.renderer.StartRenderLoop(c.frame); err != nil {
		return fmt.Errorf("render loop: %w", err)
	}

	logger.Log.Infof("Scene built: %d wall tiles, %d hand tiles, %d entities in %v",
		len(b.ctx.Wall), len(b.ctx.Hand), len(b.ctx.created), time.Since(start))
	return nil
}

func (c *Controller) frame() {
	c.frames.Add(1)
	if c.opts.OnFrame != nil {
		c.opts.OnFrame()
	}
}

// Context returns the built scene context, or nil before initialization.
func (c *Controller) Context() *SceneContext {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.ctx
}

func (c *Controller) WallTiles() []TileEntity {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if c.ctx == nil {
		return nil
	}
	return append([]TileEntity(nil), c.ctx.Wall...)
}

func (c *Controller) HandTiles() []TileEntity {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if c.ctx == nil {
		return nil
	}
	return append([]TileEntity(nil), c.ctx.Hand...)
}

func (c *Controller) Stats() Stats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	s := Stats{
		Lifecycle: string(c.machine.GetCurrentState()),
		Frames:    c.frames.Load(),
		Attempts:  c.attempts,
	}
	if c.lastFailure != nil {
		s.LastFailure = c.lastFailure.Error()
	}
	if c.ctx != nil {
		s.SceneID = c.ctx.ID
		s.BuiltAt = c.ctx.CreatedAt
		s.WallTiles = len(c.ctx.Wall)
		s.HandTiles = len(c.ctx.Hand)
		s.TableParts = len(c.ctx.Table)
		s.Entities = len(c.ctx.created)
	}
	return s
}

// ExpectedEntities is how many renderer entities a successful build creates
// for a hand of n tiles.
func ExpectedEntities(n int) int {
	const fixed = 6 // surface, scene, camera, two lights, shadow caster
	return fixed + len(tableParts) + layout.WallTileCount + n
}
