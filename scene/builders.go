// scene/builders.go
package scene

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/wfunc/mahjongtable/layout"
	"github.com/wfunc/mahjongtable/render"
)

var (
	clearColor = render.Color4{R: 0.04, G: 0.06, B: 0.04, A: 1}

	tileMaterial = render.Material{
		Diffuse:       render.Color3{R: 1, G: 0.99, B: 0.96},
		Specular:      render.Color3{R: 0.3, G: 0.3, B: 0.3},
		SpecularPower: 32,
		ReceiveShadow: true,
	}

	tileBox = render.Dimensions{
		Width:  layout.TileBoxWidth,
		Height: layout.TileBoxHeight,
		Depth:  layout.TileBoxDepth,
	}

	defaultShadow = render.ShadowQuality{MapSize: 2048, BlurKernel: 32}
)

// tablePart 描述牌桌上的一个静态部件
type tablePart struct {
	name     string
	box      *render.Dimensions
	cylinder *render.CylinderDimensions
	position mgl64.Vec3
	rotation mgl64.Vec3
	material render.Material
}

var tableParts = []tablePart{
	{
		name:     "frame",
		box:      &render.Dimensions{Width: 50, Height: 2, Depth: 50},
		position: mgl64.Vec3{0, -1, 0},
		material: render.Material{
			Diffuse:       render.Color3{R: 0.16, G: 0.16, B: 0.16},
			Specular:      render.Color3{R: 0.1, G: 0.1, B: 0.1},
			ReceiveShadow: true,
		},
	},
	{
		name:     "felt",
		box:      &render.Dimensions{Width: 44, Height: 0.2, Depth: 44},
		material: render.Material{
			Diffuse:       render.Color3{R: 0.18, G: 0.63, B: 0.36},
			Specular:      render.Color3{R: 0.05, G: 0.05, B: 0.05},
			ReceiveShadow: true,
		},
	},
	{
		name:     "console",
		box:      &render.Dimensions{Width: 11, Height: 0.5, Depth: 11},
		position: mgl64.Vec3{0, 0.25, 0},
		material: render.Material{
			Diffuse:       render.Color3{R: 0.08, G: 0.08, B: 0.08},
			Specular:      render.Color3{R: 0.1, G: 0.1, B: 0.1},
			ReceiveShadow: true,
		},
	},
	{
		name:     "hole",
		cylinder: &render.CylinderDimensions{Diameter: 8, Height: 0.6},
		position: mgl64.Vec3{0, 0.3, 0},
		rotation: mgl64.Vec3{math.Pi / 2, 0, 0},
		material: render.Material{
			Diffuse: render.Color3{R: 0.01, G: 0.01, B: 0.01},
		},
	},
	{
		name:     "led",
		box:      &render.Dimensions{Width: 0.6, Height: 1.8, Depth: 0.2},
		position: mgl64.Vec3{4.5, 0.6, 0},
		material: render.Material{
			Diffuse:  render.Color3{R: 1, G: 0.27, B: 0},
			Specular: render.Color3{R: 0.3, G: 0.1, B: 0},
			Emissive: &render.Color3{R: 1, G: 0.27, B: 0},
		},
	},
}

// builder 执行一次完整的场景构建，所有句柄都记录在 ctx 中
type builder struct {
	r   render.Renderer
	ctx *SceneContext
}

func (b *builder) surface(clear render.Color4) error {
	surface, err := b.r.CreateSurface()
	if err != nil {
		return err
	}
	b.ctx.Surface = b.ctx.track(surface)

	scene, err := b.r.CreateScene(surface, clear)
	if err != nil {
		return err
	}
	b.ctx.Scene = b.ctx.track(scene)
	return nil
}

func (b *builder) cameraAndLights(quality render.ShadowQuality) error {
	camera, err := b.r.CreateCamera(b.ctx.Scene, render.CameraParams{
		Alpha:       math.Pi / 2,
		Beta:        math.Pi / 3,
		Radius:      45,
		LowerRadius: 30,
		UpperRadius: 60,
		LowerBeta:   math.Pi / 4,
		UpperBeta:   math.Pi / 2.5,
	})
	if err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	b.ctx.Camera = b.ctx.track(camera)

	hemi, err := b.r.CreateLight(b.ctx.Scene, render.LightHemispheric, render.LightParams{
		Direction: mgl64.Vec3{0, 1, 0},
		Intensity: 0.6,
	})
	if err != nil {
		return fmt.Errorf("hemispheric light: %w", err)
	}
	b.ctx.Lights = append(b.ctx.Lights, b.ctx.track(hemi))

	dir, err := b.r.CreateLight(b.ctx.Scene, render.LightDirectional, render.LightParams{
		Direction: mgl64.Vec3{-1, -2, -1},
		Position:  mgl64.Vec3{20, 40, 20},
		Intensity: 0.8,
	})
	if err != nil {
		return fmt.Errorf("directional light: %w", err)
	}
	b.ctx.Lights = append(b.ctx.Lights, b.ctx.track(dir))

	shadow, err := b.r.CreateShadowCaster(dir, quality)
	if err != nil {
		return fmt.Errorf("shadow caster: %w", err)
	}
	b.ctx.Shadow = b.ctx.track(shadow)
	return nil
}

func (b *builder) table() error {
	for _, part := range tableParts {
		var (
			id  render.EntityID
			err error
		)
		if part.cylinder != nil {
			id, err = b.r.CreateCylinder(b.ctx.Scene, part.name, *part.cylinder)
		} else {
			id, err = b.r.CreateBox(b.ctx.Scene, part.name, *part.box)
		}
		if err != nil {
			return fmt.Errorf("table %s: %w", part.name, err)
		}
		b.ctx.Table = append(b.ctx.Table, b.ctx.track(id))

		if err := b.r.SetPose(id, part.position, part.rotation); err != nil {
			return fmt.Errorf("table %s: %w", part.name, err)
		}
		if err := b.r.SetMaterial(id, part.material); err != nil {
			return fmt.Errorf("table %s: %w", part.name, err)
		}
	}
	return nil
}

// tile realizes one slot as a shadow-casting box.
func (b *builder) tile(slot layout.TileSlot, pose layout.Pose) (TileEntity, error) {
	id, err := b.r.CreateBox(b.ctx.Scene, "tile", tileBox)
	if err != nil {
		return TileEntity{}, fmt.Errorf("tile %s: %w", slot.Key(), err)
	}
	b.ctx.track(id)

	if err := b.r.SetPose(id, pose.Position, pose.Rotation()); err != nil {
		return TileEntity{}, fmt.Errorf("tile %s: %w", slot.Key(), err)
	}
	if err := b.r.SetMaterial(id, tileMaterial); err != nil {
		return TileEntity{}, fmt.Errorf("tile %s: %w", slot.Key(), err)
	}
	if err := b.r.RegisterShadowCaster(b.ctx.Shadow, id); err != nil {
		return TileEntity{}, fmt.Errorf("tile %s: %w", slot.Key(), err)
	}
	if slot.FaceLabel != "" {
		if labeler, ok := b.r.(render.Labeler); ok {
			if err := labeler.SetLabel(id, slot.FaceLabel); err != nil {
				return TileEntity{}, fmt.Errorf("tile %s label: %w", slot.Key(), err)
			}
		}
	}
	return TileEntity{ID: id, Slot: slot, Pose: pose}, nil
}

func (b *builder) walls() error {
	for slot, pose := range layout.GenerateWalls() {
		entity, err := b.tile(slot, pose)
		if err != nil {
			return err
		}
		b.ctx.Wall = append(b.ctx.Wall, entity)
	}
	return nil
}

func (b *builder) hand(labels []string) error {
	for slot, pose := range layout.GenerateHand(labels) {
		entity, err := b.tile(slot, pose)
		if err != nil {
			return err
		}
		b.ctx.Hand = append(b.ctx.Hand, entity)
	}
	return nil
}

// release drops everything a failed attempt created, newest first.
func (b *builder) release() {
	releaser, ok := b.r.(render.Releaser)
	if !ok || len(b.ctx.created) == 0 {
		return
	}
	ids := b.ctx.Entities()
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	releaser.Release(ids...)
}
