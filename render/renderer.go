// render/renderer.go
package render

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

// EntityID 是渲染端返回的不透明句柄
type EntityID uint64

// Color3 is an RGB triplet in [0,1].
type Color3 struct {
	R, G, B float64
}

// Color4 adds alpha, used for the scene clear colour.
type Color4 struct {
	R, G, B, A float64
}

type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

type CylinderDimensions struct {
	Diameter float64 `json:"diameter"`
	Height   float64 `json:"height"`
}

// Material 对应一个标准材质
type Material struct {
	Diffuse       Color3  `json:"diffuse"`
	Specular      Color3  `json:"specular"`
	SpecularPower float64 `json:"specular_power,omitempty"`
	Emissive      *Color3 `json:"emissive,omitempty"`
	ReceiveShadow bool    `json:"receive_shadow"`
}

// CameraParams describes an orbit camera around Target.
type CameraParams struct {
	Alpha       float64
	Beta        float64
	Radius      float64
	Target      mgl64.Vec3
	LowerRadius float64
	UpperRadius float64
	LowerBeta   float64
	UpperBeta   float64
}

type LightKind int

const (
	LightHemispheric LightKind = iota
	LightDirectional
)

func (k LightKind) String() string {
	switch k {
	case LightHemispheric:
		return "hemispheric"
	case LightDirectional:
		return "directional"
	default:
		return "unknown"
	}
}

type LightParams struct {
	Direction mgl64.Vec3
	Position  mgl64.Vec3
	Intensity float64
}

// ShadowQuality is the shadow map size plus blur settings.
type ShadowQuality struct {
	MapSize    int
	BlurKernel int
}

// Renderer 是布局引擎所需的渲染能力集合
type Renderer interface {
	CreateSurface() (EntityID, error)
	CreateScene(surface EntityID, clear Color4) (EntityID, error)
	CreateCamera(scene EntityID, params CameraParams) (EntityID, error)
	CreateLight(scene EntityID, kind LightKind, params LightParams) (EntityID, error)
	CreateShadowCaster(light EntityID, quality ShadowQuality) (EntityID, error)
	CreateBox(scene EntityID, name string, dims Dimensions) (EntityID, error)
	CreateCylinder(scene EntityID, name string, dims CylinderDimensions) (EntityID, error)
	SetMaterial(entity EntityID, material Material) error
	SetPose(entity EntityID, position, rotation mgl64.Vec3) error
	RegisterShadowCaster(shadow, entity EntityID) error
	StartRenderLoop(frame func()) error
	OnResize(callback func(width, height int))
}

// Releaser is implemented by renderers that can drop entities created by an
// aborted initialization attempt.
type Releaser interface {
	Release(ids ...EntityID)
}

// Labeler is implemented by renderers that can show a face label on a tile.
type Labeler interface {
	SetLabel(entity EntityID, text string) error
}

var (
	ErrSurfaceUnavailable = errors.New("rendering surface unavailable")
	ErrUnknownEntity      = errors.New("unknown entity")
	ErrLoopRunning        = errors.New("render loop already running")
)
