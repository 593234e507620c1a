// layout/slot.go
package layout

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// 牌桌几何常量，来自规则集，编译期固定
const (
	StacksPerWall = 17
	WallCount     = 4
	LevelCount    = 2
	WallTileCount = StacksPerWall * LevelCount * WallCount // 136
	HandCapacity  = 14

	TileWidth    = 2.0
	TileHeight   = 2.7
	StackHeight  = 1.4
	WallDistance = 17.0

	HandStartX  = -10.0
	HandY       = 1.8
	HandZ       = 20.0
	HandSpacing = 2.1
	HandTilt    = -0.2 // 手牌向玩家方向的前倾角

	TileBoxWidth  = 1.9
	TileBoxHeight = 2.7
	TileBoxDepth  = 1.3
)

// Edge 表示牌所在的桌边
type Edge int

const (
	EdgeNear Edge = iota
	EdgeFar
	EdgeLeft
	EdgeRight
	EdgeHand
)

// WallEdges is the fixed emission order of the four walls.
var WallEdges = [WallCount]Edge{EdgeNear, EdgeFar, EdgeLeft, EdgeRight}

func (e Edge) String() string {
	switch e {
	case EdgeNear:
		return "near"
	case EdgeFar:
		return "far"
	case EdgeLeft:
		return "left"
	case EdgeRight:
		return "right"
	case EdgeHand:
		return "hand"
	default:
		return fmt.Sprintf("edge(%d)", int(e))
	}
}

// Yaw returns the inward-facing rotation of a wall edge. Only the four wall
// edges have one; anything else is a caller bug.
func (e Edge) Yaw() float64 {
	switch e {
	case EdgeNear:
		return 0
	case EdgeFar:
		return math.Pi
	case EdgeLeft:
		return math.Pi / 2
	case EdgeRight:
		return -math.Pi / 2
	default:
		panic(fmt.Sprintf("layout: %s is not a wall edge", e))
	}
}

// Level 牌墩中的层
type Level int

const (
	LevelLower Level = iota
	LevelUpper
)

func (l Level) String() string {
	switch l {
	case LevelLower:
		return "lower"
	case LevelUpper:
		return "upper"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// TileSlot 是牌位的逻辑标识，与空间坐标无关
type TileSlot struct {
	Edge      Edge   `json:"edge"`
	Stack     int    `json:"stack"`
	Level     Level  `json:"level"`
	FaceLabel string `json:"face_label,omitempty"`
}

// Key identifies a slot without its label.
func (s TileSlot) Key() string {
	if s.Edge == EdgeHand {
		return fmt.Sprintf("hand/%d", s.Stack)
	}
	return fmt.Sprintf("%s/%d/%s", s.Edge, s.Stack, s.Level)
}

// Pose 由 TileSlot 推导得出，不单独存储
type Pose struct {
	Position mgl64.Vec3 `json:"position"`
	Yaw      float64    `json:"yaw"`
	Pitch    float64    `json:"pitch"`
}

// Rotation returns the Euler rotation (pitch about x, yaw about y, no roll).
func (p Pose) Rotation() mgl64.Vec3 {
	return mgl64.Vec3{p.Pitch, p.Yaw, 0}
}

// Placement pairs a slot with its derived pose.
type Placement struct {
	Slot TileSlot `json:"slot"`
	Pose Pose     `json:"pose"`
}
