// layout/coords.go
package layout

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// wallStartOffset 是第 0 墩在横向轴上的中心位置，使整面牌墙以 0 为中心
const wallStartOffset = -float64(StacksPerWall-1) * TileWidth / 2

// WallPose maps a wall slot to its pose. It is pure; out-of-range stacks,
// unknown levels and non-wall edges panic.
func WallPose(edge Edge, stack int, level Level) Pose {
	if stack < 0 || stack >= StacksPerWall {
		panic(fmt.Sprintf("layout: wall stack %d out of range [0,%d]", stack, StacksPerWall-1))
	}

	y := TileHeight / 2
	switch level {
	case LevelLower:
	case LevelUpper:
		y += StackHeight
	default:
		panic(fmt.Sprintf("layout: unknown %s", level))
	}

	along := wallStartOffset + float64(stack)*TileWidth

	var pos mgl64.Vec3
	switch edge {
	case EdgeNear:
		pos = mgl64.Vec3{along, y, WallDistance}
	case EdgeFar:
		pos = mgl64.Vec3{along, y, -WallDistance}
	case EdgeLeft:
		pos = mgl64.Vec3{-WallDistance, y, along}
	case EdgeRight:
		pos = mgl64.Vec3{WallDistance, y, along}
	default:
		panic(fmt.Sprintf("layout: %s is not a wall edge", edge))
	}

	return Pose{Position: pos, Yaw: edge.Yaw()}
}

// HandPose maps a hand index to its untilted pose.
func HandPose(index int) Pose {
	if index < 0 || index >= HandCapacity {
		panic(fmt.Sprintf("layout: hand index %d out of range [0,%d]", index, HandCapacity-1))
	}
	return Pose{
		Position: mgl64.Vec3{HandStartX + float64(index)*HandSpacing, HandY, HandZ},
	}
}

// SpacingAxis returns the coordinate index (0 for x, 2 for z) tiles advance
// along on the given wall edge.
func SpacingAxis(edge Edge) int {
	switch edge {
	case EdgeNear, EdgeFar:
		return 0
	case EdgeLeft, EdgeRight:
		return 2
	default:
		panic(fmt.Sprintf("layout: %s is not a wall edge", edge))
	}
}
