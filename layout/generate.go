// layout/generate.go
package layout

import (
	"fmt"
	"iter"
)

// GenerateWalls yields the 136 wall slots: near, far, left, right; stacks
// 0..16 on each edge, lower before upper. Calling it again yields the same
// sequence.
func GenerateWalls() iter.Seq2[TileSlot, Pose] {
	return func(yield func(TileSlot, Pose) bool) {
		for _, edge := range WallEdges {
			for stack := 0; stack < StacksPerWall; stack++ {
				for _, level := range [LevelCount]Level{LevelLower, LevelUpper} {
					slot := TileSlot{Edge: edge, Stack: stack, Level: level}
					if !yield(slot, WallPose(edge, stack, level)) {
						return
					}
				}
			}
		}
	}
}

// GenerateHand yields one tilted pose per label. Labels are carried through
// as face labels without interpretation.
func GenerateHand(labels []string) iter.Seq2[TileSlot, Pose] {
	if len(labels) > HandCapacity {
		panic(fmt.Sprintf("layout: hand of %d tiles exceeds capacity %d", len(labels), HandCapacity))
	}
	return func(yield func(TileSlot, Pose) bool) {
		for i, label := range labels {
			pose := HandPose(i)
			pose.Pitch = HandTilt
			if !yield(TileSlot{Edge: EdgeHand, Stack: i, FaceLabel: label}, pose) {
				return
			}
		}
	}
}

// Collect drains a layout sequence into placements.
func Collect(seq iter.Seq2[TileSlot, Pose]) []Placement {
	var out []Placement
	for slot, pose := range seq {
		out = append(out, Placement{Slot: slot, Pose: pose})
	}
	return out
}

// Walls returns GenerateWalls as a slice.
func Walls() []Placement {
	return Collect(GenerateWalls())
}
