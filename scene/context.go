// scene/context.go
package scene

import (
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/mahjongtable/layout"
	"github.com/wfunc/mahjongtable/render"
)

// TileEntity 是与 TileSlot 一一对应的渲染实体
type TileEntity struct {
	ID   render.EntityID `json:"id"`
	Slot layout.TileSlot `json:"slot"`
	Pose layout.Pose     `json:"pose"`
}

// SceneContext owns every handle created by one initialization attempt.
// It replaces ambient engine/scene/camera globals: builders receive it
// explicitly and the controller keeps it only once the build succeeded.
type SceneContext struct {
	ID        string
	CreatedAt time.Time
	Surface   render.EntityID
	Scene     render.EntityID
	Camera    render.EntityID
	Lights    []render.EntityID
	Shadow    render.EntityID
	Table     []render.EntityID
	Wall      []TileEntity
	Hand      []TileEntity

	created []render.EntityID
}

func newSceneContext() *SceneContext {
	return &SceneContext{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
	}
}

func (c *SceneContext) track(id render.EntityID) render.EntityID {
	c.created = append(c.created, id)
	return id
}

// Entities returns every handle created for this context, in creation order.
func (c *SceneContext) Entities() []render.EntityID {
	return append([]render.EntityID(nil), c.created...)
}

// Stats 汇总场景状态，供 rpc 与日志使用
type Stats struct {
	SceneID     string    `json:"scene_id,omitempty"`
	Lifecycle   string    `json:"lifecycle"`
	WallTiles   int       `json:"wall_tiles"`
	HandTiles   int       `json:"hand_tiles"`
	TableParts  int       `json:"table_parts"`
	Entities    int       `json:"entities"`
	Frames      int64     `json:"frames"`
	Attempts    int       `json:"attempts"`
	BuiltAt     time.Time `json:"built_at,omitempty"`
	LastFailure string    `json:"last_failure,omitempty"`
}
