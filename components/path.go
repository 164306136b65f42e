package components

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"github.com/yohamta/donburi"
)

// PathData moves an entity through Waypoints, one tween per segment.
// A zero SegmentDuration snaps between waypoints every Hold seconds.
type PathData struct {
	Waypoints       []mgl32.Vec3
	SegmentDuration float32
	Hold            float32
	Ease            ease.TweenFunc
	Loop            bool

	Segment  int
	Tween    *gween.Tween
	Elapsed  float32 // time spent in the current segment
	Held     float32
	Finished bool
}

var Path = donburi.NewComponentType[PathData]()
