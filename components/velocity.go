package components

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/yohamta/donburi"
)

// VelocityData is a measured linear velocity. Entities that carry it expose
// their velocity directly to followers; entities without it are
// differentiated by the follower.
type VelocityData struct {
	Linear mgl32.Vec3
}

var Velocity = donburi.NewComponentType[VelocityData]()
