package components

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/yohamta/donburi"
)

type TransformData struct {
	Position mgl32.Vec3
}

var Transform = donburi.NewComponentType[TransformData]()
