package netcomponents

import "github.com/yohamta/donburi"

type NetFollowerData struct {
	Name             string
	Target           string
	X, Y, Z          float64
	VelX, VelY, VelZ float64 // Client extrapolation between snapshots
	Frequency        float64
	Damping          float64
	Response         float64
	Status           uint8 // follow.Status
}

var NetFollower = donburi.NewComponentType[NetFollowerData]()

// LerpNetFollower interpolates position; everything else snaps to the newer state
func LerpNetFollower(from, to NetFollowerData, t float64) *NetFollowerData {
	out := to
	out.X = from.X + (to.X-from.X)*t
	out.Y = from.Y + (to.Y-from.Y)*t
	out.Z = from.Z + (to.Z-from.Z)*t
	return &out
}
