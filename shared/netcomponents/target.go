package netcomponents

import "github.com/yohamta/donburi"

type NetTargetData struct {
	Name    string
	X, Y, Z float64
}

var NetTarget = donburi.NewComponentType[NetTargetData]()

// LerpNetTarget interpolates between two target positions
func LerpNetTarget(from, to NetTargetData, t float64) *NetTargetData {
	return &NetTargetData{
		Name: to.Name,
		X:    from.X + (to.X-from.X)*t,
		Y:    from.Y + (to.Y-from.Y)*t,
		Z:    from.Z + (to.Z-from.Z)*t,
	}
}
