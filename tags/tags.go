package tags

import "github.com/yohamta/donburi"

var (
	Target   = donburi.NewTag().SetName("Target")
	Follower = donburi.NewTag().SetName("Follower")
)
