package components

import "github.com/yohamta/donburi"

// ClockData is the singleton carrying the current tick's delta time.
type ClockData struct {
	Delta float32 // seconds since the previous tick
	Tick  uint64
}

var Clock = donburi.NewComponentType[ClockData]()
