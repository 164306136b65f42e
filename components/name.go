package components

import "github.com/yohamta/donburi"

type NameData struct {
	Name string
}

var Name = donburi.NewComponentType[NameData]()
