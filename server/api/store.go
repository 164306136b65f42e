package api

import (
	"errors"

	cfg "github.com/automoto/springfollow/config"
	"github.com/automoto/springfollow/shared/follow"
	"github.com/automoto/springfollow/systems"
)

// GdataPresets saves presets through the gdata store and falls back to the
// presets loaded from the config file when nothing was saved under a name.
type GdataPresets struct {
	Static cfg.Presets
}

func (p GdataPresets) Save(name string, t follow.Tuning) error {
	return systems.SaveTuningPreset(name, t)
}

func (p GdataPresets) Load(name string) (follow.Tuning, bool, error) {
	t, ok, err := systems.LoadTuningPreset(name)
	switch {
	case ok:
		return t, true, nil
	case err != nil && !errors.Is(err, systems.ErrPersistenceDisabled):
		return follow.Tuning{}, false, err
	}
	if st, found := p.Static[name]; found {
		return st, true, nil
	}
	return follow.Tuning{}, false, nil
}
