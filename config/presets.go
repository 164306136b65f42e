package config

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/automoto/springfollow/shared/follow"
	"gopkg.in/yaml.v3"
)

var ErrUnknownPreset = errors.New("unknown preset")

// DefaultTuning returns the configured fallback tuning.
func DefaultTuning() follow.Tuning {
	return follow.Tuning{
		Frequency: Follow.Frequency,
		Damping:   Follow.Damping,
		Response:  Follow.Response,
	}
}

type presetFile struct {
	Presets map[string]follow.Tuning `yaml:"presets"`
}

// Presets maps a preset name to its tuning.
type Presets map[string]follow.Tuning

// LoadPresets decodes a YAML preset file of the form
//
//	presets:
//	  camera:
//	    frequency: 1.5
//	    damping: 1
//	    response: 0
//
// Every preset is validated.
func LoadPresets(r io.Reader) (Presets, error) {
	var pf presetFile
	if err := yaml.NewDecoder(r).Decode(&pf); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode presets: %w", err)
	}

	out := make(Presets, len(pf.Presets))
	for name, t := range pf.Presets {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

// Lookup returns the named preset, or the default tuning when name is empty.
func (p Presets) Lookup(name string) (follow.Tuning, error) {
	if name == "" {
		return DefaultTuning(), nil
	}
	t, ok := p[name]
	if !ok {
		return follow.Tuning{}, fmt.Errorf("%w %q", ErrUnknownPreset, name)
	}
	return t, nil
}

// Names returns the preset names in sorted order.
func (p Presets) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
