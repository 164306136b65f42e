package systems

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"

	cfg "github.com/automoto/springfollow/config"
	"github.com/automoto/springfollow/shared/follow"
	"github.com/quasilyte/gdata"
)

var (
	ErrPersistenceDisabled = errors.New("persistence not initialized")
	ErrInvalidPresetName   = errors.New("preset names may only contain letters, digits, '-' and '_'")
)

// TuningStore is the subset of *gdata.Manager used for presets.
type TuningStore interface {
	SaveItem(key string, data []byte) error
	LoadItem(key string) ([]byte, error)
}

var tuningStore TuningStore

var presetName = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// InitPersistence opens the gdata store used for saved tuning presets.
func InitPersistence() error {
	m, err := gdata.Open(gdata.Config{
		AppName: cfg.Persistence.AppName,
	})
	if err != nil {
		log.Printf("[persistence] could not open store: %v", err)
		return err
	}
	tuningStore = m
	return nil
}

// UsePersistence replaces the preset store; nil disables persistence.
func UsePersistence(s TuningStore) {
	tuningStore = s
}

func presetKey(name string) (string, error) {
	if !presetName.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPresetName, name)
	}
	return "preset_" + name, nil
}

// SaveTuningPreset stores t under name.
func SaveTuningPreset(name string, t follow.Tuning) error {
	if tuningStore == nil {
		return ErrPersistenceDisabled
	}
	key, err := presetKey(name)
	if err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("serialize preset %s: %w", name, err)
	}
	if err := tuningStore.SaveItem(key, data); err != nil {
		log.Printf("[persistence] could not save preset %s: %v", name, err)
		return err
	}
	return nil
}

// LoadTuningPreset returns the stored preset, with ok false when none was
// saved under name.
func LoadTuningPreset(name string) (t follow.Tuning, ok bool, err error) {
	if tuningStore == nil {
		return t, false, ErrPersistenceDisabled
	}
	key, err := presetKey(name)
	if err != nil {
		return t, false, err
	}

	data, err := tuningStore.LoadItem(key)
	if err != nil {
		return t, false, fmt.Errorf("load preset %s: %w", name, err)
	}
	if len(data) == 0 {
		return t, false, nil
	}
	if err := json.Unmarshal(data, &t); err != nil {
		log.Printf("[persistence] could not parse preset %s: %v", name, err)
		return t, false, err
	}
	if err := t.Validate(); err != nil {
		return t, false, fmt.Errorf("stored preset %s: %w", name, err)
	}
	return t, true, nil
}
