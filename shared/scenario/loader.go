package scenario

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lafriks/go-tiled"
)

var (
	ErrUnknownTarget   = errors.New("follower references an unknown target")
	ErrDuplicateName   = errors.New("duplicate object name")
	ErrInvalidProperty = errors.New("invalid property")
)

// LoadScenario parses a TMX file. Map pixels are converted to world units by
// the tile size; the map plane becomes world X/Z and the "elevation" property
// world Y. It takes an fs.FS so callers can pass embed.FS or os.DirFS.
func LoadScenario(fsys fs.FS, tmxPath string) (*Scenario, error) {
	m, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}

	scale := float32(1)
	if m.TileWidth > 0 {
		scale = 1 / float32(m.TileWidth)
	}
	toWorld := func(x, y float64, elevation float32) mgl32.Vec3 {
		return mgl32.Vec3{float32(x) * scale, elevation, float32(y) * scale}
	}

	sc := &Scenario{Name: strings.TrimSuffix(filepath.Base(tmxPath), ".tmx")}
	names := make(map[string]bool)

	for _, og := range m.ObjectGroups {
		switch og.Name {
		case GroupTargets:
			for _, o := range og.Objects {
				t, err := parseTarget(o, toWorld)
				if err != nil {
					return nil, fmt.Errorf("%s: target %q: %w", tmxPath, o.Name, err)
				}
				if names[t.Name] {
					return nil, fmt.Errorf("%s: %w: %q", tmxPath, ErrDuplicateName, t.Name)
				}
				names[t.Name] = true
				sc.Targets = append(sc.Targets, t)
			}
		case GroupFollowers:
			for _, o := range og.Objects {
				f, err := parseFollower(o, toWorld)
				if err != nil {
					return nil, fmt.Errorf("%s: follower %q: %w", tmxPath, o.Name, err)
				}
				sc.Followers = append(sc.Followers, f)
			}
		}
	}

	// Followers may chase targets or other followers.
	for _, f := range sc.Followers {
		if names[f.Name] {
			return nil, fmt.Errorf("%s: %w: %q", tmxPath, ErrDuplicateName, f.Name)
		}
		names[f.Name] = true
	}
	for _, f := range sc.Followers {
		if !names[f.Target] {
			return nil, fmt.Errorf("%s: follower %q: %w %q", tmxPath, f.Name, ErrUnknownTarget, f.Target)
		}
	}

	return sc, nil
}

func parseTarget(o *tiled.Object, toWorld func(x, y float64, elev float32) mgl32.Vec3) (TargetSpawn, error) {
	props := o.Properties
	elevation, err := floatProp(props.GetString("elevation"), 0)
	if err != nil {
		return TargetSpawn{}, err
	}
	hold, err := floatProp(props.GetString("hold"), 0)
	if err != nil {
		return TargetSpawn{}, err
	}
	velocity, err := boolProp(props.GetString("velocity"), false)
	if err != nil {
		return TargetSpawn{}, err
	}

	t := TargetSpawn{
		Name:           o.Name,
		Hold:           hold,
		Ease:           props.GetString("ease"),
		ExposeVelocity: velocity,
	}
	if raw := props.GetString("duration"); raw != "" {
		d, err := floatProp(raw, 0)
		if err != nil {
			return TargetSpawn{}, err
		}
		t.SegmentDuration = &d
	}
	if raw := props.GetString("loop"); raw != "" {
		l, err := boolProp(raw, false)
		if err != nil {
			return TargetSpawn{}, err
		}
		t.Loop = &l
	}
	if t.Name == "" {
		t.Name = "target-" + strconv.Itoa(int(o.ID))
	}

	if len(o.PolyLines) > 0 && o.PolyLines[0].Points != nil && len(*o.PolyLines[0].Points) > 0 {
		for _, p := range *o.PolyLines[0].Points {
			t.Waypoints = append(t.Waypoints, toWorld(o.X+p.X, o.Y+p.Y, elevation))
		}
	} else {
		t.Waypoints = []mgl32.Vec3{toWorld(o.X, o.Y, elevation)}
	}
	return t, nil
}

func parseFollower(o *tiled.Object, toWorld func(x, y float64, elev float32) mgl32.Vec3) (FollowerSpawn, error) {
	props := o.Properties
	elevation, err := floatProp(props.GetString("elevation"), 0)
	if err != nil {
		return FollowerSpawn{}, err
	}

	f := FollowerSpawn{
		Name:   o.Name,
		Target: props.GetString("target"),
		Start:  toWorld(o.X, o.Y, elevation),
		Preset: props.GetString("preset"),
	}
	if f.Name == "" {
		f.Name = "follower-" + strconv.Itoa(int(o.ID))
	}
	if f.Target == "" {
		return FollowerSpawn{}, fmt.Errorf("%w: missing \"target\"", ErrInvalidProperty)
	}

	for key, dst := range map[string]**float32{
		"frequency": &f.Frequency,
		"damping":   &f.Damping,
		"response":  &f.Response,
	} {
		raw := props.GetString(key)
		if raw == "" {
			continue
		}
		v, err := floatProp(raw, 0)
		if err != nil {
			return FollowerSpawn{}, err
		}
		*dst = &v
	}
	return f, nil
}

func floatProp(raw string, def float32) (float32, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidProperty, raw)
	}
	return float32(v), nil
}

func boolProp(raw string, def bool) (bool, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %q is not a bool", ErrInvalidProperty, raw)
	}
	return v, nil
}

// LoadAll discovers all .tmx files in dir within fsys and returns the parsed
// scenarios keyed by stem name plus a sorted list of names.
func LoadAll(fsys fs.FS, dir string) (map[string]*Scenario, []string, error) {
	pattern := dir + "/*.tmx"
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, nil, fmt.Errorf("no .tmx files found in %s", dir)
	}

	scenarios := make(map[string]*Scenario, len(matches))
	names := make([]string, 0, len(matches))
	for _, path := range matches {
		sc, err := LoadScenario(fsys, path)
		if err != nil {
			return nil, nil, err
		}
		scenarios[sc.Name] = sc
		names = append(names, sc.Name)
	}

	sort.Strings(names)
	return scenarios, names, nil
}
