package scenes

import (
	"errors"
	"testing"

	cfg "github.com/automoto/springfollow/config"
	"github.com/automoto/springfollow/shared/follow"
	"github.com/automoto/springfollow/shared/scenario"
	"github.com/automoto/springfollow/systems"
	"github.com/go-gl/mathgl/mgl32"
)

func ptr(v float32) *float32 { return &v }

func testScenario() *scenario.Scenario {
	return &scenario.Scenario{
		Name: "unit",
		Targets: []scenario.TargetSpawn{
			{Name: "beacon", Waypoints: []mgl32.Vec3{{4, 0, 0}}},
			{Name: "runner", Waypoints: []mgl32.Vec3{{0, 0, 0}, {0, 0, 8}}, SegmentDuration: ptr(1), ExposeVelocity: true},
		},
		Followers: []scenario.FollowerSpawn{
			// declared before its target to exercise dependency ordering
			{Name: "tail", Target: "camera", Frequency: ptr(3)},
			{Name: "camera", Target: "runner", Preset: "steady"},
			{Name: "drone", Target: "beacon", Damping: ptr(0.9), Response: ptr(-0.5)},
		},
	}
}

var testPresets = cfg.Presets{"steady": {Frequency: 1.5, Damping: 1, Response: 0}}

func newTestScene(t *testing.T) *FollowScene {
	t.Helper()
	scene, err := NewFollowScene(testScenario(), DefaultSceneOptions(testPresets))
	if err != nil {
		t.Fatalf("NewFollowScene: %v", err)
	}
	return scene
}

func TestNewFollowSceneResolvesTuning(t *testing.T) {
	scene := newTestScene(t)

	tests := []struct {
		name string
		want follow.Tuning
	}{
		{"camera", follow.Tuning{Frequency: 1.5, Damping: 1, Response: 0}},
		{"tail", follow.Tuning{Frequency: 3, Damping: cfg.Follow.Damping, Response: cfg.Follow.Response}},
		{"drone", follow.Tuning{Frequency: cfg.Follow.Frequency, Damping: 0.9, Response: -0.5}},
	}
	for _, tt := range tests {
		got, err := scene.Tuning(tt.name)
		if err != nil {
			t.Fatalf("Tuning(%s): %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s tuning = %+v, want %+v", tt.name, got, tt.want)
		}
	}

	views := scene.Followers()
	if len(views) != 3 {
		t.Fatalf("views = %+v", views)
	}
	for _, v := range views {
		if v.Name == "tail" && v.Target != "camera" {
			t.Errorf("tail follows %q", v.Target)
		}
	}
}

func TestNewFollowSceneErrors(t *testing.T) {
	cycle := &scenario.Scenario{
		Name: "cycle",
		Followers: []scenario.FollowerSpawn{
			{Name: "a", Target: "b"},
			{Name: "b", Target: "a"},
		},
	}
	if _, err := NewFollowScene(cycle, DefaultSceneOptions(nil)); !errors.Is(err, ErrFollowCycle) {
		t.Errorf("cycle err = %v", err)
	}

	badPreset := testScenario()
	badPreset.Followers[1].Preset = "missing"
	if _, err := NewFollowScene(badPreset, DefaultSceneOptions(testPresets)); !errors.Is(err, cfg.ErrUnknownPreset) {
		t.Errorf("preset err = %v", err)
	}

	badTuning := testScenario()
	badTuning.Followers[2].Frequency = ptr(0)
	if _, err := NewFollowScene(badTuning, DefaultSceneOptions(testPresets)); !errors.Is(err, follow.ErrInvalidTuning) {
		t.Errorf("tuning err = %v", err)
	}
}

func TestSceneUpdateAndControl(t *testing.T) {
	scene := newTestScene(t)

	for i := 0; i < 120; i++ {
		if err := scene.Update(1.0 / 60); err != nil {
			t.Fatal(err)
		}
	}
	if scene.Tick() != 120 {
		t.Errorf("tick = %d", scene.Tick())
	}
	if s := scene.Stats(); s.Integrated != 3 {
		t.Errorf("stats = %+v", s)
	}
	if err := scene.Update(-1); !errors.Is(err, follow.ErrNegativeDelta) {
		t.Errorf("negative delta err = %v", err)
	}

	if err := scene.Retarget("tail", "beacon"); err != nil {
		t.Fatalf("Retarget: %v", err)
	}
	if err := scene.Retarget("tail", "nowhere"); !errors.Is(err, systems.ErrTargetUnresolvable) {
		t.Errorf("retarget err = %v", err)
	}
	if err := scene.Tune("ghost", follow.DefaultTuning()); !errors.Is(err, systems.ErrUnknownEntity) {
		t.Errorf("tune err = %v", err)
	}
	if _, err := scene.Tuning("beacon"); !errors.Is(err, systems.ErrNotFollower) {
		t.Errorf("tuning err = %v", err)
	}

	if err := scene.Remove("beacon"); err != nil {
		t.Fatal(err)
	}
	if err := scene.Update(1.0 / 60); err != nil {
		t.Fatal(err)
	}
	if s := scene.Stats(); s.Missing != 2 || s.Integrated != 1 {
		t.Errorf("stats after removing beacon = %+v", s)
	}
}

func TestPathSpecDefaults(t *testing.T) {
	noLoop := false
	spec := pathSpec(scenario.TargetSpawn{
		Waypoints: []mgl32.Vec3{{}, {1, 0, 0}},
		Loop:      &noLoop,
	})
	if spec.SegmentDuration != cfg.Path.SegmentDuration || spec.Ease != cfg.Path.Ease || spec.Loop {
		t.Errorf("spec = %+v", spec)
	}

	spec = pathSpec(scenario.TargetSpawn{SegmentDuration: ptr(0), Hold: 2, Ease: "outbounce"})
	if spec.SegmentDuration != 0 || spec.Hold != 2 || spec.Ease != "outbounce" || spec.Loop != cfg.Path.Loop {
		t.Errorf("spec = %+v", spec)
	}
}
