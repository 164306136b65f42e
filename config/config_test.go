package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/automoto/springfollow/shared/follow"
)

func withFollow(t *testing.T) {
	t.Helper()
	savedFollow, savedServer := Follow, Server
	t.Cleanup(func() {
		Follow, Server = savedFollow, savedServer
	})
}

func TestDefaultsMatchFollowPackage(t *testing.T) {
	if DefaultTuning() != follow.DefaultTuning() {
		t.Errorf("config default %+v differs from follow default %+v", DefaultTuning(), follow.DefaultTuning())
	}
}

func TestApplyEnv(t *testing.T) {
	withFollow(t)
	env := map[string]string{
		"SPRINGFOLLOW_FREQUENCY":      "2.5",
		"SPRINGFOLLOW_DAMPING":        "1",
		"SPRINGFOLLOW_MISSING_POLICY": "detach",
		"SPRINGFOLLOW_TICK_RATE":      "30",
		"SPRINGFOLLOW_PORT":           "9000",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	if err := applyEnv(lookup); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if Follow.Frequency != 2.5 || Follow.Damping != 1 || Follow.Response != 2 {
		t.Errorf("tuning = %v/%v/%v", Follow.Frequency, Follow.Damping, Follow.Response)
	}
	if Follow.MissingTargetPolicy != PolicyDetach {
		t.Errorf("policy = %q", Follow.MissingTargetPolicy)
	}
	if Server.TickRate != 30 || Server.Port != 9000 {
		t.Errorf("server = %+v", Server)
	}
}

func TestApplyEnvErrors(t *testing.T) {
	withFollow(t)
	env := map[string]string{
		"SPRINGFOLLOW_FREQUENCY":      "fast",
		"SPRINGFOLLOW_MISSING_POLICY": "explode",
	}
	err := applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, want := range []string{"SPRINGFOLLOW_FREQUENCY", "explode"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestLoadPresets(t *testing.T) {
	src := `
presets:
  camera:
    frequency: 1.5
    damping: 1
    response: 0
  wobbly:
    frequency: 3
    damping: 0.2
    response: -1.5
`
	presets, err := LoadPresets(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadPresets: %v", err)
	}
	if got := presets.Names(); len(got) != 2 || got[0] != "camera" || got[1] != "wobbly" {
		t.Errorf("Names() = %v", got)
	}

	cam, err := presets.Lookup("camera")
	if err != nil {
		t.Fatal(err)
	}
	if cam != (follow.Tuning{Frequency: 1.5, Damping: 1, Response: 0}) {
		t.Errorf("camera = %+v", cam)
	}

	def, err := presets.Lookup("")
	if err != nil || def != DefaultTuning() {
		t.Errorf("Lookup(\"\") = %+v, %v", def, err)
	}
	if _, err := presets.Lookup("missing"); err == nil {
		t.Error("Lookup of unknown preset succeeded")
	}
}

func TestLoadPresetsRejectsInvalid(t *testing.T) {
	src := `
presets:
  broken:
    frequency: 0
    damping: 1
`
	_, err := LoadPresets(strings.NewReader(src))
	if !errors.Is(err, follow.ErrInvalidTuning) {
		t.Fatalf("err = %v, want ErrInvalidTuning", err)
	}
}

func TestLoadPresetsEmpty(t *testing.T) {
	presets, err := LoadPresets(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadPresets(empty): %v", err)
	}
	if len(presets) != 0 {
		t.Errorf("got %d presets", len(presets))
	}
}
