package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/automoto/springfollow/config"
	"github.com/automoto/springfollow/network"
	"github.com/automoto/springfollow/scenes"
	"github.com/automoto/springfollow/shared/netcomponents"
	"github.com/automoto/springfollow/shared/scenario"
	"github.com/go-gl/mathgl/mgl32"
)

func TestSimulateWritesCSV(t *testing.T) {
	sc := &scenario.Scenario{
		Name:      "csv",
		Targets:   []scenario.TargetSpawn{{Name: "beacon", Waypoints: []mgl32.Vec3{{1, 0, 0}}}},
		Followers: []scenario.FollowerSpawn{{Name: "camera", Target: "beacon"}},
	}
	scene, err := scenes.NewFollowScene(sc, scenes.DefaultSceneOptions(config.Presets{}))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := simulate(&buf, scene, 10, 1.0/60, 4); err != nil {
		t.Fatalf("simulate: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	// header + ticks 4, 8 and the final tick 10
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4: %v", len(rows), rows)
	}
	if rows[0][0] != "tick" || rows[3][0] != "10" || rows[3][2] != "camera" || rows[3][10] != "integrated" {
		t.Errorf("unexpected rows %v", rows)
	}
}

type fakeSource struct {
	states  []network.ClientState
	err     error
	replica network.Replica
}

func (f *fakeSource) State() network.ClientState {
	st := f.states[0]
	if len(f.states) > 1 {
		f.states = f.states[1:]
	}
	return st
}

func (f *fakeSource) LastError() error { return f.err }

func (f *fakeSource) LatestReplica() (network.Replica, bool) {
	return f.replica, len(f.replica.Followers) > 0
}

func TestPrintReplicasReturnsConnectionError(t *testing.T) {
	dialErr := errors.New("refused")
	src := &fakeSource{states: []network.ClientState{network.StateError}, err: dialErr}

	err := printReplicas(context.Background(), &bytes.Buffer{}, src, time.Millisecond)
	if !errors.Is(err, errConnectionFailed) || !errors.Is(err, dialErr) {
		t.Fatalf("err = %v, want connection failure wrapping %v", err, dialErr)
	}
}

func TestPrintReplicasStopsOnDisconnect(t *testing.T) {
	src := &fakeSource{
		states: []network.ClientState{network.StateConnected, network.StateDisconnected},
		replica: network.Replica{Followers: []netcomponents.NetFollowerData{
			{Name: "camera", Target: "beacon", Frequency: 1},
		}},
	}

	var buf bytes.Buffer
	if err := printReplicas(context.Background(), &buf, src, time.Millisecond); err != nil {
		t.Fatalf("printReplicas: %v", err)
	}
	if !strings.Contains(buf.String(), "camera") || !strings.Contains(buf.String(), "beacon") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrintReplicasStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &fakeSource{states: []network.ClientState{network.StateConnected}}

	if err := printReplicas(ctx, &bytes.Buffer{}, src, time.Hour); err != nil {
		t.Fatalf("printReplicas: %v", err)
	}
}
