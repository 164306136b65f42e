package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/automoto/springfollow/assets"
	"github.com/automoto/springfollow/config"
	"github.com/automoto/springfollow/network"
	"github.com/automoto/springfollow/scenes"
	"github.com/automoto/springfollow/shared/protocol"
	"github.com/automoto/springfollow/shared/scenario"
)

func main() {
	scenarioName := flag.String("scenario", "chase", "Bundled scenario to simulate")
	tmxPath := flag.String("tmx", "", "Simulate a TMX file instead of a bundled scenario")
	presetPath := flag.String("presets", "", "YAML preset file (empty = bundled presets)")
	ticks := flag.Int("ticks", 0, "Ticks to simulate (0 = config default)")
	dt := flag.Float64("dt", 0, "Seconds per tick (0 = config default)")
	every := flag.Int("every", 1, "Print every Nth tick")
	connect := flag.String("connect", "", "Watch a running server at host:port instead of simulating")
	envFile := flag.String("env", ".env", "Optional .env file")
	flag.Parse()

	if err := config.LoadEnv(*envFile); err != nil {
		log.Fatalf("Failed to load environment: %v", err)
	}
	if *ticks > 0 {
		config.Sim.Ticks = *ticks
	}
	if *dt > 0 {
		config.Sim.Delta = float32(*dt)
	}
	if *every < 1 {
		*every = 1
	}

	if *connect != "" {
		if err := watch(*connect); err != nil {
			log.Fatalf("Watch failed: %v", err)
		}
		return
	}

	presets, err := loadPresets(*presetPath)
	if err != nil {
		log.Fatalf("Failed to load presets: %v", err)
	}
	sc, err := loadScenario(*scenarioName, *tmxPath)
	if err != nil {
		log.Fatalf("Failed to load scenario: %v", err)
	}

	scene, err := scenes.NewFollowScene(sc, scenes.DefaultSceneOptions(presets))
	if err != nil {
		log.Fatalf("Failed to build scene: %v", err)
	}

	if err := simulate(os.Stdout, scene, config.Sim.Ticks, config.Sim.Delta, *every); err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}
}

func loadPresets(path string) (config.Presets, error) {
	if path == "" {
		return assets.LoadPresets()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return config.LoadPresets(f)
}

func loadScenario(name, tmxPath string) (*scenario.Scenario, error) {
	if tmxPath == "" {
		return assets.LoadScenario(name)
	}
	return scenario.LoadScenario(os.DirFS(filepath.Dir(tmxPath)), filepath.Base(tmxPath))
}

var csvHeader = []string{"tick", "time", "follower", "target", "x", "y", "z", "vx", "vy", "vz", "status"}

// simulate runs the scene for n ticks and writes follower state as CSV.
func simulate(out io.Writer, scene *scenes.FollowScene, n int, dt float32, every int) error {
	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for i := 1; i <= n; i++ {
		if err := scene.Update(dt); err != nil {
			return err
		}
		if i%every != 0 && i != n {
			continue
		}
		elapsed := f32(float32(i) * dt)
		for _, f := range scene.Followers() {
			if err := w.Write([]string{
				strconv.Itoa(i), elapsed, f.Name, f.Target,
				f32(f.Position[0]), f32(f.Position[1]), f32(f.Position[2]),
				f32(f.Velocity[0]), f32(f.Velocity[1]), f32(f.Velocity[2]),
				f.Status,
			}); err != nil {
				return err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	stats := scene.Stats()
	log.Printf("[sim] %s: %d ticks, %d integrated, %d missing in last tick (%d missing total)",
		scene.Name(), n, stats.Integrated, stats.Missing, stats.TotalMissing)
	return nil
}

func f32(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', 5, 32)
}

var errConnectionFailed = errors.New("connection failed")

// replicaSource is the part of network.Client the watch loop reads.
type replicaSource interface {
	State() network.ClientState
	LastError() error
	LatestReplica() (network.Replica, bool)
}

// watch prints the followers replicated by a running server until
// interrupted or disconnected.
func watch(address string) error {
	if err := protocol.RegisterComponents(); err != nil {
		return fmt.Errorf("register network components: %w", err)
	}

	client := network.NewClient()
	client.Connect(address)
	defer client.Disconnect()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return printReplicas(ctx, os.Stdout, client, time.Second)
}

func printReplicas(ctx context.Context, out io.Writer, src replicaSource, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			switch src.State() {
			case network.StateError:
				if err := src.LastError(); err != nil {
					return fmt.Errorf("%w: %w", errConnectionFailed, err)
				}
				return errConnectionFailed
			case network.StateDisconnected:
				log.Println("Server closed the connection")
				return nil
			}
			replica, ok := src.LatestReplica()
			if !ok {
				continue
			}
			for _, f := range replica.Followers {
				fmt.Fprintf(out, "%-12s -> %-12s pos=(%.2f, %.2f, %.2f) f=%.2f z=%.2f r=%.2f status=%d\n",
					f.Name, f.Target, f.X, f.Y, f.Z, f.Frequency, f.Damping, f.Response, f.Status)
			}
		}
	}
}
