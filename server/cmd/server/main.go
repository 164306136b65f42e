package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/automoto/springfollow/assets"
	"github.com/automoto/springfollow/config"
	"github.com/automoto/springfollow/server/api"
	"github.com/automoto/springfollow/server/core"
	"github.com/automoto/springfollow/shared/protocol"
	"github.com/automoto/springfollow/shared/scenario"
	"github.com/automoto/springfollow/systems"
	"github.com/gin-gonic/gin"
)

func main() {
	envFile := flag.String("env", ".env", "Optional .env file")
	port := flag.Uint("port", 0, "Replication port (0 = config default)")
	tickRate := flag.Int("tickrate", 0, "Server tick rate (0 = config default)")
	name := flag.String("name", "", "Server display name (empty = config default)")
	apiAddr := flag.String("api", "", "Tuning API listen address (empty = config default, \"off\" disables)")
	scenarioName := flag.String("scenario", "chase", "Bundled scenario to run")
	tmxPath := flag.String("tmx", "", "Run a TMX file instead of a bundled scenario")
	presetPath := flag.String("presets", "", "YAML preset file (empty = bundled presets)")
	release := flag.Bool("release", false, "Run gin in release mode")
	flag.Parse()

	if err := config.LoadEnv(*envFile); err != nil {
		log.Fatalf("Failed to load environment: %v", err)
	}
	if *port != 0 {
		config.Server.Port = *port
	}
	if *tickRate > 0 {
		config.Server.TickRate = *tickRate
	}
	if *name != "" {
		config.Server.Name = *name
	}
	if *apiAddr != "" {
		config.Server.APIAddr = *apiAddr
	}

	if err := protocol.RegisterComponents(); err != nil {
		log.Fatalf("Failed to register components: %v", err)
	}
	if err := systems.InitPersistence(); err != nil {
		log.Printf("Preset persistence disabled: %v", err)
	}

	presets, err := loadPresets(*presetPath)
	if err != nil {
		log.Fatalf("Failed to load presets: %v", err)
	}
	sc, err := loadScenario(*scenarioName, *tmxPath)
	if err != nil {
		log.Fatalf("Failed to load scenario: %v", err)
	}

	server, err := core.NewServer(config.Server.Name, sc, presets, config.Server.TickRate)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	var httpServer *http.Server
	if config.Server.APIAddr != "off" {
		if *release {
			gin.SetMode(gin.ReleaseMode)
		}
		router := gin.Default()
		api.SetupRoutes(router, server, api.GdataPresets{Static: presets})
		httpServer = &http.Server{Addr: config.Server.APIAddr, Handler: router}

		go func() {
			log.Printf("Tuning API listening on %s", config.Server.APIAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatalf("API error: %v", err)
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down server...")
		if httpServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := httpServer.Shutdown(ctx); err != nil {
				log.Printf("API shutdown: %v", err)
			}
			cancel()
		}
		server.Stop()
		os.Exit(0)
	}()

	log.Printf("Starting %q on port %d (scenario: %s, tick rate: %d/s)",
		config.Server.Name, config.Server.Port, sc.Name, config.Server.TickRate)
	if err := server.Start(config.Server.Port); err != nil {
		log.Fatalf("Server error: %v", err)
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
