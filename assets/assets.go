package assets

import (
	"embed"
	"fmt"
	"io/fs"

	cfg "github.com/automoto/springfollow/config"
	"github.com/automoto/springfollow/shared/scenario"
)

var (
	//go:embed all:scenarios
	scenarioFS embed.FS

	//go:embed presets.yaml
	presetFS embed.FS
)

// ScenarioDir is the directory inside FS holding the bundled scenarios.
const ScenarioDir = "scenarios"

// FS returns the bundled scenario files.
func FS() fs.FS {
	return scenarioFS
}

// LoadScenarios parses every bundled scenario.
func LoadScenarios() (map[string]*scenario.Scenario, []string, error) {
	return scenario.LoadAll(scenarioFS, ScenarioDir)
}

// LoadScenario parses one bundled scenario by name.
func LoadScenario(name string) (*scenario.Scenario, error) {
	return scenario.LoadScenario(scenarioFS, fmt.Sprintf("%s/%s.tmx", ScenarioDir, name))
}

// LoadPresets parses the bundled tuning presets.
func LoadPresets() (cfg.Presets, error) {
	f, err := presetFS.Open("presets.yaml")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return cfg.LoadPresets(f)
}
