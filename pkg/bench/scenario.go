package bench

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario describes one benchmarked workload: a command executed a fixed
// number of iterations, each iteration timed as a lap.
type Scenario struct {
	Name       string   `yaml:"name"`
	Command    []string `yaml:"command"`
	Iterations int      `yaml:"iterations"`
	Warmup     int      `yaml:"warmup"` // untimed iterations before measurement
}

type scenarioFile struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// LoadScenarios reads and validates a scenario file.
func LoadScenarios(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return ParseScenarios(data)
}

// ParseScenarios parses YAML scenario definitions and applies defaults.
func ParseScenarios(data []byte) ([]Scenario, error) {
	var file scenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse scenario file: %w", err)
	}
	if len(file.Scenarios) == 0 {
		return nil, fmt.Errorf("scenario file defines no scenarios")
	}

	seen := make(map[string]bool)
	for i := range file.Scenarios {
		sc := &file.Scenarios[i]
		if sc.Name == "" {
			return nil, fmt.Errorf("scenario %d: name is required", i)
		}
		if seen[sc.Name] {
			return nil, fmt.Errorf("scenario %q: duplicate name", sc.Name)
		}
		seen[sc.Name] = true
		if len(sc.Command) == 0 {
			return nil, fmt.Errorf("scenario %q: command is required", sc.Name)
		}
		if sc.Iterations <= 0 {
			sc.Iterations = 1
		}
		if sc.Warmup < 0 {
			return nil, fmt.Errorf("scenario %q: warmup must not be negative", sc.Name)
		}
	}
	return file.Scenarios, nil
}
