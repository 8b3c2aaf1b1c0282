// Package config loads the scenario registry that maps simulation scenarios
// to the actors they contain and the drive-cycle profile each actor follows.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ActorConfig describes one vehicle in a scenario.
type ActorConfig struct {
	Name         string `yaml:"name"`
	SpeedProfile string `yaml:"speed_profile,omitempty"`
}

// ScenarioConfig describes a simulation scenario and its actors.
type ScenarioConfig struct {
	Name   string        `yaml:"name"`
	Actors []ActorConfig `yaml:"actors"`
}

// Registry is the parsed scenarios.yaml.
type Registry struct {
	Scenarios []ScenarioConfig `yaml:"scenarios"`
}

// Load reads and parses a scenario registry file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario registry: %w", err)
	}

	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parsing scenario registry: %w", err)
	}

	seen := make(map[string]bool, len(reg.Scenarios))
	for _, sc := range reg.Scenarios {
		if sc.Name == "" {
			return nil, fmt.Errorf("scenario registry: scenario with empty name")
		}
		if seen[sc.Name] {
			return nil, fmt.Errorf("scenario registry: duplicate scenario %q", sc.Name)
		}
		seen[sc.Name] = true
	}

	return &reg, nil
}

// Scenario returns the named scenario, or false if the registry does not
// contain it.
func (r *Registry) Scenario(name string) (ScenarioConfig, bool) {
	for _, sc := range r.Scenarios {
		if sc.Name == name {
			return sc, true
		}
	}
	return ScenarioConfig{}, false
}

// ProfileUsers lists every scenario/actor pair that follows the given speed
// profile. Regenerating a profile invalidates these scenarios' logs.
func (r *Registry) ProfileUsers(profile string) []string {
	var users []string
	for _, sc := range r.Scenarios {
		for _, a := range sc.Actors {
			if a.SpeedProfile == profile {
				users = append(users, sc.Name+"/"+a.Name)
			}
		}
	}
	return users
}

// Validate checks that every speed profile referenced by the registry exists
// as a CSV under cycleDir.
func (r *Registry) Validate(cycleDir string) error {
	for _, sc := range r.Scenarios {
		for _, a := range sc.Actors {
			if a.SpeedProfile == "" {
				continue
			}
			path := filepath.Join(cycleDir, a.SpeedProfile+".csv")
			if _, err := os.Stat(path); err != nil {
				return fmt.Errorf("scenario %s: actor %s: speed profile %s: %w",
					sc.Name, a.Name, a.SpeedProfile, err)
			}
		}
	}
	return nil
}
