package onboarding

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed steps.yaml
var defaultStepsYAML []byte

// Step is one page of the onboarding carousel.
type Step struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Icon        string `yaml:"icon" json:"icon"`
	Gradient    string `yaml:"gradient" json:"gradient,omitempty"`
}

// ParseSteps decodes an ordered list of steps from YAML.
func ParseSteps(data []byte) ([]Step, error) {
	var steps []Step
	if err := yaml.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("decode steps: %w", err)
	}
	if len(steps) == 0 {
		return nil, errors.New("at least one step is required")
	}
	for i, s := range steps {
		if strings.TrimSpace(s.Title) == "" {
			return nil, fmt.Errorf("step %d: title is required", i)
		}
	}
	return steps, nil
}

// DefaultSteps returns the built-in SmartShuttle feature tour.
func DefaultSteps() []Step {
	steps, err := ParseSteps(defaultStepsYAML)
	if err != nil {
		panic(fmt.Sprintf("onboarding: embedded steps.yaml is invalid: %v", err))
	}
	return steps
}
