package results

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/labelaudit/internal/verify"
)

// RunConfig describes the inputs of a verification run.
type RunConfig struct {
	ID             string  `yaml:"id,omitempty" json:"id,omitempty"`
	Records        string  `yaml:"records" json:"records"`
	Documents      string  `yaml:"documents" json:"documents"`
	FuzzyThreshold float64 `yaml:"fuzzythreshold" json:"fuzzy_threshold"`
	Timestamp      string  `yaml:"timestamp" json:"timestamp"`
}

// RunSpec is the YAML document written for a run.
type RunSpec struct {
	Config RunConfig      `yaml:"config" json:"config"`
	Report *verify.Report `yaml:"report" json:"report"`
}

// WriteYAML writes a run to a YAML file.
func WriteYAML(path string, spec RunSpec) error {
	data, err := yaml.Marshal(&spec)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}
	return nil
}

// ReadYAML reads a run written by WriteYAML.
func ReadYAML(path string) (*RunSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML file: %w", err)
	}
	var spec RunSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse YAML file: %w", err)
	}
	if spec.Report == nil {
		spec.Report = &verify.Report{}
	}
	return &spec, nil
}
