package soundalert

import (
	"errors"
	"fmt"
)

// Config holds sound alert settings.
type Config struct {
	// Enabled turns the audio pipeline on.
	Enabled bool `yaml:"enabled" json:"enabled"`

	// ModelPath is the YAMNet ONNX export.
	ModelPath string `yaml:"model_path" json:"model_path"`

	// ClassMapPath is the CSV shipped with the model.
	ClassMapPath string `yaml:"class_map_path" json:"class_map_path"`

	// OutputName selects the scores output of the network. Empty uses the
	// network's first output.
	OutputName string `yaml:"output_name" json:"output_name"`

	// Vocabulary overrides the built-in alert list when non-empty.
	Vocabulary []string `yaml:"vocabulary" json:"vocabulary"`

	// MinScore suppresses alerts whose averaged score is below it.
	// 0 reports every top-1 match.
	MinScore float32 `yaml:"min_score" json:"min_score"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		ModelPath:    "models/yamnet.onnx",
		ClassMapPath: "models/yamnet_class_map.csv",
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	var errs []error
	if c.Enabled && c.ModelPath == "" {
		errs = append(errs, fmt.Errorf("model_path is required when alerts are enabled"))
	}
	if c.Enabled && c.ClassMapPath == "" {
		errs = append(errs, fmt.Errorf("class_map_path is required when alerts are enabled"))
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		errs = append(errs, fmt.Errorf("min_score %.2f is out of range [0, 1]", c.MinScore))
	}
	return errors.Join(errs...)
}

// VocabularySet returns the configured vocabulary, or the default one.
func (c Config) VocabularySet() Vocabulary {
	if len(c.Vocabulary) == 0 {
		return DefaultVocabulary()
	}
	return NewVocabulary(c.Vocabulary...)
}
