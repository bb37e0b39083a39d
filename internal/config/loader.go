package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadMath loads the math level table.
// Search order: customPath -> ~/.arcade/configs/math.yaml -> ./configs/math.yaml -> embedded default
func LoadMath(customPath string) (MathConfig, error) {
	var cfg MathConfig

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		if err := cfg.Validate(); err != nil {
			return cfg, fmt.Errorf("invalid config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("math.yaml"); userCfgPath != "" {
		if cfg, ok := readMath(userCfgPath); ok {
			return cfg, nil
		}
	}

	// Try local configs directory
	if cfg, ok := readMath(filepath.Join("configs", "math.yaml")); ok {
		return cfg, nil
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultMathYAML, &cfg); err != nil || cfg.Validate() != nil {
		return DefaultMathConfig(), nil
	}
	return cfg, nil
}

// readMath returns a config from path when it exists and is valid.
func readMath(path string) (MathConfig, bool) {
	var cfg MathConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, false
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, false
	}
	return cfg, cfg.Validate() == nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".arcade", "configs", filename)
}

// Validate checks that the level table is usable by the generator.
func (c MathConfig) Validate() error {
	if len(c.Bands) == 0 {
		return fmt.Errorf("no level bands defined")
	}
	if len(c.Levels) == 0 {
		return fmt.Errorf("no level profiles defined")
	}
	for _, l := range c.Levels {
		if err := l.Multiplication.Validate(); err != nil {
			return fmt.Errorf("level %d: %w", l.Level, err)
		}
		if err := l.Addition.Validate(); err != nil {
			return fmt.Errorf("level %d: %w", l.Level, err)
		}
		if err := l.Subtraction.Validate(); err != nil {
			return fmt.Errorf("level %d: %w", l.Level, err)
		}
		if err := l.Division.Validate(); err != nil {
			return fmt.Errorf("level %d: %w", l.Level, err)
		}
	}
	return nil
}
