package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file. Defaults are
// applied but the result is not validated; callers merge flags first.
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var config ConfigData
	dec := yaml.NewDecoder(bytes.NewReader(cfgFile))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", y.filename, err)
	}

	config.ApplyDefaults()
	return &config, nil
}

// StaticProvider serves a ConfigData built in code, e.g. from flags alone
type StaticProvider struct {
	Config ConfigData
}

// LoadConfig returns a copy of the static configuration with defaults applied
func (s StaticProvider) LoadConfig() (*ConfigData, error) {
	cfg := s.Config
	cfg.Analysis.Constituents = append([]string(nil), s.Config.Analysis.Constituents...)
	cfg.ApplyDefaults()
	return &cfg, nil
}
