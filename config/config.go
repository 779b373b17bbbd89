package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/grovetools/mviewer/errors"
	"github.com/grovetools/mviewer/pkg/paths"
	"github.com/grovetools/mviewer/schema"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// configNames are searched, in order, in each directory.
var configNames = []string{
	"mviewer.yml",
	"mviewer.yaml",
	"mviewer.toml",
	".mviewer.yml",
	".mviewer.yaml",
}

// Format identifies the syntax of a configuration file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatForPath infers the configuration syntax from a file extension.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Load reads and parses a single configuration file, applies defaults,
// environment overrides and validation.
func Load(path string) (*Config, error) {
	raw, err := readRaw(path)
	if err != nil {
		return nil, err
	}
	return finish(raw)
}

// LoadFromBytes parses configuration data in the given format.
func LoadFromBytes(data []byte, format Format) (*Config, error) {
	raw, err := parseRaw(data, format)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse config")
	}
	return finish(raw)
}

// LoadDefault finds and loads the configuration with hierarchical merging:
// 1. Global config (~/.config/mviewer/mviewer.yml) - base layer
// 2. Project config (mviewer.yml, searched upward from cwd) - overrides global
// A missing configuration is not an error; defaults are returned.
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to get current directory")
	}

	return LoadFrom(cwd)
}

// LoadFrom loads configuration with hierarchical merging starting from the given directory
func LoadFrom(startDir string) (*Config, error) {
	return LoadFromWithLogger(startDir, logrus.New())
}

// LoadFromWithLogger loads configuration with hierarchical merging and logging
func LoadFromWithLogger(startDir string, logger *logrus.Logger) (*Config, error) {
	merged := map[string]interface{}{}

	if globalPath := findInDir(paths.ConfigDir()); globalPath != "" {
		logger.WithField("path", globalPath).Debug("Loading global configuration")
		raw, err := readRaw(globalPath)
		if err != nil {
			logger.WithError(err).Warn("Failed to load global configuration, continuing without it")
		} else {
			merged = mergeMaps(merged, raw)
		}
	}

	projectPath, err := FindConfigFile(startDir)
	if err == nil {
		logger.WithField("path", projectPath).Debug("Loading project configuration")
		raw, err := readRaw(projectPath)
		if err != nil {
			return nil, err
		}
		merged = mergeMaps(merged, raw)
	} else {
		logger.Debug("No project configuration found, using defaults")
	}

	return finish(merged)
}

// FindConfigFile searches for a configuration file starting from startDir and
// walking up to the filesystem root.
func FindConfigFile(startDir string) (string, error) {
	dir := startDir
	for {
		if path := findInDir(dir); path != "" {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.ConfigNotFound(startDir)
}

func findInDir(dir string) string {
	if dir == "" {
		return ""
	}
	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

func readRaw(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	raw, err := parseRaw(data, FormatForPath(path))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse config file").
			WithDetail("path", path)
	}
	return raw, nil
}

func parseRaw(data []byte, format Format) (map[string]interface{}, error) {
	expanded := expandEnvVars(string(data))
	raw := map[string]interface{}{}

	switch format {
	case FormatTOML:
		if err := toml.NewDecoder(bytes.NewReader([]byte(expanded))).Decode(&raw); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, err
		}
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}
	return raw, nil
}

// finish decodes the merged raw map, applies defaults and env overrides, and validates.
func finish(raw map[string]interface{}) (*Config, error) {
	// Validate the raw document first so unknown keys are reported rather
	// than silently dropped by the decoder.
	validator, err := schema.NewValidator()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to load config schema")
	}
	if err := validator.Validate(raw); err != nil {
		return nil, err
	}

	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to create config decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to decode config")
	}

	cfg.SetDefaults()
	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides lets MVIEWER_HOST / MVIEWER_PORT / MVIEWER_WORKSPACE win over files.
func applyEnvOverrides(cfg *Config) {
	if host := os.Getenv("MVIEWER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if port := os.Getenv("MVIEWER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if dir := os.Getenv("MVIEWER_WORKSPACE"); dir != "" {
		cfg.Workspace.Dir = dir
	}
}

// mergeMaps deep-merges override into base. Nested maps are merged key by key;
// any other value in override replaces the base value.
func mergeMaps(base, override map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		if ov, ok := v.(map[string]interface{}); ok {
			if bv, ok := out[k].(map[string]interface{}); ok {
				out[k] = mergeMaps(bv, ov)
				continue
			}
		}
		out[k] = v
	}
	return out
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} references.
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		// Handle default values: ${VAR:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}

// Marshal renders the configuration back to the requested format.
func (c *Config) Marshal(format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c.asMap()); err != nil {
			return nil, fmt.Errorf("failed to encode config as toml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		data, err := yaml.Marshal(c.asMap())
		if err != nil {
			return nil, fmt.Errorf("failed to encode config as yaml: %w", err)
		}
		return data, nil
	}
}

// asMap round-trips the config through yaml so both encoders see the same keys,
// then re-attaches extension sections.
func (c *Config) asMap() map[string]interface{} {
	out := map[string]interface{}{}
	data, err := yaml.Marshal(c)
	if err == nil {
		_ = yaml.Unmarshal(data, &out)
	}
	for k, v := range c.Extensions {
		if _, exists := out[k]; !exists {
			out[k] = v
		}
	}
	return out
}
