package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Config represents the mviewer.yml / mviewer.toml configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server" jsonschema:"description=WebSocket endpoint of the renderer"`
	HTTP      HTTPConfig      `yaml:"http,omitempty" mapstructure:"http" jsonschema:"description=HTTP endpoint serving view.json and pick.json"`
	Workspace WorkspaceConfig `yaml:"workspace,omitempty" mapstructure:"workspace" jsonschema:"description=Local access to the renderer workspace directory"`
	Viewer    ViewerConfig    `yaml:"viewer,omitempty" mapstructure:"viewer" jsonschema:"description=Canvas and interaction settings"`
	Layers    LayersConfig    `yaml:"layers,omitempty" mapstructure:"layers" jsonschema:"description=Layer control behaviour"`

	// Extensions holds sections this package does not model (e.g. "logging").
	// They are decoded on demand with UnmarshalExtension.
	Extensions map[string]interface{} `yaml:"-" mapstructure:",remain" jsonschema:"-"`
}

// ServerConfig locates the renderer's WebSocket.
type ServerConfig struct {
	Host string `yaml:"host" mapstructure:"host" jsonschema:"description=Renderer host name"`
	Port int    `yaml:"port" mapstructure:"port" jsonschema:"minimum=1,maximum=65535,description=Renderer port"`
	Path string `yaml:"path,omitempty" mapstructure:"path" jsonschema:"description=WebSocket path (default /ws)"`
	// ConnectRetry is the delay between dial attempts while the renderer is not yet listening.
	ConnectRetry string `yaml:"connect_retry,omitempty" mapstructure:"connect_retry" jsonschema:"description=Delay between dial attempts (Go duration)"`
}

// HTTPConfig configures document fetches.
type HTTPConfig struct {
	// BaseURL defaults to http://<host>:<port>/.
	BaseURL string `yaml:"base_url,omitempty" mapstructure:"base_url" jsonschema:"description=Base URL for view.json/pick.json/header fragments"`
	// Timeout is empty for no timeout.
	Timeout string `yaml:"timeout,omitempty" mapstructure:"timeout" jsonschema:"description=Per-request timeout (Go duration); empty waits forever"`
}

// WorkspaceConfig enables reading documents straight from the renderer workspace.
type WorkspaceConfig struct {
	Dir      string   `yaml:"dir,omitempty" mapstructure:"dir" jsonschema:"description=Renderer workspace directory"`
	Watch    bool     `yaml:"watch,omitempty" mapstructure:"watch" jsonschema:"description=Refresh when workspace documents change"`
	Patterns []string `yaml:"patterns,omitempty" mapstructure:"patterns" jsonschema:"description=File patterns that trigger a refresh"`
	Debounce string   `yaml:"debounce,omitempty" mapstructure:"debounce" jsonschema:"description=Quiet period before a change is processed (Go duration)"`
}

// ViewerConfig holds canvas and interaction settings.
type ViewerConfig struct {
	CanvasWidth    int    `yaml:"canvas_width,omitempty" mapstructure:"canvas_width" jsonschema:"minimum=0,description=Canvas width in pixels (0 = terminal based)"`
	CanvasHeight   int    `yaml:"canvas_height,omitempty" mapstructure:"canvas_height" jsonschema:"minimum=0,description=Canvas height in pixels (0 = terminal based)"`
	ResizeDebounce string `yaml:"resize_debounce,omitempty" mapstructure:"resize_debounce" jsonschema:"description=Quiet period before a resize is sent (Go duration)"`
	PickThreshold  int    `yaml:"pick_threshold,omitempty" mapstructure:"pick_threshold" jsonschema:"minimum=0,description=Zoom boxes smaller than this on both axes are treated as picks"`
}

// LayersConfig controls the overlay reconciliation engine.
type LayersConfig struct {
	// PreserveUnknown keeps overlay records of unrecognised type as locked rows
	// instead of dropping them on load.
	PreserveUnknown bool `yaml:"preserve_unknown,omitempty" mapstructure:"preserve_unknown" jsonschema:"description=Keep unrecognised overlay types when saving"`
}

// Default values
const (
	DefaultHost           = "localhost"
	DefaultPort           = 8080
	DefaultPath           = "/ws"
	DefaultConnectRetry   = 500 * time.Millisecond
	DefaultResizeDebounce = 150 * time.Millisecond
	DefaultWatchDebounce  = 100 * time.Millisecond
	DefaultPickThreshold  = 5
	DefaultCanvasSize     = 1000
)

// DefaultWorkspacePatterns are the workspace files that trigger a refresh.
var DefaultWorkspacePatterns = []string{"view.json", "pick.json"}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills in zero values.
func (c *Config) SetDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Path == "" {
		c.Server.Path = DefaultPath
	}
	if c.Server.ConnectRetry == "" {
		c.Server.ConnectRetry = DefaultConnectRetry.String()
	}
	if c.Viewer.ResizeDebounce == "" {
		c.Viewer.ResizeDebounce = DefaultResizeDebounce.String()
	}
	if c.Viewer.PickThreshold == 0 {
		c.Viewer.PickThreshold = DefaultPickThreshold
	}
	if len(c.Workspace.Patterns) == 0 {
		c.Workspace.Patterns = append([]string(nil), DefaultWorkspacePatterns...)
	}
	if c.Workspace.Debounce == "" {
		c.Workspace.Debounce = DefaultWatchDebounce.String()
	}
}

// BaseURL returns the HTTP base URL, always ending in a slash.
func (c *Config) BaseURL() string {
	base := c.HTTP.BaseURL
	if base == "" {
		base = fmt.Sprintf("http://%s:%d/", c.Server.Host, c.Server.Port)
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

// ConnectRetryInterval parses Server.ConnectRetry.
func (c *Config) ConnectRetryInterval() time.Duration {
	return parseDuration(c.Server.ConnectRetry, DefaultConnectRetry)
}

// ResizeDebounceInterval parses Viewer.ResizeDebounce.
func (c *Config) ResizeDebounceInterval() time.Duration {
	return parseDuration(c.Viewer.ResizeDebounce, DefaultResizeDebounce)
}

// WatchDebounceInterval parses Workspace.Debounce.
func (c *Config) WatchDebounceInterval() time.Duration {
	return parseDuration(c.Workspace.Debounce, DefaultWatchDebounce)
}

// HTTPTimeout parses HTTP.Timeout. Zero means no timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return parseDuration(c.HTTP.Timeout, 0)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// UnmarshalExtension decodes a section this package does not model (for example
// "logging") into the provided target struct. The target must be a pointer.
//
// Example:
//
//	var logCfg logging.Config
//	err := cfg.UnmarshalExtension("logging", &logCfg)
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		// It's not an error if the key doesn't exist.
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
