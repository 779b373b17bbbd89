package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/grovetools/mviewer/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultHost, cfg.Server.Host)
	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, "/ws", cfg.Server.Path)
	assert.Equal(t, "http://localhost:8080/", cfg.BaseURL())
	assert.Equal(t, 150*time.Millisecond, cfg.ResizeDebounceInterval())
	assert.Equal(t, 500*time.Millisecond, cfg.ConnectRetryInterval())
	assert.Equal(t, time.Duration(0), cfg.HTTPTimeout())
	assert.Equal(t, []string{"view.json", "pick.json"}, cfg.Workspace.Patterns)
	assert.Equal(t, 5, cfg.Viewer.PickThreshold)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromBytesYAML(t *testing.T) {
	t.Setenv("MVIEWER_HOST", "")
	t.Setenv("MVIEWER_PORT", "")
	t.Setenv("RENDER_HOST", "render.example.org")

	data := []byte(`
server:
  host: ${RENDER_HOST}
  port: 9090
http:
  base_url: http://files.example.org/session
  timeout: 30s
viewer:
  resize_debounce: 250ms
layers:
  preserve_unknown: true
logging:
  level: debug
`)

	cfg, err := LoadFromBytes(data, FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "render.example.org", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://files.example.org/session/", cfg.BaseURL())
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout())
	assert.Equal(t, 250*time.Millisecond, cfg.ResizeDebounceInterval())
	assert.True(t, cfg.Layers.PreserveUnknown)

	var logCfg struct {
		Level string `yaml:"level"`
	}
	require.NoError(t, cfg.UnmarshalExtension("logging", &logCfg))
	assert.Equal(t, "debug", logCfg.Level)
}

func TestLoadFromBytesTOML(t *testing.T) {
	t.Setenv("MVIEWER_HOST", "")
	t.Setenv("MVIEWER_PORT", "")

	data := []byte(`
[server]
host = "tomlhost"
port = 7000

[workspace]
dir = "/tmp/ws"
watch = true
patterns = ["view.json"]
`)

	cfg, err := LoadFromBytes(data, FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, "tomlhost", cfg.Server.Host)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.True(t, cfg.Workspace.Watch)
	assert.Equal(t, []string{"view.json"}, cfg.Workspace.Patterns)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MVIEWER_HOST", "override")
	t.Setenv("MVIEWER_PORT", "1234")

	cfg, err := LoadFromBytes([]byte("server:\n  host: filehost\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "override", cfg.Server.Host)
	assert.Equal(t, 1234, cfg.Server.Port)
}

func TestValidationErrors(t *testing.T) {
	t.Setenv("MVIEWER_HOST", "")
	t.Setenv("MVIEWER_PORT", "")

	tests := []struct {
		name string
		data string
		code errors.ErrorCode
	}{
		{
			name: "bad duration",
			data: "viewer:\n  resize_debounce: soon\n",
			code: errors.ErrCodeConfigInvalid,
		},
		{
			name: "watch without dir",
			data: "workspace:\n  watch: true\n",
			code: errors.ErrCodeConfigInvalid,
		},
		{
			name: "port out of range",
			data: "server:\n  port: 99999\n",
			code: errors.ErrCodeConfigValidation,
		},
		{
			name: "unknown viewer key",
			data: "viewer:\n  bogus: 1\n",
			code: errors.ErrCodeConfigValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromBytes([]byte(tt.data), FormatYAML)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestLoadFromHierarchy(t *testing.T) {
	root := t.TempDir()
	t.Setenv("MVIEWER_HOME", filepath.Join(root, "home"))
	t.Setenv("MVIEWER_HOST", "")
	t.Setenv("MVIEWER_PORT", "")

	globalDir := filepath.Join(root, "home", "config", "mviewer")
	require.NoError(t, os.MkdirAll(globalDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(globalDir, "mviewer.yml"),
		[]byte("server:\n  host: globalhost\n  port: 5000\n"), 0644))

	project := filepath.Join(root, "project")
	nested := filepath.Join(project, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(project, "mviewer.toml"),
		[]byte("[server]\nport = 6000\n"), 0644))

	found, err := FindConfigFile(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(project, "mviewer.toml"), found)

	cfg, err := LoadFrom(nested)
	require.NoError(t, err)
	assert.Equal(t, "globalhost", cfg.Server.Host, "global value survives")
	assert.Equal(t, 6000, cfg.Server.Port, "project value wins")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConfigNotFound))
}

func TestMarshalRoundTrip(t *testing.T) {
	t.Setenv("MVIEWER_HOST", "")
	t.Setenv("MVIEWER_PORT", "")

	cfg := Default()
	cfg.Server.Port = 4321

	for _, format := range []Format{FormatYAML, FormatTOML} {
		data, err := cfg.Marshal(format)
		require.NoError(t, err)

		back, err := LoadFromBytes(data, format)
		require.NoError(t, err, string(data))
		assert.Equal(t, 4321, back.Server.Port)
	}
}
