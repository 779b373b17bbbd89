package schema

import (
	"testing"

	"github.com/grovetools/mviewer/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	tests := []struct {
		name     string
		data     map[string]interface{}
		wantKeys []string
	}{
		{
			name: "minimal server section",
			data: map[string]interface{}{
				"server": map[string]interface{}{"host": "localhost", "port": 8080},
			},
		},
		{
			name: "extension sections are allowed",
			data: map[string]interface{}{
				"logging": map[string]interface{}{"level": "debug"},
			},
		},
		{
			name: "port out of range",
			data: map[string]interface{}{
				"server": map[string]interface{}{"port": 70000},
			},
			wantKeys: []string{"server.port"},
		},
		{
			name: "unknown key inside a known section",
			data: map[string]interface{}{
				"viewer": map[string]interface{}{"zoom_speed": 3},
			},
			wantKeys: []string{"viewer"},
		},
		{
			name: "wrong type",
			data: map[string]interface{}{
				"workspace": map[string]interface{}{"watch": "yes"},
			},
			wantKeys: []string{"workspace.watch"},
		},
		{
			name: "every failure is reported",
			data: map[string]interface{}{
				"server":    map[string]interface{}{"port": 0},
				"workspace": map[string]interface{}{"watch": "yes"},
			},
			wantKeys: []string{"server.port", "workspace.watch"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.data)
			if tt.wantKeys == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeConfigValidation), "got %v", err)

			e, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantKeys, e.Details["keys"])
			for _, key := range tt.wantKeys {
				assert.Contains(t, err.Error(), "- "+key+": ")
			}
		})
	}
}

func TestConfigKey(t *testing.T) {
	assert.Equal(t, "server.port", configKey("/server/port"))
	assert.Equal(t, "viewer", configKey("/viewer"))
	assert.Equal(t, "(root)", configKey(""))
}
