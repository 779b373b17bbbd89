package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Setenv("MVIEWER_HOME", t.TempDir())

	logger := NewLogger("test-component")
	require.NotNil(t, logger)
	assert.Equal(t, "test-component", logger.Data["component"])
	assert.Same(t, logger, NewLogger("test-component"), "loggers are cached per component")
}

func TestTextFormatter(t *testing.T) {
	tests := []struct {
		name    string
		config  FormatConfig
		entry   *logrus.Entry
		want    []string
		notWant []string
	}{
		{
			name:   "default format",
			config: FormatConfig{},
			entry: &logrus.Entry{
				Level:   logrus.InfoLevel,
				Message: "view state replaced",
				Data: logrus.Fields{
					"component": "store",
					"overlays":  3,
				},
			},
			want: []string{"[INFO]", "[store]", "view state replaced", "overlays=3"},
		},
		{
			name: "simple format",
			config: FormatConfig{
				DisableTimestamp: true,
				DisableComponent: true,
			},
			entry: &logrus.Entry{
				Level:   logrus.WarnLevel,
				Message: "unknown directive",
				Data:    logrus.Fields{"component": "viewer"},
			},
			want:    []string{"[WARN]", "unknown directive"},
			notWant: []string{"[viewer]"},
		},
		{
			name:   "caller information",
			config: FormatConfig{DisableTimestamp: true},
			entry: func() *logrus.Entry {
				logger := logrus.New()
				logger.SetReportCaller(true)
				return &logrus.Entry{
					Logger:  logger,
					Level:   logrus.InfoLevel,
					Message: "sent",
					Data:    logrus.Fields{"component": "transport"},
					Caller: &runtime.Frame{
						File:     "/src/pkg/transport/client.go",
						Line:     42,
						Function: "github.com/grovetools/mviewer/pkg/transport.(*Client).Send",
					},
				}
			}(),
			want: []string{"[client.go:42 transport.(*Client).Send]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			formatter := &TextFormatter{Config: tt.config}
			output, err := formatter.Format(tt.entry)
			require.NoError(t, err)

			for _, want := range tt.want {
				assert.Contains(t, string(output), want)
			}
			for _, notWant := range tt.notWant {
				assert.NotContains(t, string(output), notWant)
			}
		})
	}
}

func TestTextFormatterSortsFields(t *testing.T) {
	formatter := &TextFormatter{Config: FormatConfig{DisableTimestamp: true}}
	out, err := formatter.Format(&logrus.Entry{
		Level:   logrus.InfoLevel,
		Message: "m",
		Data:    logrus.Fields{"b": 2, "a": 1, "component": "x"},
	})
	require.NoError(t, err)
	assert.True(t, strings.Index(string(out), "a=1") < strings.Index(string(out), "b=2"))
}

func TestNewLoggerHonoursEnvironment(t *testing.T) {
	home := t.TempDir()
	t.Setenv("MVIEWER_HOME", home)
	t.Setenv("MVIEWER_LOG_LEVEL", "debug")
	t.Setenv("MVIEWER_LOG_CALLER", "true")

	entry := newLogger("env-test", Config{})
	assert.Equal(t, logrus.DebugLevel, entry.Logger.GetLevel())
	assert.True(t, entry.Logger.ReportCaller)

	entry.Info("hello file sink")
	data, err := os.ReadFile(LogFilePath(time.Now()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file sink")
	assert.True(t, strings.HasPrefix(LogFilePath(time.Now()), filepath.Join(home, "state")))
}

func TestJSONPresetAndExplicitFile(t *testing.T) {
	t.Setenv("MVIEWER_LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "custom.log")

	entry := newLogger("json-test", Config{
		Level:  "warn",
		File:   FileSinkConfig{Path: path},
		Format: FormatConfig{Preset: "json", StructuredToStderr: "never"},
	})
	entry.Info("dropped")
	entry.Warn("kept")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), `"msg":"kept"`)
	assert.Contains(t, string(data), `"component":"json-test"`)
}

func TestGlobalOutputRedirect(t *testing.T) {
	t.Setenv("MVIEWER_LOG_LEVEL", "")
	var buf bytes.Buffer
	SetGlobalOutput(&buf)
	defer SetGlobalOutput(os.Stderr)

	entry := newLogger("redirect-test", Config{
		File:   FileSinkConfig{Disabled: true},
		Format: FormatConfig{StructuredToStderr: "always", DisableTimestamp: true},
	})
	entry.Info("to the console")
	assert.Contains(t, buf.String(), "to the console")
}

func TestHoldGlobalOutput(t *testing.T) {
	t.Setenv("MVIEWER_LOG_LEVEL", "")
	var buf bytes.Buffer
	SetGlobalOutput(&buf)
	defer SetGlobalOutput(os.Stderr)

	entry := newLogger("hold-test", Config{
		File:   FileSinkConfig{Disabled: true},
		Format: FormatConfig{StructuredToStderr: "always", DisableTimestamp: true},
	})

	release := HoldGlobalOutput()
	entry.Info("first")
	entry.Warn("second")
	assert.Empty(t, buf.String(), "held entries stay off the terminal")

	release()
	out := buf.String()
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "second")
	assert.Less(t, strings.Index(out, "first"), strings.Index(out, "second"))

	release()
	entry.Info("third")
	assert.Contains(t, buf.String(), "third", "a released sink writes through")
}

func TestHoldGlobalOutputDropsOverflow(t *testing.T) {
	var buf bytes.Buffer
	sink := &terminalSink{w: &buf}
	release := sink.hold()

	line := []byte(strings.Repeat("x", 1023) + "\n")
	for i := 0; i < 66; i++ {
		n, err := sink.Write(line)
		require.NoError(t, err)
		assert.Equal(t, len(line), n)
	}
	release()

	assert.Equal(t, 64, strings.Count(buf.String(), strings.Repeat("x", 1023)))
	assert.Contains(t, buf.String(), "(2 log entries dropped while the console was open)")
}
