package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/grovetools/mviewer/errors"
	"github.com/grovetools/mviewer/schema"
)

// Validate checks the configuration against the embedded JSON Schema and then
// applies the checks a schema cannot express.
func (c *Config) Validate() error {
	validator, err := schema.NewValidator()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to load config schema")
	}
	if err := validator.Validate(c.asMap()); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigValidation, "configuration does not match schema")
	}

	var problems []string

	if c.Server.Host == "" {
		problems = append(problems, "server.host must not be empty")
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		problems = append(problems, fmt.Sprintf("server.path %q must start with '/'", c.Server.Path))
	}

	durations := map[string]string{
		"server.connect_retry":   c.Server.ConnectRetry,
		"http.timeout":           c.HTTP.Timeout,
		"viewer.resize_debounce": c.Viewer.ResizeDebounce,
		"workspace.debounce":     c.Workspace.Debounce,
	}
	for _, key := range []string{"server.connect_retry", "http.timeout", "viewer.resize_debounce", "workspace.debounce"} {
		value := durations[key]
		if value == "" {
			continue
		}
		if d, err := time.ParseDuration(value); err != nil || d < 0 {
			problems = append(problems, fmt.Sprintf("%s %q is not a valid duration", key, value))
		}
	}

	if c.Workspace.Watch && c.Workspace.Dir == "" {
		problems = append(problems, "workspace.watch requires workspace.dir")
	}

	if len(problems) > 0 {
		return errors.ConfigInvalid(strings.Join(problems, "; ")).
			WithDetail("problems", problems)
	}
	return nil
}
