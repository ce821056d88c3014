package config

import (
	"fmt"
	"strings"
)

// Validate rejects settings the daemon cannot run with.
func (c *Config) Validate() error {
	var problems []string

	if c.Watch.StabilizationSeconds <= 0 {
		problems = append(problems, "watch.stabilization_seconds must be positive")
	}
	if c.Queue.InterTaskDelaySeconds < 0 {
		problems = append(problems, "queue.inter_task_delay_seconds must not be negative")
	}
	if c.Preflight.MinFreeGiB < 0 {
		problems = append(problems, "preflight.min_free_gib must not be negative")
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format: unsupported value %q", c.Logging.Format))
	}
	if c.History.Enabled && strings.TrimSpace(c.History.Path) == "" {
		problems = append(problems, "history.path required when history.enabled")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid settings: %s", strings.Join(problems, "; "))
	}
	return nil
}
