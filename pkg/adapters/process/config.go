package process

import (
	"errors"
	"fmt"
	"os/exec"
)

// Config describes the external command that answers turns.
type Config struct {
	Command string            `yaml:"command" json:"command" mapstructure:"command"`
	Args    []string          `yaml:"args" json:"args" mapstructure:"args"`
	Env     map[string]string `yaml:"env" json:"env" mapstructure:"env"`
	Dir     string            `yaml:"dir" json:"dir" mapstructure:"dir"`
}

// ErrNoCommand is returned when no agent command is configured.
var ErrNoCommand = errors.New("agent command is required")

// Validate checks that the command is set and resolvable on PATH.
func (c Config) Validate() error {
	if c.Command == "" {
		return ErrNoCommand
	}
	if _, err := exec.LookPath(c.Command); err != nil {
		return fmt.Errorf("agent command %q not found: %w", c.Command, err)
	}
	return nil
}
