package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File is the on-disk YAML configuration.
//
// Zero values leave the corresponding Options field untouched, so a file only
// needs to name the settings it changes.
type File struct {
	Interpreter          string            `yaml:"interpreter,omitempty"`
	Args                 []string          `yaml:"args,omitempty"`
	Env                  map[string]string `yaml:"env,omitempty"`
	Cwd                  string            `yaml:"cwd,omitempty"`
	DrainWait            time.Duration     `yaml:"drain_wait,omitempty"`
	IntrospectionCommand string            `yaml:"introspection_command,omitempty"`
	NoIntrospection      bool              `yaml:"no_introspection,omitempty"`
	EmptyValuePattern    string            `yaml:"empty_value_pattern,omitempty"`
	ShellPrefix          string            `yaml:"shell_prefix,omitempty"`
	ShellTimeout         time.Duration     `yaml:"shell_timeout,omitempty"`
	TerminateTimeout     time.Duration     `yaml:"terminate_timeout,omitempty"`
	Markup               Markup            `yaml:"markup,omitempty"`
	LogLevel             string            `yaml:"log_level,omitempty"`
	LogFile              string            `yaml:"log_file,omitempty"`
}

// LoadFile reads and parses a YAML configuration file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	return ParseFile(data)
}

// ParseFile parses YAML configuration data.
func ParseFile(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	switch f.Markup {
	case "", MarkupHTML, MarkupTerminal:
	default:
		return nil, fmt.Errorf("parse config: unknown markup %q", f.Markup)
	}

	return &f, nil
}

// Apply merges the non-zero settings of the file onto o.
func (f *File) Apply(o *Options) {
	if f.Interpreter != "" {
		o.InterpreterPath = f.Interpreter
	}

	if len(f.Args) > 0 {
		o.Args = f.Args
	}

	if len(f.Env) > 0 {
		if o.Env == nil {
			o.Env = make(map[string]string, len(f.Env))
		}

		for k, v := range f.Env {
			o.Env[k] = v
		}
	}

	if f.Cwd != "" {
		o.Cwd = f.Cwd
	}

	if f.DrainWait > 0 {
		o.DrainWait = f.DrainWait
	}

	if f.IntrospectionCommand != "" {
		o.IntrospectionCommand = f.IntrospectionCommand
	}

	if f.NoIntrospection {
		o.NoIntrospection = true
	}

	if f.EmptyValuePattern != "" {
		o.EmptyValuePattern = f.EmptyValuePattern
	}

	if f.ShellPrefix != "" {
		o.ShellPrefix = f.ShellPrefix
	}

	if f.ShellTimeout > 0 {
		o.ShellTimeout = f.ShellTimeout
	}

	if f.TerminateTimeout > 0 {
		o.TerminateTimeout = f.TerminateTimeout
	}

	if f.Markup != "" {
		o.Markup = f.Markup
	}
}
