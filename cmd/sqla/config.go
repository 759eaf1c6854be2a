package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/syssam/sqla/compiler/load"
	"github.com/syssam/sqla/dialect"
	"github.com/syssam/sqla/emit"
	"github.com/syssam/sqla/lint"
)

// Config is the optional sqla.yaml read by every command. Flags override
// its values.
type Config struct {
	Dialect    string     `yaml:"dialect"`
	Layout     string     `yaml:"layout"`
	Idempotent bool       `yaml:"idempotent"`
	Lint       LintConfig `yaml:"lint"`
	Output     string     `yaml:"output"`
}

// LintConfig selects which issues stop a command.
type LintConfig struct {
	// Fatal lists consequences escalated to fatal.
	Fatal []string `yaml:"fatal"`
	// Ignore lists structural rules skipped on every table.
	Ignore []string `yaml:"ignore"`
}

func readConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) dialect() (dialect.Dialect, error) {
	return dialect.Parse(c.Dialect)
}

func (c *Config) layout() (emit.Layout, error) {
	if c.Layout == "" {
		return emit.MultiLine, nil
	}
	return emit.ParseLayout(c.Layout)
}

func (c *Config) policy() (lint.Policy, error) {
	var p lint.Policy
	for _, name := range c.Lint.Fatal {
		cons, err := lint.ParseConsequence(name)
		if err != nil {
			return p, err
		}
		p.Fatal = append(p.Fatal, cons)
	}
	return p, nil
}

func (c *Config) context() (*emit.Context, error) {
	d, err := c.dialect()
	if err != nil {
		return nil, err
	}
	l, err := c.layout()
	if err != nil {
		return nil, err
	}
	return emit.NewContext(emit.WithDialect(d), emit.WithLayout(l)), nil
}

// apply carries the project wide table settings onto every declaration.
func (c *Config) apply(s *load.Schema) {
	for _, t := range s.Tables {
		if c.Idempotent {
			t.Idempotent = true
		}
		t.IgnoreLint = append(t.IgnoreLint, c.Lint.Ignore...)
	}
}
